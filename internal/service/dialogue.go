package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/eventbus"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/model"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/repository"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/service/statemachine"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionNotComplete = errors.New("session not complete")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNoteNotFound       = errors.New("note not found")
)

// StartResult 新会话及开场问题
type StartResult struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
	TurnIndex int    `json:"turnIndex"`
}

// AnswerInput 一次回答，文本优先，其次音频
type AnswerInput struct {
	Transcript string
	AudioURL   string
}

// AnswerResult 回答后的下一问
type AnswerResult struct {
	NextQuestion     string              `json:"nextQuestion"`
	NextQuestionType domain.QuestionType `json:"nextQuestionType"`
	TurnIndex        int                 `json:"turnIndex"`
	UsedInputType    domain.InputType    `json:"usedInputType"`
}

// FinalizeResult 生成的晨记
type FinalizeResult struct {
	SessionID string `json:"sessionId"`
	Markdown  string `json:"markdown"`
	Source    string `json:"source"`
}

// DialogueService 驱动晨间对话：开始、逐轮回答、生成晨记
type DialogueService struct {
	sessions    repository.SessionRepository
	notes       repository.NoteRepository
	transcriber domain.Transcriber
	suggester   domain.Suggester
	bus         *eventbus.SessionEventBus

	stageStateMachine *statemachine.StageStateMachine
}

// NewDialogueService 创建对话服务。transcriber/suggester 为 nil 时按不可用处理，bus 为 nil 时不发布事件。
func NewDialogueService(sessions repository.SessionRepository, notes repository.NoteRepository, transcriber domain.Transcriber, suggester domain.Suggester, bus *eventbus.SessionEventBus) *DialogueService {
	return &DialogueService{
		sessions:    sessions,
		notes:       notes,
		transcriber: transcriber,
		suggester:   suggester,
		bus:         bus,

		stageStateMachine: statemachine.NewStageStateMachine(),
	}
}

// Start 创建会话并返回开场问题
func (s *DialogueService) Start(ctx context.Context, userID, templateVersion string) (*StartResult, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(templateVersion) == "" {
		return nil, fmt.Errorf("%w: userId and templateVersion are required", ErrInvalidInput)
	}

	session := domain.NewSession(userID, templateVersion)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	klog.V(6).Infof("会话已创建: sessionID=%s, userID=%s, templateVersion=%s", session.SessionID, userID, templateVersion)

	s.publish(ctx, eventbus.SessionEvent{
		Type:      eventbus.SessionEventStarted,
		SessionID: session.SessionID,
		UserID:    session.UserID,
		Stage:     session.Stage,
	})

	return &StartResult{
		SessionID: session.SessionID,
		Question:  domain.FirstQuestion,
		TurnIndex: session.TurnIndex,
	}, nil
}

// Answer 记录一次回答并给出下一问。会话在副本上修改，只保存一次。
func (s *DialogueService) Answer(ctx context.Context, sessionID string, in AnswerInput) (*AnswerResult, error) {
	stored, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	text, inputType, err := s.resolveInput(ctx, in)
	if err != nil {
		return nil, err
	}

	session := stored.Clone()
	session.AppendUserAnswer(text)
	transition := domain.Decide(session.Stage, session.FollowUpCount)
	if err := s.stageStateMachine.Transition(session.Stage, transition.Stage, sessionID); err != nil {
		return nil, fmt.Errorf("answer session %s: %w", sessionID, err)
	}
	transition.Apply(session)
	fallback := transition.Next
	next := s.suggestNext(ctx, session, text, fallback)
	if next.Type != domain.QuestionFinalize {
		session.AppendAssistant(next.Question)
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session %s: %w", sessionID, err)
	}
	klog.V(6).Infof("回答已记录: sessionID=%s, turnIndex=%d, stage=%s, followUpCount=%d, nextType=%s, input=%s",
		sessionID, session.TurnIndex, session.Stage, session.FollowUpCount, next.Type, inputType)

	s.publish(ctx, eventbus.SessionEvent{
		Type:         eventbus.SessionEventAnswered,
		SessionID:    session.SessionID,
		UserID:       session.UserID,
		Stage:        session.Stage,
		TurnIndex:    session.TurnIndex,
		QuestionType: next.Type,
		InputType:    inputType,
	})

	return &AnswerResult{
		NextQuestion:     next.Question,
		NextQuestionType: next.Type,
		TurnIndex:        session.TurnIndex,
		UsedInputType:    inputType,
	}, nil
}

// Finalize 为已完成的会话生成晨记，可重复调用
func (s *DialogueService) Finalize(ctx context.Context, sessionID string) (*FinalizeResult, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsDone() {
		return nil, fmt.Errorf("%w: session %s is at stage %s", ErrSessionNotComplete, sessionID, session.Stage)
	}

	input, source := s.summarize(ctx, session)
	markdown := domain.ComposeMorningNote(input)
	klog.V(6).Infof("晨记已生成: sessionID=%s, source=%s, length=%d", sessionID, source, len(markdown))

	s.publish(ctx, eventbus.SessionEvent{
		Type:       eventbus.SessionEventFinalized,
		SessionID:  session.SessionID,
		UserID:     session.UserID,
		Stage:      session.Stage,
		TurnIndex:  session.TurnIndex,
		Markdown:   markdown,
		NoteSource: source,
	})

	return &FinalizeResult{
		SessionID: session.SessionID,
		Markdown:  markdown,
		Source:    source,
	}, nil
}

// GetSession 会话快照
func (s *DialogueService) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.load(ctx, sessionID)
}

// GetNote 最近一次 finalize 归档的晨记
func (s *DialogueService) GetNote(ctx context.Context, sessionID string) (*model.MorningNote, error) {
	if s.notes == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, sessionID)
	}
	note, err := s.notes.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoteNotFound, sessionID)
		}
		return nil, fmt.Errorf("get note %s: %w", sessionID, err)
	}
	return note, nil
}

func (s *DialogueService) load(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	return session, nil
}

// resolveInput 文本非空时原样使用，否则转写音频
func (s *DialogueService) resolveInput(ctx context.Context, in AnswerInput) (string, domain.InputType, error) {
	if strings.TrimSpace(in.Transcript) != "" {
		return in.Transcript, domain.InputText, nil
	}
	audioURL := strings.TrimSpace(in.AudioURL)
	if audioURL == "" {
		return "", "", fmt.Errorf("%w: transcript or audioUrl is required", ErrInvalidInput)
	}
	if s.transcriber == nil {
		return "", "", fmt.Errorf("%w: no transcriber configured", ErrInvalidInput)
	}

	text, err := s.transcriber.Transcribe(ctx, audioURL)
	if err != nil {
		klog.Warningf("音频转写失败: audioURL=%s, error=%v", audioURL, err)
		return "", "", fmt.Errorf("%w: transcribe audio: %w", ErrInvalidInput, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", "", fmt.Errorf("%w: empty transcription", ErrInvalidInput)
	}
	return text, domain.InputAudio, nil
}

// suggestNext 建议只替换返回给用户的问题文本和类型，不影响阶段推进
func (s *DialogueService) suggestNext(ctx context.Context, session *domain.Session, latest string, fallback domain.NextQuestion) domain.NextQuestion {
	if s.suggester == nil {
		return fallback
	}
	suggestion, err := s.suggester.NextQuestion(ctx, domain.SuggestionInput{
		Session:              session,
		LatestUserTranscript: latest,
		Fallback:             fallback,
	})
	if err != nil {
		klog.V(6).Infof("下一问建议失败，使用策略问题: sessionID=%s, error=%v", session.SessionID, err)
		return fallback
	}
	if suggestion == nil || !suggestion.Type.Valid() || strings.TrimSpace(suggestion.Question) == "" {
		return fallback
	}
	return domain.NextQuestion{
		Question: strings.TrimSpace(suggestion.Question),
		Type:     suggestion.Type,
	}
}

func (s *DialogueService) summarize(ctx context.Context, session *domain.Session) (domain.NoteInput, string) {
	if s.suggester != nil {
		input, err := s.suggester.SummarizeToNoteInput(ctx, session)
		if err != nil {
			klog.V(6).Infof("晨记摘要失败，使用确定性提取: sessionID=%s, error=%v", session.SessionID, err)
		} else if input != nil {
			return *input, model.NoteSourceLLM
		}
	}
	return domain.ExtractNoteInput(session), model.NoteSourceFallback
}

func (s *DialogueService) publish(ctx context.Context, event eventbus.SessionEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event.Type, event); err != nil {
		klog.Warningf("会话事件处理失败: type=%s, sessionID=%s, error=%v", event.Type, event.SessionID, err)
	}
}
