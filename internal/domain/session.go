package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Stage 晨记对话阶段
type Stage string

const (
	StageFacts     Stage = "facts"      // 昨天的事实与进展
	StageReview    Stage = "review"     // 昨天关键复盘
	StageTodayPlan Stage = "today_plan" // 今天最重要的 3 件事
	StageDone      Stage = "done"       // 对话完成，可生成晨记
)

// stageOrder 阶段固定顺序，只能前进
var stageOrder = []Stage{StageFacts, StageReview, StageTodayPlan, StageDone}

// Role 对话消息角色
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// InputType 回答的输入来源
type InputType string

const (
	InputText  InputType = "text"
	InputAudio InputType = "audio"
)

// FirstQuestion 会话开场问题
const FirstQuestion = "先从昨天开始：昨天最重要的两件事实和进展是什么？"

// Message 对话历史中的一条消息
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Session 一次晨记访谈
type Session struct {
	SessionID       string    `json:"sessionId"`
	UserID          string    `json:"userId"`
	TemplateVersion string    `json:"templateVersion"`
	TurnIndex       int       `json:"turnIndex"`
	FollowUpCount   int       `json:"followUpCount"`
	Stage           Stage     `json:"stage"`
	Transcript      []Message `json:"transcript"`
}

// NewSessionID 生成会话 ID，格式 sess_xxxxxxxx
func NewSessionID() string {
	return "sess_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// NewSession 创建处于 facts 阶段的新会话，并写入开场问题
func NewSession(userID, templateVersion string) *Session {
	return &Session{
		SessionID:       NewSessionID(),
		UserID:          userID,
		TemplateVersion: templateVersion,
		Stage:           StageFacts,
		Transcript:      []Message{{Role: RoleAssistant, Text: FirstQuestion}},
	}
}

// Clone 深拷贝，调用方可以自由修改副本
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Transcript = append([]Message(nil), s.Transcript...)
	return &cp
}

// AppendUserAnswer 追加用户回答并推进 TurnIndex
func (s *Session) AppendUserAnswer(text string) {
	s.Transcript = append(s.Transcript, Message{Role: RoleUser, Text: text})
	s.TurnIndex++
}

// AppendAssistant 追加助手提问
func (s *Session) AppendAssistant(text string) {
	s.Transcript = append(s.Transcript, Message{Role: RoleAssistant, Text: text})
}

// UserAnswers 按顺序返回所有用户回答
func (s *Session) UserAnswers() []string {
	answers := make([]string, 0, s.TurnIndex)
	for _, m := range s.Transcript {
		if m.Role == RoleUser {
			answers = append(answers, m.Text)
		}
	}
	return answers
}

// IsDone 会话是否已到达终止阶段
func (s *Session) IsDone() bool {
	return s.Stage == StageDone
}

// NextStage 返回固定顺序中的下一个阶段，done 保持不变
func NextStage(stage Stage) Stage {
	for i, st := range stageOrder {
		if st == stage && i+1 < len(stageOrder) {
			return stageOrder[i+1]
		}
	}
	return StageDone
}

// StageRank 阶段在固定顺序中的位置，未知阶段返回 -1
func StageRank(stage Stage) int {
	for i, st := range stageOrder {
		if st == stage {
			return i
		}
	}
	return -1
}
