package subscriber

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/eventbus"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/model"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/repository"
)

// NoteSubscriber 监听会话事件，归档每次 finalize 生成的晨记
type NoteSubscriber struct {
	notes repository.NoteRepository
}

func NewNoteSubscriber(notes repository.NoteRepository) *NoteSubscriber {
	return &NoteSubscriber{notes: notes}
}

func (s *NoteSubscriber) Register(bus *eventbus.SessionEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.SessionEventStarted, s.handleStarted)
	bus.Subscribe(eventbus.SessionEventAnswered, s.handleAnswered)
	bus.Subscribe(eventbus.SessionEventFinalized, s.handleFinalized)
}

func (s *NoteSubscriber) handleStarted(ctx context.Context, event eventbus.SessionEvent) error {
	klog.V(6).Infof("会话开始事件: sessionID=%s, userID=%s", event.SessionID, event.UserID)
	return nil
}

func (s *NoteSubscriber) handleAnswered(ctx context.Context, event eventbus.SessionEvent) error {
	klog.V(6).Infof("回答事件: sessionID=%s, turnIndex=%d, stage=%s, nextType=%s, input=%s",
		event.SessionID, event.TurnIndex, event.Stage, event.QuestionType, event.InputType)
	return nil
}

// handleFinalized 覆盖保存该会话的晨记
func (s *NoteSubscriber) handleFinalized(ctx context.Context, event eventbus.SessionEvent) error {
	if s.notes == nil {
		return nil
	}
	note := &model.MorningNote{
		SessionID: event.SessionID,
		UserID:    event.UserID,
		Markdown:  event.Markdown,
		Source:    event.NoteSource,
	}
	if err := s.notes.Save(ctx, note); err != nil {
		klog.Errorf("晨记归档失败: sessionID=%s, error=%v", event.SessionID, err)
		return fmt.Errorf("archive note %s: %w", event.SessionID, err)
	}
	klog.V(6).Infof("晨记已归档: sessionID=%s, source=%s", event.SessionID, event.NoteSource)
	return nil
}
