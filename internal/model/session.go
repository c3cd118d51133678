package model

import (
	"time"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
)

// Session 会话持久化记录，对话历史以 JSON 存在同一行
type Session struct {
	ID              string           `json:"session_id" gorm:"primaryKey;size:32"`
	UserID          string           `json:"user_id" gorm:"size:255;index:idx_sessions_user_id;not null"`
	TemplateVersion string           `json:"template_version" gorm:"size:64;not null"`
	TurnIndex       int              `json:"turn_index" gorm:"default:0"`
	FollowUpCount   int              `json:"follow_up_count" gorm:"default:0"`
	Stage           string           `json:"stage" gorm:"size:20;index:idx_sessions_stage;not null"`
	Transcript      []domain.Message `json:"transcript" gorm:"serializer:json;type:text"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// TableName 指定表名
func (Session) TableName() string {
	return "dialogue_sessions"
}

// FromDomain 由领域对象构造持久化记录
func FromDomain(s *domain.Session) *Session {
	return &Session{
		ID:              s.SessionID,
		UserID:          s.UserID,
		TemplateVersion: s.TemplateVersion,
		TurnIndex:       s.TurnIndex,
		FollowUpCount:   s.FollowUpCount,
		Stage:           string(s.Stage),
		Transcript:      append([]domain.Message(nil), s.Transcript...),
	}
}

// ToDomain 转换为领域对象
func (m *Session) ToDomain() *domain.Session {
	transcript := append([]domain.Message(nil), m.Transcript...)
	if transcript == nil {
		transcript = []domain.Message{}
	}
	return &domain.Session{
		SessionID:       m.ID,
		UserID:          m.UserID,
		TemplateVersion: m.TemplateVersion,
		TurnIndex:       m.TurnIndex,
		FollowUpCount:   m.FollowUpCount,
		Stage:           domain.Stage(m.Stage),
		Transcript:      transcript,
	}
}
