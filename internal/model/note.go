package model

import "time"

// 晨记内容来源
const (
	NoteSourceLLM      = "llm"
	NoteSourceFallback = "fallback"
)

// MorningNote 最近一次 finalize 生成的晨记，每个会话保留一份
type MorningNote struct {
	SessionID string    `json:"session_id" gorm:"primaryKey;size:32"`
	UserID    string    `json:"user_id" gorm:"size:255;index:idx_morning_notes_user_id"`
	Markdown  string    `json:"markdown" gorm:"type:text;not null"`
	Source    string    `json:"source" gorm:"size:20"` // llm/fallback
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (MorningNote) TableName() string {
	return "morning_notes"
}
