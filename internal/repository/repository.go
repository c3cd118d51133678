package repository

import (
	"context"
	"errors"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

// SessionRepository 会话存储。只保证按 ID 唯一存取，修改由调用方负责。
type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	// Save 覆盖写入，并发保存同一会话时后写入者生效
	Save(ctx context.Context, s *domain.Session) error
}

// NoteRepository 晨记归档
type NoteRepository interface {
	Save(ctx context.Context, note *model.MorningNote) error
	GetBySessionID(ctx context.Context, sessionID string) (*model.MorningNote, error)
}
