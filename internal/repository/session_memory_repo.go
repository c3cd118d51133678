package repository

import (
	"context"
	"sync"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
)

// memorySessionRepository 进程内会话存储，进程退出即丢失。
// 存取都做深拷贝，调用方未 Save 的修改不会泄漏到存储中。
type memorySessionRepository struct {
	mutex    sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemorySessionRepository 创建进程内会话存储
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

func (r *memorySessionRepository) Create(ctx context.Context, s *domain.Session) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.sessions[s.SessionID] = s.Clone()
	return nil
}

func (r *memorySessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (r *memorySessionRepository) Save(ctx context.Context, s *domain.Session) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.sessions[s.SessionID] = s.Clone()
	return nil
}
