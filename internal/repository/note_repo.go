package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository 基于数据库的晨记归档
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

// Save 按 session_id 覆盖写入
func (r *noteRepository) Save(ctx context.Context, note *model.MorningNote) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "markdown", "source", "updated_at"}),
		}).
		Create(note).Error
}

func (r *noteRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.MorningNote, error) {
	var note model.MorningNote
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

type memoryNoteRepository struct {
	mutex sync.RWMutex
	notes map[string]model.MorningNote
}

// NewMemoryNoteRepository 进程内晨记归档
func NewMemoryNoteRepository() NoteRepository {
	return &memoryNoteRepository{notes: make(map[string]model.MorningNote)}
}

func (r *memoryNoteRepository) Save(ctx context.Context, note *model.MorningNote) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	now := time.Now()
	stored := *note
	if prev, ok := r.notes[note.SessionID]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.notes[note.SessionID] = stored
	return nil
}

func (r *memoryNoteRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.MorningNote, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	note, ok := r.notes[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return &note, nil
}
