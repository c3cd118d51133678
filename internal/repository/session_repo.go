package repository

import (
	"context"
	"errors"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository 基于数据库的会话存储
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	return r.db.WithContext(ctx).Create(model.FromDomain(s)).Error
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	var row model.Session
	err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Save 按 id 覆盖写入，记录不存在时插入，与内存实现一致
func (r *sessionRepository) Save(ctx context.Context, s *domain.Session) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"user_id", "template_version", "turn_index", "follow_up_count", "stage", "transcript", "updated_at",
			}),
		}).
		Create(model.FromDomain(s)).Error
}
