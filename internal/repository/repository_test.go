package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/model"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDBRepos(t *testing.T) (SessionRepository, NoteRepository) {
	t.Helper()
	db, err := database.InitDB("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return NewSessionRepository(db), NewNoteRepository(db)
}

func sessionRepos(t *testing.T) map[string]SessionRepository {
	sqlRepo, _ := newTestDBRepos(t)
	return map[string]SessionRepository{
		"memory": NewMemorySessionRepository(),
		"sqlite": sqlRepo,
	}
}

func TestSessionRepository_CreateGetSave(t *testing.T) {
	for name, repo := range sessionRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := domain.NewSession("u-1", "daily-v1")
			require.NoError(t, repo.Create(ctx, s))

			got, err := repo.Get(ctx, s.SessionID)
			require.NoError(t, err)
			assert.Equal(t, s, got)

			got.AppendUserAnswer("我推进了 A 项目")
			domain.ComputeNextQuestion(got)
			require.NoError(t, repo.Save(ctx, got))

			reloaded, err := repo.Get(ctx, s.SessionID)
			require.NoError(t, err)
			assert.Equal(t, 1, reloaded.TurnIndex)
			assert.Equal(t, 1, reloaded.FollowUpCount)
			assert.Equal(t, domain.StageFacts, reloaded.Stage)
			assert.Equal(t, got.Transcript, reloaded.Transcript)
			assert.Equal(t, "u-1", reloaded.UserID)
			assert.Equal(t, "daily-v1", reloaded.TemplateVersion)
		})
	}
}

func TestSessionRepository_NotFound(t *testing.T) {
	for name, repo := range sessionRepos(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Get(context.Background(), "sess_missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSessionRepository_UnsavedChangesDoNotLeak(t *testing.T) {
	for name, repo := range sessionRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := domain.NewSession("u-1", "daily-v1")
			require.NoError(t, repo.Create(ctx, s))

			loaded, err := repo.Get(ctx, s.SessionID)
			require.NoError(t, err)
			loaded.AppendUserAnswer("未保存")

			again, err := repo.Get(ctx, s.SessionID)
			require.NoError(t, err)
			assert.Equal(t, 0, again.TurnIndex)
			assert.Len(t, again.Transcript, 1)
		})
	}
}

func TestSessionRepository_LastWriteWins(t *testing.T) {
	for name, repo := range sessionRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := domain.NewSession("u-1", "daily-v1")
			require.NoError(t, repo.Create(ctx, s))

			a, _ := repo.Get(ctx, s.SessionID)
			b, _ := repo.Get(ctx, s.SessionID)
			a.AppendUserAnswer("first")
			b.AppendUserAnswer("second")
			b.AppendUserAnswer("third")

			require.NoError(t, repo.Save(ctx, a))
			require.NoError(t, repo.Save(ctx, b))

			got, err := repo.Get(ctx, s.SessionID)
			require.NoError(t, err)
			assert.Equal(t, []string{"second", "third"}, got.UserAnswers())
		})
	}
}

// 两种实现对未创建过的会话都按插入处理
func TestSessionRepository_SaveUnknownInserts(t *testing.T) {
	for name, repo := range sessionRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := domain.NewSession("u-1", "daily-v1")
			s.AppendUserAnswer("first")

			require.NoError(t, repo.Save(ctx, s))

			got, err := repo.Get(ctx, s.SessionID)
			require.NoError(t, err)
			assert.Equal(t, "u-1", got.UserID)
			assert.Equal(t, 1, got.TurnIndex)
			assert.Equal(t, []string{"first"}, got.UserAnswers())
		})
	}
}

func TestMemorySessionRepository_ConcurrentSessions(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 20)
	for i := range ids {
		s := domain.NewSession("u", "v")
		ids[i] = s.SessionID
		wg.Add(1)
		go func(s *domain.Session) {
			defer wg.Done()
			_ = repo.Create(ctx, s)
			s.AppendUserAnswer("x")
			_ = repo.Save(ctx, s)
		}(s)
	}
	wg.Wait()

	for _, id := range ids {
		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, got.TurnIndex)
	}
}

func TestNoteRepository(t *testing.T) {
	_, sqlNotes := newTestDBRepos(t)
	repos := map[string]NoteRepository{
		"memory": NewMemoryNoteRepository(),
		"sqlite": sqlNotes,
	}

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repo.GetBySessionID(ctx, "sess_none")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, repo.Save(ctx, &model.MorningNote{SessionID: "sess_1", UserID: "u-1", Markdown: "v1", Source: model.NoteSourceFallback}))
			require.NoError(t, repo.Save(ctx, &model.MorningNote{SessionID: "sess_1", UserID: "u-1", Markdown: "v2", Source: model.NoteSourceLLM}))

			note, err := repo.GetBySessionID(ctx, "sess_1")
			require.NoError(t, err)
			assert.Equal(t, "v2", note.Markdown)
			assert.Equal(t, model.NoteSourceLLM, note.Source)
		})
	}
}
