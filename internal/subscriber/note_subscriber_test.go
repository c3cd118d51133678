package subscriber

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/eventbus"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/model"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/repository"
)

type failingNotes struct{}

func (failingNotes) Save(ctx context.Context, note *model.MorningNote) error {
	return errors.New("disk full")
}

func (failingNotes) GetBySessionID(ctx context.Context, sessionID string) (*model.MorningNote, error) {
	return nil, repository.ErrNotFound
}

func TestNoteSubscriber_ArchivesFinalizedNote(t *testing.T) {
	notes := repository.NewMemoryNoteRepository()
	bus := eventbus.NewSessionEventBus()
	NewNoteSubscriber(notes).Register(bus)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, eventbus.SessionEventStarted, eventbus.SessionEvent{Type: eventbus.SessionEventStarted, SessionID: "sess_1"}))
	_, err := notes.GetBySessionID(ctx, "sess_1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	event := eventbus.SessionEvent{
		Type:       eventbus.SessionEventFinalized,
		SessionID:  "sess_1",
		UserID:     "u1",
		Markdown:   "# note",
		NoteSource: model.NoteSourceFallback,
	}
	require.NoError(t, bus.Publish(ctx, event.Type, event))

	note, err := notes.GetBySessionID(ctx, "sess_1")
	require.NoError(t, err)
	assert.Equal(t, "u1", note.UserID)
	assert.Equal(t, "# note", note.Markdown)
	assert.Equal(t, model.NoteSourceFallback, note.Source)

	event.Markdown = "# note v2"
	event.NoteSource = model.NoteSourceLLM
	require.NoError(t, bus.Publish(ctx, event.Type, event))
	note, err = notes.GetBySessionID(ctx, "sess_1")
	require.NoError(t, err)
	assert.Equal(t, "# note v2", note.Markdown)
	assert.Equal(t, model.NoteSourceLLM, note.Source)
}

func TestNoteSubscriber_SaveError(t *testing.T) {
	bus := eventbus.NewSessionEventBus()
	NewNoteSubscriber(failingNotes{}).Register(bus)

	err := bus.Publish(context.Background(), eventbus.SessionEventFinalized, eventbus.SessionEvent{Type: eventbus.SessionEventFinalized, SessionID: "sess_2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
