package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	s := NewSession("u-1", "daily-v1")

	assert.Regexp(t, regexp.MustCompile(`^sess_[a-f0-9]{8}$`), s.SessionID)
	assert.Equal(t, StageFacts, s.Stage)
	assert.Equal(t, 0, s.TurnIndex)
	assert.Equal(t, 0, s.FollowUpCount)
	assert.Equal(t, []Message{{Role: RoleAssistant, Text: FirstQuestion}}, s.Transcript)
}

func TestSessionIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		assert.False(t, seen[id], "重复的会话 ID: %s", id)
		seen[id] = true
	}
}

func TestSessionAppendAndUserAnswers(t *testing.T) {
	s := NewSession("u-1", "daily-v1")
	s.AppendUserAnswer("a")
	s.AppendAssistant("q")
	s.AppendUserAnswer("b")

	assert.Equal(t, 2, s.TurnIndex)
	assert.Equal(t, []string{"a", "b"}, s.UserAnswers())
	assert.Len(t, s.Transcript, 4)
}

func TestSessionClone(t *testing.T) {
	s := NewSession("u-1", "daily-v1")
	cp := s.Clone()
	cp.AppendUserAnswer("only in copy")
	cp.Stage = StageReview

	assert.Len(t, s.Transcript, 1)
	assert.Equal(t, StageFacts, s.Stage)
	assert.Nil(t, (*Session)(nil).Clone())
}

func TestNextStage(t *testing.T) {
	assert.Equal(t, StageReview, NextStage(StageFacts))
	assert.Equal(t, StageTodayPlan, NextStage(StageReview))
	assert.Equal(t, StageDone, NextStage(StageTodayPlan))
	assert.Equal(t, StageDone, NextStage(StageDone))
}
