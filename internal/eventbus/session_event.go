package eventbus

import "github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"

type SessionEventType string

const (
	SessionEventStarted   SessionEventType = "SessionStarted"
	SessionEventAnswered  SessionEventType = "AnswerAccepted"
	SessionEventFinalized SessionEventType = "SessionFinalized"
)

// SessionEvent 会话生命周期事件
type SessionEvent struct {
	Type         SessionEventType
	SessionID    string
	UserID       string
	Stage        domain.Stage
	TurnIndex    int
	QuestionType domain.QuestionType
	InputType    domain.InputType
	Markdown     string // 仅 finalize
	NoteSource   string // llm/fallback，仅 finalize
}

type SessionEventBus = Bus[SessionEventType, SessionEvent]

func NewSessionEventBus() *SessionEventBus {
	return NewBus[SessionEventType, SessionEvent]()
}
