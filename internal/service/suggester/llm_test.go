package suggester

import (
	"context"
	"errors"
	"testing"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply    string
	err      error
	messages []llm.ChatMessage
}

func (f *fakeCompleter) Chat(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	f.messages = messages
	return f.reply, f.err
}

func sampleInput() domain.SuggestionInput {
	s := domain.NewSession("u-1", "daily-v1")
	s.AppendUserAnswer("昨天推进了需求")
	return domain.SuggestionInput{
		Session:              s,
		LatestUserTranscript: "昨天推进了需求",
		Fallback:             domain.NextQuestion{Question: "这件事的具体进展是什么？", Type: domain.QuestionFollowUp},
	}
}

func TestLLMNextQuestion(t *testing.T) {
	fc := &fakeCompleter{reply: "```json\n{\"nextQuestion\":\"Kimi下一问\",\"nextQuestionType\":\"follow_up\"}\n```"}
	s := NewLLM(fc)

	next, err := s.NextQuestion(context.Background(), sampleInput())

	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "Kimi下一问", next.Question)
	assert.Equal(t, domain.QuestionFollowUp, next.Type)

	require.Len(t, fc.messages, 2)
	assert.Equal(t, "system", fc.messages[0].Role)
	assert.Contains(t, fc.messages[1].Content, "Latest user transcript: 昨天推进了需求")
	assert.Contains(t, fc.messages[1].Content, "2. user: 昨天推进了需求")
	assert.Contains(t, fc.messages[1].Content, `"nextQuestionType":"follow_up"`)
}

func TestLLMNextQuestion_Declines(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"非法类型", `{"nextQuestion":"q","nextQuestionType":"summary"}`},
		{"缺少类型", `{"nextQuestion":"q"}`},
		{"问题不是字符串", `{"nextQuestion":1,"nextQuestionType":"main"}`},
		{"空问题", `{"nextQuestion":"  ","nextQuestionType":"main"}`},
		{"不是 JSON", "我觉得可以继续追问"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := NewLLM(&fakeCompleter{reply: tt.reply}).NextQuestion(context.Background(), sampleInput())
			assert.NoError(t, err)
			assert.Nil(t, next)
		})
	}
}

func TestLLMNextQuestion_PropagatesError(t *testing.T) {
	_, err := NewLLM(&fakeCompleter{err: errors.New("llm unavailable")}).NextQuestion(context.Background(), sampleInput())
	assert.Error(t, err)
}

func TestLLMSummarize(t *testing.T) {
	fc := &fakeCompleter{reply: `{"sleepAt":"23:00","wakeAt":"06:30","facts":["[事业] 事实：LLM提炼事实", 3],"review":"LLM提炼复盘","top3":["LLM任务1","LLM任务2","LLM任务3","多余"]}`}

	note, err := NewLLM(fc).SummarizeToNoteInput(context.Background(), sampleInput().Session)

	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "23:00", note.SleepAt)
	assert.Equal(t, "06:30", note.WakeAt)
	assert.Equal(t, []string{"[事业] 事实：LLM提炼事实"}, note.Facts)
	assert.Equal(t, "LLM提炼复盘", note.Review)
	assert.Equal(t, []string{"LLM任务1", "LLM任务2", "LLM任务3"}, note.Top3)
}

func TestLLMSummarize_Declines(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"top3 为空", `{"sleepAt":"23:00","wakeAt":"06:30","facts":[],"review":"r","top3":[]}`},
		{"top3 全部非字符串", `{"sleepAt":"23:00","wakeAt":"06:30","facts":[],"review":"r","top3":[1,2]}`},
		{"缺少 sleepAt", `{"wakeAt":"06:30","facts":[],"review":"r","top3":["a"]}`},
		{"facts 缺失", `{"sleepAt":"23:00","wakeAt":"06:30","review":"r","top3":["a"]}`},
		{"facts 类型错误", `{"sleepAt":"23:00","wakeAt":"06:30","facts":"x","review":"r","top3":["a"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note, err := NewLLM(&fakeCompleter{reply: tt.reply}).SummarizeToNoteInput(context.Background(), sampleInput().Session)
			assert.NoError(t, err)
			assert.Nil(t, note)
		})
	}
}

func TestNoopAndEcho(t *testing.T) {
	ctx := context.Background()
	in := sampleInput()

	next, err := Noop{}.NextQuestion(ctx, in)
	assert.NoError(t, err)
	assert.Nil(t, next)

	next, err = Echo{}.NextQuestion(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, in.Fallback, *next)

	note, err := Echo{}.SummarizeToNoteInput(ctx, in.Session)
	assert.NoError(t, err)
	assert.Nil(t, note)
}
