package suggester

import (
	"context"
	"fmt"
	"strings"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/pkg/llm"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/utils"
	"k8s.io/klog/v2"
)

const systemPrompt = "You are a strict JSON response assistant."

// LLM 通过大模型生成下一问和晨记摘要。
// 模型输出不符合约定的 JSON 时返回 nil，由调用方走兜底逻辑。
type LLM struct {
	completer llm.Completer
}

// NewLLM 创建基于 Completer 的建议方
func NewLLM(completer llm.Completer) *LLM {
	return &LLM{completer: completer}
}

type nextQuestionOutput struct {
	NextQuestion     any `json:"nextQuestion"`
	NextQuestionType any `json:"nextQuestionType"`
}

type noteOutput struct {
	SleepAt any   `json:"sleepAt"`
	WakeAt  any   `json:"wakeAt"`
	Facts   []any `json:"facts"`
	Review  any   `json:"review"`
	Top3    []any `json:"top3"`
}

// NextQuestion 请求模型给出下一问
func (l *LLM) NextQuestion(ctx context.Context, in domain.SuggestionInput) (*domain.NextQuestion, error) {
	prompt := strings.Join([]string{
		"你是晨记问答助手。",
		"基于当前会话上下文，输出下一条问题 JSON。",
		"必须只输出 JSON，不要输出解释。",
		"JSON schema:",
		`{"nextQuestion":"string","nextQuestionType":"follow_up|main|finalize"}`,
		"",
		"Fallback next question: " + utils.ToJSON(in.Fallback),
		"Latest user transcript: " + in.LatestUserTranscript,
		"Session transcript:",
		transcriptText(in.Session),
	}, "\n")

	output, err := l.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed nextQuestionOutput
	if err := utils.UnmarshalLLMJSON(output, &parsed); err != nil {
		klog.V(6).Infof("[Suggester] 下一问输出不是合法 JSON: %v", err)
		return nil, nil
	}

	question, ok := parsed.NextQuestion.(string)
	if !ok || strings.TrimSpace(question) == "" {
		return nil, nil
	}
	typ, ok := parsed.NextQuestionType.(string)
	if !ok || !domain.QuestionType(typ).Valid() {
		return nil, nil
	}

	return &domain.NextQuestion{Question: question, Type: domain.QuestionType(typ)}, nil
}

// SummarizeToNoteInput 请求模型把会话总结为晨记结构
func (l *LLM) SummarizeToNoteInput(ctx context.Context, s *domain.Session) (*domain.NoteInput, error) {
	prompt := strings.Join([]string{
		"你是晨记总结助手。",
		"基于会话输出结构化 JSON，总结为 MorningNoteInput。",
		"必须只输出 JSON，不要输出解释。",
		"JSON schema:",
		`{"sleepAt":"HH:mm","wakeAt":"HH:mm","facts":["..."],"review":"...","top3":["...","...","..."]}`,
		"Session transcript:",
		transcriptText(s),
	}, "\n")

	output, err := l.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed noteOutput
	if err := utils.UnmarshalLLMJSON(output, &parsed); err != nil {
		klog.V(6).Infof("[Suggester] 摘要输出不是合法 JSON: %v", err)
		return nil, nil
	}

	sleepAt, ok1 := parsed.SleepAt.(string)
	wakeAt, ok2 := parsed.WakeAt.(string)
	review, ok3 := parsed.Review.(string)
	if !ok1 || !ok2 || !ok3 || parsed.Facts == nil || parsed.Top3 == nil {
		return nil, nil
	}

	top3 := onlyStrings(parsed.Top3)
	if len(top3) == 0 {
		return nil, nil
	}
	if len(top3) > 3 {
		top3 = top3[:3]
	}

	return &domain.NoteInput{
		SleepAt: sleepAt,
		WakeAt:  wakeAt,
		Facts:   onlyStrings(parsed.Facts),
		Review:  review,
		Top3:    top3,
	}, nil
}

func (l *LLM) complete(ctx context.Context, prompt string) (string, error) {
	return l.completer.Chat(ctx, []llm.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
}

func transcriptText(s *domain.Session) string {
	if s == nil {
		return ""
	}
	lines := make([]string, 0, len(s.Transcript))
	for i, m := range s.Transcript {
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, m.Role, m.Text))
	}
	return strings.Join(lines, "\n")
}

func onlyStrings(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
