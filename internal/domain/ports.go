package domain

import "context"

// Transcriber 语音转写，把音频地址转换为文本
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// SuggestionInput 请求下一问建议时提供的上下文
type SuggestionInput struct {
	Session              *Session
	LatestUserTranscript string
	Fallback             NextQuestion
}

// Suggester 可选的 LLM 建议方。
// 无法给出可信结果时返回 nil；返回的 error 由调用方按 nil 处理。
type Suggester interface {
	NextQuestion(ctx context.Context, in SuggestionInput) (*NextQuestion, error)
	SummarizeToNoteInput(ctx context.Context, s *Session) (*NoteInput, error)
}
