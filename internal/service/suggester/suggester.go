// Package suggester 提供 domain.Suggester 的几种实现：
// Noop 永远拒绝建议，Echo 原样返回兜底问题，LLM 调用 OpenAI 兼容模型。
package suggester

import (
	"context"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
)

// Noop 不给出任何建议，对话完全由问题策略驱动
type Noop struct{}

func (Noop) NextQuestion(ctx context.Context, in domain.SuggestionInput) (*domain.NextQuestion, error) {
	return nil, nil
}

func (Noop) SummarizeToNoteInput(ctx context.Context, s *domain.Session) (*domain.NoteInput, error) {
	return nil, nil
}

// Echo 把兜底问题当作建议返回，摘要交给确定性提取
type Echo struct{}

func (Echo) NextQuestion(ctx context.Context, in domain.SuggestionInput) (*domain.NextQuestion, error) {
	next := in.Fallback
	return &next, nil
}

func (Echo) SummarizeToNoteInput(ctx context.Context, s *domain.Session) (*domain.NoteInput, error) {
	return nil, nil
}

var (
	_ domain.Suggester = Noop{}
	_ domain.Suggester = Echo{}
	_ domain.Suggester = (*LLM)(nil)
)
