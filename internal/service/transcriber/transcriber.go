package transcriber

import (
	"context"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
)

// MockTranscript Fixed 默认返回的文本
const MockTranscript = "mock transcript from audio"

// Noop 不做转写，始终返回空字符串
type Noop struct{}

func (Noop) Transcribe(ctx context.Context, audioURL string) (string, error) {
	return "", nil
}

// Fixed 返回固定文本，用于本地联调和测试
type Fixed struct {
	Text string
}

// NewFixed 创建返回 MockTranscript 的转写器
func NewFixed() *Fixed {
	return &Fixed{Text: MockTranscript}
}

func (f *Fixed) Transcribe(ctx context.Context, audioURL string) (string, error) {
	return f.Text, nil
}

var (
	_ domain.Transcriber = Noop{}
	_ domain.Transcriber = (*Fixed)(nil)
	_ domain.Transcriber = (*Whisper)(nil)
)
