package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"k8s.io/klog/v2"
)

// maxAudioBytes 单条语音的大小上限
const maxAudioBytes = 25 << 20

// WhisperConfig OpenAI 兼容转写服务配置
type WhisperConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Whisper 下载音频后调用 /audio/transcriptions
type Whisper struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewWhisper 创建转写客户端
func NewWhisper(cfg WhisperConfig) *Whisper {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}
	return &Whisper{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Transcribe 实现 domain.Transcriber
func (w *Whisper) Transcribe(ctx context.Context, audioURL string) (string, error) {
	klog.V(6).Infof("[Whisper] 开始转写: url=%s", audioURL)

	audio, err := w.download(ctx, audioURL)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", w.model); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", fileName(audioURL))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("transcription failed with status %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode transcription: %w", err)
	}

	klog.V(6).Infof("[Whisper] 转写完成: chars=%d", len([]rune(out.Text)))
	return strings.TrimSpace(out.Text), nil
}

func (w *Whisper) download(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid audio url: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download audio failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download audio failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read audio failed: %w", err)
	}
	if len(data) > maxAudioBytes {
		return nil, fmt.Errorf("audio exceeds %d bytes", maxAudioBytes)
	}
	return data, nil
}

func fileName(audioURL string) string {
	u, err := url.Parse(audioURL)
	if err != nil {
		return "audio"
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "audio"
	}
	return name
}
