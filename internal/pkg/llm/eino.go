package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"k8s.io/klog/v2"
)

// EinoClient 基于 eino ChatModel 的补全客户端
type EinoClient struct {
	chatModel model.BaseChatModel
}

// NewEinoClient 使用 eino-ext 的 OpenAI 兼容模型创建客户端
func NewEinoClient(ctx context.Context, cfg ClientConfig) (*EinoClient, error) {
	klog.V(6).Infof("[EinoClient] 创建 OpenAI ChatModel: model=%s, baseURL=%s", cfg.Model, cfg.BaseURL)

	mc := &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}
	if cfg.BaseURL != "" {
		mc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		mc.MaxTokens = &maxTokens
	}

	chatModel, err := openai.NewChatModel(ctx, mc)
	if err != nil {
		klog.Errorf("[EinoClient] 创建 ChatModel 失败: %v", err)
		return nil, err
	}
	return &EinoClient{chatModel: chatModel}, nil
}

// NewEinoClientWithModel 包装任意 eino ChatModel
func NewEinoClientWithModel(chatModel model.BaseChatModel) *EinoClient {
	return &EinoClient{chatModel: chatModel}
}

// Chat 实现 Completer
func (c *EinoClient) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	input := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			input = append(input, schema.SystemMessage(m.Content))
		case "assistant":
			input = append(input, schema.AssistantMessage(m.Content, nil))
		default:
			input = append(input, schema.UserMessage(m.Content))
		}
	}

	klog.V(6).Infof("[EinoClient] Generate 开始: messageCount=%d", len(input))
	resp, err := c.chatModel.Generate(ctx, input)
	if err != nil {
		return "", fmt.Errorf("eino generate failed: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyContent
	}
	return resp.Content, nil
}
