// Package app 按配置组装存储、转写、建议方、事件总线和 HTTP 路由
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/Wenfeng-GAO/morning-walk-journal-coach/config"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/domain"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/eventbus"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/handler"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/pkg/database"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/pkg/llm"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/repository"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/router"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/service"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/service/suggester"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/service/transcriber"
	"github.com/Wenfeng-GAO/morning-walk-journal-coach/internal/subscriber"
)

// Options 覆盖按配置选出的协作方，测试时注入替身
type Options struct {
	Suggester   domain.Suggester
	Transcriber domain.Transcriber
}

// App 组装好的服务
type App struct {
	Config   *config.Config
	Dialogue *service.DialogueService
	Bus      *eventbus.SessionEventBus
	Engine   *gin.Engine
}

// Build 根据配置组装服务
func Build(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	sessions, notes, err := buildRepositories(cfg.Database)
	if err != nil {
		return nil, err
	}

	sg := opts.Suggester
	if sg == nil {
		sg, err = buildSuggester(ctx, cfg.LLM)
		if err != nil {
			return nil, err
		}
	}

	tr := opts.Transcriber
	if tr == nil {
		tr = buildTranscriber(cfg.STT)
	}

	bus := eventbus.NewSessionEventBus()
	subscriber.NewNoteSubscriber(notes).Register(bus)

	dialogue := service.NewDialogueService(sessions, notes, tr, sg, bus)
	engine := router.Setup(cfg, handler.NewSessionHandler(dialogue))

	return &App{
		Config:   cfg,
		Dialogue: dialogue,
		Bus:      bus,
		Engine:   engine,
	}, nil
}

func buildRepositories(cfg config.DatabaseConfig) (repository.SessionRepository, repository.NoteRepository, error) {
	switch cfg.Type {
	case "", "memory":
		klog.V(6).Infof("使用内存存储")
		return repository.NewMemorySessionRepository(), repository.NewMemoryNoteRepository(), nil
	case "sqlite", "mysql":
		if cfg.Type == "sqlite" {
			if dir := filepath.Dir(cfg.DSN); dir != "" && dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, nil, fmt.Errorf("create data directory: %w", err)
				}
			}
		}
		db, err := database.InitDB(cfg.Type, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("init %s database: %w", cfg.Type, err)
		}
		klog.V(6).Infof("使用数据库存储: type=%s", cfg.Type)
		return repository.NewSessionRepository(db), repository.NewNoteRepository(db), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

func buildSuggester(ctx context.Context, cfg config.LLMConfig) (domain.Suggester, error) {
	switch cfg.Mode {
	case "", config.LLMModeNoop:
		return suggester.Noop{}, nil
	case config.LLMModeMock:
		return suggester.Echo{}, nil
	case config.LLMModeOpenAI:
		clientCfg, err := resolveLLMClient(cfg)
		if err != nil {
			return nil, err
		}
		klog.V(6).Infof("使用 LLM 建议方: backend=%s, model=%s, baseURL=%s", cfg.Backend, clientCfg.Model, clientCfg.BaseURL)
		if cfg.Backend == config.LLMBackendEino {
			client, err := llm.NewEinoClient(ctx, clientCfg)
			if err != nil {
				return nil, fmt.Errorf("create eino chat model: %w", err)
			}
			return suggester.NewLLM(client), nil
		}
		return suggester.NewLLM(llm.NewClient(clientCfg)), nil
	default:
		return nil, fmt.Errorf("unsupported llm mode %q", cfg.Mode)
	}
}

// resolveLLMClient 优先使用直接配置的 key，否则读取多提供商配置文件
func resolveLLMClient(cfg config.LLMConfig) (llm.ClientConfig, error) {
	clientCfg := llm.ClientConfig{
		BaseURL:   cfg.APIURL,
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.Timeout,
	}
	if clientCfg.APIKey != "" {
		if clientCfg.Model == "" {
			clientCfg.Model = config.DefaultLLMModel
		}
		if clientCfg.BaseURL == "" {
			clientCfg.BaseURL = config.DefaultLLMBaseURL
		}
		return clientCfg, nil
	}

	loaded, err := config.LoadLLMConfigFromFile(cfg.ConfigPath)
	if err != nil {
		return llm.ClientConfig{}, fmt.Errorf("llm mode openai requires an api key: %w", err)
	}
	clientCfg.APIKey = loaded.Resolved.APIKey
	clientCfg.Model = loaded.Resolved.Model
	clientCfg.BaseURL = loaded.Resolved.BaseURL
	if clientCfg.BaseURL == "" {
		clientCfg.BaseURL = config.DefaultLLMBaseURL
	}
	return clientCfg, nil
}

func buildTranscriber(cfg config.STTConfig) domain.Transcriber {
	switch cfg.Mode {
	case config.LLMModeMock:
		return transcriber.NewFixed()
	case config.LLMModeOpenAI:
		klog.V(6).Infof("使用语音转写: model=%s, baseURL=%s", cfg.Model, cfg.APIURL)
		return transcriber.NewWhisper(transcriber.WhisperConfig{
			BaseURL: cfg.APIURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})
	default:
		return transcriber.Noop{}
	}
}
