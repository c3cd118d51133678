package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	STT      STTConfig      `yaml:"stt"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // memory, sqlite, mysql
	DSN  string `yaml:"dsn"`
}

type LLMConfig struct {
	Mode       string        `yaml:"mode"`    // noop, mock, openai
	Backend    string        `yaml:"backend"` // http, eino
	APIURL     string        `yaml:"api_url"`
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	MaxTokens  int           `yaml:"max_tokens"`
	Timeout    time.Duration `yaml:"timeout"`
	ConfigPath string        `yaml:"config_path"` // 多提供商配置文件，APIKey 为空时使用
}

type STTConfig struct {
	Mode    string        `yaml:"mode"` // noop, mock, openai
	APIURL  string        `yaml:"api_url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

const (
	LLMModeNoop   = "noop"
	LLMModeMock   = "mock"
	LLMModeOpenAI = "openai"

	LLMBackendHTTP = "http"
	LLMBackendEino = "eino"

	DefaultLLMModel   = "kimi-k2.5"
	DefaultLLMBaseURL = "https://api.moonshot.cn/v1"
)

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = Load()
	})
	return cfg
}

// Default 内置默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8787",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "memory",
			DSN:  "./data/morning-note.db",
		},
		LLM: LLMConfig{
			Mode:       LLMModeNoop,
			Backend:    LLMBackendHTTP,
			MaxTokens:  2048,
			Timeout:    60 * time.Second,
			ConfigPath: DefaultLLMConfigPath,
		},
		STT: STTConfig{
			Mode:    LLMModeNoop,
			APIURL:  "https://api.openai.com/v1",
			Model:   "whisper-1",
			Timeout: 2 * time.Minute,
		},
	}
}

// Load 读取配置文件并叠加环境变量
func Load() *Config {
	config := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		yaml.Unmarshal(data, config)
	}

	applyEnv(config)
	return config
}

// applyEnv 环境变量优先级高于配置文件
func applyEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		config.Server.Mode = mode
	}

	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	if mode := os.Getenv("LLM_MODE"); mode != "" {
		config.LLM.Mode = mode
	}
	if backend := os.Getenv("LLM_BACKEND"); backend != "" {
		config.LLM.Backend = backend
	}
	if path := os.Getenv("LLM_CONFIG_PATH"); path != "" {
		config.LLM.ConfigPath = path
	}

	// Moonshot(Kimi) 变量作为 OpenAI 变量的兜底
	if apiKey := firstEnv("OPENAI_API_KEY", "MOONSHOT_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if baseURL := firstEnv("OPENAI_BASE_URL", "MOONSHOT_BASE_URL"); baseURL != "" {
		config.LLM.APIURL = baseURL
	}
	if model := firstEnv("OPENAI_MODEL_NAME", "OPENAI_MODEL", "MOONSHOT_MODEL"); model != "" {
		config.LLM.Model = model
	}

	if mode := os.Getenv("STT_MODE"); mode != "" {
		config.STT.Mode = mode
	}
	if apiKey := os.Getenv("STT_API_KEY"); apiKey != "" {
		config.STT.APIKey = apiKey
	}
	if baseURL := os.Getenv("STT_BASE_URL"); baseURL != "" {
		config.STT.APIURL = baseURL
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
