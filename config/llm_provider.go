package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLLMConfigPath 多提供商配置文件默认位置
const DefaultLLMConfigPath = "config/llm.local.json"

// ProviderConfig 单个 OpenAI 兼容提供商
type ProviderConfig struct {
	Model   string `yaml:"model" json:"model"`
	APIKey  string `yaml:"api_key" json:"api_key"`
	BaseURL string `yaml:"base_url" json:"base_url"`
}

// LLMProviderFile 多提供商配置文件结构，JSON 与 YAML 均可
type LLMProviderFile struct {
	ActiveProvider string                    `yaml:"active_provider"`
	Providers      map[string]ProviderConfig `yaml:"providers"`
}

// LoadedLLMConfig 解析后的多提供商配置
type LoadedLLMConfig struct {
	ActiveProvider string
	Providers      map[string]ProviderConfig
	Resolved       ProviderConfig
}

// LoadLLMConfigFromFile 读取并校验多提供商配置文件
func LoadLLMConfigFromFile(path string) (*LoadedLLMConfig, error) {
	filePath := path
	if !filepath.IsAbs(filePath) {
		abs, err := filepath.Abs(filePath)
		if err == nil {
			filePath = abs
		}
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("llm config file not found: %s", filePath)
		}
		return nil, fmt.Errorf("read llm config file %s: %w", filePath, err)
	}

	var file LLMProviderFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid content in llm config file %s: %w", filePath, err)
	}

	if issues := file.validate(); len(issues) > 0 {
		return nil, fmt.Errorf("invalid llm config schema in %s: %s", filePath, strings.Join(issues, "; "))
	}

	active, ok := file.Providers[file.ActiveProvider]
	if !ok {
		return nil, fmt.Errorf("active_provider '%s' not found in providers for %s", file.ActiveProvider, filePath)
	}

	return &LoadedLLMConfig{
		ActiveProvider: file.ActiveProvider,
		Providers:      file.Providers,
		Resolved:       active,
	}, nil
}

func (f *LLMProviderFile) validate() []string {
	var issues []string
	if f.ActiveProvider == "" {
		issues = append(issues, "active_provider: required")
	}

	names := make([]string, 0, len(f.Providers))
	for name := range f.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := f.Providers[name]
		if p.Model == "" {
			issues = append(issues, fmt.Sprintf("providers.%s.model: required", name))
		}
		if p.APIKey == "" {
			issues = append(issues, fmt.Sprintf("providers.%s.api_key: required", name))
		}
		if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, fmt.Sprintf("providers.%s.base_url: invalid url", name))
		}
	}
	return issues
}
