package utils

import (
	"encoding/json"
	"strings"

	"k8s.io/klog/v2"
)

// ExtractJSON 从 LLM 输出中提取第一个完整的 JSON 对象。
// 兼容 ```json 代码块以及前后夹杂说明文字的情况，字符串内的花括号不参与配对。
func ExtractJSON(content string) string {
	trimmed := strings.TrimSpace(content)

	start := strings.IndexByte(trimmed, '{')
	if start < 0 {
		return trimmed
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(trimmed); i++ {
		ch := trimmed[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return trimmed[start : i+1]
			}
		}
	}

	klog.V(6).Infof("[ExtractJSON] 未找到闭合的 JSON 对象，返回原始内容")
	return trimmed
}

// UnmarshalLLMJSON 提取并解析 LLM 输出中的 JSON 对象
func UnmarshalLLMJSON(content string, v any) error {
	return json.Unmarshal([]byte(ExtractJSON(content)), v)
}

func ToJSON(v any) string {
	jsonData, err := json.Marshal(v)
	if err != nil {
		klog.Errorf("JSON序列化失败: %v", err)
		return ""
	}
	return string(jsonData)
}
