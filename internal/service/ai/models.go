package ai

import "strings"

const (
	generateContentAction = "generateContent"
	modelNamePrefix       = "models/"
)

// ModelInfo is the model description returned to the frontend.
type ModelInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// 获取模型列表失败时的兜底列表，只保留默认凭证允许的 Flash 系列。
var fallbackModels = []ModelInfo{
	{ID: "gemini-2.5-flash", DisplayName: "Gemini 2.5 Flash", Description: "高性价比的极速模型，性能与速度的最佳平衡"},
	{ID: "gemini-2.5-flash-lite", DisplayName: "Gemini 2.5 Flash-Lite", Description: "更轻量的 Flash 模型，适合低延迟场景"},
}

// FallbackModels returns a copy of the built-in model list.
func FallbackModels() []ModelInfo {
	out := make([]ModelInfo, len(fallbackModels))
	copy(out, fallbackModels)
	return out
}

// TrimModelName drops the "models/" resource prefix.
func TrimModelName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), modelNamePrefix)
}

func supportsGenerate(m RemoteModel) bool {
	for _, action := range m.SupportedActions {
		if action == generateContentAction {
			return true
		}
	}
	return false
}

// inFamily 判断模型是否属于默认凭证允许的低成本系列。
func inFamily(id, family string, versions []string) bool {
	if family != "" && !strings.Contains(id, family) {
		return false
	}
	if len(versions) == 0 {
		return true
	}
	for _, v := range versions {
		if strings.Contains(id, v) {
			return true
		}
	}
	return false
}
