package interview

// 消息角色，与 Gemini 的 content role 保持一致。
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// 消息类型。
const (
	MessageTypeText   = "text"
	MessageTypeChoice = "choice"
)

// Message is one turn of the interview transcript. The client owns the
// transcript and sends it in full with every call.
type Message struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	// Type 与 Options 用于面试官给出选择题时的结构化展示。
	Type    string   `json:"type,omitempty"`
	Options []string `json:"options,omitempty"`
	// IsError 标记前端插入的错误提示，这类消息不会发给模型。
	IsError bool `json:"isError,omitempty"`
}
