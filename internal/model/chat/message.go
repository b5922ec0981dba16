package chat

// 消息角色。
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Attachment 是随消息上传的内联附件，目前只有图片。
type Attachment struct {
	MIMEType string `json:"mimeType"`
	// Data 为 base64 编码的原始内容，不带 data URL 前缀。
	Data string `json:"data"`
}

// Message is one turn of a general chat conversation.
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	IsError     bool         `json:"isError,omitempty"`
}

// Request is the payload of the chat streaming endpoints.
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	// APIKey 仅在 WebSocket 首帧中使用，浏览器无法为 WebSocket 设置自定义请求头。
	APIKey string `json:"apiKey,omitempty"`
}
