package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

var _ model.ChatModel = (*ChatModel)(nil)

// ErrToolsUnsupported 工具调用不在本服务范围内。
var ErrToolsUnsupported = errors.New("tool calling is not supported")

// ChatModel is a model handle bound to one provider, model ID and generation
// config. It plugs into eino chains like any other chat model.
type ChatModel struct {
	provider   Provider
	modelID    string
	credential Credential
	system     string
	config     genai.GenerateContentConfig
}

// ModelID returns the resolved model identifier.
func (m *ChatModel) ModelID() string {
	return m.modelID
}

// Credential reports which credential the handle was built with.
func (m *ChatModel) Credential() Credential {
	return m.credential
}

// Generate sends the conversation and returns the whole reply.
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	contents, cfg, err := m.prepare(input, opts...)
	if err != nil {
		return nil, err
	}

	resp, err := m.provider.GenerateContent(ctx, m.modelID, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("generate content with %s: %w", m.modelID, err)
	}
	return schema.AssistantMessage(resp.Text(), nil), nil
}

// Stream pumps the provider stream into an eino stream reader. Closing the
// reader stops the pump and the upstream iterator.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	contents, cfg, err := m.prepare(input, opts...)
	if err != nil {
		return nil, err
	}

	seq := m.provider.GenerateContentStream(ctx, m.modelID, contents, cfg)
	sr, sw := schema.Pipe[*schema.Message](8)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				sw.Send(nil, fmt.Errorf("panic in gemini stream: %v", r))
			}
			sw.Close()
		}()

		for resp, err := range seq {
			if err != nil {
				sw.Send(nil, fmt.Errorf("stream content with %s: %w", m.modelID, err))
				return
			}
			if resp == nil {
				continue
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if closed := sw.Send(schema.AssistantMessage(text, nil), nil); closed {
				return
			}
		}
	}()

	return sr, nil
}

// BindTools implements model.ChatModel.
func (m *ChatModel) BindTools(_ []*schema.ToolInfo) error {
	return ErrToolsUnsupported
}

func (m *ChatModel) prepare(input []*schema.Message, opts ...model.Option) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	contents, system, err := toContents(input)
	if err != nil {
		return nil, nil, err
	}
	if len(contents) == 0 {
		return nil, nil, errors.New("no content to send")
	}

	cfg := m.config
	instructions := make([]string, 0, 2)
	if m.system != "" {
		instructions = append(instructions, m.system)
	}
	if system != "" {
		instructions = append(instructions, system)
	}
	if len(instructions) > 0 {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(strings.Join(instructions, "\n\n"))},
		}
	}

	common := model.GetCommonOptions(&model.Options{}, opts...)
	if common.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*common.MaxTokens)
	}
	if common.Temperature != nil {
		t := *common.Temperature
		cfg.Temperature = &t
	}

	return contents, &cfg, nil
}

// toContents maps eino messages to Gemini contents. System messages are
// collected separately because Gemini takes them as a system instruction.
func toContents(input []*schema.Message) ([]*genai.Content, string, error) {
	contents := make([]*genai.Content, 0, len(input))
	var system []string

	for _, msg := range input {
		if msg == nil {
			continue
		}

		var role string
		switch msg.Role {
		case schema.System:
			if msg.Content != "" {
				system = append(system, msg.Content)
			}
			continue
		case schema.User:
			role = string(genai.RoleUser)
		case schema.Assistant:
			role = string(genai.RoleModel)
		default:
			return nil, "", fmt.Errorf("unsupported message role %q", msg.Role)
		}

		parts, err := toParts(msg)
		if err != nil {
			return nil, "", err
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	return contents, strings.Join(system, "\n\n"), nil
}

// toParts 文本在前，附件按原顺序追加在后。
func toParts(msg *schema.Message) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, 1+len(msg.MultiContent))
	if msg.Content != "" {
		parts = append(parts, genai.NewPartFromText(msg.Content))
	}

	for _, part := range msg.MultiContent {
		switch part.Type {
		case schema.ChatMessagePartTypeText:
			if part.Text != "" {
				parts = append(parts, genai.NewPartFromText(part.Text))
			}
		case schema.ChatMessagePartTypeImageURL:
			if part.ImageURL == nil {
				continue
			}
			p, err := imagePart(part.ImageURL)
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
		default:
			return nil, fmt.Errorf("unsupported message part %q", part.Type)
		}
	}
	return parts, nil
}

func imagePart(img *schema.ChatMessageImageURL) (*genai.Part, error) {
	if !strings.HasPrefix(img.URL, "data:") {
		return genai.NewPartFromURI(img.URL, img.MIMEType), nil
	}

	mimeType, data, err := DecodeDataURL(img.URL)
	if err != nil {
		return nil, err
	}
	if img.MIMEType != "" {
		mimeType = img.MIMEType
	}
	return genai.NewPartFromBytes(data, mimeType), nil
}

// DataURL encodes base64 data and its MIME type as a data URL.
func DataURL(mimeType, b64 string) string {
	return "data:" + mimeType + ";base64," + b64
}

// DecodeDataURL parses a base64 data URL.
func DecodeDataURL(u string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", nil, errors.New("invalid data url: expected base64 payload")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid data url: %w", err)
	}
	return strings.TrimSuffix(header, ";base64"), data, nil
}
