package chat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/chat"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/ai"
)

// leadingUserTurn 在历史以模型消息开头时补在最前面。
const leadingUserTurn = "你好"

var (
	ErrNoMessages         = errors.New("messages are required")
	ErrLastMessageNotUser = errors.New("last message must be from the user")
	ErrInvalidAttachment  = errors.New("invalid attachment")
)

// Service handles general, optionally multimodal, chat.
type Service struct {
	ai     *ai.Service
	logger *zap.Logger
}

// NewService creates a chat service.
func NewService(aiSvc *ai.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ai: aiSvc, logger: logger}
}

// Stream sends the conversation to modelID and streams the reply. The last
// message is the current user turn; the rest is history.
func (s *Service) Stream(ctx context.Context, modelID string, messages []chat.Message) (*schema.StreamReader[*schema.Message], error) {
	input, err := BuildInput(messages)
	if err != nil {
		return nil, err
	}

	handle, err := s.ai.Model(ctx, modelID, ai.ModelOptions{})
	if err != nil {
		return nil, err
	}

	stream, err := handle.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream chat reply: %w", err)
	}

	s.logger.Debug("chat stream opened",
		zap.String("model", handle.ModelID()),
		zap.String("credential", string(handle.Credential())),
		zap.Int("messages", len(input)),
	)
	return stream, nil
}

// Generate is the non-streaming variant of Stream.
func (s *Service) Generate(ctx context.Context, modelID string, messages []chat.Message) (string, error) {
	input, err := BuildInput(messages)
	if err != nil {
		return "", err
	}

	handle, err := s.ai.Model(ctx, modelID, ai.ModelOptions{})
	if err != nil {
		return "", err
	}

	reply, err := handle.Generate(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to generate chat reply: %w", err)
	}
	return reply.Content, nil
}

// BuildInput converts client messages into model input. Error notices are
// skipped and attachments become image parts after the text.
func BuildInput(messages []chat.Message) ([]*schema.Message, error) {
	out := make([]*schema.Message, 0, len(messages)+1)
	for _, m := range messages {
		if m.IsError {
			continue
		}
		msg, err := toSchemaMessage(m)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			out = append(out, msg)
		}
	}

	if len(out) == 0 {
		return nil, ErrNoMessages
	}
	if out[len(out)-1].Role != schema.User {
		return nil, ErrLastMessageNotUser
	}
	return ai.EnsureLeadingUser(out, leadingUserTurn), nil
}

func toSchemaMessage(m chat.Message) (*schema.Message, error) {
	if strings.TrimSpace(m.Content) == "" && len(m.Attachments) == 0 {
		return nil, nil
	}
	if m.Role != chat.RoleUser {
		return schema.AssistantMessage(m.Content, nil), nil
	}

	msg := schema.UserMessage(m.Content)
	for i, att := range m.Attachments {
		if err := validateAttachment(att); err != nil {
			return nil, fmt.Errorf("%w %d: %v", ErrInvalidAttachment, i, err)
		}
		msg.MultiContent = append(msg.MultiContent, schema.ChatMessagePart{
			Type: schema.ChatMessagePartTypeImageURL,
			ImageURL: &schema.ChatMessageImageURL{
				URL:      ai.DataURL(att.MIMEType, att.Data),
				MIMEType: att.MIMEType,
			},
		})
	}
	return msg, nil
}

func validateAttachment(att chat.Attachment) error {
	if !strings.HasPrefix(att.MIMEType, "image/") {
		return fmt.Errorf("unsupported mime type %q", att.MIMEType)
	}
	if _, err := base64.StdEncoding.DecodeString(att.Data); err != nil {
		return errors.New("data is not valid base64")
	}
	return nil
}
