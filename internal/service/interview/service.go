package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/ai"
)

var ErrEmptyMessage = errors.New("message is required")

// Service runs the interviewer side of a mock interview.
type Service struct {
	ai       *ai.Service
	template prompt.ChatTemplate
	logger   *zap.Logger
}

// NewService creates an interview service on top of the AI adapter.
func NewService(aiSvc *ai.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ai: aiSvc,
		template: prompt.FromMessages(
			schema.FString,
			schema.MessagesPlaceholder("history", true),
			schema.UserMessage("{query}"),
		),
		logger: logger,
	}
}

// StartInterview produces the interviewer's opening turn.
func (s *Service) StartInterview(ctx context.Context, cfg interview.Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if _, err := interview.PhaseOf(nil).Advance(interview.EventStart); err != nil {
		return "", err
	}

	text, err := s.run(ctx, cfg, nil, OpeningGreeting)
	if err != nil {
		return "", fmt.Errorf("failed to start interview: %w", err)
	}

	s.logger.Info("interview started",
		zap.String("job_title", cfg.JobTitle),
		zap.String("interview_type", cfg.InterviewType),
		zap.Int("length", len(text)),
	)
	return text, nil
}

// SendMessage sends the candidate's answer and returns the interviewer's next turn.
func (s *Service) SendMessage(ctx context.Context, history []interview.Message, message string, cfg interview.Config) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	if _, err := interview.PhaseOf(history).Advance(interview.EventReply); err != nil {
		return "", err
	}

	text, err := s.run(ctx, cfg, AdaptHistory(history), message)
	if err != nil {
		return "", fmt.Errorf("failed to send interview message: %w", err)
	}

	s.logger.Debug("interview reply generated",
		zap.Int("history", len(history)),
		zap.Int("length", len(text)),
	)
	return text, nil
}

func (s *Service) run(ctx context.Context, cfg interview.Config, history []*schema.Message, query string) (string, error) {
	opts := ai.ModelOptions{MaxOutputTokens: s.ai.Config().MaxOutputTokens}
	if strings.TrimSpace(cfg.JobTitle) != "" {
		opts.SystemInstruction = BuildSystemPrompt(cfg)
	}

	handle, err := s.ai.Model(ctx, "", opts)
	if err != nil {
		return "", err
	}

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(s.template)
	chain.AppendChatModel(handle)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to compile interview chain: %w", err)
	}

	reply, err := runnable.Invoke(ctx, map[string]any{
		"history": history,
		"query":   query,
	})
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

// AdaptHistory maps the client transcript to chat messages. Error notices are
// dropped and a leading model turn gets the opening greeting in front of it.
func AdaptHistory(history []interview.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(history)+1)
	for _, m := range history {
		if m.IsError || strings.TrimSpace(m.Text) == "" {
			continue
		}
		if m.Role == interview.RoleUser {
			out = append(out, schema.UserMessage(m.Text))
		} else {
			out = append(out, schema.AssistantMessage(m.Text, nil))
		}
	}
	return ai.EnsureLeadingUser(out, OpeningGreeting)
}
