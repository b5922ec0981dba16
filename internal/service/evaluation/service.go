package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
	"github.com/zhouzirui/ai-interviewer/backend/internal/service/ai"
)

// 结构化输出需要 v1beta 接口。
const structuredOutputAPIVersion = "v1beta"

// ErrEvaluationFailed is returned when the model output is not a complete
// feedback report. Callers should ask the user to retry.
var ErrEvaluationFailed = errors.New("evaluation failed, please retry")

// Service scores finished interviews.
type Service struct {
	ai     *ai.Service
	schema *genai.Schema
	logger *zap.Logger
}

// NewService builds the evaluation service and its response schema.
func NewService(aiSvc *ai.Service, logger *zap.Logger) (*Service, error) {
	responseSchema, err := ai.SchemaFor[interview.Feedback]()
	if err != nil {
		return nil, fmt.Errorf("failed to build feedback schema: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ai: aiSvc, schema: responseSchema, logger: logger}, nil
}

// GetFeedback evaluates the transcript and returns the parsed report.
func (s *Service) GetFeedback(ctx context.Context, history []interview.Message, cfg interview.Config) (interview.Feedback, error) {
	handle, input, err := s.prepare(ctx, history, cfg)
	if err != nil {
		return interview.Feedback{}, err
	}

	reply, err := handle.Generate(ctx, input)
	if err != nil {
		return interview.Feedback{}, fmt.Errorf("failed to generate feedback: %w", err)
	}

	feedback, err := ParseFeedback(reply.Content)
	if err != nil {
		s.logger.Warn("failed to parse evaluation output",
			zap.String("model", handle.ModelID()),
			zap.Int("length", len(reply.Content)),
			zap.Error(err),
		)
		return interview.Feedback{}, err
	}

	s.logger.Info("interview evaluated",
		zap.String("model", handle.ModelID()),
		zap.Float64("score", feedback.Score),
	)
	return feedback, nil
}

// StreamFeedback streams the raw JSON text of the report as it is generated.
func (s *Service) StreamFeedback(ctx context.Context, history []interview.Message, cfg interview.Config) (*schema.StreamReader[*schema.Message], error) {
	handle, input, err := s.prepare(ctx, history, cfg)
	if err != nil {
		return nil, err
	}

	stream, err := handle.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream feedback: %w", err)
	}
	return stream, nil
}

func (s *Service) prepare(ctx context.Context, history []interview.Message, cfg interview.Config) (*ai.ChatModel, []*schema.Message, error) {
	if _, err := interview.PhaseOf(history).Advance(interview.EventFinish); err != nil {
		return nil, nil, err
	}

	handle, err := s.ai.Model(ctx, s.ai.Config().EvaluationModel, ai.ModelOptions{
		SystemInstruction: evaluatorPrompt,
		ResponseSchema:    s.schema,
		ResponseMIMEType:  "application/json",
		APIVersion:        structuredOutputAPIVersion,
	})
	if err != nil {
		return nil, nil, err
	}
	return handle, []*schema.Message{schema.UserMessage(BuildPrompt(history, cfg))}, nil
}

type rawFeedback struct {
	Score          *float64  `json:"score"`
	Pros           *[]string `json:"pros"`
	Cons           *[]string `json:"cons"`
	Suggestions    *[]string `json:"suggestions"`
	OverallSummary *string   `json:"overallSummary"`
}

// ParseFeedback decodes model output into a Feedback. Every field must be
// present; no repair is attempted.
func ParseFeedback(text string) (interview.Feedback, error) {
	var raw rawFeedback
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return interview.Feedback{}, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}

	var missing []string
	if raw.Score == nil {
		missing = append(missing, "score")
	}
	if raw.Pros == nil {
		missing = append(missing, "pros")
	}
	if raw.Cons == nil {
		missing = append(missing, "cons")
	}
	if raw.Suggestions == nil {
		missing = append(missing, "suggestions")
	}
	if raw.OverallSummary == nil {
		missing = append(missing, "overallSummary")
	}
	if len(missing) > 0 {
		return interview.Feedback{}, fmt.Errorf("%w: missing fields %s", ErrEvaluationFailed, strings.Join(missing, ", "))
	}

	feedback := interview.Feedback{
		Score:          *raw.Score,
		Pros:           *raw.Pros,
		Cons:           *raw.Cons,
		Suggestions:    *raw.Suggestions,
		OverallSummary: *raw.OverallSummary,
	}
	if err := feedback.Validate(); err != nil {
		return interview.Feedback{}, fmt.Errorf("%w: %w", ErrEvaluationFailed, err)
	}
	return feedback, nil
}
