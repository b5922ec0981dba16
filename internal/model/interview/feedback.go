package interview

import (
	"errors"
	"fmt"
)

// ErrInvalidFeedback 评估报告不合法。
var ErrInvalidFeedback = errors.New("invalid feedback")

// Feedback is the structured evaluation of a finished interview. The JSON
// schema sent to the model is generated from this struct.
type Feedback struct {
	Score          float64  `json:"score" jsonschema:"description=综合评分 0-100"`
	Pros           []string `json:"pros" jsonschema:"description=优点列表"`
	Cons           []string `json:"cons" jsonschema:"description=不足之处列表"`
	Suggestions    []string `json:"suggestions" jsonschema:"description=改进建议列表"`
	OverallSummary string   `json:"overallSummary" jsonschema:"description=综合总结"`
}

// Validate 校验分数范围。
func (f Feedback) Validate() error {
	if f.Score < 0 || f.Score > 100 {
		return fmt.Errorf("%w: score %.1f out of range [0, 100]", ErrInvalidFeedback, f.Score)
	}
	return nil
}
