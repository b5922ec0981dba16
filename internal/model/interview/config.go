package interview

import (
	"errors"
	"strings"
)

// 面试类型。
const (
	TypeTechnical  = "technical"
	TypeBehavioral = "behavioral"
	TypeGeneral    = "general"
)

var (
	ErrJobTitleRequired     = errors.New("job title is required")
	ErrInvalidInterviewType = errors.New("interview type must be one of: technical, behavioral, general")
)

// Config describes the interview a candidate asked for. It does not change once
// the interview has started.
type Config struct {
	JobTitle          string `json:"jobTitle"`
	Company           string `json:"company"`
	ExperienceLevel   string `json:"experienceLevel"`
	InterviewType     string `json:"interviewType"`
	CustomDescription string `json:"customDescription"`
}

// Validate checks the fields the prompt cannot do without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.JobTitle) == "" {
		return ErrJobTitleRequired
	}
	switch c.InterviewType {
	case "", TypeTechnical, TypeBehavioral, TypeGeneral:
		return nil
	default:
		return ErrInvalidInterviewType
	}
}
