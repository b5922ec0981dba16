package evaluation

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
)

const evaluatorPrompt = `你是一位资深的 HR 专家，负责对模拟面试的表现进行复盘评估。
请根据面试对话记录，给出一个详细的反馈报告。
必须返回符合 JSON 格式的数据。`

// BuildPrompt renders the transcript to evaluate.
func BuildPrompt(history []interview.Message, cfg interview.Config) string {
	var b strings.Builder
	b.WriteString("请评估以下面试记录：\n")
	fmt.Fprintf(&b, "面试背景：%s at %s (%s)\n", cfg.JobTitle, cfg.Company, cfg.ExperienceLevel)
	b.WriteString("对话历史：\n")
	for _, m := range history {
		if m.IsError {
			continue
		}
		speaker := "面试官"
		if m.Role == interview.RoleUser {
			speaker = "候选人"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, m.Text)
	}
	return b.String()
}
