package interview

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/ai-interviewer/backend/internal/model/interview"
)

// OpeningGreeting is the synthetic candidate turn that opens every interview.
const OpeningGreeting = "你好，请开始我的模拟面试。"

const interviewerPrompt = `你是一位资深的面试官，正在进行一场专业的模拟面试。
你的目标是：
1. 根据用户的职位、公司和经验水平提出专业且具有挑战性的问题。
2. 保持面试的真实感，语气专业、客观，偶尔给出适当的追问。
3. 每次只提一个问题，并等待用户回答。
4. 在面试开始时，先进行简单的自我介绍并抛出第一个问题。
5. 面试通常持续 5-8 个回合。如果觉得面试足够充分，可以礼貌地结束面试。
6. 全程使用中文交流。`

var interviewTypeLabels = map[string]string{
	interview.TypeTechnical:  "技术面试",
	interview.TypeBehavioral: "行为面试",
	interview.TypeGeneral:    "综合面试",
}

// BuildSystemPrompt renders the interviewer instruction for cfg.
func BuildSystemPrompt(cfg interview.Config) string {
	var b strings.Builder
	b.WriteString(interviewerPrompt)
	b.WriteString("\n\n当前面试背景：\n")
	fmt.Fprintf(&b, "- 职位：%s\n", orDefault(cfg.JobTitle, "未指定"))
	fmt.Fprintf(&b, "- 目标公司：%s\n", orDefault(cfg.Company, "未指定"))
	fmt.Fprintf(&b, "- 经验水平：%s\n", orDefault(cfg.ExperienceLevel, "未指定"))
	fmt.Fprintf(&b, "- 面试类型：%s\n", describeType(cfg.InterviewType))
	fmt.Fprintf(&b, "- 额外信息：%s\n", orDefault(cfg.CustomDescription, "无"))
	return b.String()
}

func describeType(t string) string {
	if label, ok := interviewTypeLabels[t]; ok {
		return fmt.Sprintf("%s（%s）", label, t)
	}
	return orDefault(t, "未指定")
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}
