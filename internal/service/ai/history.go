package ai

import "github.com/cloudwego/eino/schema"

// EnsureLeadingUser prepends a user turn when history starts with the model.
// Gemini rejects a conversation whose first content is not from the user.
func EnsureLeadingUser(history []*schema.Message, greeting string) []*schema.Message {
	if len(history) == 0 || history[0].Role == schema.User {
		return history
	}
	out := make([]*schema.Message, 0, len(history)+1)
	out = append(out, schema.UserMessage(greeting))
	return append(out, history...)
}
