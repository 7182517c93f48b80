package openai

import (
	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"

	"github.com/gatsby003/alain-bot/ai"
)

// toChatMessages converts the neutral message sequence to chat completion
// messages. OpenAI accepts the system role inline, so the sequence passes
// through in order with no splitting.
func toChatMessages(msgs []ai.Message) []openai.ChatCompletionMessage {
	return lo.Map(msgs, func(msg ai.Message, _ int) openai.ChatCompletionMessage {
		return openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	})
}

// collectText concatenates the content of all choices in order. In practice
// a single choice is requested, but the backend contract allows several.
func collectText(choices []openai.ChatCompletionChoice) string {
	var out string
	for _, choice := range choices {
		out += choice.Message.Content
	}
	return out
}

// usageFrom extracts token accounting. The total is always the computed sum
// of the two counted fields, never the backend's own total.
func usageFrom(usage openai.Usage) ai.Usage {
	u := ai.Usage{
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
	}
	u.TotalTokens = u.PromptTokens + u.CompletionTokens
	return u
}
