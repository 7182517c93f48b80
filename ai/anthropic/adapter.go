package anthropic

import (
	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/samber/lo"

	"github.com/gatsby003/alain-bot/ai"
)

// splitSystem separates the distinguished system message from the turn
// history. The Anthropic API takes the system prompt out-of-band, so the
// first system-role message is lifted into its own value and every other
// message is returned as an ordered turn. Only one distinguished message is
// supported: any further system messages are dropped, and the count of
// dropped messages is returned so the caller can log it.
func splitSystem(msgs []ai.Message) (system string, turns []ai.Message, dropped int) {
	turns = make([]ai.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role != ai.RoleSystem {
			turns = append(turns, msg)
			continue
		}
		if system == "" {
			system = msg.Content
		} else {
			dropped++
		}
	}
	return system, turns, dropped
}

// toMessageParams converts turn messages to Anthropic message params.
// The input must not contain system-role messages; use splitSystem first.
func toMessageParams(msgs []ai.Message) []anthropic.MessageParam {
	return lo.Map(msgs, func(msg ai.Message, _ int) anthropic.MessageParam {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == ai.RoleAssistant {
			return anthropic.NewAssistantMessage(block)
		}
		return anthropic.NewUserMessage(block)
	})
}

// collectText concatenates the text fragments of a response in order.
// Non-text blocks are skipped.
func collectText(blocks []anthropic.ContentBlockUnion) string {
	var out string
	for _, blockUnion := range blocks {
		if block, ok := blockUnion.AsAny().(anthropic.TextBlock); ok {
			out += block.Text
		}
	}
	return out
}

// usageFrom extracts token accounting. The total is always the computed sum
// of the two counted fields.
func usageFrom(msg *anthropic.Message) ai.Usage {
	usage := ai.Usage{
		PromptTokens:     int(msg.Usage.InputTokens),
		CompletionTokens: int(msg.Usage.OutputTokens),
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	return usage
}
