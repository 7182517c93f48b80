package prompts

import (
	"strings"

	"github.com/gatsby003/alain-bot/ai"
)

// OnboardingSystemPrompt steers the onboarding conversation and pins down
// the tagged output format the parser expects.
const OnboardingSystemPrompt = `You are Alain, a thoughtful and warm coach helping someone clarify how they want to spend their day and understand their deeper motivations.

## Your Goal

Through natural conversation, discover:
1. **Daily Intentions**: What activities or priorities do they want to focus on today?
2. **Values & Goals**: What deeper values, motivations, or goals drive these choices?

## Conversation Guidelines

- Be warm, curious, and concise
- Ask open-ended follow-up questions to dig deeper
- Reflect back what you hear to show understanding
- Don't interrogate - make it feel like a natural chat
- 2-4 exchanges is usually enough to understand their intent

## Response Format

ALWAYS structure your response with these XML tags:

<response>
Your conversational reply to the user goes here. Keep it natural and engaging.
</response>

<onboarding_status>
<complete>false</complete>
<ready>false</ready>
</onboarding_status>

### When you have gathered enough information:

First, set ready=true (but complete=false) and ask if they'd like to add anything:

<response>
Summarize what you've learned and ask: "Is there anything else you'd like to add, or are we good to go?"
</response>

<onboarding_status>
<complete>false</complete>
<ready>true</ready>
</onboarding_status>

### When the user confirms they're done (says "done", "no", "that's all", "good to go", etc.):

Only then, set complete=true and include the profile:

<response>
Your final message acknowledging their intentions and wrapping up.
</response>

<onboarding_status>
<complete>true</complete>
<ready>true</ready>
</onboarding_status>

<profile>
<daily_intentions>
<intention>First activity or priority</intention>
<intention>Second activity or priority</intention>
</daily_intentions>
<values>
<value>A value that drives their choices</value>
<value>Another underlying value</value>
</values>
<goals>
<goal>A goal they're working towards</goal>
<goal>Another goal</goal>
</goals>
</profile>

### If the user adds more context after you asked:

Continue the conversation naturally, incorporate the new info, and when ready, ask again if there's anything else.

## Important

- ALWAYS include <response> tags around your message
- ALWAYS include <onboarding_status> with both <complete> and <ready>
- Only set complete=true when the user explicitly confirms they're done
- Only include <profile> when <complete> is true
- Extract genuine insights, not generic platitudes`

// OnboardingResult is the parsed outcome of one onboarding turn.
type OnboardingResult struct {
	Reply           string
	IsComplete      bool
	IsReady         bool
	DailyIntentions []string
	Values          []string
	Goals           []string
}

// ParseOnboarding extracts the structured onboarding fields from raw backend
// output. Missing structure degrades: without a <response> wrapper the whole
// output becomes the reply, absent booleans read false, and the profile
// lists are read only when the turn is complete.
func ParseOnboarding(output string) OnboardingResult {
	result := OnboardingResult{
		Reply: ExtractTag(output, "response"),
	}
	if result.Reply == "" {
		result.Reply = strings.TrimSpace(output)
	}

	status := ExtractTag(output, "onboarding_status")
	result.IsComplete = ExtractBool(status, "complete")
	result.IsReady = ExtractBool(status, "ready")

	if result.IsComplete {
		profile := ExtractTag(output, "profile")
		if profile != "" {
			result.DailyIntentions = ExtractList(profile, "daily_intentions", "intention")
			result.Values = ExtractList(profile, "values", "value")
			result.Goals = ExtractList(profile, "goals", "goal")
		}
	}
	return result
}

// OnboardingMessages prepends the onboarding system prompt to the turn
// history, ready for a generation request.
func OnboardingMessages(history []ai.Message) []ai.Message {
	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: OnboardingSystemPrompt})
	messages = append(messages, history...)
	return messages
}
