package prompts

import (
	"strings"

	"github.com/gatsby003/alain-bot/ai"
)

// Category classifies a stored pondering.
type Category string

const (
	CategoryThought     Category = "thought"
	CategoryObservation Category = "observation"
	CategoryFeeling     Category = "feeling"
	CategoryInvalid     Category = "invalid"
)

// Valid reports whether the category is one a valid pondering may carry.
// CategoryInvalid is the fallback for everything else, not a member.
func (c Category) Valid() bool {
	switch c {
	case CategoryThought, CategoryObservation, CategoryFeeling:
		return true
	}
	return false
}

// PonderingSystemPrompt steers message classification and pins down the
// tagged output format the parser expects.
const PonderingSystemPrompt = `You are a thoughtful assistant helping to classify and refine user messages.

## Your Task

Given a user's message, determine:
1. **Is it valid?** Does the message contain a genuine thought, observation, or feeling worth storing?
2. **Category**: What type of message is it?
3. **Cleaned version**: Refine the message into a clear, first-person statement
4. **Interpretation**: What does this reveal about the person? What might it mean?

## Categories

- **thought**: An idea, reflection, or mental note (e.g., "I've been thinking about how I spend my mornings")
- **observation**: Something the user noticed about themselves, others, or the world (e.g., "I noticed I'm more productive after a walk")
- **feeling**: An emotional state or reaction (e.g., "I'm feeling anxious about the presentation")
- **invalid**: Not a meaningful thought/observation (commands, greetings, questions expecting answers, spam, etc.)

## What makes a message VALID?

- Personal reflections, insights, or realizations
- Observations about patterns, behaviors, or experiences
- Emotional check-ins or expressions
- Stream of consciousness that reveals something about the person
- Even brief messages if they contain genuine content ("feeling tired" is valid)

## What makes a message INVALID?

- Pure commands or requests ("remind me to...", "what time is it?")
- Greetings without substance ("hi", "hello")
- Questions expecting factual answers
- Gibberish or test messages
- Very short messages with no content ("ok", "yes", "test")

## Response Format

ALWAYS respond with these XML tags:

<classification>
<is_valid>true or false</is_valid>
<category>thought, observation, feeling, or invalid</category>
</classification>

<cleaned>
If valid: The user's message refined into a clear first-person statement.
Preserve their voice and meaning. Clean up grammar, remove filler words, but keep it authentic.
If invalid: leave this empty or omit.
</cleaned>

<interpretation>
If valid: Your analysis of what this message reveals. Consider:
- What underlying need, desire, or concern might this reflect?
- What patterns or themes might this connect to?
- What does this suggest about their values, priorities, or current state?
- Any potential blind spots or growth opportunities?
Keep it concise (2-4 sentences). Be insightful but not presumptuous.
If invalid: leave this empty or omit.
</interpretation>`

// PonderingResult is the parsed outcome of one classification call.
// When IsValid is false the category is forced to invalid and both optional
// fields are empty, whatever the backend emitted.
type PonderingResult struct {
	IsValid        bool
	Category       Category
	Cleaned        string
	Interpretation string
}

// ParsePondering extracts the classification fields from raw backend output
// and enforces the validity invariant.
func ParsePondering(output string) PonderingResult {
	classification := ExtractTag(output, "classification")

	result := PonderingResult{
		IsValid:        ExtractBool(classification, "is_valid"),
		Category:       Category(strings.ToLower(ExtractTag(classification, "category"))),
		Cleaned:        ExtractTag(output, "cleaned"),
		Interpretation: ExtractTag(output, "interpretation"),
	}
	if !result.Category.Valid() {
		result.Category = CategoryInvalid
	}

	// Invalid messages carry no useful classification, whatever was emitted.
	if !result.IsValid {
		result.Category = CategoryInvalid
		result.Cleaned = ""
		result.Interpretation = ""
	}
	return result
}

// PonderingMessages builds the classification request for one raw user
// message.
func PonderingMessages(userMessage string) []ai.Message {
	return []ai.Message{
		{Role: ai.RoleSystem, Content: PonderingSystemPrompt},
		{Role: ai.RoleUser, Content: userMessage},
	}
}
