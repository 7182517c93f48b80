package prompts

import (
	"testing"

	"github.com/gatsby003/alain-bot/ai"
)

func TestParsePonderingValid(t *testing.T) {
	output := `<classification>
  <is_valid>true</is_valid>
  <category>observation</category>
</classification>
<cleaned>The mornings feel calmer lately.</cleaned>
<interpretation>Noticing a shift in daily rhythm.</interpretation>`

	result := ParsePondering(output)
	if !result.IsValid {
		t.Fatal("Expected a valid classification")
	}
	if result.Category != CategoryObservation {
		t.Errorf("Expected observation, got %q", result.Category)
	}
	if result.Cleaned != "The mornings feel calmer lately." {
		t.Errorf("Unexpected cleaned text: %q", result.Cleaned)
	}
	if result.Interpretation != "Noticing a shift in daily rhythm." {
		t.Errorf("Unexpected interpretation: %q", result.Interpretation)
	}
}

func TestParsePonderingCategoryCaseInsensitive(t *testing.T) {
	output := `<classification><is_valid>true</is_valid><category>Thought</category></classification>`
	result := ParsePondering(output)
	if result.Category != CategoryThought {
		t.Errorf("Expected thought, got %q", result.Category)
	}
}

func TestParsePonderingInvalidClearsFields(t *testing.T) {
	// The backend claims a category and content despite marking the message
	// invalid; the invariant wins.
	output := `<classification>
  <is_valid>false</is_valid>
  <category>thought</category>
</classification>
<cleaned>should not survive</cleaned>
<interpretation>nor this</interpretation>`

	result := ParsePondering(output)
	if result.IsValid {
		t.Fatal("Expected invalid classification")
	}
	if result.Category != CategoryInvalid {
		t.Errorf("Expected category forced to invalid, got %q", result.Category)
	}
	if result.Cleaned != "" || result.Interpretation != "" {
		t.Errorf("Expected optional fields cleared, got %+v", result)
	}
}

func TestParsePonderingUnknownCategory(t *testing.T) {
	output := `<classification><is_valid>true</is_valid><category>rant</category></classification>`
	result := ParsePondering(output)
	if result.Category != CategoryInvalid {
		t.Errorf("Expected unknown category to map to invalid, got %q", result.Category)
	}
}

func TestParsePonderingNoStructure(t *testing.T) {
	result := ParsePondering("plain text output")
	if result.IsValid {
		t.Error("Expected missing classification to read invalid")
	}
	if result.Category != CategoryInvalid {
		t.Errorf("Expected invalid category, got %q", result.Category)
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range []Category{CategoryThought, CategoryObservation, CategoryFeeling} {
		if !c.Valid() {
			t.Errorf("Expected %q to be valid", c)
		}
	}
	for _, c := range []Category{CategoryInvalid, Category("rant"), Category("")} {
		if c.Valid() {
			t.Errorf("Expected %q to be invalid", c)
		}
	}
}

func TestPonderingMessages(t *testing.T) {
	msgs := PonderingMessages("I noticed something today")
	if len(msgs) != 2 {
		t.Fatalf("Expected system + user, got %d messages", len(msgs))
	}
	if msgs[0].Role != ai.RoleSystem || msgs[0].Content != PonderingSystemPrompt {
		t.Error("Expected the classification system prompt first")
	}
	if msgs[1].Role != ai.RoleUser || msgs[1].Content != "I noticed something today" {
		t.Errorf("Expected the raw message as the user turn, got %+v", msgs[1])
	}
}
