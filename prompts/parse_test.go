package prompts

import (
	"testing"
)

func TestExtractTag(t *testing.T) {
	cases := []struct {
		name string
		text string
		tag  string
		want string
	}{
		{"simple", "<response>hello</response>", "response", "hello"},
		{"trims whitespace", "<response>\n  hello\n</response>", "response", "hello"},
		{"multiline content", "<response>line one\nline two</response>", "response", "line one\nline two"},
		{"first occurrence wins", "<v>a</v><v>b</v>", "v", "a"},
		{"non-greedy", "<v>a</v> trailing </v>", "v", "a"},
		{"absent", "no tags here", "response", ""},
		{"unclosed", "<response>hello", "response", ""},
		{"surrounded", "prefix <response>hello</response> suffix", "response", "hello"},
	}
	for _, tc := range cases {
		if got := ExtractTag(tc.text, tc.tag); got != tc.want {
			t.Errorf("%s: ExtractTag = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestExtractBool(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"<complete>true</complete>", true},
		{"<complete>True</complete>", true},
		{"<complete> TRUE </complete>", true},
		{"<complete>false</complete>", false},
		{"<complete>yes</complete>", false},
		{"<complete>1</complete>", false},
		{"<complete></complete>", false},
		{"no tag at all", false},
	}
	for _, tc := range cases {
		if got := ExtractBool(tc.text, "complete"); got != tc.want {
			t.Errorf("ExtractBool(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestExtractList(t *testing.T) {
	doc := `<goals>
		<goal>ship the project</goal>
		<goal> rest more </goal>
	</goals>`
	got := ExtractList(doc, "goals", "goal")
	if len(got) != 2 || got[0] != "ship the project" || got[1] != "rest more" {
		t.Errorf("Unexpected list: %v", got)
	}
}

func TestExtractListAbsentParent(t *testing.T) {
	if got := ExtractList("<goal>orphan</goal>", "goals", "goal"); got != nil {
		t.Errorf("Expected nil for absent parent, got %v", got)
	}
}

func TestExtractListEmptyParent(t *testing.T) {
	got := ExtractList("<goals></goals>", "goals", "goal")
	if len(got) != 0 {
		t.Errorf("Expected no items, got %v", got)
	}
}

func TestExtractListScopedToFirstParent(t *testing.T) {
	doc := "<goals><goal>a</goal></goals><goals><goal>b</goal></goals>"
	got := ExtractList(doc, "goals", "goal")
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("Expected items from the first parent only, got %v", got)
	}
}
