package prompts

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"promptagent/internal/domain"
)

const testTemplates = `[
  {"id": "listing", "label": "Listing", "category": "Listings", "prompt": "Describe the home.", "tone": "warm"},
  {"id": "plain", "label": "Plain", "category": "Other", "prompt": "Write something."}
]`

func testComposer(t *testing.T) *Composer {
	t.Helper()
	r, err := ParseRegistry([]byte(testTemplates))
	if err != nil {
		t.Fatalf("ParseRegistry returned error: %v", err)
	}
	return NewComposer(r)
}

func TestComposeOrder(t *testing.T) {
	c := testComposer(t)
	cases := []struct {
		name  string
		id    string
		input string
		tone  string
		want  string
	}{
		{name: "body only", id: "plain", want: "Write something."},
		{name: "input", id: "plain", input: " 3 bed ranch ", want: "Write something.\n\nUser input:\n3 bed ranch"},
		{name: "tone", id: "plain", tone: "bold", want: "Write something.\n\nTone: Write this in a bold tone."},
		{name: "input and tone", id: "plain", input: "condo", tone: "bold", want: "Write something.\n\nUser input:\ncondo\n\nTone: Write this in a bold tone."},
		{name: "default tone", id: "listing", want: "Describe the home.\n\nTone: Write this in a warm tone."},
		{name: "explicit tone beats default", id: "listing", tone: "luxury", want: "Describe the home.\n\nTone: Write this in a luxury tone."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := c.Compose(tc.id, tc.input, tc.tone)
			if err != nil {
				t.Fatalf("Compose returned error: %v", err)
			}
			if p.Text != tc.want {
				t.Fatalf("Text = %q, want %q", p.Text, tc.want)
			}
			if p.System != Persona {
				t.Fatalf("System = %q, want persona", p.System)
			}
		})
	}
}

func TestComposeIsIdempotent(t *testing.T) {
	c := testComposer(t)
	first, err := c.Compose("listing", "pool, 2 car garage", "friendly")
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := c.Compose("listing", "pool, 2 car garage", "friendly")
		if again != first {
			t.Fatalf("Compose not idempotent: %q != %q", again.Text, first.Text)
		}
	}
}

func TestComposeTemplateNotFound(t *testing.T) {
	c := testComposer(t)
	_, err := c.Compose("missing", "x", "y")
	if !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Fatalf("err = %v, want ErrTemplateNotFound", err)
	}
}

func TestPromptMessages(t *testing.T) {
	withPersona := Prompt{System: "sys", Text: "hello"}
	got := withPersona.Messages()
	want := []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hello"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Messages() = %#v, want %#v", got, want)
	}
	inline := Prompt{Text: "hello"}
	if msgs := inline.Messages(); len(msgs) != 1 || msgs[0].Role != RoleUser {
		t.Fatalf("Messages() = %#v, want single user message", msgs)
	}
}

func TestSecondaryFeaturesHaveNoPersona(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for name, p := range map[string]Prompt{
		"regenerate":      Regenerate("old", "shorter"),
		"daily_post":      DailyPost(day),
		"random_caption":  RandomCaption("instagram", CaptionTopics[0]),
		"rewrite_caption": RewriteCaption("caption", "facebook"),
		"weekly_plan":     WeeklyPlan(),
		"client_reply":    ClientReply("When can we view it?", ""),
		"tweak_helper":    TweakSuggestions("output"),
	} {
		if p.System != "" {
			t.Fatalf("%s: System = %q, want empty", name, p.System)
		}
		if strings.TrimSpace(p.Text) == "" {
			t.Fatalf("%s: empty prompt text", name)
		}
	}
	if !strings.Contains(DailyPost(day).Text, "Monday") {
		t.Fatalf("DailyPost should mention the weekday: %q", DailyPost(day).Text)
	}
	if !strings.Contains(Regenerate("old", "shorter").Text, "Requested change: shorter") {
		t.Fatalf("Regenerate should carry the tweak")
	}
}

func TestPlatformName(t *testing.T) {
	cases := map[string]string{"": "Instagram", " LINKEDIN ": "Linkedin", "facebook": "Facebook"}
	for in, want := range cases {
		if got := PlatformName(in); got != want {
			t.Fatalf("PlatformName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRegistryErrors(t *testing.T) {
	cases := map[string]string{
		"bad json":     `{`,
		"empty id":     `[{"id": " ", "prompt": "x"}]`,
		"empty prompt": `[{"id": "a", "prompt": ""}]`,
		"duplicate":    `[{"id": "a", "prompt": "x"}, {"id": "a", "prompt": "y"}]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseRegistry([]byte(raw)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadRegistry(t *testing.T) {
	def, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry default returned error: %v", err)
	}
	if def.Len() == 0 {
		t.Fatal("embedded registry is empty")
	}

	path := filepath.Join(t.TempDir(), "templates.json")
	if err := os.WriteFile(path, []byte(testTemplates), 0o600); err != nil {
		t.Fatalf("write templates: %v", err)
	}
	r, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry returned error: %v", err)
	}
	all := r.All()
	if len(all) != 2 || all[0].ID != "listing" || all[1].ID != "plain" {
		t.Fatalf("All() = %#v, want file order", all)
	}
	all[0].ID = "mutated"
	if _, ok := r.Get("listing"); !ok {
		t.Fatal("All() must return a copy")
	}

	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseSuggestions(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: []string{}},
		{name: "numbered", in: "1. Make it shorter\n2. Add urgency\n3.  Mention the pool ", want: []string{"Make it shorter", "Add urgency", "Mention the pool"}},
		{name: "skips junk", in: "Here are ideas:\n1. Add emojis\n- not numbered\n2.\n3. \"Use a question\"", want: []string{"Add emojis", "Use a question"}},
		{name: "caps at five", in: "1. a\n2. b\n3. c\n4. d\n5. e\n6. f", want: []string{"a", "b", "c", "d", "e"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseSuggestions(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseSuggestions() = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestCleanOutput(t *testing.T) {
	in := "As an AI language model, I cannot visit homes. This charming bungalow awaits. I'm an AI assistant. "
	want := "This charming bungalow awaits."
	if got := CleanOutput(in); got != want {
		t.Fatalf("CleanOutput() = %q, want %q", got, want)
	}
}
