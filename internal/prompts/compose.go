package prompts

import (
	"fmt"
	"strings"

	"promptagent/internal/domain"
)

// Persona is the system preamble used only by the template-driven generate feature.
const Persona = "You are PromptAgent, a seasoned real estate marketing copywriter who writes in the voice of the agent you are helping. " +
	"Write polished, ready-to-send copy with no placeholders unless details are missing. " +
	"Never mention that you are an AI, a language model, or an assistant, and never add disclaimers about being one."

// Message is one chat message sent to the text generator.
type Message struct {
	Role    string
	Content string
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Prompt is a composed request. System is empty for features that frame
// themselves inline.
type Prompt struct {
	System string
	Text   string
}

// Messages returns the chat messages, with the system preamble first when set.
func (p Prompt) Messages() []Message {
	var msgs []Message
	if p.System != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: p.System})
	}
	return append(msgs, Message{Role: RoleUser, Content: p.Text})
}

// Composer builds prompts from the registry. Compose never touches session state.
type Composer struct {
	registry *Registry
}

func NewComposer(r *Registry) *Composer {
	return &Composer{registry: r}
}

// Compose renders body, then the labeled user input, then the tone instruction.
// An empty tone falls back to the template's default tone.
func (c *Composer) Compose(templateID, input, tone string) (Prompt, error) {
	t, ok := c.registry.Get(templateID)
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, templateID)
	}
	sb := &strings.Builder{}
	sb.WriteString(strings.TrimSpace(t.Body))
	if in := strings.TrimSpace(input); in != "" {
		fmt.Fprintf(sb, "\n\nUser input:\n%s", in)
	}
	if tn := coalesce(tone, t.Tone); tn != "" {
		fmt.Fprintf(sb, "\n\nTone: Write this in a %s tone.", tn)
	}
	return Prompt{System: Persona, Text: sb.String()}, nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
