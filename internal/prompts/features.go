package prompts

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultPlatform is used when a caption request omits the platform.
const DefaultPlatform = "instagram"

// SuggestionCount is the number of tweak suggestions requested and returned.
const SuggestionCount = 5

// CaptionTopics are the subjects picked from for random captions.
var CaptionTopics = []string{
	"a cozy starter home",
	"a first-time buyer tip",
	"staging a home before listing",
	"the local market this season",
	"a client success story",
	"why curb appeal matters",
	"a neighborhood hidden gem",
	"preparing for a home inspection",
}

// PlatformName normalizes user supplied platform names ("linkedin " -> "Linkedin").
func PlatformName(platform string) string {
	p := strings.ToLower(strings.TrimSpace(platform))
	if p == "" {
		p = DefaultPlatform
	}
	// Casers are stateful, so each call gets its own.
	return cases.Title(language.English).String(p)
}

// Regenerate revises a previous output according to an optional tweak.
func Regenerate(lastOutput, tweak string) Prompt {
	sb := &strings.Builder{}
	sb.WriteString("You are revising real estate marketing copy written for an agent. Return only the revised copy, without commentary.")
	fmt.Fprintf(sb, "\n\nOriginal copy:\n%s", strings.TrimSpace(lastOutput))
	if tw := strings.TrimSpace(tweak); tw != "" {
		fmt.Fprintf(sb, "\n\nRequested change: %s", tw)
	} else {
		sb.WriteString("\n\nRequested change: Improve clarity and engagement while keeping the same intent and length.")
	}
	return Prompt{Text: sb.String()}
}

// DailyPost asks for one social post themed on the weekday of day.
func DailyPost(day time.Time) Prompt {
	weekday := day.UTC().Weekday().String()
	text := fmt.Sprintf("Write one ready-to-post social media update for a real estate agent for %s. "+
		"Pick a theme that fits a %s (for example a market tip, a listing teaser, or community news), "+
		"keep it under 120 words, and end with a short call to action and three relevant hashtags. "+
		"Do not mention that the post was generated.", weekday, weekday)
	return Prompt{Text: text}
}

// RandomCaption asks for a caption about topic for platform.
func RandomCaption(platform, topic string) Prompt {
	name := PlatformName(platform)
	text := fmt.Sprintf("Write an engaging %s caption for a real estate agent about %s. "+
		"Match %s conventions for length and hashtags, use at most two emojis, and return only the caption.",
		name, strings.TrimSpace(topic), name)
	return Prompt{Text: text}
}

// RewriteCaption asks for a platform-fitted rewrite of caption.
func RewriteCaption(caption, platform string) Prompt {
	name := PlatformName(platform)
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Rewrite the following real estate caption so it performs well on %s. ", name)
	sb.WriteString("Keep the facts, tighten the wording, and return only the rewritten caption.")
	fmt.Fprintf(sb, "\n\nCaption:\n%s", strings.TrimSpace(caption))
	return Prompt{Text: sb.String()}
}

// WeeklyPlan asks for a seven day content calendar.
func WeeklyPlan() Prompt {
	return Prompt{Text: "Create a 7-day social media content plan for a real estate agent. " +
		"For each day from Monday to Sunday give the post idea, the best platform, and a one-line caption starter. " +
		"Format it as a list with one day per line."}
}

// ClientReply drafts a reply to a client message.
func ClientReply(message, tone string) Prompt {
	sb := &strings.Builder{}
	sb.WriteString("Draft a reply from a real estate agent to the client message below. ")
	sb.WriteString("Answer every question the client asked, propose a clear next step, and sign off as the agent without inventing a name.")
	if tn := strings.TrimSpace(tone); tn != "" {
		fmt.Fprintf(sb, " Use a %s tone.", tn)
	} else {
		sb.WriteString(" Use a professional, friendly tone.")
	}
	fmt.Fprintf(sb, "\n\nClient message:\n%s", strings.TrimSpace(message))
	return Prompt{Text: sb.String()}
}

// TweakSuggestions asks for a numbered list of short edit ideas for output.
func TweakSuggestions(output string) Prompt {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Suggest %d short, specific edits a real estate agent could request to improve the copy below. ", SuggestionCount)
	sb.WriteString("Each suggestion must be under 8 words. Respond only with a numbered list, one suggestion per line, like \"1. Make it shorter\".")
	fmt.Fprintf(sb, "\n\nCopy:\n%s", strings.TrimSpace(output))
	return Prompt{Text: sb.String()}
}
