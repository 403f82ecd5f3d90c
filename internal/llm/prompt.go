package llm

import (
	_ "embed"
	"fmt"
	"strings"

	"vibetweet/internal/models"

	"gopkg.in/yaml.v3"
)

// ToneGuide describes how a tone should read.
type ToneGuide struct {
	Description string   `yaml:"description"`
	Temperature float64  `yaml:"temperature"`
	Guidance    []string `yaml:"guidance"`
}

//go:embed tones.yaml
var tonesYAML []byte

var toneGuides map[models.Tone]ToneGuide

func init() {
	if err := yaml.Unmarshal(tonesYAML, &toneGuides); err != nil {
		panic(fmt.Sprintf("llm: invalid tones.yaml: %v", err))
	}
}

// GuideFor returns the guide for tone, falling back to casual.
func GuideFor(tone models.Tone) ToneGuide {
	if g, ok := toneGuides[tone]; ok {
		return g
	}
	return toneGuides[models.ToneCasual]
}

// PromptInput is everything that shapes a generation prompt.
type PromptInput struct {
	Count     int
	Tone      models.Tone
	Interests []string
	Trends    []string
	Profile   *models.StyleProfileData
	// Avoid lists tweets already produced, so a follow-up call does not repeat them.
	Avoid []string
}

// BuildRequest renders the system and user prompts for a generation call.
func BuildRequest(in PromptInput) Request {
	guide := GuideFor(in.Tone)

	var sys strings.Builder
	sys.WriteString("You write tweets on behalf of one person, in their own voice.\n")
	fmt.Fprintf(&sys, "Tone: %s (%s).\n", in.Tone, guide.Description)
	for _, g := range guide.Guidance {
		fmt.Fprintf(&sys, "- %s\n", g)
	}
	if p := in.Profile; p != nil {
		sys.WriteString("\nTheir writing style:\n")
		fmt.Fprintf(&sys, "- Typical length: about %.0f characters, %.1f sentences.\n", p.AvgLength, p.Structure.AvgSentences)
		fmt.Fprintf(&sys, "- Hashtags in %.0f%% of tweets, mentions in %.0f%%.\n",
			p.Vocabulary.HashtagFrequency*100, p.Vocabulary.MentionFrequency*100)
		fmt.Fprintf(&sys, "- Emoji usage: %s. Humor: %s. Formality: %.2f on a 0-1 scale.\n",
			models.EmojiBucket(p.ToneMarkers.EmojiUsage), models.HumorBucket(p.ToneMarkers.HumorScore), p.ToneMarkers.FormalityScore)
		if len(p.Vocabulary.CommonWords) > 0 {
			fmt.Fprintf(&sys, "- Words they often use: %s.\n", strings.Join(p.Vocabulary.CommonWords, ", "))
		}
		if len(p.Themes) > 0 {
			fmt.Fprintf(&sys, "- Recurring themes: %s.\n", strings.Join(p.Themes, ", "))
		}
		if p.Structure.UsesThreads {
			sys.WriteString("- They sometimes write threads, but each suggestion must stand alone.\n")
		}
		if p.Structure.UsesLists {
			sys.WriteString("- They like short line-broken lists.\n")
		}
	}
	fmt.Fprintf(&sys, "\nEvery tweet must be at most %d characters.\n", models.MaxTweetLength)

	var user strings.Builder
	fmt.Fprintf(&user, "Write %d distinct tweet suggestions.\n", in.Count)
	if len(in.Interests) > 0 {
		fmt.Fprintf(&user, "Their interests: %s.\n", strings.Join(in.Interests, ", "))
	}
	if len(in.Trends) > 0 {
		user.WriteString("Current trends you may anchor tweets to (use the exact text in trend_used):\n")
		for _, t := range in.Trends {
			fmt.Fprintf(&user, "- %s\n", t)
		}
	}
	if len(in.Avoid) > 0 {
		user.WriteString("Do not repeat these:\n")
		for _, a := range in.Avoid {
			fmt.Fprintf(&user, "- %s\n", a)
		}
	}
	user.WriteString(`Respond with only a JSON array of objects: [{"content": "...", "confidence": 0.0-1.0, "trend_used": "trend or null"}]`)

	maxTokens := 200*in.Count + 200
	return Request{
		System:      sys.String(),
		Prompt:      user.String(),
		MaxTokens:   maxTokens,
		Temperature: guide.Temperature,
	}
}
