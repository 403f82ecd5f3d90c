package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// RawSuggestion is one tweet as returned by a model, before scoring.
type RawSuggestion struct {
	Content    string   `json:"content"`
	Confidence *float64 `json:"confidence"`
	TrendUsed  *string  `json:"trend_used"`
}

// ErrUnparseable is returned when a completion holds no suggestion list.
var ErrUnparseable = errors.New("completion is not a suggestion list")

// stripCodeFence removes a surrounding markdown code block.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	endIdx := len(lines)
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines[1:endIdx], "\n"))
}

// ParseSuggestions extracts suggestions from a completion. It accepts a JSON
// array of objects or strings, or an object with a "tweets" or "suggestions" array,
// optionally wrapped in a code fence or surrounded by prose.
func ParseSuggestions(text string) ([]RawSuggestion, error) {
	text = stripCodeFence(text)
	if text == "" {
		return nil, ErrUnparseable
	}

	if out, err := decodeSuggestions(text); err == nil {
		return out, nil
	}

	start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		if out, err := decodeSuggestions(text[start : end+1]); err == nil {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %.80q", ErrUnparseable, text)
}

// decodeSuggestions decodes one candidate JSON document; an empty list is unparseable.
func decodeSuggestions(text string) ([]RawSuggestion, error) {
	out, err := decodeList(text)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrUnparseable
	}
	return out, nil
}

func decodeList(text string) ([]RawSuggestion, error) {
	switch {
	case strings.HasPrefix(text, "["):
		var objs []RawSuggestion
		if err := json.Unmarshal([]byte(text), &objs); err == nil {
			return objs, nil
		}
		var plain []string
		if err := json.Unmarshal([]byte(text), &plain); err != nil {
			return nil, err
		}
		out := make([]RawSuggestion, len(plain))
		for i, s := range plain {
			out[i] = RawSuggestion{Content: s}
		}
		return out, nil
	case strings.HasPrefix(text, "{"):
		var wrapped struct {
			Tweets      []RawSuggestion `json:"tweets"`
			Suggestions []RawSuggestion `json:"suggestions"`
		}
		if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
			return nil, err
		}
		if len(wrapped.Tweets) > 0 {
			return wrapped.Tweets, nil
		}
		if len(wrapped.Suggestions) > 0 {
			return wrapped.Suggestions, nil
		}
		return nil, ErrUnparseable
	}
	return nil, ErrUnparseable
}
