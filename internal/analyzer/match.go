package analyzer

import (
	"math"

	"vibetweet/internal/models"
)

// StyleMatch scores how closely a candidate tweet fits a profile, in [0,1].
func StyleMatch(candidate string, profile models.StyleProfileData) float64 {
	f := extract(candidate)
	if f.length == 0 {
		return 0
	}

	lengthScore := 0.5
	if profile.AvgLength > 0 {
		scale := math.Max(profile.AvgLength, 40)
		lengthScore = 1 - math.Min(1, math.Abs(float64(f.length)-profile.AvgLength)/scale)
	}

	agree := func(present bool, freq float64) float64 {
		if present {
			return freq
		}
		return 1 - freq
	}

	vocab := map[string]bool{}
	for _, w := range profile.Vocabulary.CommonWords {
		vocab[w] = true
	}
	for _, t := range profile.Themes {
		vocab[t] = true
	}
	matched := 0
	for _, w := range append(f.words, f.hashtags...) {
		if vocab[w] {
			matched++
		}
	}
	vocabScore := 0.5 + 0.5*math.Min(1, float64(matched)/2)

	score := 0.25*lengthScore +
		0.15*agree(len(f.hashtags) > 0, profile.Vocabulary.HashtagFrequency) +
		0.10*agree(f.hasMention, profile.Vocabulary.MentionFrequency) +
		0.15*agree(f.emojiCount > 0, profile.ToneMarkers.EmojiUsage) +
		0.20*(1-math.Abs(f.formality-profile.ToneMarkers.FormalityScore)) +
		0.15*vocabScore

	return models.Clamp01(score)
}
