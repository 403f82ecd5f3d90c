// Package analyzer derives a writing-style profile from tweet text.
//
// Analysis is pure and deterministic: the same texts always produce the same
// profile, and every frequency or score in the result lies in [0,1].
package analyzer

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"vibetweet/internal/models"

	"gonum.org/v1/gonum/stat"
)

const (
	commonWordLimit = 10
	themeLimit      = 5
	minWordRunes    = 3
	// markerShare is the share of tweets that must show a structural habit
	// (threads, lists) before the profile reports it.
	markerShare = 0.1
)

// Analyze computes the style profile of the given tweet texts.
// Blank texts are ignored; no usable text yields the default profile.
func Analyze(texts []string) models.StyleProfileData {
	feats := make([]tweetFeatures, 0, len(texts))
	for _, t := range texts {
		f := extract(t)
		if f.length == 0 {
			continue
		}
		feats = append(feats, f)
	}
	if len(feats) == 0 {
		return models.DefaultStyleProfileData()
	}

	n := float64(len(feats))
	lengths := make([]float64, len(feats))
	sentences := make([]float64, len(feats))
	humor := make([]float64, len(feats))
	formality := make([]float64, len(feats))
	var withHashtag, withMention, withEmoji, threads, lists float64

	for i, f := range feats {
		lengths[i] = float64(f.length)
		sentences[i] = float64(f.sentences)
		humor[i] = f.humor
		formality[i] = f.formality
		if len(f.hashtags) > 0 {
			withHashtag++
		}
		if f.hasMention {
			withMention++
		}
		if f.emojiCount > 0 {
			withEmoji++
		}
		if f.isThread {
			threads++
		}
		if f.hasList {
			lists++
		}
	}

	data := models.StyleProfileData{
		AvgLength: stat.Mean(lengths, nil),
		Vocabulary: models.VocabularyProfile{
			CommonWords:      commonWords(feats),
			HashtagFrequency: withHashtag / n,
			MentionFrequency: withMention / n,
		},
		Structure: models.StructureProfile{
			AvgSentences: stat.Mean(sentences, nil),
			UsesThreads:  threads/n >= markerShare,
			UsesLists:    lists/n >= markerShare,
		},
		ToneMarkers: models.ToneMarkers{
			EmojiUsage:     withEmoji / n,
			HumorScore:     stat.Mean(humor, nil),
			FormalityScore: stat.Mean(formality, nil),
		},
		Themes: themes(feats),
	}
	return data.Clamp()
}

func trivial(w string) bool {
	if utf8.RuneCountInString(w) < minWordRunes || stopWords[w] || slang[w] {
		return true
	}
	for _, r := range w {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

type termCount struct {
	term  string
	score float64
}

func topTerms(counts map[string]float64, limit int) []string {
	ranked := make([]termCount, 0, len(counts))
	for term, score := range counts {
		ranked = append(ranked, termCount{term, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].term < ranked[j].term
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.term
	}
	return out
}

func commonWords(feats []tweetFeatures) []string {
	counts := map[string]float64{}
	for _, f := range feats {
		for _, w := range f.words {
			if !trivial(w) {
				counts[w]++
			}
		}
	}
	return topTerms(counts, commonWordLimit)
}

// themes ranks topics by document frequency, hashtags counting double.
func themes(feats []tweetFeatures) []string {
	minDocs := 2
	if len(feats) < 3 {
		minDocs = 1
	}

	docs := map[string]int{}
	scores := map[string]float64{}
	for _, f := range feats {
		seen := map[string]bool{}
		for _, h := range f.hashtags {
			if !seen[h] {
				seen[h] = true
				docs[h]++
				scores[h] += 2
			}
		}
		for _, w := range f.words {
			if trivial(w) || seen[w] {
				continue
			}
			seen[w] = true
			docs[w]++
			scores[w]++
		}
	}

	for term, d := range docs {
		if d < minDocs {
			delete(scores, term)
		}
	}
	return topTerms(scores, themeLimit)
}
