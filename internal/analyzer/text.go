package analyzer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	urlRe      = regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+`)
	hashtagRe  = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_&/])#([\p{L}\p{N}_]*\p{L}[\p{L}\p{N}_]*)`)
	mentionRe  = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])@([A-Za-z0-9_]{1,15})`)
	wordRe     = regexp.MustCompile(`\p{L}[\p{L}\p{N}'’]*`)
	sentenceRe = regexp.MustCompile(`[.!?…]+(?:["')\]]*)(?:\s+|$)|\n+`)
	listLineRe = regexp.MustCompile(`^\s*(?:[-•*▪‣◦·]|\d{1,2}[.)])\s+\S`)
	// Leading "1/", "1/5" or "(1/5)"; trailing "3/" or "(3/5)".
	leadNumRe  = regexp.MustCompile(`^\s*\(?(\d{1,2})\s?/\s?(\d{0,2})\)?(?:\s|$)`)
	tailNumRe  = regexp.MustCompile(`(?:^|\s)(?:\((\d{1,2})\s?/\s?(\d{1,2})\)|(\d{1,2})/)\s*$`)
	threadRe   = regexp.MustCompile(`(?i)🧵|\bthread\s*(?::|👇|⬇)|\ba thread\b`)
	laughRe    = regexp.MustCompile(`(?i)\b(?:a?ha){2,}h?\b|\bhe(?:he)+\b|\blo+l(?:ol)*\b|\blmf?ao+\b|\brofl\b|\bjk\b`)
	playfulRe  = regexp.MustCompile(`[!?]{2,}`)
	sarcasmRe  = regexp.MustCompile(`(?:^|\s)/s\b`)
)

// tweetFeatures holds everything the analyzer needs from one tweet.
type tweetFeatures struct {
	length     int
	words      []string
	hashtags   []string
	hasMention bool
	emojiCount int
	sentences  int
	isThread   bool
	hasList    bool
	humor      float64
	formality  float64
}

func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// foldWord case-folds w. Casers are stateful and must not be shared across goroutines.
func foldWord(c cases.Caser, w string) string {
	w = c.String(w)
	w = strings.Trim(w, "'’")
	w = strings.TrimSuffix(w, "'s")
	w = strings.TrimSuffix(w, "’s")
	return w
}

func extract(raw string) tweetFeatures {
	text := normalizeText(raw)
	f := tweetFeatures{length: utf8.RuneCountInString(text)}
	if text == "" {
		return f
	}

	folder := cases.Fold()
	stripped := urlRe.ReplaceAllString(text, " ")

	for _, m := range hashtagRe.FindAllStringSubmatch(stripped, -1) {
		f.hashtags = append(f.hashtags, foldWord(folder, m[1]))
	}
	f.hasMention = mentionRe.MatchString(stripped)

	plain := hashtagRe.ReplaceAllString(stripped, " ")
	plain = mentionRe.ReplaceAllString(plain, " ")
	for _, w := range wordRe.FindAllString(plain, -1) {
		if w = foldWord(folder, w); w != "" {
			f.words = append(f.words, w)
		}
	}

	for _, r := range text {
		if isEmoji(r) {
			f.emojiCount++
		}
	}

	f.sentences = countSentences(stripped)
	f.isThread = isThreadMarker(text)
	f.hasList = countListLines(text) >= 2
	f.humor = humorSignal(text, f.words)
	f.formality = formalitySignal(stripped, f)
	return f
}

func countSentences(text string) int {
	n := 0
	for _, part := range sentenceRe.Split(text, -1) {
		if strings.IndexFunc(part, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func countListLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if listLineRe.MatchString(line) {
			n++
		}
	}
	return n
}

// isEmoji reports whether r falls in the pictographic emoji blocks.
func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
	case r >= 0x2600 && r <= 0x27BF:
	case r >= 0x2B00 && r <= 0x2BFF:
	case r >= 0x2300 && r <= 0x23FF:
	default:
		return false
	}
	return true
}

var jokeEmoji = map[rune]bool{
	'😂': true, '🤣': true, '😆': true, '😹': true, '💀': true, '😜': true, '🙃': true, '😅': true, '😝': true, '🤪': true,
}

// humorSignal returns a per-tweet humour score in [0,1].
func humorSignal(text string, words []string) float64 {
	signals := 0.0
	signals += float64(len(laughRe.FindAllStringIndex(text, -1)))
	for _, r := range text {
		if jokeEmoji[r] {
			signals++
		}
	}
	if sarcasmRe.MatchString(text) {
		signals++
	}
	if playfulRe.MatchString(text) {
		signals += 0.5
	}
	for _, w := range words {
		if w == "joke" || w == "kidding" || w == "meme" || w == "memes" {
			signals += 0.5
		}
	}
	return clamp(signals / 2)
}

var slang = map[string]bool{
	"lol": true, "lmao": true, "u": true, "ur": true, "gonna": true, "wanna": true, "gotta": true,
	"tbh": true, "imo": true, "imho": true, "idk": true, "omg": true, "btw": true, "pls": true,
	"plz": true, "ya": true, "yall": true, "y'all": true, "kinda": true, "sorta": true, "af": true,
	"fr": true, "ngl": true, "smh": true, "rn": true, "lowkey": true, "highkey": true, "bruh": true,
}

// formalitySignal scores six formal features of one tweet and returns their mean.
func formalitySignal(stripped string, f tweetFeatures) float64 {
	body := strings.TrimSpace(hashtagRe.ReplaceAllString(stripped, " "))
	if body == "" {
		body = strings.TrimSpace(stripped)
	}

	score := 0.0

	if i := strings.IndexFunc(body, unicode.IsLetter); i >= 0 {
		r, _ := utf8.DecodeRuneInString(body[i:])
		if unicode.IsUpper(r) {
			score++
		}
	}

	if last, _ := utf8.DecodeLastRuneInString(strings.TrimRight(body, `"')] `)); strings.ContainsRune(".!?…", last) {
		score++
	}

	noSlang := 1.0
	for _, w := range f.words {
		if slang[w] {
			noSlang = 0
			break
		}
	}
	score += noSlang

	if f.emojiCount == 0 {
		score++
	}
	if !playfulRe.MatchString(body) {
		score++
	}

	letters, upper := 0, 0
	for _, r := range body {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters < 8 || float64(upper)/float64(letters) < 0.6 {
		score++
	}

	return score / 6
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// maxThreadLength bounds "n/m" markers so ratings and odds like 50/50 are not read as threads.
const maxThreadLength = 25

func isThreadMarker(text string) bool {
	if threadRe.MatchString(text) {
		return true
	}
	if m := leadNumRe.FindStringSubmatch(text); m != nil && validThreadPosition(m[1], m[2]) {
		return true
	}
	if m := tailNumRe.FindStringSubmatch(text); m != nil {
		if m[3] != "" {
			return validThreadPosition(m[3], "")
		}
		return validThreadPosition(m[1], m[2])
	}
	return false
}

// validThreadPosition accepts "n/" and "n/m" with 1 <= n <= m <= maxThreadLength.
func validThreadPosition(num, den string) bool {
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 || n > maxThreadLength {
		return false
	}
	if den == "" {
		return true
	}
	d, err := strconv.Atoi(den)
	return err == nil && n <= d && d <= maxThreadLength
}
