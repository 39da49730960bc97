package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minTokenLength       = 3
	repetitionThreshold  = 3
	minRepetitionSamples = 3
)

// fillerWords never become a dominant word. Prompts invite answers like
// "I feel ...", so these would otherwise win every week.
var fillerWords = map[string]bool{
	// pronouns
	"you": true, "your": true, "yours": true, "she": true, "her": true, "him": true, "his": true,
	"its": true, "our": true, "ours": true, "they": true, "them": true, "their": true, "mine": true,
	"myself": true, "this": true, "that": true, "these": true, "those": true,
	// auxiliaries
	"are": true, "was": true, "were": true, "been": true, "being": true, "has": true, "have": true,
	"had": true, "did": true, "does": true, "can": true, "could": true, "would": true, "should": true,
	"will": true, "shall": true, "may": true, "might": true, "must": true,
	// feel
	"feel": true, "feels": true, "feeling": true, "felt": true,
}

// dominantWord returns the most frequent qualifying token across texts.
//
// Tokens are maximal runs of letters of at least three runes, lower-cased.
// Ties go to the token encountered first. Nil when no token qualifies.
func dominantWord(texts []string) *string {
	text := strings.ToLower(strings.Join(texts, " "))

	counts := make(map[string]int)
	var order []string
	count := func(token string) {
		if utf8.RuneCountInString(token) < minTokenLength || fillerWords[token] {
			return
		}
		if _, ok := counts[token]; !ok {
			order = append(order, token)
		}
		counts[token]++
	}

	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			count(text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		count(text[start:])
	}

	if len(order) == 0 {
		return nil
	}

	best := order[0]
	for _, token := range order[1:] {
		if counts[token] > counts[best] {
			best = token
		}
	}
	return &best
}

// firstWord returns the first whitespace-delimited word of text,
// lower-cased and stripped of anything but letters and digits.
func firstWord(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return -1
	}, fields[0])
}

// hasRepetition reports whether the same opening word starts at least
// three answers. Fewer than three opening words never count as repetition.
func hasRepetition(answers []string) bool {
	counts := make(map[string]int)
	total := 0
	for _, a := range answers {
		w := firstWord(a)
		if w == "" {
			continue
		}
		counts[w]++
		total++
	}
	if total < minRepetitionSamples {
		return false
	}

	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	return max >= repetitionThreshold
}
