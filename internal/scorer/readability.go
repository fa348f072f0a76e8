package scorer

import (
	"regexp"
	"strings"
)

var (
	markupPattern   = regexp.MustCompile("[#*`>|_\\[\\]()-]")
	linkPattern     = regexp.MustCompile(`https?://\S+`)
	sentenceSplit   = regexp.MustCompile(`[.!?]+`)
	vowelGroup      = regexp.MustCompile(`[aeiouy]+`)
	trailingSilentE = regexp.MustCompile(`e$`)
)

// fleschReadingEase computes the standard Flesch index over markdown
// text with markup and URLs stripped. Syllables use a vowel-group
// heuristic, which tracks the real formula closely enough for banding.
func fleschReadingEase(text string) float64 {
	plain := linkPattern.ReplaceAllString(text, "")
	plain = markupPattern.ReplaceAllString(plain, " ")

	words := strings.Fields(plain)
	if len(words) == 0 {
		return 0
	}

	sentences := 0
	for _, s := range sentenceSplit.Split(plain, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(len(words))

	return 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
}

func countSyllables(word string) int {
	w := strings.ToLower(strings.Trim(word, ".,;:!?\"'"))
	if w == "" {
		return 1
	}
	w = trailingSilentE.ReplaceAllString(w, "")
	n := len(vowelGroup.FindAllString(w, -1))
	if n == 0 {
		return 1
	}
	return n
}
