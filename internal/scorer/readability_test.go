package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountSyllables(t *testing.T) {
	cases := map[string]int{
		"cat":      1,
		"table":    1, // silent e trimmed
		"banana":   3,
		"rhythm":   1, // no vowel groups falls back to 1
		"guide":    1,
		"teaching": 2,
	}
	for word, want := range cases {
		assert.Equal(t, want, countSyllables(word), word)
	}
}

func TestFleschReadingEaseBands(t *testing.T) {
	simple := "The cat sat on the mat. The dog ran to the park. We like short words. They read fast."
	dense := "Institutional prioritization of interdepartmental communication methodologies necessitates comprehensive organizational restructuring initiatives."

	easy := fleschReadingEase(simple)
	hard := fleschReadingEase(dense)

	assert.Greater(t, easy, 70.0, "short declarative sentences should score as easy")
	assert.Less(t, hard, 10.0, "polysyllabic jargon should score as hard")
	assert.Greater(t, easy, hard)
}

func TestFleschIgnoresMarkupAndLinks(t *testing.T) {
	plain := "Short words read well. Lists help too."
	decorated := "## Short **words** read well. Lists help too. https://example.com/very/long/url"

	assert.InDelta(t, fleschReadingEase(plain), fleschReadingEase(decorated), 5.0)
}

func TestFleschEmptyText(t *testing.T) {
	assert.Zero(t, fleschReadingEase(""))
	assert.Zero(t, fleschReadingEase("   \n\t "))
}
