package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreIdentity(t *testing.T) {
	assert := assert.New(t)

	for _, s := range []string{"", "a", "hello", "buy gold at example.com"} {
		assert.Equal(1.0, Score(s, s), "text: %q", s)
	}
}

func TestScoreSymmetry(t *testing.T) {
	assert := assert.New(t)

	pairs := [][2]string{
		{"hello", "hullo"},
		{"spam spam spam", "spam spam"},
		{"abc", "xyz"},
		{"", "nonempty"},
	}
	for _, p := range pairs {
		assert.Equal(Score(p[0], p[1]), Score(p[1], p[0]), "pair: %q %q", p[0], p[1])
	}
}

func TestScoreRange(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		a, b string
	}{
		{"hello", "hullo"},
		{"dwayne", "duane"},
		{"buy cheap gold", "buy cheap gold now"},
		{"abc", "xyz"},
	}
	for _, fix := range fixtures {
		s := Score(fix.a, fix.b)
		assert.GreaterOrEqual(s, 0.0)
		assert.LessOrEqual(s, 1.0)
	}

	// completely disjoint strings score 0
	assert.Equal(0.0, Score("abc", "xyz"))
	assert.Equal(0.0, Score("", "nonempty"))

	// near-duplicates score high, well-separated from unrelated text
	assert.Greater(Score("buy cheap gold", "buy cheap gold now"), 0.9)
	assert.Less(Score("good morning", "server restart in 5"), 0.7)
}
