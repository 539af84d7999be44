package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamemod/warden/moderation/pattern"
)

func newSwearFixture(t *testing.T, whitelist []string) *SwearDetector {
	t.Helper()
	banned, err := pattern.CompileBannedWords(
		[]string{"hell", "damn"},
		map[rune]string{'e': "[eE3]", 'a': "[aA@4]"},
	)
	require.NoError(t, err)
	return NewSwearDetector(pattern.NewMatcher(banned, pattern.CompileLiteralSet(whitelist)))
}

func TestSwearDetection(t *testing.T) {
	assert := assert.New(t)

	d := newSwearFixture(t, nil)

	fixtures := []struct {
		text string
		out  bool
	}{
		{text: "", out: false},
		{text: "have a nice day", out: false},
		{text: "what the hell", out: true},
		{text: "h3ll no", out: true},
		{text: "D@MN", out: true},
		{text: "shell script", out: true}, // containment, not word boundaries
	}
	for _, fix := range fixtures {
		v := d.Check(fix.text, false)
		assert.Equal(fix.out, v.Blocked, "text: %q", fix.text)
		if v.Blocked {
			assert.Equal(CategorySwear, v.Category)
			assert.Equal(ReasonSwear, v.Reason)
		}
	}
}

func TestSwearWhitelistedContainer(t *testing.T) {
	assert := assert.New(t)

	d := newSwearFixture(t, []string{"shell"})
	assert.False(d.Check("shell script", false).Blocked)
	assert.True(d.Check("shell hell", false).Blocked)
}

func TestSwearExemption(t *testing.T) {
	d := newSwearFixture(t, nil)
	assert.False(t, d.Check("what the hell", true).Blocked)
}

func TestParseCategoryFallback(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(CategorySwear, ParseCategory("swear"))
	assert.Equal(CategoryAdvertisement, ParseCategory(" Advertisement "))
	assert.Equal(CategoryCaps, ParseCategory("CAPS"))
	assert.Equal(CategorySpam, ParseCategory("bogus"))
}
