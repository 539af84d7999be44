package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapsRatioAndMinLength(t *testing.T) {
	assert := assert.New(t)

	d := &CapsDetector{MinLength: 10, Ratio: 0.70}

	fixtures := []struct {
		text string
		out  bool
	}{
		{text: "", out: false},
		{text: "FFFFFFFFFF", out: true},      // 10 runes, 100% > 70%
		{text: "Ff", out: false},             // below minimum length
		{text: "SHORTCAPS", out: false},      // 9 runes, still below minimum
		{text: "PLEASE STOP YELLING", out: true},
		{text: "this is fine honestly", out: false},
		{text: "Mixed Case Message Here", out: false},
	}
	for _, fix := range fixtures {
		assert.Equal(fix.out, d.Check(fix.text, false).Blocked, "text: %q", fix.text)
	}
}

func TestCapsStrictlyExceeds(t *testing.T) {
	assert := assert.New(t)

	// exactly at the threshold does not block
	d := &CapsDetector{MinLength: 10, Ratio: 0.5}
	assert.False(d.Check("AAAAAbbbbb", false).Blocked) // exactly 50%
	assert.True(d.Check("AAAAAAbbbb", false).Blocked)  // 60% > 50%
}

func TestCapsExemption(t *testing.T) {
	d := &CapsDetector{MinLength: 1, Ratio: 0.1}
	assert.False(t, d.Check("ALL CAPS RAGE", true).Blocked)
}
