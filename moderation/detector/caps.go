package detector

import "unicode"

// CapsDetector blocks messages whose upper-case ratio exceeds a threshold.
// Messages shorter than MinLength runes are never blocked regardless of
// their case ratio.
type CapsDetector struct {
	// MinLength is the minimum message length (in runes) for the check to
	// apply at all.
	MinLength int
	// Ratio is the upper-case fraction above which a message is blocked,
	// strictly exceeded (eg, 0.70).
	Ratio float64
}

func (d *CapsDetector) Check(message string, exempt bool) Verdict {
	if exempt {
		return Verdict{}
	}
	runes := []rune(message)
	if len(runes) == 0 || len(runes) < d.MinLength {
		return Verdict{}
	}
	upper := 0
	for _, r := range runes {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if float64(upper)/float64(len(runes)) > d.Ratio {
		return Verdict{Blocked: true, Category: CategoryCaps, Reason: ReasonCaps, Details: message}
	}
	return Verdict{}
}
