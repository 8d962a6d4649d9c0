package engine

import "fmt"

// Elapsed is a non-negative duration in whole seconds.
type Elapsed int64

// ElapsedBetween returns to - from, clamped at zero.
func ElapsedBetween(from, to int64) Elapsed {
	if to < from {
		return 0
	}
	return Elapsed(to - from)
}

// Parts returns zero-padded hours, minutes and seconds. Hours are not wrapped
// at 24.
func (d Elapsed) Parts() (string, string, string) {
	seconds := int64(d)
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d", seconds/3600),
		fmt.Sprintf("%02d", (seconds%3600)/60),
		fmt.Sprintf("%02d", seconds%60)
}

// String formats as HH:MM:SS.
func (d Elapsed) String() string {
	h, m, s := d.Parts()
	return h + ":" + m + ":" + s
}

// Metadata returns the template fields user-facing messages expect.
func (d Elapsed) Metadata() map[string]string {
	h, m, s := d.Parts()
	return map[string]string{
		"Hours":   h,
		"Minutes": m,
		"Seconds": s,
		"Elapsed": d.String(),
	}
}
