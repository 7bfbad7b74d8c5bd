// Package widgets builds the presentational pieces shared by dashboard pages.
package widgets

// Tone selects a stat card's accent colour. Pages style each tone by name.
type Tone string

const (
	ToneDefault Tone = "default"
	ToneRed     Tone = "red"
	ToneGreen   Tone = "green"
	ToneInfo    Tone = "info"
	ToneWarning Tone = "warning"
	ToneBlue    Tone = "blue"
	ToneYellow  Tone = "yellow"
)

// StatCard is a titled headline number.
type StatCard struct {
	Title    string
	Value    string
	Subtitle string
	Tone     Tone
}

// Toggle picks on when cond holds and off otherwise.
func Toggle(cond bool, on, off Tone) Tone {
	if cond {
		return on
	}
	return off
}
