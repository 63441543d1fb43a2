// Package painter renders colored and styled text for the shell prompt
// and error sink. It supports success/failure coloring and a small set of
// named themes, adapted from the teacher shell's path/git theming to this
// system's red/green exit-code convention (§4.3: "red $ on non-zero").
package painter

import "strings"

const (
	reset    = "\033[0m"
	makeBold = "\033[1m"

	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[94m"
)

// Painter holds the styling used to render the prompt and error text.
type Painter struct {
	SuccessColour string
	FailureColour string
	ErrorColour   string
	Bold          bool
}

// NewPainter builds a Painter from a named theme, falling back to the
// "webshell" theme for an unrecognized or empty name.
func NewPainter(theme string) Painter {
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "monokai":
		return Painter{SuccessColour: "\033[38;2;166;226;46m", FailureColour: "\033[38;2;249;38;114m", ErrorColour: "\033[38;2;249;38;114m", Bold: true}
	case "ohmybash":
		return Painter{SuccessColour: colorGreen, FailureColour: colorRed, ErrorColour: colorRed, Bold: true}
	default:
		return Painter{SuccessColour: colorGreen, FailureColour: colorRed, ErrorColour: colorRed, Bold: false}
	}
}

// Paint applies the painter's bold setting and the given color to text.
func (p Painter) Paint(colour, text string) string {
	style := ""
	if p.Bold {
		style = makeBold
	}
	return style + colour + text + reset
}

// Prompt renders the prompt string for the given last exit code: success
// colour when code is zero, failure colour otherwise. Matches §8
// invariant 4 ("prompt reflects red iff that code is non-zero").
func (p Painter) Prompt(lastCode int, text string) string {
	if lastCode == 0 {
		return p.Paint(p.SuccessColour, text)
	}
	return p.Paint(p.FailureColour, text)
}

// Error renders error-sink text in the error colour.
func (p Painter) Error(text string) string {
	return p.Paint(p.ErrorColour, text)
}
