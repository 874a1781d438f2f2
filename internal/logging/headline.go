package logging

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var headlineStyle = lipgloss.NewStyle().
	Bold(true).
	Border(lipgloss.NormalBorder()).
	Padding(0, 1)

// Headline renders a boxed section title for the run output.
func Headline(text string) string {
	return headlineStyle.Render(text)
}

// UserHeadline prints a boxed section title to stdout.
func UserHeadline(text string) {
	fmt.Fprintln(os.Stdout, Headline(text))
}
