package console

import (
	"github.com/charmbracelet/lipgloss"

	"prover/internal/app/results"
)

var (
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0"))
	bracketStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))

	kindStyles = map[results.Kind]lipgloss.Style{
		results.KindStdout:   lipgloss.NewStyle().Foreground(lipgloss.Color("#BDBDBD")),
		results.KindStderr:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA726")),
		results.KindExit:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		results.KindWriteln:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		results.KindPriority: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9D7BF5")),
		results.KindTracing:  lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E")).Italic(true),
		results.KindWarning:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD54F")),
		results.KindError:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF5350")),
		results.KindDebug:    lipgloss.NewStyle().Foreground(lipgloss.Color("#757575")),
		results.KindFailure:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#C62828")),
	}
)

// render formats a result as KIND [[text]], colored when styled is set
func render(r results.Result, styled bool) string {
	if !styled {
		return r.String()
	}

	style, ok := kindStyles[r.Kind]
	if !ok {
		style = textStyle
	}

	return style.Render(r.Kind.String()) + " " +
		bracketStyle.Render("[[") + textStyle.Render(r.Text) + bracketStyle.Render("]]")
}
