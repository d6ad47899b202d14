package cli

import (
	"github.com/charmbracelet/lipgloss"

	"prover/internal/config"
)

// Headline - High-emphasis text for section headers
var (
	headlineLarge = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).MarginTop(1)
)

// Title - Medium-emphasis text for titles and subtitles
var (
	titleMedium = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
)

// Body - Main content text
var (
	bodyLarge  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0"))
	bodyMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0"))
)

// Label - Small text for labels, captions, and supplementary content
var (
	labelLarge = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E")).Italic(true).MarginTop(1)
)

// Semantic styles - mapped to the typography scale above
var (
	sectionHeader = headlineLarge.MarginBottom(1)
	helpText      = labelLarge

	commandName = titleMedium
	exampleCode = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA726"))
	errorLabel  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF5350"))
	successMark = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))

	appNameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	appVersionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#BDBDBD"))
	titleWrapper    = lipgloss.NewStyle().MarginTop(1).MarginBottom(1)
)

// RenderTitle renders the app title block with name, version, and description
func RenderTitle() string {
	title := titleWrapper.Render(
		appNameStyle.Render(config.AppName) + appVersionStyle.Render(" v"+config.Version),
	)
	description := bodyLarge.Render(config.AppDescription)

	return lipgloss.JoinVertical(lipgloss.Left, title, description)
}

// RenderHelp renders usage, console directives and examples
func RenderHelp() string {
	usage := lipgloss.JoinVertical(
		lipgloss.Left,
		bodyMedium.Render("  "+commandName.Render("prover [run] [logic]")+"     Start the prover and attach the console"),
		bodyMedium.Render("  "+commandName.Render("prover init [--force]")+"    Generate prover.yaml"),
		bodyMedium.Render("  "+commandName.Render("prover version")+"           Show version"),
	)

	flags := lipgloss.JoinVertical(
		lipgloss.Left,
		bodyMedium.Render("  "+commandName.Render("--ml")+"                     Submit input lines as ML code"),
		bodyMedium.Render("  "+commandName.Render("--raw")+"                    Submit input lines verbatim"),
		bodyMedium.Render("  "+commandName.Render("-c, --config <path>")+"      Configuration file"),
	)

	directives := lipgloss.JoinVertical(
		lipgloss.Left,
		bodyMedium.Render("  "+exampleCode.Render(":interrupt")+"               Interrupt the running command"),
		bodyMedium.Render("  "+exampleCode.Render(":stats")+"                   Log prover CPU and memory"),
		bodyMedium.Render("  "+exampleCode.Render(":quit")+"                    Close prover input"),
	)

	examples := lipgloss.JoinVertical(
		lipgloss.Left,
		bodyMedium.Render("  "+exampleCode.Render("prover HOL")+"               Run commands against HOL"),
		bodyMedium.Render("  "+exampleCode.Render("prover --ml")+"              Evaluate ML in the default logic"),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		RenderTitle(),
		sectionHeader.Render("Usage:"),
		usage,
		sectionHeader.Render("Flags:"),
		flags,
		sectionHeader.Render("Console:"),
		directives,
		sectionHeader.Render("Examples:"),
		examples,
		helpText.Render("Ctrl+C interrupts the prover, end of input closes it"),
	) + "\n"
}

// RenderError renders an error line
func RenderError(err error) string {
	return errorLabel.Render("Error:") + " " + err.Error()
}

// RenderCreated renders the init success line
func RenderCreated(path string) string {
	return successMark.Render("✓") + " Created " + path
}
