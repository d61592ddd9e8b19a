// Package diagnostics renders the non-pipeline, human-facing output of jn's
// diagnostic subcommands ("jn plugins list", "jn profile show") — never the
// NDJSON/raw data path, which flows untouched through the pipeline.
package diagnostics

import "github.com/charmbracelet/lipgloss"

// SemanticColors is jn's adaptive light/dark palette for diagnostic tables.
type SemanticColors struct {
	Primary    lipgloss.TerminalColor
	Text       lipgloss.TerminalColor
	TextMuted  lipgloss.TerminalColor
	TextTitle  lipgloss.TerminalColor
	Border     lipgloss.TerminalColor
	Success    lipgloss.TerminalColor
	Warning    lipgloss.TerminalColor
	Error      lipgloss.TerminalColor
}

// Colors is jn's semantic color palette for diagnostic rendering.
var Colors = SemanticColors{
	Primary: lipgloss.CompleteAdaptiveColor{
		Light: lipgloss.CompleteColor{TrueColor: "#0969DA", ANSI256: "26", ANSI: "4"},
		Dark:  lipgloss.CompleteColor{TrueColor: "#89B4FA", ANSI256: "111", ANSI: "12"},
	},
	Text: lipgloss.CompleteAdaptiveColor{
		Light: lipgloss.CompleteColor{TrueColor: "#1F2328", ANSI256: "235", ANSI: "0"},
		Dark:  lipgloss.CompleteColor{TrueColor: "#CDD6F4", ANSI256: "252", ANSI: "7"},
	},
	TextMuted: lipgloss.CompleteAdaptiveColor{
		Light: lipgloss.CompleteColor{TrueColor: "#6B6B6B", ANSI256: "243", ANSI: "8"},
		Dark:  lipgloss.CompleteColor{TrueColor: "#7F849C", ANSI256: "244", ANSI: "8"},
	},
	TextTitle: lipgloss.CompleteAdaptiveColor{
		Light: lipgloss.CompleteColor{TrueColor: "#0969DA", ANSI256: "26", ANSI: "4"},
		Dark:  lipgloss.CompleteColor{TrueColor: "#89B4FA", ANSI256: "111", ANSI: "12"},
	},
	Border: lipgloss.CompleteAdaptiveColor{
		Light: lipgloss.CompleteColor{TrueColor: "#D0D7DE", ANSI256: "252", ANSI: "7"},
		Dark:  lipgloss.CompleteColor{TrueColor: "#45475A", ANSI256: "238", ANSI: "8"},
	},
	Success: lipgloss.CompleteAdaptiveColor{
		Light: lipgloss.CompleteColor{TrueColor: "#1A7F37", ANSI256: "28", ANSI: "2"},
		Dark:  lipgloss.CompleteColor{TrueColor: "#A6E3A1", ANSI256: "114", ANSI: "10"},
	},
	Warning: lipgloss.CompleteAdaptiveColor{
		Light: lipgloss.CompleteColor{TrueColor: "#9A6700", ANSI256: "136", ANSI: "3"},
		Dark:  lipgloss.CompleteColor{TrueColor: "#F9E2AF", ANSI256: "222", ANSI: "11"},
	},
	Error: lipgloss.CompleteAdaptiveColor{
		Light: lipgloss.CompleteColor{TrueColor: "#CF222E", ANSI256: "160", ANSI: "1"},
		Dark:  lipgloss.CompleteColor{TrueColor: "#F38BA8", ANSI256: "168", ANSI: "9"},
	},
}

// BaseStyles are reusable style primitives built on Colors.
type BaseStyles struct {
	Text      lipgloss.Style
	TextMuted lipgloss.Style
	Title     lipgloss.Style
	Border    lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
}

// NewBaseStyles builds BaseStyles from Colors.
func NewBaseStyles() *BaseStyles {
	return &BaseStyles{
		Text:      lipgloss.NewStyle().Foreground(Colors.Text),
		TextMuted: lipgloss.NewStyle().Foreground(Colors.TextMuted).Faint(true),
		Title:     lipgloss.NewStyle().Foreground(Colors.TextTitle).Bold(true),
		Border:    lipgloss.NewStyle().Foreground(Colors.Border),
		Success:   lipgloss.NewStyle().Foreground(Colors.Success),
		Warning:   lipgloss.NewStyle().Foreground(Colors.Warning),
		Error:     lipgloss.NewStyle().Foreground(Colors.Error),
	}
}
