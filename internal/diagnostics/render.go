package diagnostics

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// PluginRow is one line of a plugin listing, independent of the
// pkg/plugin.Info type so this package never imports the domain model.
type PluginRow struct {
	Name     string
	Role     string
	Tier     string
	Language string
	Version  string
	Matches  []string
}

// RenderPluginTable renders a styled, fixed-width table of discovered
// plugins for "jn plugins list" terminal output.
func RenderPluginTable(rows []PluginRow) string {
	base := NewBaseStyles()
	if len(rows) == 0 {
		return base.TextMuted.Render("no plugins discovered")
	}

	header := fmt.Sprintf("%-16s %-12s %-8s %-8s %-8s %s", "NAME", "ROLE", "TIER", "LANG", "VERSION", "MATCHES")
	var b strings.Builder
	b.WriteString(base.Title.Render(header))
	b.WriteString("\n")
	b.WriteString(base.Border.Render(strings.Repeat("─", len(header))))
	b.WriteString("\n")
	for _, r := range rows {
		line := fmt.Sprintf("%-16s %-12s %-8s %-8s %-8s %s",
			r.Name, r.Role, r.Tier, r.Language, r.Version, strings.Join(r.Matches, ", "))
		b.WriteString(base.Text.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMarkdown renders markdown source as styled terminal output, used by
// diagnostic commands invoked with --format markdown (profile documents,
// plugin listings rendered as a markdown table first).
func RenderMarkdown(source string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("building markdown renderer: %w", err)
	}
	out, err := renderer.Render(source)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// PluginMarkdownTable formats rows as a markdown table source, suitable for
// feeding to RenderMarkdown.
func PluginMarkdownTable(rows []PluginRow) string {
	var b strings.Builder
	b.WriteString("| Name | Role | Tier | Lang | Version | Matches |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			r.Name, r.Role, r.Tier, r.Language, r.Version, strings.Join(r.Matches, ", "))
	}
	return b.String()
}
