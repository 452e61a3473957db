package style

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/diagnostics"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/pterm/pterm"
)

// Renderer renders registry views for the CLI.
type Renderer interface {
	RenderBlockList(blocks []*blocktype.Settings) string
	RenderCategories(categories []blocktype.Category, counts map[string]int) string
	RenderCollections(collections []blocktype.Collection) string
	RenderDiagnostics(diags []diagnostics.Diagnostic) string
	RenderSummary(registered, rejected int) string
	RenderError(err error) string
}

// NewRenderer returns the renderer for a resolved format.
func NewRenderer(format Format) Renderer {
	if format == FormatTerminal {
		return NewTerminalRenderer()
	}
	return NewPlainRenderer()
}

// TerminalRenderer renders with colors and indicators.
type TerminalRenderer struct{}

// NewTerminalRenderer creates a terminal renderer.
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

// RenderBlockList renders one line per block type.
func (r *TerminalRenderer) RenderBlockList(blocks []*blocktype.Settings) string {
	if len(blocks) == 0 {
		return MutedStyle.Render("No block types registered")
	}

	width := 0
	for _, s := range blocks {
		if len(s.Name) > width {
			width = len(s.Name)
		}
	}

	var result strings.Builder
	result.WriteString(TitleStyle.Render("Block Types") + "\n\n")
	for _, s := range blocks {
		title, _ := s.Title.(string)
		line := fmt.Sprintf("%s %s  %s", InfoIndicator,
			BlockNameStyle.Render(fmt.Sprintf("%-*s", width, s.Name)), title)
		if s.Category != "" {
			line += " " + CategoryStyle.Render("["+s.Category+"]")
		}
		result.WriteString(line + "\n")
	}
	return strings.TrimRight(result.String(), "\n")
}

// RenderCategories renders categories with the number of blocks in each.
func (r *TerminalRenderer) RenderCategories(categories []blocktype.Category, counts map[string]int) string {
	if len(categories) == 0 {
		return MutedStyle.Render("No categories")
	}
	var result strings.Builder
	result.WriteString(TitleStyle.Render("Categories") + "\n\n")
	for _, c := range categories {
		result.WriteString(fmt.Sprintf("%s %s  %s %s\n", InfoIndicator,
			CategoryStyle.Render(c.Slug), c.Title, MutedStyle.Render(fmt.Sprintf("(%d)", counts[c.Slug]))))
	}
	return strings.TrimRight(result.String(), "\n")
}

// RenderCollections renders the registered namespace collections.
func (r *TerminalRenderer) RenderCollections(collections []blocktype.Collection) string {
	if len(collections) == 0 {
		return MutedStyle.Render("No collections")
	}
	var result strings.Builder
	result.WriteString(TitleStyle.Render("Collections") + "\n\n")
	for _, c := range collections {
		result.WriteString(fmt.Sprintf("%s %s  %s\n", InfoIndicator, BlockNameStyle.Render(c.Namespace), c.Title))
	}
	return strings.TrimRight(result.String(), "\n")
}

// RenderDiagnostics renders one line per diagnostic.
func (r *TerminalRenderer) RenderDiagnostics(diags []diagnostics.Diagnostic) string {
	var result strings.Builder
	for _, d := range diags {
		var indicator string
		switch d.Level {
		case diagnostics.LevelError:
			indicator = ErrorIndicator
		case diagnostics.LevelWarn:
			indicator = WarningIndicator
		case diagnostics.LevelDeprecated:
			indicator = DeprecatedIndicator
		default:
			indicator = InfoIndicator
		}
		result.WriteString(fmt.Sprintf("%s %s %s %s\n", indicator,
			BlockNameStyle.Render(d.Block), MutedStyle.Render(string(d.Kind)), d.Message))
	}
	return strings.TrimRight(result.String(), "\n")
}

// RenderSummary renders registration totals.
func (r *TerminalRenderer) RenderSummary(registered, rejected int) string {
	out := fmt.Sprintf("%s %d registered", SuccessIndicator, registered)
	if rejected > 0 {
		out += fmt.Sprintf(", %s %d rejected", ErrorIndicator, rejected)
	}
	return out
}

// RenderError renders an error with its code when it has one.
func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		return fmt.Sprintf("%s Error [%s]: %s",
			pterm.Error.Prefix.Text,
			pterm.Error.MessageStyle.Sprint(string(code)),
			err.Error())
	}
	return fmt.Sprintf("%s %s", pterm.Error.Prefix.Text, pterm.Error.MessageStyle.Sprint(err.Error()))
}

// PlainRenderer renders without styling.
type PlainRenderer struct{}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// RenderBlockList renders one tab-separated line per block type.
func (r *PlainRenderer) RenderBlockList(blocks []*blocktype.Settings) string {
	if len(blocks) == 0 {
		return "No block types registered"
	}
	var result strings.Builder
	for _, s := range blocks {
		title, _ := s.Title.(string)
		result.WriteString(fmt.Sprintf("%s\t%s\t%s\n", s.Name, title, s.Category))
	}
	return strings.TrimRight(result.String(), "\n")
}

// RenderCategories renders one line per category.
func (r *PlainRenderer) RenderCategories(categories []blocktype.Category, counts map[string]int) string {
	if len(categories) == 0 {
		return "No categories"
	}
	var result strings.Builder
	for _, c := range categories {
		result.WriteString(fmt.Sprintf("%s\t%s\t%d\n", c.Slug, c.Title, counts[c.Slug]))
	}
	return strings.TrimRight(result.String(), "\n")
}

// RenderCollections renders one line per collection.
func (r *PlainRenderer) RenderCollections(collections []blocktype.Collection) string {
	if len(collections) == 0 {
		return "No collections"
	}
	var result strings.Builder
	for _, c := range collections {
		result.WriteString(fmt.Sprintf("%s\t%s\n", c.Namespace, c.Title))
	}
	return strings.TrimRight(result.String(), "\n")
}

// RenderDiagnostics renders diagnostics with their String form.
func (r *PlainRenderer) RenderDiagnostics(diags []diagnostics.Diagnostic) string {
	lines := make([]string, 0, len(diags))
	for _, d := range diags {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}

// RenderSummary renders registration totals.
func (r *PlainRenderer) RenderSummary(registered, rejected int) string {
	return fmt.Sprintf("%d registered, %d rejected", registered, rejected)
}

// RenderError renders a plain error message.
func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %s", err.Error())
}
