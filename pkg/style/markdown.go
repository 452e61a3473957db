package style

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/charmbracelet/glamour"
)

// BlockMarkdown describes a processed block type as a markdown document.
func BlockMarkdown(s *blocktype.Settings, styles []blocktype.Style, variations []blocktype.Variation) string {
	var b strings.Builder

	title, _ := s.Title.(string)
	fmt.Fprintf(&b, "# %s\n\n", orDash(title))
	fmt.Fprintf(&b, "`%s`\n\n", s.Name)
	if desc, ok := s.Description.(string); ok && desc != "" {
		fmt.Fprintf(&b, "%s\n\n", desc)
	}

	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Category | %s |\n", orDash(s.Category))
	if s.APIVersion != 0 {
		fmt.Fprintf(&b, "| API version | %d |\n", s.APIVersion)
	}
	fmt.Fprintf(&b, "| Icon | %s |\n", iconSummary(s.Icon))
	if len(s.Keywords) > 0 {
		fmt.Fprintf(&b, "| Keywords | %s |\n", strings.Join(s.Keywords, ", "))
	}
	if len(s.Parent) > 0 {
		fmt.Fprintf(&b, "| Parent | %s |\n", strings.Join(s.Parent, ", "))
	}
	fmt.Fprintf(&b, "| Save | %s |\n", callableSummary(s.Save))
	if s.Edit != nil {
		fmt.Fprintf(&b, "| Edit | %s |\n", callableSummary(s.Edit))
	}
	b.WriteString("\n")

	if len(s.Supports) > 0 {
		b.WriteString("## Supports\n\n")
		keys := make([]string, 0, len(s.Supports))
		for k := range s.Supports {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- `%s`: %v\n", k, blocktype.ExportValue(s.Supports[k]))
		}
		b.WriteString("\n")
	}

	if len(styles) > 0 {
		b.WriteString("## Styles\n\n")
		for _, st := range styles {
			line := fmt.Sprintf("- `%s`", st.Name)
			if st.Label != "" {
				line += " " + st.Label
			}
			if st.IsDefault {
				line += " (default)"
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(variations) > 0 {
		b.WriteString("## Variations\n\n")
		for _, v := range variations {
			line := fmt.Sprintf("- `%s`", v.Name)
			if v.Title != "" {
				line += " " + v.Title
			}
			if len(v.Scope) > 0 {
				line += " [" + strings.Join(v.Scope, ", ") + "]"
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(s.Deprecated) > 0 {
		fmt.Fprintf(&b, "## Deprecations\n\n%d earlier version(s) can be migrated.\n", len(s.Deprecated))
	}
	return b.String()
}

// RenderMarkdown renders markdown for the terminal. With FormatText, or when
// rendering fails, the markdown is returned as is.
func RenderMarkdown(content string, format Format, width int) string {
	if format != FormatTerminal {
		return content
	}
	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		options = append(options, glamour.WithWordWrap(width))
	}
	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

func iconSummary(v any) string {
	switch icon := v.(type) {
	case nil:
		return "-"
	case *blocktype.Icon:
		out := iconSummary(icon.Src)
		if icon.Background != "" {
			out += fmt.Sprintf(" on %s (text %s)", icon.Background, icon.Foreground)
		}
		return out
	case string:
		return icon
	case blocktype.Element:
		return "inline svg"
	}
	return callableSummary(v)
}

func callableSummary(v any) string {
	if c, ok := v.(blocktype.Callable); ok {
		return "`" + c.CallableRef() + "`"
	}
	if blocktype.IsCallable(v) {
		return "function"
	}
	return "-"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
