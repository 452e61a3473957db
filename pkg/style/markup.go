package style

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MarkupParser renders [tag]text[/tag] markup with named styles.
type MarkupParser struct {
	styles   map[string]lipgloss.Style
	patterns map[string]*regexp.Regexp
}

// NewMarkupParser creates a parser with the default tags.
func NewMarkupParser() *MarkupParser {
	p := &MarkupParser{
		styles:   make(map[string]lipgloss.Style),
		patterns: make(map[string]*regexp.Regexp),
	}
	for tag, s := range map[string]lipgloss.Style{
		"title":      TitleStyle,
		"success":    SuccessStyle,
		"error":      ErrorStyle,
		"warning":    WarningStyle,
		"deprecated": DeprecatedStyle,
		"info":       InfoStyle,
		"code":       CodeStyle,
		"path":       PathStyle,
		"muted":      MutedStyle,
		"bold":       lipgloss.NewStyle().Bold(true),
		"block":      BlockNameStyle,
		"category":   CategoryStyle,
	} {
		p.AddStyle(tag, s)
	}
	return p
}

// AddStyle registers or replaces a tag.
func (p *MarkupParser) AddStyle(tag string, style lipgloss.Style) {
	p.styles[tag] = style
	p.patterns[tag] = regexp.MustCompile(`\[` + regexp.QuoteMeta(tag) + `\](.*?)\[/` + regexp.QuoteMeta(tag) + `\]`)
}

// Render processes markup text and returns styled output. Nested tags are
// resolved innermost first.
func (p *MarkupParser) Render(text string) string {
	result := text
	for {
		before := result
		for tag, pattern := range p.patterns {
			style := p.styles[tag]
			result = pattern.ReplaceAllStringFunc(result, func(match string) string {
				sub := pattern.FindStringSubmatch(match)
				if len(sub) != 2 || (strings.Contains(sub[1], "[") && strings.Contains(sub[1], "[/")) {
					return match
				}
				return style.Render(sub[1])
			})
		}
		if result == before {
			return stripTags(result, p.patterns)
		}
	}
}

// Strip removes markup tags without styling.
func (p *MarkupParser) Strip(text string) string {
	return stripTags(text, p.patterns)
}

func stripTags(text string, patterns map[string]*regexp.Regexp) string {
	for {
		before := text
		for _, pattern := range patterns {
			text = pattern.ReplaceAllString(text, "$1")
		}
		if text == before {
			return text
		}
	}
}

var defaultParser = NewMarkupParser()

// Render uses the default parser.
func Render(text string) string {
	return defaultParser.Render(text)
}

// Strip uses the default parser.
func Strip(text string) string {
	return defaultParser.Strip(text)
}
