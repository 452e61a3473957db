// Package icon validates and normalizes block type icons.
//
// An icon is valid when it is a non-empty string (a dashicon slug or raw
// markup), a renderable element, a callable, or an already normalized
// structured icon whose src is itself valid.
package icon

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/lucasb-eyer/go-colorful"
)

// Default is the icon given to block types that declare none.
const Default = "block-default"

// Foreground candidates, tried in order before falling back to black or white.
var foregroundCandidates = []string{"#191e23", "#fff"}

// minimumContrast is the WCAG AA ratio for normal sized text.
const minimumContrast = 4.5

// IsValid reports whether v can be used as an icon source.
func IsValid(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case blocktype.Element:
		return true
	case *blocktype.Icon:
		return val != nil && IsValid(val.Src)
	}
	return blocktype.IsCallable(v)
}

// Normalize returns the structured form of v. Plain sources are wrapped as
// {Src: v}. Structured icons, given as *Icon, Icon or a map with a src key,
// get a readable foreground and a translucent shadow color when they have a
// background and those are not already set. Anything else is wrapped
// unchanged so validation can reject it.
func Normalize(v any) *blocktype.Icon {
	if converted, err := blocktype.ToIcon(v); err == nil {
		v = converted
	}
	if icon, ok := v.(*blocktype.Icon); ok && icon != nil {
		out := *icon
		if out.Background != "" {
			if out.Foreground == "" {
				out.Foreground = MostReadable(out.Background)
			}
			if out.ShadowColor == "" {
				out.ShadowColor = Shadow(out.Background)
			}
		}
		return &out
	}
	return &blocktype.Icon{Src: v}
}

// MostReadable picks the first candidate foreground that meets the contrast
// minimum against background, then black or white, whichever contrasts more.
// Unparseable backgrounds yield the first candidate.
func MostReadable(background string) string {
	bg, err := parseColor(background)
	if err != nil {
		return foregroundCandidates[0]
	}

	best, bestRatio := "", 0.0
	for _, candidate := range foregroundCandidates {
		fg, err := parseColor(candidate)
		if err != nil {
			continue
		}
		ratio := Contrast(bg, fg)
		if ratio > bestRatio {
			best, bestRatio = candidate, ratio
		}
	}
	if bestRatio >= minimumContrast {
		return best
	}

	black, _ := colorful.Hex("#000000")
	white, _ := colorful.Hex("#ffffff")
	if Contrast(bg, black) >= Contrast(bg, white) {
		return "#000"
	}
	return "#fff"
}

// Shadow returns background at 30% opacity as an rgba() string.
func Shadow(background string) string {
	c, err := parseColor(background)
	if err != nil {
		return ""
	}
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, 0.3)", r, g, b)
}

// Contrast returns the WCAG contrast ratio between two colors.
func Contrast(a, b colorful.Color) float64 {
	la, lb := luminance(a), luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// parseColor accepts the #rgb and #rrggbb hex forms.
func parseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) == 4 {
		s = fmt.Sprintf("#%c%c%c%c%c%c", s[1], s[1], s[2], s[2], s[3], s[3])
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, err
	}
	if !c.IsValid() {
		return colorful.Color{}, fmt.Errorf("invalid color %q", s)
	}
	return c, nil
}
