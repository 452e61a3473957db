package icon

import (
	"strings"

	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/beevik/etree"
)

// SVG is an inline SVG icon. It is a blocktype.Element.
type SVG struct {
	doc *etree.Document
}

// LooksLikeSVG reports whether s is inline SVG markup rather than a slug.
func LooksLikeSVG(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "<svg")
}

// ParseSVG parses inline SVG markup. The root element must be <svg>.
func ParseSVG(markup string) (*SVG, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(strings.TrimSpace(markup)); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidIcon, "cannot parse svg markup")
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return nil, errors.New(errors.ErrInvalidIcon, "svg markup must have an <svg> root element")
	}
	if root.SelectAttr("xmlns") == nil {
		root.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	}
	return &SVG{doc: doc}, nil
}

// Render returns the markup of the icon.
func (s *SVG) Render() string {
	if s == nil || s.doc == nil {
		return ""
	}
	out, err := s.doc.WriteToString()
	if err != nil {
		return ""
	}
	return out
}

// ViewBox returns the viewBox attribute, if any.
func (s *SVG) ViewBox() string {
	if s == nil || s.doc == nil {
		return ""
	}
	return s.doc.Root().SelectAttrValue("viewBox", "")
}

// Paths returns the number of <path> elements anywhere in the icon.
func (s *SVG) Paths() int {
	if s == nil || s.doc == nil {
		return 0
	}
	return len(s.doc.FindElements("//path"))
}
