package processor

import (
	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/icon"
)

// Rejection messages.
const (
	MsgMalformedDefinition     = "Block settings must be a valid object."
	MsgMissingRequiredCallable = "The \"save\" property must be a valid function."
	MsgInvalidOptionalCallable = "The \"edit\" property must be a valid component."
	MsgInvalidTitleType        = "Block titles must be strings."
	MsgInvalidIcon             = "The icon passed is invalid. The icon should be a string, an element, a function, or an object with a valid src."
)

func missingTitle(name string) string {
	return "The block \"" + name + "\" must have a title."
}

// asSettings returns v as a definition record, or a MALFORMED_DEFINITION
// rejection when a filter produced something else.
func asSettings(v any, name string) (*blocktype.Settings, *errors.Error) {
	s, ok := v.(*blocktype.Settings)
	if !ok || s == nil {
		return nil, errors.Reject(errors.ErrMalformedDefinition, name, MsgMalformedDefinition).
			WithDetail(errors.DetailType, typeName(v))
	}
	return s, nil
}

// Validate checks the callables, the title and the icon of s in that order
// and returns the first failure. The icon must already be normalized.
func Validate(s *blocktype.Settings) *errors.Error {
	if err := validateCallables(s); err != nil {
		return err
	}
	if err := validateTitle(s); err != nil {
		return err
	}
	return validateIcon(s)
}

func validateCallables(s *blocktype.Settings) *errors.Error {
	if !blocktype.IsCallable(s.Save) {
		return errors.Reject(errors.ErrMissingRequiredCallable, s.Name, MsgMissingRequiredCallable)
	}
	if s.Edit != nil && !blocktype.IsCallable(s.Edit) {
		return errors.Reject(errors.ErrInvalidOptionalCallable, s.Name, MsgInvalidOptionalCallable)
	}
	return nil
}

func validateTitle(s *blocktype.Settings) *errors.Error {
	if s.Title == nil || s.Title == "" {
		return errors.Reject(errors.ErrMissingTitle, s.Name, missingTitle(s.Name))
	}
	if _, ok := s.Title.(string); !ok {
		return errors.Reject(errors.ErrInvalidTitleType, s.Name, MsgInvalidTitleType)
	}
	return nil
}

func validateIcon(s *blocktype.Settings) *errors.Error {
	normalized, ok := s.Icon.(*blocktype.Icon)
	if !ok || normalized == nil || !icon.IsValid(normalized.Src) {
		return errors.Reject(errors.ErrInvalidIcon, s.Name, MsgInvalidIcon)
	}
	return nil
}
