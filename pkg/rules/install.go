package rules

import (
	"fmt"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/hooks"
	"github.com/arthur-debert/blockreg/pkg/logging"
)

// NamespacePrefix prefixes the filter namespace of every installed rule.
const NamespacePrefix = "blockreg/rules/"

// Namespace returns the filter namespace of the i-th rule.
func Namespace(i int) string {
	return fmt.Sprintf("%s%d", NamespacePrefix, i)
}

// Filter returns the registration filter for r. It touches live definitions
// only; deprecations pass through.
func (r Rule) Filter() hooks.FilterFunc {
	return func(value any, args ...any) any {
		s, ok := value.(*blocktype.Settings)
		if !ok {
			return value
		}
		if len(args) > 1 && args[1] != nil {
			return value
		}
		name := s.Name
		if len(args) > 0 {
			if n, ok := args[0].(string); ok {
				name = n
			}
		}
		if r.Matches(name) {
			r.Apply(s)
		}
		return s
	}
}

// Install validates rules and adds them to filters on the registration
// hook. Nothing is installed if any rule is invalid. The returned func
// removes what was installed.
func Install(filters *hooks.Filters, rules []Rule) (func(), error) {
	logger := logging.GetLogger("rules")
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	installed := make([]string, 0, len(rules))
	uninstall := func() {
		for _, ns := range installed {
			filters.RemoveFilter(hooks.HookRegisterBlockType, ns)
		}
		logger.Debug().Int("rules", len(installed)).Msg("Filter rules removed")
	}

	for i, r := range rules {
		ns := Namespace(i)
		if err := filters.AddFilter(hooks.HookRegisterBlockType, ns, r.Filter(), r.FilterPriority()); err != nil {
			uninstall()
			return nil, err
		}
		installed = append(installed, ns)
	}

	logger.Info().Int("rules", len(rules)).Msg("Filter rules installed")
	return uninstall, nil
}
