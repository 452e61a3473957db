package blockreg

import (
	"os"
	"strings"
	"sync"
	"text/template"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// formatBold bolds s when stdout is a terminal.
func formatBold(s string) string {
	if !stdoutIsTerminal() {
		return s
	}
	return pterm.Bold.Sprint(s)
}

func formatBoldUpper(s string) string {
	return formatBold(strings.ToUpper(s))
}

var templateFuncsOnce sync.Once

// initTemplateFormatting adds the help template functions. Cobra keeps them
// globally, so they are added once per process.
func initTemplateFormatting() {
	templateFuncsOnce.Do(func() {
		cobra.AddTemplateFuncs(template.FuncMap{
			"bold":      formatBold,
			"upper":     strings.ToUpper,
			"boldUpper": formatBoldUpper,
		})
	})
}
