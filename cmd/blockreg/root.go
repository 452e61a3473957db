package blockreg

import (
	"fmt"
	"os"

	"github.com/arthur-debert/blockreg/internal/version"
	"github.com/arthur-debert/blockreg/pkg/config"
	"github.com/arthur-debert/blockreg/pkg/logging"
	"github.com/arthur-debert/blockreg/pkg/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	verbosity   int
	configPath  string
	definitions []string
	format      string

	fs afero.Fs
}

// loadConfig loads the configuration with the global flags layered on top.
func (o *rootOptions) loadConfig(overrides map[string]any) (*config.Config, error) {
	if overrides == nil {
		overrides = map[string]any{}
	}
	if len(o.definitions) > 0 {
		overrides["definitions.paths"] = o.definitions
	}
	cfg, err := config.LoadWithOverrides(o.configPath, overrides)
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	if cfg.Logging.Verbosity > o.verbosity || cfg.Logging.File != "" || cfg.Logging.JSON {
		logging.Setup(logging.Options{
			Verbosity: max(o.verbosity, cfg.Logging.Verbosity),
			File:      cfg.Logging.File,
			JSON:      cfg.Logging.JSON,
		})
	}
	return cfg, nil
}

// outputFormat resolves --format against stdout.
func (o *rootOptions) outputFormat() (style.Format, error) {
	f, err := style.ParseFormat(o.format)
	if err != nil {
		return style.FormatAuto, err
	}
	return f.Resolve(os.Stdout), nil
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(afero.NewOsFs())
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	initTemplateFormatting()

	opts := &rootOptions{fs: fs}

	rootCmd := &cobra.Command{
		Use:     "blockreg",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringSliceVarP(&opts.definitions, "definitions", "d", nil, MsgFlagDefinitions)
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", "auto", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "registry",
		Title: "REGISTRY COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "serve",
		Title: "SERVING:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newRegisterCmd(opts))
	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newShowCmd(opts))
	rootCmd.AddCommand(newCategoriesCmd(opts))
	rootCmd.AddCommand(newCollectionsCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}
