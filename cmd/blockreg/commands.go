package blockreg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/arthur-debert/blockreg/internal/version"
	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/logging"
	"github.com/arthur-debert/blockreg/pkg/server"
	"github.com/arthur-debert/blockreg/pkg/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// definitionPaths returns the positional paths, or the configured ones.
func definitionPaths(a *app, args []string) []string {
	if len(args) > 0 {
		return args
	}
	return a.cfg.Definitions.Paths
}

// setup loads config and registers the configured definitions.
func setup(opts *rootOptions, args []string, requirePaths bool) (*app, *outcome, error) {
	cfg, err := opts.loadConfig(nil)
	if err != nil {
		return nil, nil, err
	}
	a, err := newApp(cfg, opts.fs, false)
	if err != nil {
		return nil, nil, err
	}

	paths := definitionPaths(a, args)
	if len(paths) == 0 {
		if requirePaths {
			return nil, nil, errors.New(errors.ErrInvalidInput, MsgNoDefinitionPaths)
		}
		return a, a.registerDefinitions(nil), nil
	}
	out, err := a.register(paths)
	if err != nil {
		return nil, nil, err
	}
	return a, out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printOutcome(w io.Writer, format style.Format, out *outcome) error {
	if format == style.FormatJSON {
		return writeJSON(w, out)
	}
	r := style.NewRenderer(format)
	if len(out.Diagnostics) > 0 {
		_, _ = fmt.Fprintln(w, r.RenderDiagnostics(out.Diagnostics))
	}
	_, _ = fmt.Fprintln(w, r.RenderSummary(len(out.Registered), len(out.Rejected)))
	return nil
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:     "register [paths...]",
		Short:   MsgRegisterShort,
		Long:    MsgRegisterLong,
		Example: MsgRegisterExample,
		GroupID: "registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.register")

			format, err := opts.outputFormat()
			if err != nil {
				return err
			}
			_, out, err := setup(opts, args, true)
			if err != nil {
				return err
			}
			logger.Info().
				Int("registered", len(out.Registered)).
				Int("rejected", len(out.Rejected)).
				Msg("Registration finished")

			if err := printOutcome(cmd.OutOrStdout(), format, out); err != nil {
				return err
			}
			if strict && len(out.Rejected) > 0 {
				return errors.Newf(errors.ErrInvalidInput, MsgErrRejected, len(out.Rejected))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, MsgFlagStrict)
	return cmd
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "validate [paths...]",
		Short:   MsgValidateShort,
		Long:    MsgValidateLong,
		GroupID: "registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.outputFormat()
			if err != nil {
				return err
			}
			_, out, err := setup(opts, args, true)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Rejected) > 0 || format == style.FormatJSON {
				if err := printOutcome(w, format, out); err != nil {
					return err
				}
			} else {
				_, _ = fmt.Fprintf(w, MsgValidOK, len(out.Registered))
			}
			if len(out.Rejected) > 0 {
				return errors.Newf(errors.ErrInvalidInput, MsgErrRejected, len(out.Rejected))
			}
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var category, search string

	cmd := &cobra.Command{
		Use:     "list [paths...]",
		Short:   MsgListShort,
		GroupID: "registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.outputFormat()
			if err != nil {
				return err
			}
			a, _, err := setup(opts, args, false)
			if err != nil {
				return err
			}

			blocks := []*blocktype.Settings{}
			for _, s := range a.registry.GetBlockTypes() {
				if category != "" && s.Category != category {
					continue
				}
				if search != "" && !a.registry.IsMatchingSearchTerm(s.Name, search) {
					continue
				}
				blocks = append(blocks, s)
			}

			if format == style.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), blocks)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), style.NewRenderer(format).RenderBlockList(blocks))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", MsgFlagCategory)
	cmd.Flags().StringVar(&search, "search", "", MsgFlagSearch)
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "show <name> [paths...]",
		Short:   MsgShowShort,
		Long:    MsgShowLong,
		GroupID: "registry",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.outputFormat()
			if err != nil {
				return err
			}
			a, _, err := setup(opts, args[1:], false)
			if err != nil {
				return err
			}

			name := args[0]
			s, ok := a.registry.GetBlockType(name)
			if !ok {
				return errors.Newf(errors.ErrNotFound, MsgErrUnknownName, name)
			}

			w := cmd.OutOrStdout()
			if format == style.FormatJSON {
				return writeJSON(w, s)
			}
			md := style.BlockMarkdown(s, a.registry.GetBlockStyles(name), a.registry.GetBlockVariations(name, ""))
			_, _ = fmt.Fprint(w, style.RenderMarkdown(md, format, 0))
			return nil
		},
	}
}

func newCategoriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "categories [paths...]",
		Short:   MsgCategoriesShort,
		GroupID: "registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.outputFormat()
			if err != nil {
				return err
			}
			a, _, err := setup(opts, args, false)
			if err != nil {
				return err
			}

			categories := a.registry.GetCategories()
			if format == style.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), categories)
			}
			counts := make(map[string]int)
			for _, s := range a.registry.GetBlockTypes() {
				counts[s.Category]++
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), style.NewRenderer(format).RenderCategories(categories, counts))
			return nil
		},
	}
}

func newCollectionsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "collections",
		Short:   MsgCollectionsShort,
		GroupID: "registry",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.outputFormat()
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig(nil)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, opts.fs, false)
			if err != nil {
				return err
			}

			collections := a.registry.GetCollections()
			if format == style.FormatJSON {
				return writeJSON(cmd.OutOrStdout(), collections)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), style.NewRenderer(format).RenderCollections(collections))
			return nil
		},
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:     "serve [paths...]",
		Short:   MsgServeShort,
		Long:    MsgServeLong,
		GroupID: "serve",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupServing(opts, addr, args)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", MsgFlagAddr)
	return cmd
}

// setupServing builds a logging app for the long-running commands and
// registers the definitions under args or the configured paths.
func setupServing(opts *rootOptions, addr string, args []string) (*app, error) {
	overrides := map[string]any{}
	if addr != "" {
		overrides["server.addr"] = addr
	}
	cfg, err := opts.loadConfig(overrides)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Definitions.Paths = args
	}
	a, err := newApp(cfg, opts.fs, true)
	if err != nil {
		return nil, err
	}
	if len(cfg.Definitions.Paths) > 0 {
		out, err := a.register(cfg.Definitions.Paths)
		if err != nil {
			return nil, err
		}
		logger := logging.GetLogger("cmd.serve")
		logger.Info().
			Int("registered", len(out.Registered)).
			Int("rejected", len(out.Rejected)).
			Msg("Definitions registered")
	}
	return a, nil
}

func (a *app) serve(ctx context.Context) error {
	h := server.NewRouter(a.registry, server.Options{Gatherer: a.gatherer})
	return server.Serve(ctx, a.cfg.Server.Addr, h, a.cfg.Server.ReadTimeout)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprint(cmd.OutOrStdout(), version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			switch strings.ToLower(args[0]) {
			case "bash":
				err = cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				err = cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				err = cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				err = cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			if err != nil {
				log.Error().Err(err).Str("shell", args[0]).Msg("Failed to generate completion")
			}
			return err
		},
	}
}
