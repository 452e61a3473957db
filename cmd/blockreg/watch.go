package blockreg

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/arthur-debert/blockreg/pkg/config"
	"github.com/arthur-debert/blockreg/pkg/loader"
	"github.com/arthur-debert/blockreg/pkg/logging"
	"github.com/arthur-debert/blockreg/pkg/style"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		addr  string
		serve bool
	)

	cmd := &cobra.Command{
		Use:     "watch [paths...]",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		GroupID: "serve",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.outputFormat()
			if err != nil {
				return err
			}
			a, err := setupServing(opts, addr, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := newWatcher(a, cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			if serve {
				go func() { errCh <- a.serve(ctx) }()
			}
			if err := w.run(ctx, errCh); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", MsgFlagAddr)
	cmd.Flags().BoolVar(&serve, "serve", false, MsgFlagServe)
	return cmd
}

// watcher keeps a registry in step with definition files and the config.
type watcher struct {
	app    *app
	out    io.Writer
	render style.Renderer

	// files maps a definition file to the block names it registered.
	files      map[string][]string
	configPath string
}

func newWatcher(a *app, out io.Writer, format style.Format) (*watcher, error) {
	w := &watcher{
		app:        a,
		out:        out,
		render:     style.NewRenderer(format),
		files:      make(map[string][]string),
		configPath: a.cfg.Path,
	}

	files, err := loader.Expand(a.fs, a.cfg.Definitions.Paths...)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		defs, err := loader.LoadFile(a.fs, f)
		if err != nil {
			continue
		}
		w.files[cleanPath(f)] = definitionNames(defs)
	}
	return w, nil
}

// dirs returns the directories to watch: every definition directory, the
// parent of every definition file and the config file's directory.
func (w *watcher) dirs() ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(dir string) {
		dir = cleanPath(dir)
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}

	for _, p := range w.app.cfg.Definitions.Paths {
		info, err := w.app.fs.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Dir(p))
			continue
		}
		err = afero.Walk(w.app.fs, p, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if w.configPath != "" {
		add(filepath.Dir(w.configPath))
	}
	return out, nil
}

func (w *watcher) run(ctx context.Context, errCh <-chan error) error {
	logger := logging.GetLogger("cmd.watch")

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()

	dirs, err := w.dirs()
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf(MsgErrWatch, d, err)
		}
	}
	_, _ = fmt.Fprintf(w.out, MsgWatching, len(dirs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := w.app.fs.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.Add(event.Name); err != nil {
						logger.Warn().Err(err).Str("path", event.Name).Msg("Cannot watch new directory")
					}
					continue
				}
			}
			w.handle(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("Watcher error")
		}
	}
}

// handle applies one file system event to the registry.
func (w *watcher) handle(event fsnotify.Event) {
	logger := logging.GetLogger("cmd.watch")
	path := cleanPath(event.Name)

	if w.configPath != "" && path == cleanPath(w.configPath) {
		if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
			w.reloadConfig()
		}
		return
	}
	if !loader.Supported(path) || !w.tracks(path) {
		return
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		w.unregisterFile(path)
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		w.unregisterFile(path)
		defs, err := loader.LoadFile(w.app.fs, path)
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("Cannot load definition file")
			_, _ = fmt.Fprintln(w.out, w.render.RenderError(err))
			return
		}
		out := w.app.registerDefinitions(defs)
		w.files[path] = definitionNames(defs)
		_, _ = fmt.Fprintf(w.out, MsgReregistered, path)
		_ = printOutcome(w.out, style.FormatText, out)
	}
}

// tracks reports whether path lies under one of the definition paths.
func (w *watcher) tracks(path string) bool {
	if _, ok := w.files[path]; ok {
		return true
	}
	for _, p := range w.app.cfg.Definitions.Paths {
		root := cleanPath(p)
		if path == root {
			return true
		}
		if rel, err := filepath.Rel(root, path); err == nil && rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel) {
			return true
		}
	}
	return false
}

func (w *watcher) unregisterFile(path string) {
	names, ok := w.files[path]
	if !ok {
		return
	}
	for _, name := range w.app.registry.ForgetBlockTypes(names...) {
		_, _ = fmt.Fprintf(w.out, MsgUnregistered, name)
	}
	delete(w.files, path)
}

func (w *watcher) reloadConfig() {
	logger := logging.GetLogger("cmd.watch")

	cfg, err := config.Load(w.configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", w.configPath).Msg("Cannot reload config")
		_, _ = fmt.Fprintln(w.out, w.render.RenderError(err))
		return
	}
	cfg.Definitions = w.app.cfg.Definitions
	if err := w.app.reload(cfg); err != nil {
		logger.Error().Err(err).Msg("Cannot apply reloaded config")
		_, _ = fmt.Fprintln(w.out, w.render.RenderError(err))
		return
	}
	_, _ = fmt.Fprintf(w.out, MsgReloadedConfig, w.configPath)
	if diags := w.app.recorder.All(); len(diags) > 0 {
		_, _ = fmt.Fprintln(w.out, w.render.RenderDiagnostics(diags))
	}
}

func definitionNames(defs []loader.Definition) []string {
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		if d.Settings != nil && d.Settings.Name != "" {
			names = append(names, d.Settings.Name)
		}
	}
	return names
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
