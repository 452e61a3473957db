package blockreg

import (
	"github.com/arthur-debert/blockreg/pkg/blocks"
	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/arthur-debert/blockreg/pkg/config"
	"github.com/arthur-debert/blockreg/pkg/diagnostics"
	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/loader"
	"github.com/arthur-debert/blockreg/pkg/logging"
	"github.com/arthur-debert/blockreg/pkg/metrics"
	"github.com/arthur-debert/blockreg/pkg/processor"
	"github.com/arthur-debert/blockreg/pkg/rules"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
)

// app wires a configured registry with its diagnostics and metrics.
type app struct {
	cfg      *config.Config
	fs       afero.Fs
	registry *blocks.Registry
	recorder *diagnostics.Recorder
	metrics  *metrics.Collector
	gatherer *prometheus.Registry

	uninstallRules func()
}

// newApp builds a registry from cfg. Long-running commands pass
// logDiagnostics so diagnostics also reach the log.
func newApp(cfg *config.Config, fs afero.Fs, logDiagnostics bool) (*app, error) {
	a := &app{
		cfg:      cfg,
		fs:       fs,
		recorder: diagnostics.NewRecorder(),
		gatherer: prometheus.NewRegistry(),
	}
	a.metrics = metrics.NewWithRegistry(a.gatherer)

	sinks := []diagnostics.Sink{a.recorder, a.metrics}
	if logDiagnostics {
		sinks = append(sinks, diagnostics.LogSink{})
	}

	a.registry = blocks.New(blocks.Options{
		Sink:       diagnostics.Multi(sinks...),
		Observer:   a.metrics,
		Categories: cfg.Categories,
		Processor: []processor.Option{
			processor.WithLegacyCategories(cfg.LegacyCategories),
			processor.WithDeprecatedEntryKeys(cfg.Deprecation.EntryKeys),
		},
	})
	a.metrics.Watch(a.registry.Store())

	uninstall, err := rules.Install(a.registry.Filters(), cfg.Filters)
	if err != nil {
		return nil, err
	}
	a.uninstallRules = uninstall

	for _, c := range cfg.Collections {
		a.registry.RegisterBlockCollection(c.Namespace, c.Title, c.Icon)
	}
	a.applyFallbacks(cfg.Fallbacks)
	return a, nil
}

func (a *app) applyFallbacks(f config.Fallbacks) {
	if f.Default != "" {
		a.registry.SetDefaultBlockName(f.Default)
	}
	if f.Freeform != "" {
		a.registry.SetFreeformContentHandlerName(f.Freeform)
	}
	if f.Unregistered != "" {
		a.registry.SetUnregisteredTypeHandlerName(f.Unregistered)
	}
	if f.Grouping != "" {
		a.registry.SetGroupingBlockName(f.Grouping)
	}
}

// outcome is the result of registering a batch of definitions.
type outcome struct {
	Registered  []string                 `json:"registered"`
	Rejected    []string                 `json:"rejected"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
}

// register loads and registers every definition under paths.
func (a *app) register(paths []string) (*outcome, error) {
	defs, err := loader.LoadPaths(a.fs, paths...)
	if err != nil {
		return nil, err
	}
	return a.registerDefinitions(defs), nil
}

func (a *app) registerDefinitions(defs []loader.Definition) *outcome {
	logger := logging.GetLogger("cmd.register")
	a.recorder.Reset()

	out := &outcome{Registered: []string{}, Rejected: []string{}}
	for _, d := range defs {
		if _, err := a.registry.RegisterBlockType(d.Settings); err != nil {
			event := logger.Debug()
			if !errors.IsRejection(err) {
				event = logger.Warn()
			}
			event.Str("path", d.Path).Str("block", errors.BlockName(err)).Err(err).Msg("Definition not registered")
			out.Rejected = append(out.Rejected, displayName(d.Settings))
			continue
		}
		out.Registered = append(out.Registered, d.Settings.Name)
	}
	out.Diagnostics = a.recorder.All()
	if out.Diagnostics == nil {
		out.Diagnostics = []diagnostics.Diagnostic{}
	}
	return out
}

// reload swaps in a new config: filter rules and categories are replaced
// and every block type is processed again.
func (a *app) reload(cfg *config.Config) error {
	// Rules share namespaces across installs, so the old set goes first.
	for _, r := range cfg.Filters {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	a.uninstallRules()
	uninstall, err := rules.Install(a.registry.Filters(), cfg.Filters)
	if err != nil {
		a.uninstallRules = func() {}
		return err
	}
	a.uninstallRules = uninstall

	a.cfg = cfg
	a.registry.SetCategories(cfg.Categories)
	for _, c := range cfg.Collections {
		a.registry.RegisterBlockCollection(c.Namespace, c.Title, c.Icon)
	}
	a.applyFallbacks(cfg.Fallbacks)

	a.recorder.Reset()
	a.registry.ReapplyBlockTypeFilters()
	return nil
}

func displayName(s *blocktype.Settings) string {
	if s == nil || s.Name == "" {
		return diagnostics.UnknownBlock
	}
	return s.Name
}
