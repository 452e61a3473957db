// Package diagnostics carries the user-visible outcome of registering block
// types: rejections, corrections and deprecation notices.
//
// Nothing in the registration path returns these as faults. They are reported
// to a Sink and the caller decides what to show.
package diagnostics

import (
	"fmt"
	"strings"
	"sync"

	"github.com/arthur-debert/blockreg/pkg/errors"
	"github.com/arthur-debert/blockreg/pkg/logging"
)

// Level is the severity of a diagnostic.
type Level string

const (
	LevelError      Level = "error"
	LevelWarn       Level = "warn"
	LevelDeprecated Level = "deprecated"
)

// UnknownBlock names a block whose identifier could not be determined.
const UnknownBlock = "this block"

// Diagnostic is one reported event.
type Diagnostic struct {
	Level       Level            `json:"level"`
	Kind        errors.ErrorCode `json:"kind"`
	Block       string           `json:"block"`
	Message     string           `json:"message"`
	Since       string           `json:"since,omitempty"`
	Alternative string           `json:"alternative,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", d.Level, d.Kind, d.Block, d.Message)
}

// Sink receives diagnostics.
type Sink interface {
	Report(Diagnostic)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Diagnostic)

// Report calls f.
func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Discard drops everything.
var Discard Sink = SinkFunc(func(Diagnostic) {})

// LogSink writes diagnostics to the global logger.
type LogSink struct{}

// Report logs d at a level matching its severity.
func (LogSink) Report(d Diagnostic) {
	logger := logging.GetLogger("diagnostics")
	switch d.Level {
	case LevelError:
		logger.Error().Str("kind", string(d.Kind)).Str("block", d.Block).Msg(d.Message)
	case LevelDeprecated:
		logger.Warn().Str("kind", string(d.Kind)).Str("block", d.Block).Str("since", d.Since).Msg(d.Message)
	default:
		logger.Warn().Str("kind", string(d.Kind)).Str("block", d.Block).Msg(d.Message)
	}
}

// Recorder keeps every diagnostic in report order.
type Recorder struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Report appends d.
func (r *Recorder) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, d)
}

// All returns a copy of the recorded diagnostics.
func (r *Recorder) All() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.items...)
}

// Len returns the number of recorded diagnostics.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// ByLevel returns the recorded diagnostics with the given level.
func (r *Recorder) ByLevel(level Level) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.All() {
		if d.Level == level {
			out = append(out, d)
		}
	}
	return out
}

// ForBlock returns the recorded diagnostics about block.
func (r *Recorder) ForBlock(block string) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.All() {
		if d.Block == block {
			out = append(out, d)
		}
	}
	return out
}

// HasKind reports whether a diagnostic of the given kind was recorded.
func (r *Recorder) HasKind(kind errors.ErrorCode) bool {
	for _, d := range r.All() {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Multi reports to every sink in order. Nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(d Diagnostic) {
		for _, s := range sinks {
			if s != nil {
				s.Report(d)
			}
		}
	})
}

func blockName(block string) string {
	if block == "" {
		return UnknownBlock
	}
	return block
}

// Rejected reports that block was refused.
func Rejected(sink Sink, kind errors.ErrorCode, block, message string) {
	sink.Report(Diagnostic{Level: LevelError, Kind: kind, Block: blockName(block), Message: message})
}

// Warning reports a non-fatal correction made to block.
func Warning(sink Sink, kind errors.ErrorCode, block, message string) {
	sink.Report(Diagnostic{Level: LevelWarn, Kind: kind, Block: blockName(block), Message: message})
}

// DeprecationOptions describe a deprecation notice.
type DeprecationOptions struct {
	Since       string
	Version     string
	Alternative string
	Hint        string
}

// DeprecationMessage builds the text of a deprecation notice for feature.
func DeprecationMessage(feature string, opts DeprecationOptions) string {
	var b strings.Builder
	b.WriteString(feature)
	b.WriteString(" is deprecated")
	if opts.Since != "" {
		fmt.Fprintf(&b, " since version %s", opts.Since)
	}
	if opts.Version != "" {
		fmt.Fprintf(&b, " and will be removed in version %s", opts.Version)
	}
	b.WriteString(".")
	if opts.Alternative != "" {
		fmt.Fprintf(&b, " Please use %s instead.", opts.Alternative)
	}
	if opts.Hint != "" {
		fmt.Fprintf(&b, " Note: %s", opts.Hint)
	}
	return b.String()
}

// Deprecated reports use of a deprecated input shape by block.
func Deprecated(sink Sink, kind errors.ErrorCode, block, feature string, opts DeprecationOptions) {
	sink.Report(Diagnostic{
		Level:       LevelDeprecated,
		Kind:        kind,
		Block:       blockName(block),
		Message:     DeprecationMessage(feature, opts),
		Since:       opts.Since,
		Alternative: opts.Alternative,
	})
}
