package blockreg

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort        = "Register and inspect block type definitions"
	MsgRegisterShort    = "Register definitions and report diagnostics"
	MsgValidateShort    = "Fail when any definition is rejected"
	MsgListShort        = "List registered block types"
	MsgShowShort        = "Show one registered block type"
	MsgCategoriesShort  = "List block categories"
	MsgCollectionsShort = "List block collections"
	MsgServeShort       = "Serve the registry over HTTP"
	MsgWatchShort       = "Re-register definitions as files change"
	MsgVersionShort     = "Print version information"
	MsgCompletionShort  = "Generate shell completion script"

	// Status messages
	MsgNoDefinitionPaths = "no definition paths given and definitions.paths is empty"
	MsgValidOK           = "All %d definition(s) are valid.\n"
	MsgWatching          = "Watching %d path(s) for changes\n"
	MsgReloadedConfig    = "Reloaded config %s\n"
	MsgReregistered      = "Re-registered %s\n"
	MsgUnregistered      = "Unregistered %s\n"

	// Error messages
	MsgErrLoadConfig  = "failed to load config: %w"
	MsgErrRejected    = "%d definition(s) rejected"
	MsgErrUnknownName = "block type %q is not registered"
	MsgErrWatch       = "failed to watch %s: %w"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Config file (default blockreg.toml in the working directory)"
	MsgFlagDefinitions = "Definition files or directories, overriding definitions.paths"
	MsgFlagFormat      = "Output format: auto, term, text or json"
	MsgFlagStrict      = "Fail when any definition is rejected"
	MsgFlagCategory    = "Only list block types in this category"
	MsgFlagSearch      = "Only list block types matching this search term"
	MsgFlagAddr        = "Listen address, overriding server.addr"
	MsgFlagServe       = "Serve the HTTP API while watching"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/register-long.txt
	msgRegisterLongRaw string
	MsgRegisterLong    = strings.TrimSpace(msgRegisterLongRaw)

	//go:embed msgs/register-example.txt
	msgRegisterExampleRaw string
	MsgRegisterExample    = strings.TrimRight(msgRegisterExampleRaw, "\n")

	//go:embed msgs/validate-long.txt
	msgValidateLongRaw string
	MsgValidateLong    = strings.TrimSpace(msgValidateLongRaw)

	//go:embed msgs/show-long.txt
	msgShowLongRaw string
	MsgShowLong    = strings.TrimSpace(msgShowLongRaw)

	//go:embed msgs/serve-long.txt
	msgServeLongRaw string
	MsgServeLong    = strings.TrimSpace(msgServeLongRaw)

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
