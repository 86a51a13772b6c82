package main

import (
	"errors"
	"os"

	"github.com/menteora/quill/config"
	"github.com/menteora/quill/output"
	"github.com/menteora/quill/plugin"
	"github.com/menteora/quill/render/html"
	"github.com/menteora/quill/site"
)

// Exit codes for the quill CLI.
const (
	ExitSuccess = 0 // Successful build
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, templates or plugins
	ExitIO      = 3 // Output or source files not readable or writable
)

// exitCodeFor maps an error to an exit code. Callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrOutputOverlap) ||
		errors.Is(err, output.ErrUnsafeRoot) ||
		errors.Is(err, html.ErrTemplateNotFound) ||
		errors.Is(err, plugin.ErrInvalidName) ||
		errors.Is(err, plugin.ErrSnippet) {
		return ExitUsage
	}

	if errors.Is(err, site.ErrOutputDir) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}
