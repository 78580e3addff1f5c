package source

import (
	"context"
	"fmt"
	"log/slog"

	"bastion-hq/palisade/pkg/config"
	"bastion-hq/palisade/pkg/fasttrack"
)

// ReloadFunc is invoked by a source when the underlying template changes.
// Implementations typically reload the template and install it on the gate.
// Returning an error tells the source the new template was rejected.
type ReloadFunc func() error

// TemplateSource provides intake templates from a backing store and can
// watch the store for changes.
type TemplateSource interface {
	// Load reads and parses the current template.
	Load(ctx context.Context) (*fasttrack.Template, error)

	// Watch blocks, invoking onChange whenever the template changes, until
	// the context is cancelled or Close is called. Sources without change
	// detection return immediately.
	Watch(ctx context.Context, onChange ReloadFunc) error

	// Close releases any resources held by the source. Close is safe to
	// call even if Watch was never started.
	Close() error
}

// New creates a template source from configuration. The mode selects the
// backing store: "file" watches a local YAML file, "git" polls a repository.
func New(cfg *config.TemplateSourceConfig, logger *slog.Logger) (TemplateSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.Mode {
	case "file":
		return NewFileSource(cfg.FilePath, logger)
	case "git":
		return NewGitSource(&cfg.Git, logger)
	default:
		return nil, fmt.Errorf("unknown template source mode: %s", cfg.Mode)
	}
}
