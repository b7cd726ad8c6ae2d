package dispatch

import (
	"context"
	"fmt"

	"github.com/sells-group/adscreen/internal/model"
)

// Module is a pluggable analysis unit.
type Module interface {
	Name() string
	Version() string
	Enabled() bool
	// Analyze inspects input. The context carries the per-module deadline.
	Analyze(ctx context.Context, input model.ModuleInput) (*model.ModuleResult, error)
}

// ModuleInfo describes a registered module.
type ModuleInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Enabled bool   `json:"enabled"`
}

// ModuleError identifies the module behind a fault that aborted a route.
type ModuleError struct {
	Module string
	Err    error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("dispatch: module %s: %v", e.Module, e.Err)
}

func (e *ModuleError) Unwrap() error { return e.Err }
