package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/adscreen/internal/model"
)

// ErrDuplicateModule is returned when a module name is registered twice.
var ErrDuplicateModule = eris.New("dispatch: duplicate module name")

// DefaultTimeout bounds each module invocation when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Defaults are the routing settings used when RouteOptions leaves a field unset.
type Defaults struct {
	Parallel        bool
	Timeout         time.Duration
	ContinueOnError bool
}

// DefaultSettings runs modules in parallel, 30s each, tolerating failures.
func DefaultSettings() Defaults {
	return Defaults{Parallel: true, Timeout: DefaultTimeout, ContinueOnError: true}
}

// RouteOptions tunes a single Route call. Nil pointers and a zero Timeout fall
// back to the dispatcher defaults.
type RouteOptions struct {
	// Modules restricts the run to these names. Unknown or disabled names are
	// dropped. Empty means every enabled module.
	Modules         []string
	Parallel        *bool
	Timeout         time.Duration
	ContinueOnError *bool
}

// Dispatcher holds registered modules in registration order.
type Dispatcher struct {
	mu       sync.RWMutex
	modules  map[string]Module
	order    []string
	defaults Defaults
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(defaults Defaults) *Dispatcher {
	if defaults.Timeout <= 0 {
		defaults.Timeout = DefaultTimeout
	}
	return &Dispatcher{
		modules:  make(map[string]Module),
		defaults: defaults,
	}
}

// Register adds m. A second module with the same name is rejected.
func (d *Dispatcher) Register(m Module) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := m.Name()
	if _, ok := d.modules[name]; ok {
		return eris.Wrapf(ErrDuplicateModule, "register %q", name)
	}
	d.modules[name] = m
	d.order = append(d.order, name)
	return nil
}

// MustRegister is Register for composition roots; it panics on error.
func (d *Dispatcher) MustRegister(modules ...Module) {
	for _, m := range modules {
		if err := d.Register(m); err != nil {
			panic(err)
		}
	}
}

// Unregister removes the named module and reports whether it was present.
func (d *Dispatcher) Unregister(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.modules[name]; !ok {
		return false
	}
	delete(d.modules, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// Modules lists registered modules in registration order.
func (d *Dispatcher) Modules() []ModuleInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]ModuleInfo, 0, len(d.order))
	for _, name := range d.order {
		m := d.modules[name]
		out = append(out, ModuleInfo{Name: name, Version: m.Version(), Enabled: m.Enabled()})
	}
	return out
}

// selectModules resolves names against enabled modules, keeping the caller's
// order for explicit names and registration order otherwise.
func (d *Dispatcher) selectModules(names []string) []Module {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []Module
	if len(names) > 0 {
		seen := make(map[string]bool, len(names))
		for _, name := range names {
			m, ok := d.modules[name]
			if !ok || !m.Enabled() || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, m)
		}
		return out
	}
	for _, name := range d.order {
		if m := d.modules[name]; m.Enabled() {
			out = append(out, m)
		}
	}
	return out
}

func (d *Dispatcher) resolve(opts RouteOptions) (parallel bool, timeout time.Duration, continueOnError bool) {
	parallel, timeout, continueOnError = d.defaults.Parallel, d.defaults.Timeout, d.defaults.ContinueOnError
	if opts.Parallel != nil {
		parallel = *opts.Parallel
	}
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	if opts.ContinueOnError != nil {
		continueOnError = *opts.ContinueOnError
	}
	return parallel, timeout, continueOnError
}

// Route runs the selected modules over input and merges their results.
// Module faults become ModuleResult.Error unless ContinueOnError is false, in
// which case the first fault aborts the call with a *ModuleError.
func (d *Dispatcher) Route(ctx context.Context, input model.ModuleInput, opts RouteOptions) (*model.ModuleOutput, error) {
	start := time.Now()
	log := zap.L().With(zap.String("component", "dispatch"))

	modules := d.selectModules(opts.Modules)
	if len(modules) == 0 {
		log.Info("no modules selected", zap.Strings("requested", opts.Modules))
		return emptyOutput(start), nil
	}

	parallel, timeout, continueOnError := d.resolve(opts)
	log = log.With(
		zap.Int("modules", len(modules)),
		zap.Bool("parallel", parallel),
		zap.Duration("timeout", timeout),
	)

	var (
		results []model.ModuleResult
		err     error
	)
	if parallel {
		results, err = runParallel(ctx, modules, input, timeout, continueOnError)
	} else {
		results, err = runSequential(ctx, modules, input, timeout, continueOnError)
	}
	if err != nil {
		log.Warn("route aborted", zap.Error(err))
		return nil, err
	}

	out := merge(results)
	out.ProcessingTime = time.Since(start).Milliseconds()
	log.Info("route complete",
		zap.String("id", out.ID),
		zap.Int("violations", len(out.Violations)),
		zap.Float64("confidence", out.Confidence),
		zap.Int64("elapsed_ms", out.ProcessingTime),
	)
	return out, nil
}

func runParallel(ctx context.Context, modules []Module, input model.ModuleInput, timeout time.Duration, continueOnError bool) ([]model.ModuleResult, error) {
	results := make([]model.ModuleResult, len(modules))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range modules {
		g.Go(func() error {
			res, fault := invoke(gctx, m, input, timeout)
			if fault != nil && !continueOnError {
				return fault
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runSequential(ctx context.Context, modules []Module, input model.ModuleInput, timeout time.Duration, continueOnError bool) ([]model.ModuleResult, error) {
	results := make([]model.ModuleResult, 0, len(modules))
	for _, m := range modules {
		res, fault := invoke(ctx, m, input, timeout)
		if fault != nil && !continueOnError {
			return nil, fault
		}
		results = append(results, res)
	}
	return results, nil
}

type outcome struct {
	res *model.ModuleResult
	err error
}

// invoke runs one module against its deadline. The returned result is always
// usable; fault is non-nil when the module failed in any way.
func invoke(ctx context.Context, m Module, input model.ModuleInput, timeout time.Duration) (model.ModuleResult, *ModuleError) {
	name := m.Name()
	start := time.Now()

	mctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: eris.Errorf("panic: %v", r)}
			}
		}()
		res, err := m.Analyze(mctx, input)
		done <- outcome{res: res, err: err}
	}()

	var o outcome
	select {
	case o = <-done:
	case <-mctx.Done():
		o.err = mctx.Err()
	}

	if o.err != nil && mctx.Err() != nil {
		if ctx.Err() != nil {
			o.err = eris.Wrap(ctx.Err(), "route cancelled")
		} else {
			o.err = eris.Errorf("timed out after %s", timeout)
		}
	}
	if o.err == nil && o.res == nil {
		o.err = eris.New("module returned no result")
	}

	elapsed := time.Since(start).Milliseconds()
	if o.err != nil {
		zap.L().Warn("module failed",
			zap.String("component", "dispatch"),
			zap.String("module", name),
			zap.Int64("elapsed_ms", elapsed),
			zap.Error(o.err),
		)
		return model.ModuleResult{
			ModuleName:     name,
			Version:        m.Version(),
			ProcessingTime: elapsed,
			Error:          o.err.Error(),
		}, &ModuleError{Module: name, Err: o.err}
	}

	res := *o.res
	res.ModuleName = name
	if res.Version == "" {
		res.Version = m.Version()
	}
	res.ProcessingTime = elapsed
	if res.Error != "" {
		return res, &ModuleError{Module: name, Err: eris.New(res.Error)}
	}
	return res, nil
}

func emptyOutput(start time.Time) *model.ModuleOutput {
	return &model.ModuleOutput{
		ID:             uuid.NewString(),
		Violations:     []model.ViolationResult{},
		Summary:        "no modules registered",
		Confidence:     0,
		ProcessingTime: time.Since(start).Milliseconds(),
		AnalyzedAt:     time.Now().UTC(),
	}
}
