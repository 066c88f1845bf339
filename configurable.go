// File: tonic/configurable.go
package tonic

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Kwargs holds the keyword arguments of one invocation, keyed by parameter name.
type Kwargs map[string]any

// Clone returns a shallow copy of kw. A nil receiver yields an empty map.
func (kw Kwargs) Clone() Kwargs {
	out := make(Kwargs, len(kw))
	maps.Copy(out, kw)
	return out
}

// Func is the shape of every configurable function. Positional arguments are
// forwarded untouched; kw holds the registered defaults overlaid by the
// resolved configuration, overlaid by the keywords passed by the caller.
type Func func(args []any, kw Kwargs) (any, error)

// RegisterOption customizes the identity of a configurable.
type RegisterOption func(*registration)

type registration struct {
	id         string
	namespace  string
	nameSource any
	logger     *slog.Logger
}

// WithID sets the configurable id instead of deriving it from the function name.
func WithID(id string) RegisterOption {
	return func(r *registration) {
		r.id = id
	}
}

// WithNamespace sets the namespace instead of using the configurable id.
func WithNamespace(namespace string) RegisterOption {
	return func(r *registration) {
		r.namespace = namespace
	}
}

// withNameSource derives default names from fn rather than from the registered Func.
func withNameSource(fn any) RegisterOption {
	return func(r *registration) {
		r.nameSource = fn
	}
}

func withRegistrationLogger(logger *slog.Logger) RegisterOption {
	return func(r *registration) {
		r.logger = logger
	}
}

// bindState is either *dirtyState or *cleanState. A nil state means the
// configurable was never reconfigured.
type bindState interface {
	isBindState()
}

// dirtyState holds the values to bind on the next resolution.
type dirtyState struct {
	ns     map[string]any
	global map[string]any

	inflight *binding // guarded by Configurable.mu
}

// binding is a bind in progress. Concurrent callers wait on done and share
// its result, so instanced values are materialized once per state.
type binding struct {
	done  chan struct{}
	bound *Bound
	err   error
}

// cleanState holds the cached bound function.
type cleanState struct {
	bound *Bound
}

func (*dirtyState) isBindState() {}
func (*cleanState) isBindState() {}

// Configurable wraps one registered function together with its configurable
// parameters and the lazily computed bound form.
type Configurable struct {
	id        string
	namespace string
	fn        Func
	defaults  Kwargs
	params    []string
	logger    *slog.Logger

	mu    sync.Mutex
	state bindState
}

// NewConfigurable creates an unprimed configurable. Every key of defaults
// becomes a configurable parameter. The id defaults to the name derived from
// fn (see DeriveName) and the namespace defaults to the id.
func NewConfigurable(fn Func, defaults Kwargs, opts ...RegisterOption) (*Configurable, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: function is nil", ErrNotConfigurable)
	}

	reg := registration{nameSource: fn}
	for _, opt := range opts {
		opt(&reg)
	}

	if reg.id == "" {
		derived, err := DeriveName(reg.nameSource)
		if err != nil {
			return nil, err
		}
		reg.id = derived
	}
	if reg.namespace == "" {
		reg.namespace = reg.id
	}
	if _, err := ValidateIdentifier(reg.id); err != nil {
		return nil, fmt.Errorf("configurable id: %w", err)
	}
	if _, err := ValidateIdentifier(reg.namespace); err != nil {
		return nil, fmt.Errorf("configurable namespace: %w", err)
	}

	params := make([]string, 0, len(defaults))
	for name := range defaults {
		if _, err := validateParamName(name); err != nil {
			return nil, fmt.Errorf("parameter of %s: %w", reg.id, err)
		}
		params = append(params, name)
	}
	slices.Sort(params)

	logger := reg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Configurable{
		id:        reg.id,
		namespace: reg.namespace,
		fn:        fn,
		defaults:  defaults.Clone(),
		params:    params,
		logger:    logger,
	}, nil
}

// ID returns the configurable id, unique within a Config.
func (c *Configurable) ID() string { return c.id }

// Namespace returns the namespace the configurable reads its values from.
func (c *Configurable) Namespace() string { return c.namespace }

// ParamNames returns the sorted configurable parameter names.
func (c *Configurable) ParamNames() []string { return slices.Clone(c.params) }

// Defaults returns a copy of the registered default values.
func (c *Configurable) Defaults() Kwargs { return c.defaults.Clone() }

// Configurable returns c. It lets *Configurable and typed wrappers be used
// interchangeably as instanced value targets.
func (c *Configurable) Configurable() *Configurable { return c }

func (c *Configurable) String() string { return c.id }

// HasParam reports whether name is a configurable parameter.
func (c *Configurable) HasParam(name string) bool {
	_, ok := c.defaults[name]
	return ok
}

// Reconfigure stores the namespace and global values used by the next
// resolution and marks the configurable dirty. Nothing is recomputed here.
func (c *Configurable) Reconfigure(ns, global map[string]any) {
	pending := &dirtyState{ns: maps.Clone(ns), global: maps.Clone(global)}

	c.mu.Lock()
	c.state = pending
	c.mu.Unlock()
}

// IsDirty reports whether the next call has to re-bind the configurable.
func (c *Configurable) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, dirty := c.state.(*dirtyState)
	return dirty
}

// Resolve returns the bound function, re-binding it first if the
// configuration changed. While nothing changes the same *Bound is returned.
func (c *Configurable) Resolve() (*Bound, error) {
	return c.resolve(nil)
}

// resolve binds c, tracking the chain of configurables currently binding so
// instanced values referencing each other fail instead of recursing forever.
func (c *Configurable) resolve(chain []*Configurable) (*Bound, error) {
	if slices.Contains(chain, c) {
		return nil, fmt.Errorf("%w: %s", ErrCyclicInstance, describeChain(append(chain, c)))
	}

	c.mu.Lock()
	switch st := c.state.(type) {
	case *cleanState:
		c.mu.Unlock()
		return st.bound, nil
	case *dirtyState:
		if inflight := st.inflight; inflight != nil {
			c.mu.Unlock()
			<-inflight.done
			return inflight.bound, inflight.err
		}
		inflight := &binding{done: make(chan struct{})}
		st.inflight = inflight
		c.mu.Unlock()

		// Instanced values may resolve other configurables, so bind unlocked.
		bound, err := c.bindShared(st, inflight, append(slices.Clip(chain), c))
		if err != nil {
			return nil, err
		}
		c.logger.Debug("rebound configurable", "id", c.id, "namespace", c.namespace, "overrides", len(bound.overrides))
		return bound, nil
	default:
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotReconfigured, c.id)
	}
}

// bindShared binds st and publishes the result to callers waiting on
// inflight. The clean state is committed only if st is still current. A
// failed bind leaves st dirty so the next call retries.
func (c *Configurable) bindShared(st *dirtyState, inflight *binding, chain []*Configurable) (bound *Bound, err error) {
	defer func() {
		c.mu.Lock()
		st.inflight = nil
		if bound != nil && c.state == bindState(st) {
			c.state = &cleanState{bound: bound}
		}
		c.mu.Unlock()

		inflight.bound, inflight.err = bound, err
		if bound == nil && err == nil {
			// bind panicked
			inflight.err = fmt.Errorf("binding %s did not complete", c.id)
		}
		close(inflight.done)
	}()
	return c.bind(st, chain)
}

// bind picks a value for every parameter from the namespace values, then the
// global values, materializing instanced values once.
func (c *Configurable) bind(st *dirtyState, chain []*Configurable) (*Bound, error) {
	overrides := make(Kwargs)
	for _, name := range c.params {
		value, ok := st.ns[name]
		if !ok {
			value, ok = st.global[name]
		}
		if !ok {
			continue
		}

		if inst, isInstanced := value.(*Instanced); isInstanced {
			v, err := inst.materialize(chain)
			if err != nil {
				return nil, fmt.Errorf("instanced value %s.%s: %w", c.id, name, err)
			}
			value = v
		}
		overrides[name] = value
	}

	kwargs := c.defaults.Clone()
	maps.Copy(kwargs, overrides)

	return &Bound{fn: c.fn, kwargs: kwargs, overrides: overrides}, nil
}

// Call resolves the configurable if needed and invokes it. Keywords in kw
// take precedence over configured values.
func (c *Configurable) Call(args []any, kw Kwargs) (any, error) {
	bound, err := c.Resolve()
	if err != nil {
		return nil, err
	}
	return bound.Call(args, kw)
}

// Invoke calls the configurable with positional arguments only.
func (c *Configurable) Invoke(args ...any) (any, error) {
	return c.Call(args, nil)
}

func describeChain(chain []*Configurable) string {
	ids := make([]string, len(chain))
	for i, c := range chain {
		ids[i] = c.id
	}
	return strings.Join(ids, " -> ")
}

// Bound is a configurable function with its configured defaults applied.
type Bound struct {
	fn        Func
	kwargs    Kwargs
	overrides Kwargs
}

// Call invokes the function. Keywords in kw replace bound values.
func (b *Bound) Call(args []any, kw Kwargs) (any, error) {
	merged := b.kwargs.Clone()
	maps.Copy(merged, kw)
	return b.fn(args, merged)
}

// Kwargs returns the full set of bound keyword values.
func (b *Bound) Kwargs() Kwargs { return b.kwargs.Clone() }

// Overrides returns only the values taken from the configuration.
func (b *Bound) Overrides() Kwargs { return b.overrides.Clone() }
