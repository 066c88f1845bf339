// File: tonic/config.go
package tonic

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Options configures the behavior of a Config.
type Options struct {
	// Strict requires namespaces to be registered only once and every key
	// passed to Set or Update to name a known namespace and parameter.
	Strict bool

	// Logger receives debug records about registration, configuration
	// changes and re-binding. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the standard options: non-strict, no logging.
func DefaultOptions() Options {
	return Options{}
}

// FlatConfig maps keys ("ns.param", "*.param", "@ns.param") to values.
type FlatConfig map[string]any

// Keys returns the keys ordered by namespace, then parameter name.
func (f FlatConfig) Keys() []string {
	keys := slices.Collect(maps.Keys(f))
	slices.SortFunc(keys, compareKeys)
	return keys
}

// Validate checks every key against the key grammar and reports all invalid
// keys together. Instanced entries must hold a configurable id, and a
// parameter cannot be given both plain and instanced.
func (f FlatConfig) Validate() error {
	var errs []error
	for _, key := range f.Keys() {
		instanced, namespace, param, err := splitKey(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, isString := f[key].(string); instanced && !isString {
			errs = append(errs, fmt.Errorf("%w: instanced value for %q is %T, want a configurable id", ErrNotConfigurable, key, f[key]))
		}
		if _, both := f[joinKey(false, namespace, param)]; instanced && both {
			errs = append(errs, fmt.Errorf("%w: duplicate parameter %q given as %q and %q",
				ErrInvalidKey, param, key, joinKey(false, namespace, param)))
		}
	}
	return errors.Join(errs...)
}

// compareKeys orders keys by namespace then parameter, ignoring the instanced prefix.
func compareKeys(a, b string) int {
	_, nsA, paramA, errA := splitKey(a)
	_, nsB, paramB, errB := splitKey(b)
	if errA != nil || errB != nil {
		return cmp.Compare(a, b)
	}
	return cmp.Or(cmp.Compare(nsA, nsB), cmp.Compare(paramA, paramB), cmp.Compare(a, b))
}

// Config is the registry of configurables and owner of the current
// namespace configuration.
type Config struct {
	options       Options
	logger        *slog.Logger
	configurables map[string]*Configurable  // id -> configurable
	namespaces    map[string]*Namespace     // namespace -> members and params
	nsConfigs     map[string]map[string]any // namespace -> param -> value
	mutex         sync.RWMutex              // Protects the tables above
}

// New creates a Config with default options.
func New() *Config {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a Config with the given options.
func NewWithOptions(opts Options) *Config {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Config{
		options:       opts,
		logger:        logger,
		configurables: make(map[string]*Configurable),
		namespaces:    make(map[string]*Namespace),
		nsConfigs:     make(map[string]map[string]any),
	}
}

// Register makes fn configurable. Every key of defaults becomes a parameter
// whose value can be overridden through the namespace of the configurable or
// the global namespace. The returned configurable is already primed with the
// current configuration.
func (c *Config) Register(fn Func, defaults Kwargs, opts ...RegisterOption) (*Configurable, error) {
	opts = append([]RegisterOption{withRegistrationLogger(c.logger)}, opts...)
	configurable, err := NewConfigurable(fn, defaults, opts...)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.configurables[configurable.id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateConfigurable, configurable.id)
	}
	if c.options.Strict && c.hasNamespace(configurable.namespace) {
		return nil, fmt.Errorf("%w: %s", ErrStrictNamespace, configurable.namespace)
	}

	ns, exists := c.namespaces[configurable.namespace]
	if !exists {
		ns = newNamespace(configurable.namespace)
	}
	if err := ns.registerMember(configurable); err != nil {
		return nil, err
	}
	c.namespaces[configurable.namespace] = ns
	c.configurables[configurable.id] = configurable

	c.prime(configurable)

	c.logger.Debug("registered configurable",
		"id", configurable.id,
		"namespace", configurable.namespace,
		"params", configurable.params)
	return configurable, nil
}

// MustRegister is like Register but panics on error.
func (c *Config) MustRegister(fn Func, defaults Kwargs, opts ...RegisterOption) *Configurable {
	configurable, err := c.Register(fn, defaults, opts...)
	if err != nil {
		panic(fmt.Sprintf("tonic: register failed: %v", err))
	}
	return configurable
}

// Configurable returns the registered configurable with the given id.
func (c *Config) Configurable(id string) (*Configurable, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	configurable, ok := c.configurables[id]
	return configurable, ok
}

// Configurables returns the sorted ids of every registered configurable.
func (c *Config) Configurables() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return slices.Sorted(maps.Keys(c.configurables))
}

// Namespace returns the namespace with the given id.
func (c *Config) Namespace(id string) (*Namespace, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	ns, ok := c.namespaces[id]
	return ns, ok
}

// Namespaces returns the sorted ids of every namespace with members.
func (c *Config) Namespaces() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return slices.Sorted(maps.Keys(c.namespaces))
}

// HasNamespace reports whether the namespace has members or is the global namespace.
func (c *Config) HasNamespace(namespace string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.hasNamespace(namespace)
}

// HasNamespaceParam reports whether a member of the namespace declares param.
// For the global namespace any declared parameter counts.
func (c *Config) HasNamespaceParam(namespace, param string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.hasNamespaceParam(namespace, param)
}

func (c *Config) hasNamespace(namespace string) bool {
	_, ok := c.namespaces[namespace]
	return ok || namespace == GlobalNamespace
}

func (c *Config) hasNamespaceParam(namespace, param string) bool {
	if namespace == GlobalNamespace {
		for _, ns := range c.namespaces {
			if ns.Contains(param) {
				return true
			}
		}
		return false
	}
	ns, ok := c.namespaces[namespace]
	return ok && ns.Contains(param)
}

// Set replaces the whole configuration. Every entry is validated before
// anything changes; on error the previous configuration stays in effect.
func (c *Config) Set(flat FlatConfig) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	parsed, err := c.flatToNamespaceConfigs(flat)
	if err != nil {
		return err
	}

	c.nsConfigs = parsed
	c.markAllDirty()

	c.logger.Debug("configuration set", "keys", len(flat), "namespaces", len(parsed))
	return nil
}

// Update merges flat into the current configuration. Values of the same
// namespace parameter are overwritten, everything else is kept.
func (c *Config) Update(flat FlatConfig) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	parsed, err := c.flatToNamespaceConfigs(flat)
	if err != nil {
		return err
	}

	// Copy on write: bound snapshots of the previous maps stay untouched
	merged := make(map[string]map[string]any, len(c.nsConfigs)+len(parsed))
	for ns, values := range c.nsConfigs {
		merged[ns] = maps.Clone(values)
	}
	for ns, values := range parsed {
		if merged[ns] == nil {
			merged[ns] = make(map[string]any, len(values))
		}
		maps.Copy(merged[ns], values)
	}

	c.nsConfigs = merged
	c.markAllDirty()

	c.logger.Debug("configuration updated", "keys", len(flat), "namespaces", len(parsed))
	return nil
}

// Reset drops all configuration so every configurable uses its registered defaults.
func (c *Config) Reset() {
	// Set of an empty configuration cannot fail
	_ = c.Set(nil)
}

// ToFlatConfig projects the current configuration back to flat keys.
// Instanced values become "@ns.param" entries holding the target id.
func (c *Config) ToFlatConfig() FlatConfig {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	flat := make(FlatConfig)
	for ns, values := range c.nsConfigs {
		for param, value := range values {
			key, v := instancedToKeyValue(joinKey(false, ns, param), value)
			flat[key] = v
		}
	}
	return flat
}

// NamespaceConfig returns a copy of the current namespace -> param -> value state.
func (c *Config) NamespaceConfig() map[string]map[string]any {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	out := make(map[string]map[string]any, len(c.nsConfigs))
	for ns, values := range c.nsConfigs {
		out[ns] = maps.Clone(values)
	}
	return out
}

// flatToNamespaceConfigs validates every entry of flat and groups the
// normalized values by namespace. All invalid entries are reported together.
func (c *Config) flatToNamespaceConfigs(flat FlatConfig) (map[string]map[string]any, error) {
	result := make(map[string]map[string]any)
	var errs []error

	for _, key := range flat.Keys() {
		value := flat[key]

		instanced, namespace, param, err := splitKey(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if instanced {
			_, inst, err := c.instancedFromKeyValue(key, value)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			value = inst
		} else {
			value = normalizeValue(value)
		}

		if c.options.Strict {
			if !c.hasNamespace(namespace) {
				errs = append(errs, fmt.Errorf("%w: namespace %q of key %q does not exist", ErrUnknownParam, namespace, key))
				continue
			}
			if !c.hasNamespaceParam(namespace, param) {
				errs = append(errs, fmt.Errorf("%w: parameter %q of namespace %q does not exist", ErrUnknownParam, param, namespace))
				continue
			}
		}

		if _, seen := result[namespace][param]; seen {
			errs = append(errs, fmt.Errorf("%w: duplicate parameter %q given as %q and %q",
				ErrInvalidKey, param, joinKey(true, namespace, param), joinKey(false, namespace, param)))
			continue
		}
		if result[namespace] == nil {
			result[namespace] = make(map[string]any)
		}
		result[namespace][param] = value
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return result, nil
}

// prime hands the current values of its namespace and the global namespace to
// a configurable. Must be called with the lock held.
func (c *Config) prime(configurable *Configurable) {
	configurable.Reconfigure(c.nsConfigs[configurable.namespace], c.nsConfigs[GlobalNamespace])
}

// markAllDirty re-primes every configurable. Must be called with the lock held.
func (c *Config) markAllDirty() {
	for _, configurable := range c.configurables {
		c.prime(configurable)
	}
}
