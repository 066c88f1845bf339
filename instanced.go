package tonic

import (
	"fmt"
	"reflect"
)

// Instanced is a configuration value that references another configurable.
// Each time the owning configurable is re-bound, the target is resolved and
// invoked without arguments and its result is injected in place of the
// Instanced value.
type Instanced struct {
	target *Configurable
}

// NewInstanced wraps target.
func NewInstanced(target *Configurable) *Instanced {
	return &Instanced{target: target}
}

// Target returns the referenced configurable.
func (i *Instanced) Target() *Configurable { return i.target }

// Materialize resolves the target and invokes it with no arguments.
func (i *Instanced) Materialize() (any, error) {
	return i.materialize(nil)
}

func (i *Instanced) materialize(chain []*Configurable) (any, error) {
	bound, err := i.target.resolve(chain)
	if err != nil {
		return nil, err
	}
	return bound.Call(nil, nil)
}

func (i *Instanced) String() string {
	return InstancedPrefix + i.target.id
}

// handle is implemented by *Configurable and the typed wrappers.
type handle interface {
	Configurable() *Configurable
}

// instancedFromKeyValue converts an "@" entry of a flat configuration. The
// value is either the id of a registered configurable, a handle to one, or a
// function whose derived name is a registered id. Must be called with the
// config lock held.
func (c *Config) instancedFromKeyValue(key string, value any) (string, *Instanced, error) {
	stripped := key[len(InstancedPrefix):]

	var target *Configurable
	switch v := value.(type) {
	case string:
		target = c.configurables[v]
		if target == nil {
			return "", nil, fmt.Errorf("%w: %q referenced by %q", ErrUnknownConfigurable, v, key)
		}
	case handle:
		ref := v.Configurable()
		if ref == nil || c.configurables[ref.id] != ref {
			return "", nil, fmt.Errorf("%w: %v referenced by %q is not registered here", ErrUnknownConfigurable, v, key)
		}
		target = ref
	default:
		if value == nil || reflect.TypeOf(value).Kind() != reflect.Func {
			return "", nil, fmt.Errorf("%w: instanced value for %q is %T", ErrNotConfigurable, key, value)
		}
		id, err := DeriveName(value)
		if err != nil {
			return "", nil, fmt.Errorf("instanced value for %q: %w", key, err)
		}
		target = c.configurables[id]
		if target == nil {
			return "", nil, fmt.Errorf("%w: %q referenced by %q", ErrUnknownConfigurable, id, key)
		}
	}

	return stripped, NewInstanced(target), nil
}

// instancedToKeyValue is the inverse of instancedFromKeyValue, used when
// projecting the configuration back to flat form.
func instancedToKeyValue(key string, value any) (string, any) {
	if inst, ok := value.(*Instanced); ok {
		return InstancedPrefix + key, inst.target.id
	}
	return key, value
}
