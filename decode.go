// FILE: tonic/decode.go
package tonic

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// TagName is the struct tag naming parameters of typed configurables.
const TagName = "toml"

// Decode copies kw into target, which must be a non-nil pointer to a struct or
// map. Fields are matched by their `toml` tag, or their name when untagged.
func (kw Kwargs) Decode(target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("decode target must be non-nil pointer, got %T", target)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          TagName,
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(map[string]any(kw)); err != nil {
		return fmt.Errorf("decode into %T failed: %w", target, err)
	}
	return nil
}

// decodeHook returns the composite decode hook for the supported conversions
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// structDefaults converts the exported top-level fields of a struct into
// keyword defaults, using the same tag rules as Decode.
func structDefaults(defaults any) (Kwargs, error) {
	v := reflect.ValueOf(defaults)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("defaults must be a non-nil struct pointer or value")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("defaults must be a struct or struct pointer, got %T", defaults)
	}

	t := v.Type()
	kw := make(Kwargs, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		key := field.Name
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			key = name
		}

		if _, exists := kw[key]; exists {
			return nil, fmt.Errorf("field %s: parameter %q declared twice", field.Name, key)
		}
		kw[key] = v.Field(i).Interface()
	}
	return kw, nil
}

// TypedFunc is a configurable whose parameters are the fields of P.
type TypedFunc[P any, R any] struct {
	configurable *Configurable
}

// RegisterFunc registers fn with the fields of defaults as its configurable
// parameters. On every call the bound keyword values are decoded into a fresh
// P. The id and namespace default to the name derived from fn.
func RegisterFunc[P any, R any](cfg *Config, fn func(P) (R, error), defaults P, opts ...RegisterOption) (*TypedFunc[P, R], error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: function is nil", ErrNotConfigurable)
	}
	kw, err := structDefaults(defaults)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConfigurable, err)
	}

	wrapped := func(_ []any, kw Kwargs) (any, error) {
		var params P
		if err := kw.Decode(&params); err != nil {
			return nil, err
		}
		return fn(params)
	}

	opts = append([]RegisterOption{withNameSource(fn)}, opts...)
	configurable, err := cfg.Register(wrapped, kw, opts...)
	if err != nil {
		return nil, err
	}
	return &TypedFunc[P, R]{configurable: configurable}, nil
}

// MustRegisterFunc is like RegisterFunc but panics on error.
func MustRegisterFunc[P any, R any](cfg *Config, fn func(P) (R, error), defaults P, opts ...RegisterOption) *TypedFunc[P, R] {
	typed, err := RegisterFunc(cfg, fn, defaults, opts...)
	if err != nil {
		panic(fmt.Sprintf("tonic: register failed: %v", err))
	}
	return typed
}

// Call invokes the function. Keywords in overrides take precedence over
// configured values.
func (f *TypedFunc[P, R]) Call(overrides Kwargs) (R, error) {
	var zero R
	out, err := f.configurable.Call(nil, overrides)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	result, ok := out.(R)
	if !ok {
		return zero, fmt.Errorf("%s returned %T, want %T", f.configurable.id, out, zero)
	}
	return result, nil
}

// Configurable returns the underlying configurable, or nil for a nil receiver.
func (f *TypedFunc[P, R]) Configurable() *Configurable {
	if f == nil {
		return nil
	}
	return f.configurable
}

// ID returns the configurable id.
func (f *TypedFunc[P, R]) ID() string { return f.configurable.id }
