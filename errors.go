package tonic

import "errors"

var (
	// ErrInvalidName is returned when an identifier fails the dotted-name grammar.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidKey is returned when a configuration key fails the key grammar.
	ErrInvalidKey = errors.New("invalid key")
	// ErrNotConfigurable is returned when a registration target is not a function.
	ErrNotConfigurable = errors.New("not configurable")
	// ErrDuplicateConfigurable is returned when a configurable id is already registered.
	ErrDuplicateConfigurable = errors.New("configurable already registered")
	// ErrDuplicateMember is returned when a configurable is added twice to a namespace.
	ErrDuplicateMember = errors.New("configurable already a member of namespace")
	// ErrUnknownConfigurable is returned when an instanced value references an unregistered function.
	ErrUnknownConfigurable = errors.New("unknown configurable")
	// ErrNotReconfigured is returned when a configurable is resolved before it was primed.
	ErrNotReconfigured = errors.New("configurable was never reconfigured")
	// ErrCyclicInstance is returned when instanced values reference each other in a cycle.
	ErrCyclicInstance = errors.New("cyclic instanced value")

	// ErrStrictNamespace is returned in strict mode when a namespace is registered twice.
	ErrStrictNamespace = errors.New("strict mode: namespace already registered")
	// ErrUnknownParam is returned in strict mode when a key names an unknown namespace or parameter.
	ErrUnknownParam = errors.New("strict mode: unknown namespace parameter")

	// ErrConfigNotFound is returned when a configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
	// ErrUnsupportedFormat is returned when a file format cannot be determined.
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
	// ErrCLIParse is returned when command-line overrides cannot be parsed.
	ErrCLIParse = errors.New("failed to parse command-line arguments")
)
