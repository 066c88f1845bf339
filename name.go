// File: tonic/name.go
package tonic

import (
	"fmt"
	"go/token"
	"reflect"
	"runtime"
	"strings"
)

const (
	// GlobalNamespace is the reserved namespace whose values apply to every configurable.
	GlobalNamespace = "*"
	// InstancedPrefix marks a key whose value references a registered configurable.
	InstancedPrefix = "@"
)

// ValidateIdentifier checks that name is a dot-separated path of segments made of
// ASCII letters, digits and underscores, none of which is a Go keyword.
func ValidateIdentifier(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	for _, segment := range strings.Split(name, ".") {
		if !isValidSegment(segment) {
			return "", fmt.Errorf("%w: invalid segment %q in %q", ErrInvalidName, segment, name)
		}
		if token.IsKeyword(segment) {
			return "", fmt.Errorf("%w: segment %q in %q is a reserved keyword", ErrInvalidName, segment, name)
		}
	}
	return name, nil
}

// ValidateKey checks a configuration key of the form "[@]namespace.param".
// The namespace is either an identifier or the global namespace "*".
func ValidateKey(key string) (string, error) {
	if _, _, _, err := splitKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// splitKey validates key and splits it into its instanced marker, namespace and
// parameter name. The namespace is everything before the last dot.
func splitKey(key string) (instanced bool, namespace, param string, err error) {
	path := key
	if strings.HasPrefix(path, InstancedPrefix) {
		instanced = true
		path = path[len(InstancedPrefix):]
	}

	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return false, "", "", fmt.Errorf("%w: %q has no namespace", ErrInvalidKey, key)
	}
	namespace, param = path[:idx], path[idx+1:]

	if namespace != GlobalNamespace {
		if _, err := ValidateIdentifier(namespace); err != nil {
			return false, "", "", fmt.Errorf("%w: %q: %w", ErrInvalidKey, key, err)
		}
	}
	if _, err := validateParamName(param); err != nil {
		return false, "", "", fmt.Errorf("%w: %q: %w", ErrInvalidKey, key, err)
	}
	return instanced, namespace, param, nil
}

// joinKey is the inverse of splitKey.
func joinKey(instanced bool, namespace, param string) string {
	key := namespace + "." + param
	if instanced {
		key = InstancedPrefix + key
	}
	return key
}

// validateParamName checks a single parameter name.
func validateParamName(param string) (string, error) {
	if strings.Contains(param, ".") {
		return "", fmt.Errorf("%w: parameter %q cannot contain dots", ErrInvalidName, param)
	}
	return ValidateIdentifier(param)
}

// isValidSegment checks if a single path segment is [A-Za-z0-9_]+.
func isValidSegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_') {
			return false
		}
	}
	return true
}

// DeriveName returns the default id of a function: its runtime name without the
// package qualifier, with closure and method-value markers removed. A closure
// declared inside TestTrain is therefore named "TestTrain", and a method value
// of (*Trainer).Fit is named "Trainer.Fit".
func DeriveName(fn any) (string, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return "", fmt.Errorf("%w: %T is not a function", ErrNotConfigurable, fn)
	}
	rf := runtime.FuncForPC(v.Pointer())
	if rf == nil {
		return "", fmt.Errorf("%w: cannot resolve runtime name of %T", ErrInvalidName, fn)
	}
	return normalizeFuncName(rf.Name())
}

// normalizeFuncName converts a runtime function name such as
// "example.com/pkg.(*T).Method-fm" into "T.Method".
func normalizeFuncName(full string) (string, error) {
	name := full
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	// Drop the package name
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}
	// Generic instantiations
	for {
		open := strings.IndexByte(name, '[')
		if open < 0 {
			break
		}
		end := strings.IndexByte(name[open:], ']')
		if end < 0 {
			break
		}
		name = name[:open] + name[open+end+1:]
	}
	name = strings.TrimSuffix(name, "-fm")

	segments := strings.Split(name, ".")
	var kept []string
	for i, segment := range segments {
		segment = strings.TrimPrefix(segment, "(*")
		segment = strings.TrimPrefix(segment, "(")
		segment = strings.TrimSuffix(segment, ")")
		if segment == "" || segment == "glob" || isClosureSegment(segment) {
			continue
		}
		// Closures in package-level variables live in "init.funcN"
		if i == 0 && segment == "init" && len(segments) > 1 && isClosureSegment(segments[1]) {
			continue
		}
		kept = append(kept, segment)
	}
	if len(kept) == 0 {
		return "", fmt.Errorf("%w: cannot derive a name from %q", ErrInvalidName, full)
	}

	derived := strings.Join(kept, ".")
	if _, err := ValidateIdentifier(derived); err != nil {
		return "", fmt.Errorf("derived name of %q: %w", full, err)
	}
	return derived, nil
}

// isClosureSegment reports whether segment is a compiler generated closure
// marker ("func1", "1", "gowrap2").
func isClosureSegment(segment string) bool {
	for _, prefix := range []string{"func", "gowrap", "deferwrap"} {
		if rest, ok := strings.CutPrefix(segment, prefix); ok && rest != "" && isDigits(rest) {
			return true
		}
	}
	return isDigits(segment)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
