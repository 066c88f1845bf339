// File: tonic/doc.go

// Package tonic provides dependency-injection style configuration for Go
// functions. A function is registered together with the keyword parameters it
// accepts and their default values; external configuration data then
// overrides those defaults by name, grouped into namespaces.
//
// Features:
//   - Explicit registration with derived or explicit ids and namespaces
//   - Namespaces shared by several functions
//   - A global namespace ("*") acting as fallback for every function
//   - Instanced values ("@" keys) that re-invoke another registered function
//   - Lazy re-binding: defaults are recomputed only when a function is called
//     after the configuration changed
//   - Typed adapters decoding parameters into tagged structs
//   - TOML, JSON and YAML persistence of the flat configuration
//   - A colorized listing of every known parameter and where its value came from
//
// Quick Start:
//
//	cfg := tonic.New()
//
//	train, _ := cfg.Register(func(args []any, kw tonic.Kwargs) (any, error) {
//	    return fmt.Sprint(kw["optimizer"], " ", kw["lr"]), nil
//	}, tonic.Kwargs{"optimizer": "adam", "lr": 0.001}, tonic.WithID("train"))
//
//	cfg.Set(tonic.FlatConfig{
//	    "train.optimizer": "sgd",
//	    "*.lr":            0.005,
//	})
//
//	out, _ := train.Invoke() // "sgd 0.005"
//
// Keys:
//
//	"<namespace>.<param>"    value for one namespace
//	"*.<param>"              value for every namespace that does not set it
//	"@<namespace>.<param>"   id of a registered function, invoked per re-binding
//
// Precedence (highest to lowest):
//  1. Keyword arguments passed by the caller
//  2. Namespace values
//  3. Global values
//  4. Registered default values
//
// Thread Safety:
// Registration and configuration changes are guarded by a read-write mutex on
// the Config. Each registered function guards its own bound state, so calls
// may run concurrently with configuration changes. Concurrent calls that find
// a function dirty wait for a single re-binding and share its result.
package tonic
