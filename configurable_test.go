// FILE: tonic/configurable_test.go
package tonic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echo returns the positional arguments followed by the named keyword values.
func echo(names ...string) Func {
	return func(args []any, kw Kwargs) (any, error) {
		out := append([]any{}, args...)
		for _, name := range names {
			out = append(out, kw[name])
		}
		return out, nil
	}
}

// TestNewConfigurable tests construction and identity of configurables
func TestNewConfigurable(t *testing.T) {
	t.Run("DerivedIdentity", func(t *testing.T) {
		c, err := NewConfigurable(train, Kwargs{"optimizer": "adam", "lr": 0.001})
		require.NoError(t, err)
		assert.Equal(t, "train", c.ID())
		assert.Equal(t, "train", c.Namespace())
		assert.Equal(t, []string{"lr", "optimizer"}, c.ParamNames())
		assert.True(t, c.HasParam("lr"))
		assert.False(t, c.HasParam("epochs"))
	})

	t.Run("ExplicitIdentity", func(t *testing.T) {
		c, err := NewConfigurable(train, nil, WithID("models.train"), WithNamespace("fizz.buzz"))
		require.NoError(t, err)
		assert.Equal(t, "models.train", c.ID())
		assert.Equal(t, "fizz.buzz", c.Namespace())
		assert.Empty(t, c.ParamNames())
	})

	t.Run("NilFunc", func(t *testing.T) {
		_, err := NewConfigurable(nil, nil, WithID("x"))
		assert.ErrorIs(t, err, ErrNotConfigurable)
	})

	t.Run("InvalidNames", func(t *testing.T) {
		_, err := NewConfigurable(train, nil, WithID("bad id"))
		assert.ErrorIs(t, err, ErrInvalidName)

		_, err = NewConfigurable(train, nil, WithNamespace("*"))
		assert.ErrorIs(t, err, ErrInvalidName)

		_, err = NewConfigurable(train, Kwargs{"a.b": 1})
		assert.ErrorIs(t, err, ErrInvalidName)

		_, err = NewConfigurable(train, Kwargs{"type": 1})
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("DefaultsCopied", func(t *testing.T) {
		defaults := Kwargs{"lr": 0.1}
		c, err := NewConfigurable(train, defaults)
		require.NoError(t, err)
		defaults["lr"] = 0.5
		assert.Equal(t, 0.1, c.Defaults()["lr"])
	})
}

// TestResolve tests the lazy binding state machine
func TestResolve(t *testing.T) {
	t.Run("NotReconfigured", func(t *testing.T) {
		c, err := NewConfigurable(echo("b"), Kwargs{"b": nil}, WithID("f"))
		require.NoError(t, err)

		_, err = c.Resolve()
		assert.ErrorIs(t, err, ErrNotReconfigured)
		_, err = c.Invoke(1)
		assert.ErrorIs(t, err, ErrNotReconfigured)
	})

	t.Run("Precedence", func(t *testing.T) {
		c, err := NewConfigurable(echo("b", "c", "d"), Kwargs{"b": "b0", "c": "c0", "d": "d0"}, WithID("f"))
		require.NoError(t, err)

		c.Reconfigure(
			map[string]any{"b": "local"},
			map[string]any{"b": "global", "c": "global"},
		)
		out, err := c.Invoke(1)
		require.NoError(t, err)
		assert.Equal(t, []any{1, "local", "global", "d0"}, out)
	})

	t.Run("CallerWins", func(t *testing.T) {
		c, err := NewConfigurable(echo("b", "c"), Kwargs{"b": nil, "c": nil}, WithID("f"))
		require.NoError(t, err)

		c.Reconfigure(map[string]any{"b": "local"}, map[string]any{"c": "global"})
		out, err := c.Call(nil, Kwargs{"b": "caller", "c": "caller"})
		require.NoError(t, err)
		assert.Equal(t, []any{"caller", "caller"}, out)
	})

	t.Run("UndeclaredParamsIgnored", func(t *testing.T) {
		c, err := NewConfigurable(echo("b", "x"), Kwargs{"b": 1}, WithID("f"))
		require.NoError(t, err)

		c.Reconfigure(map[string]any{"x": "ignored"}, map[string]any{"x": "ignored"})
		bound, err := c.Resolve()
		require.NoError(t, err)
		assert.Empty(t, bound.Overrides())
		assert.Equal(t, Kwargs{"b": 1}, bound.Kwargs())

		out, err := c.Call(nil, Kwargs{"x": "passed"})
		require.NoError(t, err)
		assert.Equal(t, []any{1, "passed"}, out)
	})

	t.Run("Idempotent", func(t *testing.T) {
		c, err := NewConfigurable(echo("b"), Kwargs{"b": 1}, WithID("f"))
		require.NoError(t, err)

		c.Reconfigure(map[string]any{"b": 2}, nil)
		assert.True(t, c.IsDirty())

		first, err := c.Resolve()
		require.NoError(t, err)
		assert.False(t, c.IsDirty())

		second, err := c.Resolve()
		require.NoError(t, err)
		assert.Same(t, first, second)

		c.Reconfigure(map[string]any{"b": 2}, nil)
		assert.True(t, c.IsDirty())
		third, err := c.Resolve()
		require.NoError(t, err)
		assert.NotSame(t, first, third)
		assert.Equal(t, first.Kwargs(), third.Kwargs())
	})

	t.Run("ReconfigureIsLazy", func(t *testing.T) {
		calls := 0
		seed, err := NewConfigurable(func(args []any, kw Kwargs) (any, error) {
			calls++
			return calls, nil
		}, nil, WithID("seed"))
		require.NoError(t, err)
		seed.Reconfigure(nil, nil)

		c, err := NewConfigurable(echo("v"), Kwargs{"v": nil}, WithID("f"))
		require.NoError(t, err)
		c.Reconfigure(map[string]any{"v": NewInstanced(seed)}, nil)
		assert.Equal(t, 0, calls)

		_, err = c.Invoke()
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("ReconfigureCopiesMaps", func(t *testing.T) {
		c, err := NewConfigurable(echo("b"), Kwargs{"b": 1}, WithID("f"))
		require.NoError(t, err)

		ns := map[string]any{"b": 2}
		c.Reconfigure(ns, nil)
		ns["b"] = 3

		out, err := c.Invoke()
		require.NoError(t, err)
		assert.Equal(t, []any{2}, out)
	})
}

// TestCyclicInstanced tests that instanced cycles fail instead of recursing
func TestCyclicInstanced(t *testing.T) {
	t.Run("Self", func(t *testing.T) {
		a, err := NewConfigurable(echo("x"), Kwargs{"x": nil}, WithID("a"))
		require.NoError(t, err)
		a.Reconfigure(map[string]any{"x": NewInstanced(a)}, nil)

		_, err = a.Invoke()
		assert.ErrorIs(t, err, ErrCyclicInstance)
		assert.Contains(t, err.Error(), "a -> a")
	})

	t.Run("TwoStep", func(t *testing.T) {
		a, err := NewConfigurable(echo("x"), Kwargs{"x": nil}, WithID("a"))
		require.NoError(t, err)
		b, err := NewConfigurable(echo("y"), Kwargs{"y": nil}, WithID("b"))
		require.NoError(t, err)

		a.Reconfigure(map[string]any{"x": NewInstanced(b)}, nil)
		b.Reconfigure(map[string]any{"y": NewInstanced(a)}, nil)

		_, err = a.Invoke()
		assert.ErrorIs(t, err, ErrCyclicInstance)
		assert.Contains(t, err.Error(), "a -> b -> a")
		// Failed resolution leaves the configurable dirty
		assert.True(t, a.IsDirty())
	})
}
