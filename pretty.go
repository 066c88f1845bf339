package tonic

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gookit/color"
)

// PrettyOptions controls the listing written by Pretty.
type PrettyOptions struct {
	// Color enables ANSI colors when the terminal supports them.
	Color bool
}

// palette renders the parts of a listing line.
type palette struct {
	punct, prefix, namespace, param, local, global func(a ...any) string
}

func newPalette(enabled bool) palette {
	if !enabled {
		plain := func(a ...any) string { return fmt.Sprint(a...) }
		return palette{plain, plain, plain, plain, plain, plain}
	}
	return palette{
		punct:     color.Gray.Sprint,
		prefix:    color.Green.Sprint,
		namespace: color.Magenta.Sprint,
		param:     color.Blue.Sprint,
		local:     color.Yellow.Sprint,
		global:    color.Red.Sprint,
	}
}

// Pretty writes every known parameter as one line of a map literal. Unset
// parameters are commented out and show their default; inherited global
// values are annotated with the "*.param" entry they come from.
func (c *Config) Pretty(w io.Writer, opts PrettyOptions) error {
	p := newPalette(opts.Color)

	var b strings.Builder
	b.WriteString(p.punct("{") + "\n")
	for _, info := range c.Describe() {
		set := info.Provenance != ProvenanceDefault
		if set {
			b.WriteString("  ")
		} else {
			b.WriteString(p.punct("# "))
		}

		prefix := ""
		if info.Instanced {
			prefix = InstancedPrefix
		}
		b.WriteString(p.punct(`"`) + p.prefix(prefix) + p.namespace(info.Namespace) +
			p.punct(".") + p.param(info.Param) + p.punct(`"`) + ": ")

		switch info.Provenance {
		case ProvenanceLocal:
			b.WriteString(p.local(formatValue(info.Value)))
		case ProvenanceGlobal:
			b.WriteString(p.global(formatValue(info.Value)))
		default:
			b.WriteString(p.punct(formatValue(info.Value)))
		}
		b.WriteString(p.punct(","))

		if info.HasGlobal {
			globalKey := joinKey(info.GlobalInstanced, GlobalNamespace, info.Param)
			b.WriteString("  " + p.punct(fmt.Sprintf("# %q: %s,", globalKey, formatValue(info.GlobalValue))))
		}
		b.WriteString("\n")
	}
	b.WriteString(p.punct("}") + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// PrettyFlat writes a flat configuration as one line per key, without the
// defaults and provenance that only a Config knows about.
func PrettyFlat(w io.Writer, flat FlatConfig, opts PrettyOptions) error {
	p := newPalette(opts.Color)

	var b strings.Builder
	b.WriteString(p.punct("{") + "\n")
	for _, key := range flat.Keys() {
		instanced, namespace, param, err := splitKey(key)
		if err != nil {
			return err
		}
		prefix := ""
		if instanced {
			prefix = InstancedPrefix
		}
		b.WriteString("  " + p.punct(`"`) + p.prefix(prefix) + p.namespace(namespace) +
			p.punct(".") + p.param(param) + p.punct(`"`) + ": ")
		if namespace == GlobalNamespace {
			b.WriteString(p.global(formatValue(flat[key])))
		} else {
			b.WriteString(p.local(formatValue(flat[key])))
		}
		b.WriteString(p.punct(",") + "\n")
	}
	b.WriteString(p.punct("}") + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// String returns the uncolored listing written by Pretty.
func (c *Config) String() string {
	var b strings.Builder
	_ = c.Pretty(&b, PrettyOptions{})
	return b.String()
}

// formatValue renders a value the way it would be written in a config file.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case *Instanced:
		return strconv.Quote(v.target.id)
	case string:
		return strconv.Quote(v)
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = formatValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}
