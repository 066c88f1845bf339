// File: tonic/convenience.go
package tonic

import (
	"fmt"
	"io"
	"strings"
)

// Provenance tells where the effective value of a parameter comes from.
type Provenance string

const (
	// ProvenanceLocal means the namespace sets the parameter.
	ProvenanceLocal Provenance = "local"
	// ProvenanceGlobal means the value is inherited from the global namespace.
	ProvenanceGlobal Provenance = "global"
	// ProvenanceDefault means the registered default applies.
	ProvenanceDefault Provenance = "default"
)

// ParamInfo describes one parameter of one namespace.
type ParamInfo struct {
	Namespace  string
	Param      string
	Value      any // effective value; *Instanced for instanced entries
	Provenance Provenance
	Instanced  bool

	// GlobalValue is the "*.param" value, reported even when shadowed.
	GlobalValue     any
	HasGlobal       bool
	GlobalInstanced bool
}

// Key returns the flat key of the parameter, with the instanced prefix when applicable.
func (p ParamInfo) Key() string {
	return joinKey(p.Instanced, p.Namespace, p.Param)
}

// Describe lists every parameter of every namespace, sorted by namespace
// then parameter, with its effective value and provenance.
func (c *Config) Describe() []ParamInfo {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	global := c.nsConfigs[GlobalNamespace]

	var infos []ParamInfo
	for _, nsID := range sortedKeys(c.namespaces) {
		ns := c.namespaces[nsID]
		local := c.nsConfigs[nsID]

		for _, param := range ns.ParamNames() {
			info := ParamInfo{Namespace: nsID, Param: param}

			if gv, ok := global[param]; ok {
				info.GlobalValue = gv
				info.HasGlobal = true
				_, info.GlobalInstanced = gv.(*Instanced)
			}

			if lv, ok := local[param]; ok {
				info.Value = lv
				info.Provenance = ProvenanceLocal
			} else if info.HasGlobal {
				info.Value = info.GlobalValue
				info.Provenance = ProvenanceGlobal
			} else {
				info.Value, _ = ns.defaultOf(param)
				info.Provenance = ProvenanceDefault
			}
			_, info.Instanced = info.Value.(*Instanced)

			infos = append(infos, info)
		}
	}
	return infos
}

// Debug returns a plain listing of every parameter and its provenance.
func (c *Config) Debug() string {
	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	for _, info := range c.Describe() {
		b.WriteString(fmt.Sprintf("  %s: %v (%s)\n", info.Key(), info.Value, info.Provenance))
	}
	return b.String()
}

// Dump writes the current flat configuration to w in TOML format.
func (c *Config) Dump(w io.Writer) error {
	data, err := Marshal(c.ToFlatConfig(), FormatTOML)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Quick creates a Config and loads configFile if it exists. A missing file
// is not an error.
func Quick(configFile string) (*Config, error) {
	return NewBuilder().WithFile(configFile).Build()
}

// MustQuick is like Quick but panics on error.
func MustQuick(configFile string) *Config {
	cfg, err := Quick(configFile)
	if err != nil {
		panic(fmt.Sprintf("tonic: config initialization failed: %v", err))
	}
	return cfg
}
