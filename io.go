// File: tonic/io.go
package tonic

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format names a file format of a flat configuration.
type Format string

const (
	// FormatAuto detects the format from the file extension, then the content.
	FormatAuto Format = ""
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Load reads a configuration file and replaces the current configuration with it.
func (c *Config) Load(path string) error {
	flat, err := LoadFile(path)
	if err != nil {
		return err
	}
	if err := c.Set(flat); err != nil {
		return fmt.Errorf("failed to apply config file '%s': %w", path, err)
	}
	c.logger.Debug("loaded config", "path", path, "keys", len(flat))
	return nil
}

// Save writes the current configuration to a file atomically. The format is
// taken from the extension and defaults to TOML.
func (c *Config) Save(path string) error {
	if err := SaveFile(path, c.ToFlatConfig()); err != nil {
		return err
	}
	c.logger.Debug("saved config", "path", path)
	return nil
}

// LoadArgs merges command-line overrides of the form "--ns.param=value",
// "--ns.param value" or "--ns.flag" into the configuration.
func (c *Config) LoadArgs(args []string) error {
	flat, err := ParseArgs(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCLIParse, err)
	}
	if len(flat) == 0 {
		return nil
	}
	return c.Update(flat)
}

// LoadFile reads a flat configuration from a TOML, JSON or YAML file. Nested
// tables are flattened to dotted keys.
func LoadFile(path string) (FlatConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	format := detectFileFormat(path)
	if format == FormatAuto {
		format = detectFormatFromContent(data)
	}
	flat, err := Unmarshal(data, format)
	if err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return flat, nil
}

// SaveFile writes flat to path atomically in the format implied by the extension.
func SaveFile(path string, flat FlatConfig) error {
	format := detectFileFormat(path)
	if format == FormatAuto {
		format = FormatTOML
	}
	data, err := Marshal(flat, format)
	if err != nil {
		return err
	}
	return atomicWriteFile(path, data)
}

// Unmarshal parses data in the given format into a flat configuration.
func Unmarshal(data []byte, format Format) (FlatConfig, error) {
	nested := make(map[string]any)
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&nested); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	flat := make(FlatConfig)
	for key, value := range flattenMap(nested, "") {
		flat[key] = normalizeValue(value)
	}
	return flat, nil
}

// Marshal encodes flat in the given format. Keys are written as-is so that
// "*" and "@" survive a round trip.
func Marshal(flat FlatConfig, format Format) ([]byte, error) {
	data := map[string]any(flat)
	if data == nil {
		data = map[string]any{}
	}

	switch format {
	case FormatTOML, FormatAuto:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(data); err != nil {
			return nil, fmt.Errorf("failed to marshal config data to TOML: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config data to JSON: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config data to YAML: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// atomicWriteFile performs atomic file write
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath) // Clean up on any error

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// ParseArgs converts "--ns.param=value", "--ns.param value" and "--ns.flag"
// arguments into a flat configuration. Other arguments are skipped.
func ParseArgs(args []string) (FlatConfig, error) {
	result := make(FlatConfig)
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			// Skip non-flag arguments
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			// Skip "--" argument if used as a separator
			i++
			continue
		}

		var key, valueStr string
		if k, v, found := strings.Cut(argContent, "="); found {
			key, valueStr = k, v
			i++
		} else {
			key = argContent
			// Check if it's a boolean flag (next arg is another flag or end of args)
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2
			}
		}

		if _, err := ValidateKey(key); err != nil {
			return nil, fmt.Errorf("command-line key %q: %w", key, err)
		}
		result[key] = parseValue(valueStr)
	}

	return result, nil
}

// parseValue attempts to parse a string into bool ("true"/"false"), int64 or float64,
// otherwise returns it unquoted.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) Format {
	// Try JSON first (strict format)
	var jsonTest map[string]any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	// TOML before YAML: most TOML documents are not valid YAML mappings
	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	return FormatAuto
}
