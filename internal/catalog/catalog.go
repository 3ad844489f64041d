// Package catalog loads person catalogs from YAML or JSON files.
//
// A file is either a bare list of persons or a document with "persons" and
// optional "relations" keys. Every person is normalized and validated before
// it is returned; a file with any invalid entry is rejected as a whole.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/apptype"
)

// Format selects the decoder.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// File is a decoded catalog.
type File struct {
	Persons   []apptype.Person   `json:"persons" yaml:"persons"`
	Relations []apptype.Relation `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported catalog extension %q", filepath.Ext(path))
	}
}

// Load reads and validates the catalog at path.
func Load(path string) (*File, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	out, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Decode reads a catalog in the given format.
func Decode(r io.Reader, format Format) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var file File
	switch format {
	case FormatYAML:
		err = decodeYAML(raw, &file)
	case FormatJSON:
		err = decodeJSON(raw, &file)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if err := file.normalize(); err != nil {
		return nil, err
	}
	return &file, nil
}

func decodeYAML(raw []byte, file *File) error {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		if err := node.Content[0].Decode(&file.Persons); err != nil {
			return fmt.Errorf("failed to decode persons: %w", err)
		}
		return nil
	}
	if err := node.Content[0].Decode(file); err != nil {
		return fmt.Errorf("failed to decode catalog: %w", err)
	}
	return nil
}

func decodeJSON(raw []byte, file *File) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &file.Persons); err != nil {
			return fmt.Errorf("failed to decode persons: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(trimmed, file); err != nil {
		return fmt.Errorf("failed to decode catalog: %w", err)
	}
	return nil
}

// normalize fills derived ids, validates persons and rejects duplicate ids
// and relations to persons outside the file.
func (f *File) normalize() error {
	ids := make(map[string]struct{}, len(f.Persons))
	for i := range f.Persons {
		f.Persons[i].Normalize()
		if err := f.Persons[i].Validate(); err != nil {
			return fmt.Errorf("person %d: %w", i, err)
		}
		id := f.Persons[i].ID
		if _, dup := ids[id]; dup {
			return fmt.Errorf("person %d: duplicate id %q", i, id)
		}
		ids[id] = struct{}{}
	}
	for i, r := range f.Relations {
		if r.From == "" || r.To == "" || r.RelationType == "" {
			return fmt.Errorf("relation %d: fields cannot be empty", i)
		}
		for _, id := range []string{r.From, r.To} {
			if _, ok := ids[id]; !ok {
				return fmt.Errorf("relation %d: unknown person id %q", i, id)
			}
		}
	}
	return nil
}
