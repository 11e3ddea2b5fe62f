package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/lattice/pkg/core"
)

// Serializer defines how a page is read from and written to one file format.
type Serializer interface {
	// Parse reads a page from r.
	Parse(r io.Reader) (core.Page, error)
	// Serialize encodes p.
	Serialize(p core.Page) ([]byte, error)
}

// DefaultSerializers returns the built-in formats keyed by file extension.
func DefaultSerializers(strict bool) map[string]Serializer {
	return map[string]Serializer{
		".json": NewJSONSerializer(strict),
		".yaml": NewYAMLSerializer(),
		".yml":  NewYAMLSerializer(),
	}
}

// JSONSerializer reads and writes pages as indented JSON. Map keys are
// written in sorted order, so equal pages produce equal files.
type JSONSerializer struct {
	// Strict decodes numbers as json.Number to keep large integers exact.
	Strict bool
}

// NewJSONSerializer creates a JSON serializer.
func NewJSONSerializer(strict bool) *JSONSerializer {
	return &JSONSerializer{Strict: strict}
}

func (s *JSONSerializer) Parse(r io.Reader) (core.Page, error) {
	var p core.Page
	dec := json.NewDecoder(r)
	if s.Strict {
		dec.UseNumber()
	}
	if err := dec.Decode(&p); err != nil {
		return core.Page{}, fmt.Errorf("invalid json page: %w", err)
	}
	return p, nil
}

func (s *JSONSerializer) Serialize(p core.Page) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// YAMLSerializer reads and writes pages as YAML.
type YAMLSerializer struct{}

// NewYAMLSerializer creates a YAML serializer.
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Parse(r io.Reader) (core.Page, error) {
	var p core.Page
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		if err == io.EOF {
			return core.Page{}, fmt.Errorf("invalid yaml page: empty document")
		}
		return core.Page{}, fmt.Errorf("invalid yaml page: %w", err)
	}
	return p, nil
}

func (s *YAMLSerializer) Serialize(p core.Page) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
