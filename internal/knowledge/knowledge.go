package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrResourceLoad indicates a required knowledge resource could not be read
// or decoded. It is fatal at startup.
var ErrResourceLoad = errors.New("knowledge resource load failed")

// Base is the static reference material injected into every chat prompt.
// It is immutable after Load and safe to share across goroutines.
type Base struct {
	freeText   string
	structured any
	canonical  string
}

// Sources names the files a Base is loaded from. SchemaPath is optional.
type Sources struct {
	TextPath   string
	DataPath   string
	SchemaPath string
}

// New builds a Base directly from in-memory values. Structured must be
// encodable with encoding/json.
func New(freeText string, structured any) (*Base, error) {
	structured = normalize(structured)
	canonical, err := encodeCanonical(structured)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding structured data: %v", ErrResourceLoad, err)
	}
	return &Base{freeText: freeText, structured: structured, canonical: canonical}, nil
}

// encodeCanonical renders v as compact JSON without HTML escaping, so text
// such as "<b>" or "&" reaches the prompt as written.
func encodeCanonical(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Load reads the free-text document and the structured document named by
// src. The structured document may be JSON or YAML, chosen by extension.
func Load(src Sources) (*Base, error) {
	text, err := os.ReadFile(src.TextPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading knowledge text %s: %v", ErrResourceLoad, src.TextPath, err)
	}

	raw, err := os.ReadFile(src.DataPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading structured data %s: %v", ErrResourceLoad, src.DataPath, err)
	}

	structured, err := decode(src.DataPath, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrResourceLoad, src.DataPath, err)
	}

	kb, err := New(string(text), structured)
	if err != nil {
		return nil, err
	}

	if src.SchemaPath != "" {
		schema, err := os.ReadFile(src.SchemaPath)
		if err != nil {
			return nil, fmt.Errorf("%w: reading schema %s: %v", ErrResourceLoad, src.SchemaPath, err)
		}
		if err := Validate([]byte(kb.canonical), schema); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrResourceLoad, src.DataPath, err)
		}
	}

	return kb, nil
}

// FreeText returns the plain-text knowledge document verbatim.
func (b *Base) FreeText() string { return b.freeText }

// Structured returns the decoded structured document. Callers must not
// mutate it.
func (b *Base) Structured() any { return b.structured }

// CanonicalJSON returns the structured document as compact JSON with map
// keys sorted, identical on every call.
func (b *Base) CanonicalJSON() string { return b.canonical }

func decode(path string, raw []byte) (any, error) {
	var v any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
	default:
		// UseNumber keeps integers wider than a float64 mantissa intact.
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, errors.New("unexpected data after top-level value")
		}
	}
	return v, nil
}

// normalize turns YAML's map[any]any nodes into map[string]any so the
// document can be rendered as JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
