package doc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Format selects the serialization of a document file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue" // decode only
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrDuplicateKey      = errors.New("duplicate entity key")
	ErrUnknownKey        = errors.New("unknown entity key")
	ErrWrongKeyType      = errors.New("entity key refers to wrong type")
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch filepath.Ext(path) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// DecodeFile reads the document at path, choosing the format from the
// file extension.
func DecodeFile(path string) (*Domain, Format, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read document: %w", err)
	}
	if format == FormatCUE {
		d, err := DecodeCUE(data, path)
		return d, format, err
	}
	d, err := Decode(bytes.NewReader(data), format)
	return d, format, err
}

// Decode reads a document in the given format.
func Decode(r io.Reader, format Format) (*Domain, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var f File
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode json document: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode yaml document: %w", err)
		}
	case FormatCUE:
		return DecodeCUE(data, "document.cue")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return FromFile(&f)
}

// Encode writes d in the given format.
func Encode(w io.Writer, d *Domain, format Format) error {
	f := ToFile(d)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode json document: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode yaml document: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml document: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}

// EncodeFile writes d to path in the format implied by its extension.
func EncodeFile(path string, d *Domain) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, d, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
