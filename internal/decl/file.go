package decl

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
)

// FileSchema is the current graph file schema version.
const FileSchema = 1

// File is the interchange form of a declaration graph. The front-end writes
// it as msgpack; test fixtures and hand-written graphs use TOML with the same
// field names.
type File struct {
	Schema   int           `toml:"schema" msgpack:"schema"`
	Module   string        `toml:"module" msgpack:"module"`
	Packages []FilePackage `toml:"package" msgpack:"package"`
}

// FilePackage lists the top-level entries of one package.
type FilePackage struct {
	Name    string  `toml:"name" msgpack:"name"`
	Entries []Entry `toml:"decl" msgpack:"decl"`
}

// Entry is one declaration. Kind is one of:
// fun, ctor, val, var, class, interface, object, enum, entry, annotation, value.
//
// Params are written as "name: Type"; types use the type expression syntax
// accepted by ParseTypeExpr.
type Entry struct {
	Kind       string   `toml:"kind" msgpack:"kind"`
	Name       string   `toml:"name" msgpack:"name"`
	Modifiers  []string `toml:"modifiers,omitempty" msgpack:"modifiers,omitempty"`
	TypeParams []string `toml:"type_params,omitempty" msgpack:"type_params,omitempty"`
	Params     []string `toml:"params,omitempty" msgpack:"params,omitempty"`
	Returns    string   `toml:"returns,omitempty" msgpack:"returns,omitempty"`
	Receiver   string   `toml:"receiver,omitempty" msgpack:"receiver,omitempty"`
	ExternName string   `toml:"extern_name,omitempty" msgpack:"extern_name,omitempty"`
	Symbol     string   `toml:"symbol,omitempty" msgpack:"symbol,omitempty"`
	Members    []Entry  `toml:"member,omitempty" msgpack:"member,omitempty"`
}

// Format selects the graph file encoding.
type Format uint8

const (
	FormatMsgpack Format = iota
	FormatTOML
)

// FormatForPath picks the encoding from the file extension.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatMsgpack
}

// ReadFile decodes a graph file from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph %q: %w", path, err)
	}
	f, err := Decode(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode parses graph bytes in the given format.
func Decode(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("failed to parse TOML graph: %w", err)
		}
	default:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode msgpack graph: %w", err)
		}
	}
	if f.Schema == 0 {
		f.Schema = FileSchema
	}
	if f.Schema != FileSchema {
		return nil, fmt.Errorf("unsupported graph schema %d (expected %d)", f.Schema, FileSchema)
	}
	return &f, nil
}

// Encode writes f in the given format.
func Encode(w io.Writer, f *File, format Format) error {
	if f == nil {
		return fmt.Errorf("missing graph file")
	}
	out := *f
	if out.Schema == 0 {
		out.Schema = FileSchema
	}
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(&out)
	default:
		return msgpack.NewEncoder(w).Encode(&out)
	}
}
