// Package jsonutil wraps github.com/go-json-experiment/json for the files
// dorkshot reads and writes.
//
// Usage:
//
//	import "github.com/waftester/dorkshot/pkg/jsonutil"
//
//	err := jsonutil.WriteFile(path, manifest)
//	err = jsonutil.ReadFile(path, &manifest)
package jsonutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/waftester/dorkshot/pkg/defaults"
)

// Indent is the indentation used for files written to disk.
const Indent = "  "

// MarshalIndent returns the JSON encoding of v indented with Indent.
func MarshalIndent(v any) ([]byte, error) {
	return json.Marshal(v, jsontext.WithIndent(Indent))
}

// WriteFile writes the indented encoding of v to path followed by a
// newline. The file is written to a temporary sibling and renamed so a
// reader never sees a partial document.
func WriteFile(path string, v any) error {
	data, err := MarshalIndent(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(defaults.FilePerm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile decodes the JSON document at path into v.
func ReadFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.UnmarshalRead(f, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
