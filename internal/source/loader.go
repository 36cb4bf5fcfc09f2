// Package source loads canonical class definition files from a source
// directory. Files are parsed into an untyped intermediate form; schema
// validation and typing happen downstream.
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File is one parsed source file. Doc is the untyped parse result; it is
// validated against the class schema before anything is written.
type File struct {
	Path string
	Name string
	Doc  map[string]any
}

// ParseError reports a source file that is not well-formed JSON. The file
// is skipped; the rest of the run proceeds.
type ParseError struct {
	Name string
	Err  error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

// Load reads every .json file in dir in filename-sorted order. Files that
// fail to parse are reported as ParseErrors, not errors: one malformed file
// must not block the others. Only a directory-level read failure is
// returned as an error.
func Load(dir string) ([]File, []ParseError, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading source directory %s: %w", dir, err)
	}

	var files []File
	var parseErrs []ParseError
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			parseErrs = append(parseErrs, ParseError{Name: entry.Name(), Err: err})
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			parseErrs = append(parseErrs, ParseError{Name: entry.Name(), Err: err})
			continue
		}
		files = append(files, File{Path: path, Name: entry.Name(), Doc: doc})
	}

	return files, parseErrs, nil
}
