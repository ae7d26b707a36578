// Package zip builds downloadable bundles of generated app sources.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// File is one entry in an export bundle.
type File struct {
	Name string
	Data []byte
}

// Bundle writes the files into a single zip archive.
func Bundle(files []File) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("add %s: %w", f.Name, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
