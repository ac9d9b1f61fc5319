package parse

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrLayoutNotFound is returned when an archive contains no entry whose
// name ends, case-insensitively, in "layout.xml".
var ErrLayoutNotFound = fmt.Errorf("parse: no layout.xml entry found in archive")

// OpenArchiveLayout locates the layout document inside a zip archive at
// path, extracts it to a temporary file, and returns a TokenSource over it
// plus a cleanup function the caller must invoke once parsing succeeds (the
// source is removed on success; on failure the caller should still call
// cleanup to avoid leaking the temp file).
func OpenArchiveLayout(path string) (TokenSource, func() error, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrLayoutNotFound, err)
	}
	defer zr.Close()

	var entry *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), "layout.xml") {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, nil, ErrLayoutNotFound
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("parse: opening archive entry: %w", err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "layout-*.xml")
	if err != nil {
		return nil, nil, fmt.Errorf("parse: creating temp file: %w", err)
	}
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, nil, fmt.Errorf("parse: extracting layout.xml: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, nil, fmt.Errorf("parse: seeking temp file: %w", err)
	}

	cleanup := func() error {
		tmp.Close()
		return os.Remove(tmp.Name())
	}
	return NewXMLTokenSource(tmp), cleanup, nil
}
