// Package blob extracts a raw pak byte stream out of a mod download,
// which may be a zip archive wrapping a .pak or a bare .pak itself.
package blob

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"

	"github.com/AssemblyStorm/mint/internal/mint"
)

// ExtractPak probes data as a zip archive. If it is one, the first
// entry whose path ends in ".pak" (case-insensitive, iteration order
// unspecified) is read fully and returned. If data is not a zip archive
// at all, it is returned unchanged. An archive with no entries, or one
// whose entries are all non-pak, is a distinct failure from each other
// and from a malformed zip.
func ExtractPak(data []byte, path string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if err == zip.ErrFormat {
			return data, nil
		}
		return nil, mint.Wrap(mint.InvalidZipFile, "failed to read zip archive", err).WithPath(path)
	}

	if len(zr.File) == 0 {
		return nil, mint.New(mint.InvalidZipFile, "zip archive contains no files").WithPath(path)
	}

	sawNonPak := false
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if !strings.EqualFold(extOf(f.Name), ".pak") {
			sawNonPak = true
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, mint.Wrap(mint.InvalidZipFile, "failed to open pak entry in zip archive", err).WithPath(path)
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, mint.Wrap(mint.IoError, "failed to read pak entry in zip archive", err).WithPath(path)
		}
		return buf, nil
	}

	if sawNonPak {
		return nil, mint.New(mint.InvalidZipFile, "zip archive contains no .pak file").WithPath(path)
	}
	return nil, mint.New(mint.InvalidZipFile, "zip archive contains no files").WithPath(path)
}

func extOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i:]
}
