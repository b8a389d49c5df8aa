package pak

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/AssemblyStorm/mint/internal/mint"
)

const mountPoint = "../../../"

// Writer builds a new V11, Zlib-compressed pak archive by streaming
// writes to an underlying io.Writer. Files may be written in any order;
// positions are tracked internally so the index can be emitted once at
// Finish.
type Writer struct {
	w       io.Writer
	offset  uint64
	entries []*Entry
	seen    map[string]bool
}

// NewWriter returns a Writer that streams compressed file data to w as
// WriteFile is called, buffering only the index until Finish.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, seen: make(map[string]bool)}
}

// WriteFile compresses data in fixed BlockSize blocks and appends it to
// the archive under path. Returns InvalidPak if path is not canonical
// UTF-8 or has already been written.
func (w *Writer) WriteFile(path string, data []byte) error {
	if !isCanonicalUTF8(path) {
		return mint.New(mint.InvalidPak, "non-canonical UTF-8 path").WithPath(path)
	}
	lower := strings.ToLower(path)
	if w.seen[lower] {
		return mint.New(mint.InvalidPak, "duplicate write of path").WithPath(path)
	}
	w.seen[lower] = true

	entry := &Entry{
		Path:             path,
		Offset:           w.offset,
		UncompressedSize: uint64(len(data)),
		Compression:      CompressionZlib,
		Hash:             sha1.Sum(data),
	}

	var compressed bytes.Buffer
	for start := 0; start < len(data) || len(data) == 0; start += BlockSize {
		end := start + BlockSize
		if end > len(data) {
			end = len(data)
		}
		blockStart := uint64(compressed.Len())
		zw := zlib.NewWriter(&compressed)
		if _, err := zw.Write(data[start:end]); err != nil {
			return mint.Wrap(mint.IoError, "failed to compress block", err).WithPath(path)
		}
		if err := zw.Close(); err != nil {
			return mint.Wrap(mint.IoError, "failed to finalize compressed block", err).WithPath(path)
		}
		entry.Blocks = append(entry.Blocks, CompressionBlock{Start: blockStart, End: uint64(compressed.Len())})
		if len(data) == 0 {
			break
		}
	}
	entry.CompressedSize = uint64(compressed.Len())

	headerBuf := new(bytes.Buffer)
	writeEntryHeader(headerBuf, entry)
	if _, err := w.w.Write(headerBuf.Bytes()); err != nil {
		return mint.Wrap(mint.IoError, "failed to write entry header", err).WithPath(path)
	}
	if _, err := w.w.Write(compressed.Bytes()); err != nil {
		return mint.Wrap(mint.IoError, "failed to write entry data", err).WithPath(path)
	}

	w.offset += uint64(headerBuf.Len()) + entry.CompressedSize
	w.entries = append(w.entries, entry)
	return nil
}

func writeEntryHeader(buf *bytes.Buffer, e *Entry) {
	binary.Write(buf, binary.LittleEndian, e.Offset)
	binary.Write(buf, binary.LittleEndian, e.CompressedSize)
	binary.Write(buf, binary.LittleEndian, e.UncompressedSize)
	binary.Write(buf, binary.LittleEndian, uint32(e.Compression))
	buf.Write(e.Hash[:])
	binary.Write(buf, binary.LittleEndian, uint32(len(e.Blocks)))
	for _, b := range e.Blocks {
		binary.Write(buf, binary.LittleEndian, b.Start)
		binary.Write(buf, binary.LittleEndian, b.End)
	}
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.LittleEndian, int32(len(s)+1))
	buf.WriteString(s)
	buf.WriteByte(0)
}

// Finish emits the index and footer, finalizing the archive. No further
// writes are permitted afterward.
func (w *Writer) Finish() error {
	idx := new(bytes.Buffer)
	writeString(idx, mountPoint)
	binary.Write(idx, binary.LittleEndian, uint32(len(w.entries)))
	for _, e := range w.entries {
		writeString(idx, e.Path)
		writeEntryHeader(idx, e)
	}

	if _, err := w.w.Write(idx.Bytes()); err != nil {
		return mint.Wrap(mint.IoError, "failed to write index", err)
	}

	indexHash := sha1.Sum(idx.Bytes())

	footer := new(bytes.Buffer)
	footer.Write(make([]byte, 16)) // zero encryption GUID
	footer.WriteByte(0)            // not encrypted
	binary.Write(footer, binary.LittleEndian, Magic)
	binary.Write(footer, binary.LittleEndian, uint32(Version11))
	binary.Write(footer, binary.LittleEndian, w.offset)
	binary.Write(footer, binary.LittleEndian, uint64(idx.Len()))
	footer.Write(indexHash[:])

	if _, err := w.w.Write(footer.Bytes()); err != nil {
		return mint.Wrap(mint.IoError, "failed to write footer", err)
	}
	return nil
}
