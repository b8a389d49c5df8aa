// Package pak implements the UE4.27 pak archive codec: footer/index
// parsing, transparent Zlib block decompression on read, and a
// streaming, fixed-block-compressed writer on write.
package pak

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zlib"

	"github.com/AssemblyStorm/mint/internal/mint"
)

// Magic is the trailing footer magic value for all supported pak
// versions.
const Magic uint32 = 0x5A6F12E1

// BlockSize is the fixed Zlib compression block size used on write.
const BlockSize = 65536

// Version identifies a pak format revision.
type Version uint32

const (
	VersionUnknown   Version = 0
	Version8B        Version = 8
	Version9         Version = 9
	Version10        Version = 10
	Version11        Version = 11
)

// CompressionMethod names a pak compression method id.
type CompressionMethod uint8

const (
	CompressionNone CompressionMethod = iota
	CompressionZlib
)

// CompressionBlock is one entry of an entry's compression block list.
type CompressionBlock struct {
	Start uint64
	End   uint64
}

// Entry describes one file stored in a pak index.
type Entry struct {
	Path             string
	Offset           uint64
	CompressedSize   uint64
	UncompressedSize uint64
	Compression      CompressionMethod
	Hash             [20]byte
	Blocks           []CompressionBlock
}

// Footer is the trailing fixed-size record of a pak file.
type Footer struct {
	EncryptionKeyGUID [16]byte
	Encrypted         bool
	Magic             uint32
	Version           Version
	IndexOffset       uint64
	IndexSize         uint64
	IndexHash         [20]byte
}

// Reader provides read access to a parsed pak archive.
type Reader struct {
	r          io.ReaderAt
	footer     Footer
	mountPoint string
	entries    map[string]*Entry
	order      []string
}

// Open parses the footer and index from r, which must expose the full
// archive length via size.
func Open(r io.ReaderAt, size int64) (*Reader, error) {
	footer, footerOff, err := readFooter(r, size)
	if err != nil {
		return nil, err
	}

	idxBuf := make([]byte, footer.IndexSize)
	if _, err := r.ReadAt(idxBuf, int64(footer.IndexOffset)); err != nil {
		return nil, mint.Wrap(mint.IoError, "failed to read pak index", err)
	}
	if int64(footer.IndexOffset)+int64(footer.IndexSize) > footerOff {
		return nil, mint.New(mint.InvalidPak, "index extends past footer")
	}

	buf := bytes.NewReader(idxBuf)
	mountPoint, err := readString(buf)
	if err != nil {
		return nil, mint.Wrap(mint.InvalidPak, "failed to read mount point", err)
	}

	var count uint32
	if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
		return nil, mint.Wrap(mint.InvalidPak, "failed to read entry count", err)
	}

	entries := make(map[string]*Entry, count)
	order := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		path, err := readString(buf)
		if err != nil {
			return nil, mint.Wrap(mint.InvalidPak, "failed to read entry path", err)
		}
		if !isCanonicalUTF8(path) {
			return nil, mint.New(mint.InvalidPak, fmt.Sprintf("non-canonical path %q", path)).WithPath(path)
		}
		entry, err := readEntry(buf, path)
		if err != nil {
			return nil, mint.Wrap(mint.InvalidPak, "failed to read entry", err).WithPath(path)
		}
		lower := strings.ToLower(path)
		if _, dup := entries[lower]; dup {
			return nil, mint.New(mint.InvalidPak, "duplicate path in index").WithPath(path)
		}
		entries[lower] = entry
		order = append(order, lower)
	}

	return &Reader{r: r, footer: footer, mountPoint: mountPoint, entries: entries, order: order}, nil
}

func readFooter(r io.ReaderAt, size int64) (Footer, int64, error) {
	// The footer is a 17-byte GUID+encrypted flag followed by a fixed
	// 44-byte tail (magic+version+indexOffset+indexSize+indexHash), 61
	// bytes total for every version this codec supports.
	const footerLen = 16 + 1 + 44
	if size < footerLen {
		return Footer{}, 0, mint.New(mint.InvalidPak, "file too small for footer")
	}
	off := size - footerLen
	buf := make([]byte, footerLen)
	if _, err := r.ReadAt(buf, off); err != nil {
		return Footer{}, 0, mint.Wrap(mint.IoError, "failed to read footer", err)
	}
	br := bytes.NewReader(buf)

	var f Footer
	if _, err := io.ReadFull(br, f.EncryptionKeyGUID[:]); err != nil {
		return Footer{}, 0, mint.Wrap(mint.InvalidPak, "failed to read encryption guid", err)
	}
	var encFlag uint8
	if err := binary.Read(br, binary.LittleEndian, &encFlag); err != nil {
		return Footer{}, 0, mint.Wrap(mint.InvalidPak, "failed to read encryption flag", err)
	}
	f.Encrypted = encFlag != 0
	if err := binary.Read(br, binary.LittleEndian, &f.Magic); err != nil {
		return Footer{}, 0, mint.Wrap(mint.InvalidPak, "failed to read magic", err)
	}
	if f.Magic != Magic {
		return Footer{}, 0, mint.New(mint.InvalidPak, "bad footer magic")
	}
	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return Footer{}, 0, mint.Wrap(mint.InvalidPak, "failed to read version", err)
	}
	f.Version = Version(version)
	if err := binary.Read(br, binary.LittleEndian, &f.IndexOffset); err != nil {
		return Footer{}, 0, mint.Wrap(mint.InvalidPak, "failed to read index offset", err)
	}
	if err := binary.Read(br, binary.LittleEndian, &f.IndexSize); err != nil {
		return Footer{}, 0, mint.Wrap(mint.InvalidPak, "failed to read index size", err)
	}
	if _, err := io.ReadFull(br, f.IndexHash[:]); err != nil {
		return Footer{}, 0, mint.Wrap(mint.InvalidPak, "failed to read index hash", err)
	}
	return f, off, nil
}

func readString(r io.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	if n > 0 {
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
		if len(buf) > 0 && buf[len(buf)-1] == 0 {
			buf = buf[:len(buf)-1]
		}
		return string(buf), nil
	}
	// Negative length signals a UTF-16LE string.
	count := -n
	buf := make([]uint16, count)
	if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
		return "", err
	}
	if count > 0 && buf[count-1] == 0 {
		buf = buf[:count-1]
	}
	runes := make([]rune, len(buf))
	for i, v := range buf {
		runes[i] = rune(v)
	}
	return string(runes), nil
}

func readEntry(r io.Reader, path string) (*Entry, error) {
	e := &Entry{Path: path}
	if err := binary.Read(r, binary.LittleEndian, &e.Offset); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &e.CompressedSize); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &e.UncompressedSize); err != nil {
		return nil, err
	}
	var method uint32
	if err := binary.Read(r, binary.LittleEndian, &method); err != nil {
		return nil, err
	}
	e.Compression = CompressionMethod(method)
	if _, err := io.ReadFull(r, e.Hash[:]); err != nil {
		return nil, err
	}
	if e.Compression != CompressionNone {
		var blockCount uint32
		if err := binary.Read(r, binary.LittleEndian, &blockCount); err != nil {
			return nil, err
		}
		e.Blocks = make([]CompressionBlock, blockCount)
		for i := range e.Blocks {
			if err := binary.Read(r, binary.LittleEndian, &e.Blocks[i].Start); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &e.Blocks[i].End); err != nil {
				return nil, err
			}
		}
	}
	return e, nil
}

func isCanonicalUTF8(s string) bool {
	return utf8.ValidString(s)
}

// MountPoint returns the archive's mount point string.
func (r *Reader) MountPoint() string { return r.mountPoint }

// Version returns the archive's pak format version.
func (r *Reader) Version() Version { return r.footer.Version }

// Files returns every lowercased path present in the archive, in index
// order.
func (r *Reader) Files() []string {
	return append([]string(nil), r.order...)
}

// OriginalPath returns the path as stored in the index (case preserved)
// for a lowercased path returned by Files, or false if absent.
func (r *Reader) OriginalPath(lowerPath string) (string, bool) {
	e, ok := r.entries[lowerPath]
	if !ok {
		return "", false
	}
	return e.Path, true
}

// Get decompresses and returns the full contents of path (case
// insensitive).
func (r *Reader) Get(path string) ([]byte, error) {
	e, ok := r.entries[strings.ToLower(path)]
	if !ok {
		return nil, mint.New(mint.IoError, "path not found in pak").WithPath(path)
	}

	raw := make([]byte, e.CompressedSize)
	if _, err := r.r.ReadAt(raw, int64(e.Offset)+entryHeaderSize(e)); err != nil {
		return nil, mint.Wrap(mint.IoError, "truncated read", err).WithPath(path)
	}

	if e.Compression == CompressionNone {
		return raw, nil
	}

	out := make([]byte, 0, e.UncompressedSize)
	if len(e.Blocks) == 0 {
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, mint.Wrap(mint.InvalidPak, "bad zlib stream", err).WithPath(path)
		}
		defer zr.Close()
		decoded, err := io.ReadAll(zr)
		if err != nil {
			return nil, mint.Wrap(mint.IoError, "truncated zlib stream", err).WithPath(path)
		}
		return decoded, nil
	}

	base := e.Blocks[0].Start
	for _, b := range e.Blocks {
		block := raw[b.Start-base : b.End-base]
		zr, err := zlib.NewReader(bytes.NewReader(block))
		if err != nil {
			return nil, mint.Wrap(mint.InvalidPak, "bad zlib block", err).WithPath(path)
		}
		decoded, err := io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return nil, mint.Wrap(mint.IoError, "truncated zlib block", err).WithPath(path)
		}
		out = append(out, decoded...)
	}
	return out, nil
}

// entryHeaderSize returns the number of bytes the serialized entry
// header occupies immediately before an entry's raw data, mirroring the
// repeated per-entry header UE4 paks store inline before file data.
func entryHeaderSize(e *Entry) int64 {
	const fixed = 8 + 8 + 8 + 4 + 20 + 4 // offset,csize,usize,method,hash,blockcount
	return int64(fixed) + int64(len(e.Blocks))*16
}
