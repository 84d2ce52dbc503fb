// Package loader reads LIGOLW documents from disk, transparently
// decompressing gzip, xz and zstd input, and parses them into an element
// tree.
package loader

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/FocuswithJustin/ligolw/core/errors"
	"github.com/FocuswithJustin/ligolw/core/xml"
	"github.com/FocuswithJustin/ligolw/internal/logging"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// Compression identifies the container format of a document.
type Compression string

const (
	// CompressionNone is plain XML.
	CompressionNone Compression = "none"
	// CompressionGzip is gzip, the usual ".xml.gz" form.
	CompressionGzip Compression = "gzip"
	// CompressionXZ is xz/LZMA2.
	CompressionXZ Compression = "xz"
	// CompressionZstd is Zstandard.
	CompressionZstd Compression = "zstd"
)

// ErrTooLarge is returned when the decompressed document exceeds
// Options.MaxBytes.
var ErrTooLarge = fmt.Errorf("document exceeds size limit: %w", errors.ErrInvalidInput)

var magics = []struct {
	compression Compression
	magic       []byte
}{
	{CompressionGzip, []byte{0x1f, 0x8b}},
	{CompressionXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{CompressionZstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
}

// Options configures loading.
type Options struct {
	// MaxBytes caps the decompressed document size. Zero means no limit.
	MaxBytes int64
}

// Source is a loaded document.
type Source struct {
	Path        string
	Compression Compression
	// Size is the decompressed size in bytes.
	Size int64
	// Digest is the hex BLAKE3-256 of the decompressed bytes.
	Digest string
	Doc    *xml.Document
}

// DetectCompression identifies the compression format from the leading
// bytes of a file.
func DetectCompression(head []byte) Compression {
	for _, m := range magics {
		if bytes.HasPrefix(head, m.magic) {
			return m.compression
		}
	}
	return CompressionNone
}

// Load reads and parses the document at path.
func Load(path string) (*Source, error) {
	return LoadWithOptions(path, Options{})
}

// LoadWithOptions reads and parses the document at path. A failure at any
// stage returns an error and no partial document.
func LoadWithOptions(path string, opts Options) (*Source, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	src, err := DecodeWithOptions(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	src.Path = path

	logging.DocumentLoaded(path, string(src.Compression), src.Size, src.Digest, time.Since(start))
	return src, nil
}

// Decode reads and parses a document from r.
func Decode(r io.Reader) (*Source, error) {
	return DecodeWithOptions(r, Options{})
}

// DecodeWithOptions reads and parses a document from r. The decompressed
// bytes are checked for well-formedness first, so a syntax error is
// reported with its line number.
func DecodeWithOptions(r io.Reader, opts Options) (*Source, error) {
	br := bufio.NewReader(r)
	// A short read just means a short file; detection works on what is there.
	head, _ := br.Peek(6)
	compression := DetectCompression(head)

	body, closeBody, err := decompressor(br, compression)
	if err != nil {
		return nil, err
	}
	defer closeBody()

	data, err := readAll(body, opts.MaxBytes)
	if err != nil {
		return nil, err
	}

	sum := blake3.Sum256(data)
	if result := xml.Validate(data); !result.Valid {
		first := result.Errors[0]
		return nil, &errors.ParseError{Format: "XML", Message: fmt.Sprintf("line %d: %s", first.Line, first.Message)}
	}
	doc, err := xml.Parse(data)
	if err != nil {
		return nil, &errors.ParseError{Format: "XML", Message: err.Error(), Err: err}
	}

	return &Source{
		Compression: compression,
		Size:        int64(len(data)),
		Digest:      hex.EncodeToString(sum[:]),
		Doc:         doc,
	}, nil
}

func decompressor(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case CompressionGzip:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, &errors.ParseError{Format: "gzip", Message: err.Error(), Err: err}
		}
		return gzr, func() { gzr.Close() }, nil
	case CompressionXZ:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, &errors.ParseError{Format: "xz", Message: err.Error(), Err: err}
		}
		return xzr, func() {}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, &errors.ParseError{Format: "zstd", Message: err.Error(), Err: err}
		}
		return zr, zr.Close, nil
	}
	return r, func() {}, nil
}

func readAll(r io.Reader, limit int64) ([]byte, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", "", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
