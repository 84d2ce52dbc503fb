package loader

import (
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/ligolw/core/errors"
	"github.com/FocuswithJustin/ligolw/core/ligolw"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

const sampleDoc = `<?xml version='1.0' encoding='utf-8'?>
<!DOCTYPE LIGO_LW SYSTEM "http://ldas-sw.ligo.caltech.edu/doc/ligolwAPI/html/ligolw_dtd.txt">
<LIGO_LW>
	<Table Name="process:table">
		<Column Name="process:program" Type="lstring"/>
		<Column Name="process:process_id" Type="int_8s"/>
		<Stream Name="process:table" Type="Local" Delimiter=",">
			"lalapps_power",0,
			"ligolw_add",1
		</Stream>
	</Table>
</LIGO_LW>
`

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("xz write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("xz close: %v", err)
	}
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("zstd write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zstd close: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Compression
	}{
		{"gzip", []byte{0x1f, 0x8b, 0x08}, CompressionGzip},
		{"xz", []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, CompressionXZ},
		{"zstd", []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}, CompressionZstd},
		{"xml", []byte("<?xml"), CompressionNone},
		{"short", []byte{0x1f}, CompressionNone},
		{"empty", nil, CompressionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCompression(tt.head); got != tt.want {
				t.Errorf("DetectCompression = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	plain := []byte(sampleDoc)
	sum := blake3.Sum256(plain)
	digest := hex.EncodeToString(sum[:])

	tests := []struct {
		name        string
		file        string
		data        []byte
		compression Compression
	}{
		{"plain", "doc.xml", plain, CompressionNone},
		{"gzip", "doc.xml.gz", gzipBytes(t, plain), CompressionGzip},
		{"xz", "doc.xml.xz", xzBytes(t, plain), CompressionXZ},
		{"zstd", "doc.xml.zst", zstdBytes(t, plain), CompressionZstd},
		{"gzip without extension", "doc", gzipBytes(t, plain), CompressionGzip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.data)
			src, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if src.Path != path || src.Compression != tt.compression {
				t.Errorf("source = %q %q", src.Path, src.Compression)
			}
			if src.Size != int64(len(plain)) || src.Digest != digest {
				t.Errorf("size/digest = %d %s, want %d %s", src.Size, src.Digest, len(plain), digest)
			}

			table, err := ligolw.DecodeTable(ligolw.GetTable(src.Doc.Root(), "process"), nil)
			if err != nil {
				t.Fatalf("DecodeTable failed: %v", err)
			}
			if len(table.Rows) != 2 {
				t.Errorf("got %d rows", len(table.Rows))
			}
		})
	}
}

func TestLoadMaxBytes(t *testing.T) {
	plain := []byte(sampleDoc)
	path := writeFile(t, "doc.xml.gz", gzipBytes(t, plain))

	if _, err := LoadWithOptions(path, Options{MaxBytes: int64(len(plain))}); err != nil {
		t.Errorf("document at the limit rejected: %v", err)
	}
	_, err := LoadWithOptions(path, Options{MaxBytes: int64(len(plain)) - 1})
	if !errors.Is(err, ErrTooLarge) || !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("oversized document = %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.xml"))
		var ioErr *errors.IOError
		if !errors.As(err, &ioErr) || ioErr.Operation != "open" {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("malformed xml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.xml", []byte("<LIGO_LW>\n<Table>\n</LIGO_LW>")))
		var parseErr *errors.ParseError
		if !errors.As(err, &parseErr) || parseErr.Format != "XML" {
			t.Fatalf("error = %v", err)
		}
		if !strings.HasPrefix(parseErr.Message, "line 3:") {
			t.Errorf("message = %q, want the line of the mismatched end tag", parseErr.Message)
		}
		if !errors.Is(err, errors.ErrInvalidInput) {
			t.Error("malformed XML should match ErrInvalidInput")
		}
	})

	t.Run("corrupt gzip", func(t *testing.T) {
		data := gzipBytes(t, []byte(sampleDoc))
		if _, err := Load(writeFile(t, "bad.xml.gz", data[:len(data)/2])); err == nil {
			t.Error("truncated gzip should fail")
		}
	})

	t.Run("bad gzip header", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.gz", []byte{0x1f, 0x8b, 0xff, 0xff}))
		var parseErr *errors.ParseError
		if !errors.As(err, &parseErr) || parseErr.Format != "gzip" {
			t.Errorf("error = %v", err)
		}
	})
}

func TestDecode(t *testing.T) {
	src, err := Decode(bytes.NewReader(xzBytes(t, []byte(sampleDoc))))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if src.Path != "" || src.Compression != CompressionXZ {
		t.Errorf("source = %+v", src)
	}
	if src.Doc.Root().Name() != "LIGO_LW" {
		t.Errorf("root = %q", src.Doc.Root().Name())
	}
}
