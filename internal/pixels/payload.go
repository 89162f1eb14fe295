package pixels

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"github.com/jmylchreest/palettenode/internal/security"
)

// Compression identifies a container wrapped around an image payload.
type Compression string

// Recognised payload compressions.
const (
	CompressionNone  Compression = ""
	CompressionGzip  Compression = "gzip"
	CompressionXz    Compression = "xz"
	CompressionBzip2 Compression = "bzip2"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	bzip2Magic = []byte("BZh")
)

// DetectCompression sniffs the leading magic bytes of data.
func DetectCompression(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(data, xzMagic):
		return CompressionXz
	case bytes.HasPrefix(data, bzip2Magic):
		return CompressionBzip2
	default:
		return CompressionNone
	}
}

// decompress unwraps a compressed payload. Uncompressed data is returned
// untouched. The expanded size is capped at maxBytes.
func decompress(data []byte, maxBytes int64) ([]byte, error) {
	var (
		r   io.Reader
		err error
	)

	kind := DetectCompression(data)
	switch kind {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		gzr, gerr := gzip.NewReader(bytes.NewReader(data))
		if gerr != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", gerr)
		}
		defer gzr.Close()
		r = gzr
	case CompressionXz:
		r, err = xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
	case CompressionBzip2:
		r = bzip2.NewReader(bytes.NewReader(data))
	}

	out, err := io.ReadAll(security.NewLimitedReader(r, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s payload: %w", kind, err)
	}
	return out, nil
}
