package fileutil

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	"github.com/UltraDevsApps/DualBootPatcher/file"
)

// Compression identifies the compression format of a payload.
type Compression int

const (
	// CompressionNone means no recognized compression framing.
	CompressionNone Compression = iota
	// CompressionGzip is the gzip format.
	CompressionGzip
	// CompressionXZ is the xz container format.
	CompressionXZ
	// CompressionLZ4 is the lz4 frame format.
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionXZ:
		return "xz"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

var (
	magicGzip = []byte{0x1f, 0x8b}
	magicXZ   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// DetectCompression reads the magic bytes at the current position of f and
// reports the compression format they indicate. The file position is
// restored before returning, so the handle must be seekable.
func DetectCompression(f *file.File) (Compression, file.Status) {
	var pos uint64
	if ret := f.Seek(0, io.SeekCurrent, &pos); ret != file.StatusOK {
		return CompressionNone, ret
	}

	var magic [6]byte
	var n uint64
	if ret := ReadFully(f, magic[:], &n); ret != file.StatusOK {
		return CompressionNone, ret
	}

	if ret := f.Seek(int64(pos), io.SeekStart, nil); ret != file.StatusOK {
		return CompressionNone, ret
	}

	header := magic[:n]
	switch {
	case bytes.HasPrefix(header, magicXZ):
		return CompressionXZ, file.StatusOK
	case bytes.HasPrefix(header, magicLZ4):
		return CompressionLZ4, file.StatusOK
	case bytes.HasPrefix(header, magicGzip):
		return CompressionGzip, file.StatusOK
	default:
		return CompressionNone, file.StatusOK
	}
}

type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error { return nil }

// NewDecompressReader wraps r with a decompressor for the given format.
// CompressionNone returns r unchanged behind a no-op closer.
func NewDecompressReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return nopCloser{r}, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return zr, nil
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return nopCloser{xr}, nil
	case CompressionLZ4:
		return nopCloser{lz4.NewReader(r)}, nil
	default:
		return nil, fmt.Errorf("unknown compression format: %d", c)
	}
}
