// Package fileutil provides sequencing utilities layered over the file
// package primitives: whole-buffer reads and writes, read-and-discard,
// buffered pattern search, overlap-safe byte moves, io.Reader/io.Writer
// adapters, and compression format sniffing.
package fileutil

import (
	"github.com/UltraDevsApps/DualBootPatcher/file"
)

// chunkSize is the scratch buffer size used by the looping helpers.
const chunkSize = 10240

// ReadFully reads until buf is full or end of file is reached, resubmitting
// interrupted reads. bytesRead must be non-nil and receives the total count,
// which is smaller than len(buf) only at end of file.
func ReadFully(f *file.File, buf []byte, bytesRead *uint64) file.Status {
	*bytesRead = 0

	for *bytesRead < uint64(len(buf)) {
		var n uint64
		ret := f.Read(buf[*bytesRead:], &n)
		if ret == file.StatusRetry {
			continue
		}
		if ret != file.StatusOK {
			return ret
		}
		if n == 0 {
			break
		}
		*bytesRead += n
	}

	return file.StatusOK
}

// WriteFully writes until all of buf is written, resubmitting interrupted
// writes. bytesWritten must be non-nil and receives the total count, which
// is smaller than len(buf) only when the backend cannot accept more bytes
// (e.g. a fixed-size memory buffer is full).
func WriteFully(f *file.File, buf []byte, bytesWritten *uint64) file.Status {
	*bytesWritten = 0

	for *bytesWritten < uint64(len(buf)) {
		var n uint64
		ret := f.Write(buf[*bytesWritten:], &n)
		if ret == file.StatusRetry {
			continue
		}
		if ret != file.StatusOK {
			return ret
		}
		if n == 0 {
			break
		}
		*bytesWritten += n
	}

	return file.StatusOK
}

// ReadDiscard reads and throws away up to size bytes. bytesDiscarded must be
// non-nil and receives the count actually discarded, which is smaller than
// size only at end of file.
func ReadDiscard(f *file.File, size uint64, bytesDiscarded *uint64) file.Status {
	var scratch [chunkSize]byte

	*bytesDiscarded = 0

	for *bytesDiscarded < size {
		toRead := min(size-*bytesDiscarded, chunkSize)

		var n uint64
		ret := f.Read(scratch[:toRead], &n)
		if ret == file.StatusRetry {
			continue
		}
		if ret != file.StatusOK {
			return ret
		}
		if n == 0 {
			break
		}
		*bytesDiscarded += n
	}

	return file.StatusOK
}
