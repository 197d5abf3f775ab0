package fileutil

import (
	"io"

	"github.com/UltraDevsApps/DualBootPatcher/file"
)

// Move copies size bytes within f from offset src to offset dest, handling
// overlapping regions correctly: when dest precedes src the copy runs
// forwards, when dest follows src it runs backwards, so no byte is clobbered
// before it is copied. The requested size is clamped to the bytes actually
// available past src, and a backend that cannot extend the file (a
// fixed-size buffer) further limits how much lands at dest. bytesMoved must
// be non-nil and receives the count actually written.
func Move(f *file.File, src, dest, size uint64, bytesMoved *uint64) file.Status {
	*bytesMoved = 0

	if src == dest || size == 0 {
		*bytesMoved = size
		return file.StatusOK
	}

	// Clamp to the bytes that exist past src.
	var fileSize uint64
	if ret := f.Seek(0, io.SeekEnd, &fileSize); ret != file.StatusOK {
		return ret
	}
	if src >= fileSize {
		return file.StatusOK
	}
	if size > fileSize-src {
		size = fileSize - src
	}

	buf := make([]byte, chunkSize)

	if dest < src {
		// Forward copy: lowest chunk first.
		var moved uint64
		for moved < size {
			toCopy := min(size-moved, chunkSize)

			var nRead, nWritten uint64
			if ret := f.Seek(int64(src+moved), io.SeekStart, nil); ret != file.StatusOK {
				return ret
			}
			if ret := ReadFully(f, buf[:toCopy], &nRead); ret != file.StatusOK {
				return ret
			}
			if ret := f.Seek(int64(dest+moved), io.SeekStart, nil); ret != file.StatusOK {
				return ret
			}
			if ret := WriteFully(f, buf[:nRead], &nWritten); ret != file.StatusOK {
				return ret
			}

			moved += nWritten
			// A short read or write means nothing more can be copied.
			if nWritten < toCopy {
				break
			}
		}
		*bytesMoved = moved
	} else {
		// Backward copy: highest chunk first.
		var moved uint64
		remaining := size
		for remaining > 0 {
			toCopy := min(remaining, chunkSize)
			chunkOff := remaining - toCopy

			var nRead, nWritten uint64
			if ret := f.Seek(int64(src+chunkOff), io.SeekStart, nil); ret != file.StatusOK {
				return ret
			}
			if ret := ReadFully(f, buf[:toCopy], &nRead); ret != file.StatusOK {
				return ret
			}
			if ret := f.Seek(int64(dest+chunkOff), io.SeekStart, nil); ret != file.StatusOK {
				return ret
			}
			if ret := WriteFully(f, buf[:nRead], &nWritten); ret != file.StatusOK {
				return ret
			}

			moved += nWritten
			remaining -= toCopy
		}
		*bytesMoved = moved
	}

	return file.StatusOK
}
