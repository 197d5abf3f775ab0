package fileutil

import (
	"bytes"
	"io"

	"github.com/UltraDevsApps/DualBootPatcher/file"
)

// defaultSearchBufSize is used when the caller passes 0 for the buffer size.
const defaultSearchBufSize = 8 * 1024 * 1024

// SearchResultFunc is invoked for each match with the absolute offset of the
// match. Returning anything other than StatusOK stops the search and
// propagates the value.
type SearchResultFunc func(f *file.File, userdata any, offset uint64) file.Status

// Search scans f for pattern and reports each match through resultCb.
//
// start and end bound the scanned region; a negative start means "from the
// current position" and a negative end means "to end of file". bufSize is
// the window size used for scanning (0 selects a default) and must be at
// least the pattern size. maxMatches limits the number of reported matches;
// a negative value means unlimited. An empty pattern or a zero maxMatches
// succeeds without scanning anything.
func Search(f *file.File, start, end int64, bufSize uint64,
	pattern []byte, maxMatches int64,
	resultCb SearchResultFunc, userdata any,
) file.Status {
	if start >= 0 && end >= 0 && start > end {
		f.SetError(file.ErrInvalidArgument,
			"search offset start (%d) exceeds end (%d)", start, end)
		return file.StatusFailed
	}

	if maxMatches == 0 || len(pattern) == 0 {
		return file.StatusOK
	}

	if bufSize == 0 {
		bufSize = defaultSearchBufSize
	}
	if bufSize < uint64(len(pattern)) {
		f.SetError(file.ErrInvalidArgument,
			"buffer size (%d) is smaller than pattern size (%d)",
			bufSize, len(pattern))
		return file.StatusFailed
	}

	// Establish the starting offset.
	var offset uint64
	if start >= 0 {
		if ret := f.Seek(start, io.SeekStart, &offset); ret != file.StatusOK {
			return ret
		}
	} else {
		if ret := f.Seek(0, io.SeekCurrent, &offset); ret != file.StatusOK {
			return ret
		}
	}

	buf := make([]byte, bufSize)
	// filled counts the valid bytes at the front of buf carried over from
	// the previous window so matches spanning window boundaries are found.
	var filled uint64

	for {
		var n uint64
		if ret := ReadFully(f, buf[filled:], &n); ret != file.StatusOK {
			return ret
		}
		avail := filled + n

		window := buf[:avail]
		var searched uint64
		for {
			i := bytes.Index(window[searched:], pattern)
			if i < 0 {
				break
			}
			matchOff := offset + searched + uint64(i)
			if end >= 0 && matchOff >= uint64(end) {
				return file.StatusOK
			}

			if ret := resultCb(f, userdata, matchOff); ret != file.StatusOK {
				return ret
			}

			if maxMatches > 0 {
				maxMatches--
				if maxMatches == 0 {
					return file.StatusOK
				}
			}

			// Matches do not overlap; resume after the match.
			searched += uint64(i) + uint64(len(pattern))
		}

		if n == 0 {
			// End of file; nothing more to scan.
			return file.StatusOK
		}

		// Keep the trailing pattern-1 bytes so a match straddling the
		// window edge is still seen.
		keep := uint64(len(pattern)) - 1
		if keep > avail {
			keep = avail
		}
		copy(buf, window[avail-keep:])
		offset += avail - keep
		filled = keep
	}
}
