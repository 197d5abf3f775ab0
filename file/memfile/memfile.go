// Package memfile opens file handles backed by in-memory byte buffers.
//
// A static buffer has a fixed size: reads past the end return 0 bytes,
// writes past the end are clamped to the space available, and truncation is
// unsupported. A dynamic buffer grows on writes and truncation, zero-filling
// any gap between the old size and the write position; the caller's slice is
// kept in sync through the registered slot.
package memfile

import (
	"io"
	"math"

	"github.com/UltraDevsApps/DualBootPatcher/file"
)

// maxSize is the largest byte count a slice-backed buffer can represent.
const maxSize = uint64(math.MaxInt)

type memCtx struct {
	data  []byte
	pos   uint64
	fixed bool
	// slot, when non-nil, receives the current buffer after every growth
	// or truncation so the caller's view stays in sync.
	slot *[]byte
}

func readCb(_ *file.File, userdata any, buf []byte, bytesRead *uint64) file.Status {
	ctx := userdata.(*memCtx)

	var toRead uint64
	if ctx.pos < uint64(len(ctx.data)) {
		toRead = min(uint64(len(ctx.data))-ctx.pos, uint64(len(buf)))
	}

	if toRead > 0 {
		copy(buf, ctx.data[ctx.pos:ctx.pos+toRead])
	}
	ctx.pos += toRead

	*bytesRead = toRead
	return file.StatusOK
}

func writeCb(f *file.File, userdata any, buf []byte, bytesWritten *uint64) file.Status {
	ctx := userdata.(*memCtx)

	if ctx.pos > maxSize-uint64(len(buf)) {
		f.SetError(file.ErrInvalidArgument, "write would overflow buffer size limit")
		return file.StatusFailed
	}

	desired := ctx.pos + uint64(len(buf))
	toWrite := uint64(len(buf))

	if desired > uint64(len(ctx.data)) {
		if ctx.fixed {
			if ctx.pos <= uint64(len(ctx.data)) {
				toWrite = uint64(len(ctx.data)) - ctx.pos
			} else {
				toWrite = 0
			}
		} else {
			ctx.grow(desired)
		}
	}

	if toWrite > 0 {
		copy(ctx.data[ctx.pos:], buf[:toWrite])
	}
	ctx.pos += toWrite

	*bytesWritten = toWrite
	return file.StatusOK
}

func seekCb(f *file.File, userdata any, offset int64, whence int, newOffset *uint64) file.Status {
	ctx := userdata.(*memCtx)
	size := uint64(len(ctx.data))

	switch whence {
	case io.SeekStart:
		if offset < 0 || uint64(offset) > maxSize {
			f.SetError(file.ErrInvalidArgument,
				"invalid seek-start offset %d", offset)
			return file.StatusFailed
		}
		ctx.pos = uint64(offset)
	case io.SeekCurrent:
		if (offset < 0 && uint64(-offset) > ctx.pos) ||
			(offset > 0 && uint64(offset) > maxSize-ctx.pos) {
			f.SetError(file.ErrInvalidArgument,
				"invalid seek-current offset %d for position %d", offset, ctx.pos)
			return file.StatusFailed
		}
		ctx.pos += uint64(offset)
	case io.SeekEnd:
		if (offset < 0 && uint64(-offset) > size) ||
			(offset > 0 && uint64(offset) > maxSize-size) {
			f.SetError(file.ErrInvalidArgument,
				"invalid seek-end offset %d for buffer of size %d", offset, size)
			return file.StatusFailed
		}
		ctx.pos = size + uint64(offset)
	default:
		f.SetError(file.ErrInvalidArgument, "invalid whence argument: %d", whence)
		return file.StatusFailed
	}

	*newOffset = ctx.pos
	return file.StatusOK
}

func truncateCb(f *file.File, userdata any, size uint64) file.Status {
	ctx := userdata.(*memCtx)

	if ctx.fixed {
		f.SetError(file.ErrUnsupported, "cannot truncate fixed buffer")
		return file.StatusUnsupported
	}
	if size > maxSize {
		f.SetError(file.ErrInvalidArgument,
			"truncation size %d exceeds buffer size limit", size)
		return file.StatusFailed
	}

	if size > uint64(len(ctx.data)) {
		ctx.grow(size)
	} else {
		ctx.data = ctx.data[:size]
		ctx.sync()
	}

	return file.StatusOK
}

// grow resizes the buffer to size bytes. The newly exposed region is
// zero-filled and the caller slot, if any, is updated.
func (ctx *memCtx) grow(size uint64) {
	newData := make([]byte, size)
	copy(newData, ctx.data)
	ctx.data = newData
	ctx.sync()
}

func (ctx *memCtx) sync() {
	if ctx.slot != nil {
		*ctx.slot = ctx.data
	}
}

func openCtx(f *file.File, ctx *memCtx) file.Status {
	// No open or close callback: the buffer is the resource and the
	// garbage collector owns it.
	return file.OpenWithCallbacks(f,
		nil,
		nil,
		readCb,
		writeCb,
		seekCb,
		truncateCb,
		ctx)
}

// OpenStatic opens f backed by a fixed-size memory buffer. Writes mutate buf
// in place and clamp at its end; truncation is unsupported.
func OpenStatic(f *file.File, buf []byte) file.Status {
	return openCtx(f, &memCtx{data: buf, fixed: true})
}

// OpenDynamic opens f backed by a growable memory buffer. buf points at the
// caller's slice, which is replaced whenever a write or truncation resizes
// the buffer, so the caller always observes the current contents and size.
func OpenDynamic(f *file.File, buf *[]byte) file.Status {
	return openCtx(f, &memCtx{data: *buf, slot: buf})
}
