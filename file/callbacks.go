package file

// OpenWithCallbacks registers a full callback set plus userdata on f and
// immediately opens it. Every backend open constructor is expressed in terms
// of this composer.
//
// The result is the most severe of the seven setter results and the Open
// result, so a single value reflects the first thing that went wrong,
// including a setter rejecting because the handle was not new.
func OpenWithCallbacks(f *File,
	openFn OpenFunc,
	closeFn CloseFunc,
	readFn ReadFunc,
	writeFn WriteFunc,
	seekFn SeekFunc,
	truncateFn TruncateFunc,
	userdata any,
) Status {
	ret := StatusOK

	worst := func(r Status) {
		if r < ret {
			ret = r
		}
	}

	worst(f.SetOpenCallback(openFn))
	worst(f.SetCloseCallback(closeFn))
	worst(f.SetReadCallback(readFn))
	worst(f.SetWriteCallback(writeFn))
	worst(f.SetSeekCallback(seekFn))
	worst(f.SetTruncateCallback(truncateFn))
	worst(f.SetCallbackData(userdata))
	worst(f.Open())

	return ret
}
