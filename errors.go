package georec

import (
	"errors"
	"fmt"
)

var (
	ErrCorrupted      = errors.New("corrupted arena")
	ErrClosed         = errors.New("arena closed")
	ErrReadOnly       = errors.New("arena is read-only")
	ErrRecordTooLarge = errors.New("record too large")
)

// DataError reports malformed persisted data at a given offset.
//
// The error keeps a hex excerpt of the data rather than the data itself:
// the bytes usually live in a mapping that is gone by the time the error is
// printed.
type DataError struct {
	Off     int
	Size    int
	Excerpt string
	Err     error
	Msg     string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{
		Off:     off,
		Size:    len(data),
		Excerpt: hexExcerpt(data, off),
		Err:     err,
		Msg:     fmt.Sprintf(format, args...),
	}
}

// hexExcerpt renders data[off:], abbreviated to its first and last 32 bytes.
func hexExcerpt(data []byte, off int) string {
	const prefixLen = 32
	const suffixLen = 32
	if off < 0 || off > len(data) {
		return ""
	}
	tail := data[off:]
	if len(tail) <= prefixLen+suffixLen {
		return fmt.Sprintf("%x", tail)
	}
	return fmt.Sprintf("%x...%x", tail[:prefixLen], tail[len(tail)-suffixLen:])
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s at %d: %v: (%d) %s", e.Msg, e.Off, e.Err, e.Size, e.Excerpt)
	} else {
		return fmt.Sprintf("%s at %d: (%d) %s", e.Msg, e.Off, e.Size, e.Excerpt)
	}
}
