package georec

import "fmt"

// fatalf reports a broken precondition. These are programmer errors, not
// runtime faults, so they panic instead of returning an error.
func fatalf(format string, args ...any) {
	panic(fmt.Errorf("georec: "+format, args...))
}
