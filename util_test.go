package georec

import (
	"reflect"
	"strings"
	"testing"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}

func deepEq[T any](t testing.TB, a, e T) bool {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
		return false
	}
	return true
}

// mustPanic runs f and fails unless it panics with a message containing substr.
func mustPanic(t testing.TB, substr string, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", substr)
		}
		var msg string
		switch v := r.(type) {
		case error:
			msg = v.Error()
		case string:
			msg = v
		}
		if !strings.Contains(msg, substr) {
			t.Fatalf("panic = %q, wanted it to contain %q", msg, substr)
		}
	}()
	f()
}

func appendRecord(a *Arena, kind Kind, elems ...Element) Offset {
	b := a.NewBuilder(kind)
	for _, e := range elems {
		b.Append(e)
	}
	return must(b.Seal())
}

func appendRefs(a *Arena, kind Kind, ids ...int64) Offset {
	b := a.NewBuilder(kind)
	for _, id := range ids {
		b.AppendRef(id)
	}
	return must(b.Seal())
}

func refsOf(v RefList) []int64 {
	return v.Refs(nil)
}
