// Package cwtest provides testing utilities for clausewitz codec, source and
// watcher implementations.
//
// Example usage with a codec:
//
//	func TestCodec_Compliance(t *testing.T) {
//	    cwtest.NewCodecTester(t, yaml.NewCodec()).TestAll()
//	}
//
// Example usage with a source:
//
//	func TestSource_Compliance(t *testing.T) {
//	    factory := func(data []byte) source.Source {
//	        return bytes.New(data)
//	    }
//	    cwtest.NewSourceTester(t, factory).TestAll()
//	}
package cwtest

import (
	"github.com/yacchi/clausewitz/document"
)

// testT is the minimal testing interface used by cwtest utilities.
type testT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Skip(args ...any)
	Skipf(format string, args ...any)
}

// require fails the test immediately if the condition is false.
func require(t testT, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

// requireNoError fails the test immediately if err is not nil.
func requireNoError(t testT, err error, format string, args ...any) {
	t.Helper()
	if err != nil {
		t.Fatalf(format, args...)
	}
}

// check reports an error if the condition is false, but continues the test.
func check(t testT, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Errorf(format, args...)
	}
}

// valuesEqual compares two values. With strict set it is document.Equal;
// otherwise String and Identifier compare by text, since formats other than
// the native one cannot tell them apart.
func valuesEqual(got, want document.Value, strict bool) bool {
	if strict {
		return document.Equal(got, want)
	}
	if gs, ok := text(got); ok {
		ws, ok := text(want)
		return ok && gs == ws
	}
	return document.Equal(got, want)
}

func text(v document.Value) (string, bool) {
	switch s := v.(type) {
	case document.String:
		return string(s), true
	case document.Identifier:
		return string(s), true
	}
	return "", false
}
