package snapshot

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"strings"
)

// ErrAnonymousFunc is returned when a function has no usable name.
var ErrAnonymousFunc = errors.New("snapshot: anonymous function requires an explicit name")

// closureSegment matches the compiler generated parts of closure symbols,
// such as TestX.func1 or TestX.func1.2.
var closureSegment = regexp.MustCompile(`^(func\d+|\d+)$`)

// FuncName returns the declared name of fn, without package or receiver.
func FuncName(fn any) (string, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "", fmt.Errorf("snapshot: %T is not a function", fn)
	}

	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return "", ErrAnonymousFunc
	}

	return symbolName(f.Name())
}

// symbolName extracts the function name from a runtime symbol such as
// example.com/pkg.(*Parser).Parse-fm.
func symbolName(symbol string) (string, error) {
	symbol = strings.TrimSuffix(symbol, "-fm")
	symbol = strings.ReplaceAll(symbol, "[...]", "")
	symbol = symbol[strings.LastIndex(symbol, "/")+1:]

	_, local, ok := strings.Cut(symbol, ".")
	if !ok || local == "" {
		return "", fmt.Errorf("%w: %s", ErrAnonymousFunc, symbol)
	}

	parts := strings.Split(local, ".")
	for _, p := range parts {
		if p == "" || closureSegment.MatchString(p) {
			return "", fmt.Errorf("%w: %s", ErrAnonymousFunc, symbol)
		}
	}

	return parts[len(parts)-1], nil
}
