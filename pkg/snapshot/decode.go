package snapshot

import (
	"errors"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/specvital/fnfixture/pkg/domain"
)

// ErrInputType is returned when an artifact cannot be passed to the
// function's parameter type.
var ErrInputType = errors.New("snapshot: input does not fit parameter type")

var stringType = reflect.TypeOf("")

// decode converts artifact content into the parameter type T.
func decode[T any](kind domain.ArtifactKind, content []byte) (T, error) {
	var v T
	rv := reflect.ValueOf(&v).Elem()

	switch kind {
	case domain.ArtifactSource:
		if err := yaml.Unmarshal(content, &v); err != nil {
			return v, fmt.Errorf("snapshot: decoding %s into %s: %w", domain.InputSource, rv.Type(), err)
		}
	case domain.ArtifactText:
		switch {
		case rv.Kind() == reflect.String:
			rv.SetString(string(content))
		case rv.Kind() == reflect.Interface && stringType.AssignableTo(rv.Type()):
			rv.Set(reflect.ValueOf(string(content)))
		default:
			return v, fmt.Errorf("%w: %s requires a string parameter, got %s", ErrInputType, domain.InputText, rv.Type())
		}
	case domain.ArtifactBytes:
		switch {
		case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
			rv.SetBytes(content)
		case rv.Kind() == reflect.Interface && reflect.TypeOf(content).AssignableTo(rv.Type()):
			rv.Set(reflect.ValueOf(content))
		default:
			return v, fmt.Errorf("%w: %s requires a byte slice parameter, got %s", ErrInputType, domain.InputBytes, rv.Type())
		}
	default:
		return v, fmt.Errorf("%w: unknown artifact kind %q", ErrInputType, kind)
	}

	return v, nil
}
