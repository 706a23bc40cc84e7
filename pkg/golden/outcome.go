// Package golden runs a function under test, classifies how it finished and
// compares the rendered result against a recorded baseline file.
package golden

import "fmt"

// OutcomeKind classifies how a call finished.
type OutcomeKind string

// Outcome kinds.
const (
	// Success means the function returned normally.
	Success OutcomeKind = "success"
	// PanicMessage means the function panicked with a string or an error.
	PanicMessage OutcomeKind = "panic-message"
	// PanicOpaque means the function panicked with any other value.
	PanicOpaque OutcomeKind = "panic-opaque"
)

// Panic tags rendered for the two panic outcomes.
const (
	StringPanic = "<String> Panic"
	OpaquePanic = "<!String> Panic"
)

// Outcome is the classified result of one call.
type Outcome struct {
	// Kind is the classification.
	Kind OutcomeKind
	// Message is the panic text for PanicMessage.
	Message string
	// Value is the returned value for Success and the recovered value for PanicOpaque.
	Value any
}

// Panic is the rendered form of a panic outcome.
type Panic struct {
	Kind    string
	Payload any
}

// Capture calls fn, recovering a panic instead of letting it unwind further.
func Capture(fn func() any) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = classify(r)
		}
	}()

	return Outcome{Kind: Success, Value: fn()}
}

func classify(recovered any) Outcome {
	switch v := recovered.(type) {
	case string:
		return Outcome{Kind: PanicMessage, Message: v}
	case error:
		return Outcome{Kind: PanicMessage, Message: v.Error()}
	default:
		return Outcome{Kind: PanicOpaque, Value: v}
	}
}

// Payload renders the outcome into the text compared against the baseline.
// All three kinds go through the same debug renderer.
func (o Outcome) Payload() string {
	switch o.Kind {
	case PanicMessage:
		return Render(Panic{Kind: StringPanic, Payload: o.Message})
	case PanicOpaque:
		return Render(Panic{Kind: OpaquePanic, Payload: o.Value})
	default:
		return Render(o.Value)
	}
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o.Kind {
	case PanicMessage:
		return fmt.Sprintf("%s(%q)", o.Kind, o.Message)
	default:
		return fmt.Sprintf("%s(%v)", o.Kind, o.Value)
	}
}
