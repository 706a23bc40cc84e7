package snapshot

// Options configures how a function is attached to a fixture root.
type Options struct {
	// Exclude holds doublestar patterns for fixture subdirectories to skip.
	Exclude []string

	// Name overrides the function name used for baseline file names.
	// Required for anonymous functions.
	Name string

	// Parallel marks every leaf subtest with t.Parallel.
	Parallel bool

	// Plaintext renders results with fmt.Sprint and lets panics propagate.
	Plaintext bool
}

// Option is a functional option for configuring Run and Check.
type Option func(*Options)

// Plaintext renders the human-readable form of results instead of the debug
// dump. Panics are not captured in this mode.
func Plaintext() Option {
	return func(o *Options) {
		o.Plaintext = true
	}
}

// Name sets the base name used for <name>.txt and <name>.actual.txt.
func Name(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// Parallel runs leaf subtests in parallel.
func Parallel() Option {
	return func(o *Options) {
		o.Parallel = true
	}
}

// Exclude skips fixture subdirectories matching any of the patterns.
func Exclude(patterns ...string) Option {
	return func(o *Options) {
		o.Exclude = append(o.Exclude, patterns...)
	}
}

func newOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
