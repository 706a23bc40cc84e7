package golden

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// printer is configured for output that is stable across runs and machines.
var printer = spew.ConfigState{
	Indent:                  "  ",
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// Render returns the multi-line debug form of v.
func Render(v any) string {
	return printer.Sdump(v)
}

// Display returns the human-readable form of v, as used by plaintext suites.
func Display(v any) string {
	return fmt.Sprint(v)
}
