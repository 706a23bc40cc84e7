// Package domain defines the core types for fixture tree representation.
package domain

// ArtifactKind identifies how a recorded input is handed to the function under test.
type ArtifactKind string

// Supported input artifact kinds.
const (
	// ArtifactSource is a structured snippet decoded into the parameter type.
	ArtifactSource ArtifactKind = "source"
	// ArtifactBytes is passed through as a raw byte slice.
	ArtifactBytes ArtifactKind = "bytes"
	// ArtifactText is passed through as a string.
	ArtifactText ArtifactKind = "text"
)

// Reserved input file names. A leaf directory holds exactly one of them.
const (
	InputSource = "input.yaml"
	InputBytes  = "input.bin"
	InputText   = "input.txt"
)

// DriverImportPath is the import path of the package that attaches functions to fixture roots.
const DriverImportPath = "github.com/specvital/fnfixture/pkg/snapshot"

// ReservedInputs lists the reserved input file names in diagnostic order.
var ReservedInputs = []string{InputSource, InputBytes, InputText}

// ArtifactKindFor returns the artifact kind for a reserved file name.
func ArtifactKindFor(fileName string) (ArtifactKind, bool) {
	switch fileName {
	case InputSource:
		return ArtifactSource, true
	case InputBytes:
		return ArtifactBytes, true
	case InputText:
		return ArtifactText, true
	default:
		return "", false
	}
}

// InputArtifact is the single recorded input of a leaf directory.
type InputArtifact struct {
	// Kind selects the decoding applied before the call.
	Kind ArtifactKind `json:"kind"`
	// Path is the artifact's file path.
	Path string `json:"path"`
}
