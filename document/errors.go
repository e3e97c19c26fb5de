package document

import "fmt"

// PathNotFoundError is returned when a path does not exist in the document.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

// InvalidPathError is returned when a path is malformed or cannot be used
// for the requested operation.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// TypeMismatchError is returned when a path walks through a value of the
// wrong kind, e.g. indexing into a scalar.
type TypeMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch at %q: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// StructureError reports a tree that breaks the document invariants, for
// example an anonymous entry that is not a block or an empty sequence.
// Parsed documents never produce it; hand-built ones can.
type StructureError struct {
	Path   string
	Reason string
}

func (e *StructureError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid document structure: %s", e.Reason)
	}
	return fmt.Sprintf("invalid document structure at %q: %s", e.Path, e.Reason)
}

// Invalid creates a StructureError at the document root.
func Invalid(reason string) *StructureError {
	return &StructureError{Reason: reason}
}

// InvalidAt creates a StructureError at a specific path.
//
// Example:
//
//	return document.InvalidAt("/ships/0", "empty sequence")
func InvalidAt(path, reason string) *StructureError {
	return &StructureError{Path: path, Reason: reason}
}
