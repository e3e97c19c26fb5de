package document

import "fmt"

// PatchOp is the kind of a Patch operation.
type PatchOp string

const (
	// PatchOpAdd inserts a value under the last path segment using the
	// duplicate-key promotion rule, so adding to an existing key produces or
	// extends a sequence.
	PatchOpAdd PatchOp = "add"
	// PatchOpRemove removes the value at the path.
	PatchOpRemove PatchOp = "remove"
	// PatchOpReplace replaces the value at the path.
	PatchOpReplace PatchOp = "replace"
)

// Patch is a single in-memory edit addressed by path.
type Patch struct {
	Op    PatchOp
	Path  string
	Value Value
}

// NewAddPatch creates an "add" patch operation.
func NewAddPatch(path string, value Value) Patch {
	return Patch{Op: PatchOpAdd, Path: path, Value: value}
}

// NewRemovePatch creates a "remove" patch operation.
func NewRemovePatch(path string) Patch {
	return Patch{Op: PatchOpRemove, Path: path}
}

// NewReplacePatch creates a "replace" patch operation.
func NewReplacePatch(path string, value Value) Patch {
	return Patch{Op: PatchOpReplace, Path: path, Value: value}
}

// PatchSet is an ordered list of edits.
type PatchSet []Patch

// Add appends an "add" operation.
func (ps *PatchSet) Add(path string, value Value) {
	*ps = append(*ps, NewAddPatch(path, value))
}

// Remove appends a "remove" operation.
func (ps *PatchSet) Remove(path string) {
	*ps = append(*ps, NewRemovePatch(path))
}

// Replace appends a "replace" operation.
func (ps *PatchSet) Replace(path string, value Value) {
	*ps = append(*ps, NewReplacePatch(path, value))
}

// Len returns the number of patches in the set.
func (ps PatchSet) Len() int {
	return len(ps)
}

// IsEmpty returns true if the set holds no operations.
func (ps PatchSet) IsEmpty() bool {
	return len(ps) == 0
}

// ApplyTo applies the operations in order and stops at the first failure.
// Operations applied before the failure stay applied.
func (ps PatchSet) ApplyTo(d *Document) error {
	for i, p := range ps {
		var err error
		switch p.Op {
		case PatchOpReplace:
			err = d.SetPath(p.Path, p.Value)
		case PatchOpRemove:
			err = d.DeletePath(p.Path)
		case PatchOpAdd:
			err = d.addPath(p.Path, p.Value)
		default:
			err = fmt.Errorf("unknown patch op %q", p.Op)
		}
		if err != nil {
			return fmt.Errorf("patch %d (%s %s): %w", i, p.Op, p.Path, err)
		}
	}
	return nil
}

func (d *Document) addPath(path string, v Value) error {
	segments, err := ParsePath(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return &InvalidPathError{Path: path, Reason: "cannot add to root document"}
	}
	parent, err := d.Lookup(joinSegments(segments[:len(segments)-1]))
	if err != nil {
		return err
	}
	b, ok := parent.(*Block)
	if !ok {
		return &TypeMismatchError{Path: joinSegments(segments[:len(segments)-1]), Expected: "block", Actual: parent.Kind().String()}
	}
	return b.Doc.Insert(segments[len(segments)-1], v)
}
