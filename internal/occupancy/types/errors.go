package types

import "fmt"

// MissingInputError is returned when a stage needs a file that an earlier
// stage should have produced.
type MissingInputError struct {
	Path   string
	Remedy string
}

func (e *MissingInputError) Error() string {
	if e.Remedy == "" {
		return fmt.Sprintf("input file not found: %s", e.Path)
	}
	return fmt.Sprintf("input file not found: %s (%s)", e.Path, e.Remedy)
}

// LookupMiscountError reports a (unit, class) pair absent from the summary.
type LookupMiscountError struct {
	Unit  string
	Class string
}

func (e *LookupMiscountError) Error() string {
	return fmt.Sprintf("no summary row for unit=%q class=%q", e.Unit, e.Class)
}
