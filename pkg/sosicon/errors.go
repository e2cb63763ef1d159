package sosicon

import (
	"fmt"
)

// Stage names the conversion step that failed.
type Stage string

const (
	StageRead      Stage = "read"
	StageTransform Stage = "transform"
	StageEncode    Stage = "encode"
	StageWrite     Stage = "write"
)

// StageError reports which conversion step failed for which file.
type StageError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ErrUnknownType indicates an element type name that cannot be encoded
type ErrUnknownType struct {
	Name string
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown geometry type: %q (want PUNKT, KURVE, FLATE or TEKST)", e.Name)
}
