package suite

import (
	stderrors "errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
)

// SchemaError is one CUE error located in a suite file.
type SchemaError struct {
	Pos     string // file:line:col, empty when CUE reports no position
	Message string
}

func (e *SchemaError) Error() string {
	if e.Pos == "" {
		return e.Message
	}
	return e.Pos + ": " + e.Message
}

// flattenCUE splits a CUE error into one SchemaError per underlying error,
// each carrying the first position CUE attributes to it.
func flattenCUE(err error) error {
	if err == nil {
		return nil
	}
	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return err
	}

	out := make([]error, 0, len(list))
	for _, e := range list {
		se := &SchemaError{Message: e.Error()}
		if positions := cueerrors.Positions(e); len(positions) > 0 && positions[0].IsValid() {
			p := positions[0].Position()
			se.Pos = fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
		}
		out = append(out, se)
	}
	return stderrors.Join(out...)
}
