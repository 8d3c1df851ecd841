package sandbox

import (
	"errors"
	"fmt"
)

// ErrNoQueryProduced is returned when the source executes successfully but
// yields no identifiable query value.
var ErrNoQueryProduced = errors.New("source produced no query: bind a builder to `query`")

// ParseError reports syntactically invalid source, with position when the
// parser can derive one.
type ParseError struct {
	File string
	Line int32
	Col  int32
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// ExecutionError reports a runtime fault while executing the source or
// compiling the resulting query.
type ExecutionError struct {
	Msg string
}

func (e *ExecutionError) Error() string {
	return "execution error: " + e.Msg
}
