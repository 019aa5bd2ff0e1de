package arbre

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a parse diagnostic.
type ErrorKind string

const (
	// ErrUnterminatedTag indicates a '<' with no closing '>' before end of input.
	ErrUnterminatedTag ErrorKind = "unterminated-tag"
	// ErrUnterminatedValue indicates a quoted attribute value that never closes.
	ErrUnterminatedValue ErrorKind = "unterminated-value"
	// ErrTagMismatch indicates a close tag whose name differs from the innermost open tag.
	ErrTagMismatch ErrorKind = "tag-mismatch"
	// ErrUnclosedTag indicates an open tag still unclosed at end of input.
	ErrUnclosedTag ErrorKind = "unclosed-tag"
	// ErrTrailingContent indicates non-whitespace text after the last tag.
	ErrTrailingContent ErrorKind = "trailing-content"
)

// ParseError is a single diagnostic with an approximate byte offset into the input.
type ParseError struct {
	Kind    ErrorKind
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	if e == nil {
		return "parse error <nil>"
	}
	return fmt.Sprintf("[%s] %s at offset %d", e.Kind, e.Message, e.Offset)
}

// ParseErrors is an error that wraps every diagnostic recorded during one parse.
type ParseErrors []ParseError

func (p ParseErrors) Error() string {
	switch len(p) {
	case 0:
		return "no parse errors"
	case 1:
		return p[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", p[0].Error(), len(p)-1)
	}
}

// AsParseErrors extracts the diagnostic list from an error returned by strict parsing.
func AsParseErrors(err error) (ParseErrors, bool) {
	if err == nil {
		return nil, false
	}
	var list ParseErrors
	if errors.As(err, &list) {
		return list, true
	}
	var ptr *ParseErrors
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return nil, false
}
