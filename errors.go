package combinator

import "fmt"

// Failure is an expected and recoverable parse failure.  Combinators
// like Or and Many decide what to do with it.
type Failure struct {
	Message  string
	Position int
}

// Error returns the human readable representation of a parse failure
func (e *Failure) Error() string {
	return fmt.Sprintf("%s @ %d", e.Message, e.Position)
}

// PatternError means a regular expression is broken.  It's returned
// by Compile and it's also the value of the panic raised when a
// backreference points to a group that never captured anything.
type PatternError struct {
	Pattern  string
	Position int
	Message  string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid regex `%s`: %s @ %d", e.Pattern, e.Message, e.Position)
}
