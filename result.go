package combinator

import "fmt"

// Result is the outcome of a single parse attempt.  It's a success
// when Err is nil, in which case Values holds what the parser
// produced and Length how many bytes it consumed.
type Result struct {
	Values []any
	Length int
	Err    *Failure
}

// Success builds a successful Result
func Success(values []any, length int) Result {
	return Result{Values: values, Length: length}
}

// Fail builds a failed Result at the absolute offset `pos`
func Fail(pos int, format string, args ...any) Result {
	return Result{Err: &Failure{Message: fmt.Sprintf(format, args...), Position: pos}}
}

// Ok tells if the result is a success
func (r Result) Ok() bool { return r.Err == nil }

// Value returns the first produced value, or nil if there's none
func (r Result) Value() any {
	if len(r.Values) == 0 {
		return nil
	}
	return r.Values[0]
}

// Error returns the failure as an error, or nil on success
func (r Result) Error() error {
	if r.Err == nil {
		return nil
	}
	return r.Err
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("Failure(%s)", r.Err)
	}
	return fmt.Sprintf("Success(%v, %d)", r.Values, r.Length)
}

// merge concatenates the values and sums the lengths of two
// successful results.
func merge(a, b Result) Result {
	values := make([]any, 0, len(a.Values)+len(b.Values))
	values = append(values, a.Values...)
	values = append(values, b.Values...)
	return Success(values, a.Length+b.Length)
}
