// Package simerr defines the error kinds shared by the dice, trial and analysis
// packages. Every error returned by those packages wraps exactly one of these
// sentinels, so callers classify failures with errors.Is.
package simerr

import "errors"

var (
	// ErrType reports an input of the wrong kind, e.g. a non-sequence face set
	// or a weight that is not numeric.
	ErrType = errors.New("type error")
	// ErrValue reports an input of the right kind with an invalid value, e.g.
	// duplicate faces or an unknown table form.
	ErrValue = errors.New("value error")
	// ErrLookup reports a reference to a face that a die does not have.
	ErrLookup = errors.New("lookup error")
	// ErrValidation reports a collaborator that does not satisfy a required
	// contract, e.g. an analyzer built without a runner.
	ErrValidation = errors.New("validation error")
)
