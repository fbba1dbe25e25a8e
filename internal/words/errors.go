package words

import "errors"

// ErrPoolExhausted is returned by Pool.SelectNext once every word of the
// list has been used this session. It is a normal end of game, not a fault.
var ErrPoolExhausted = errors.New("words: pool exhausted")

// LoadError reports why a word list could not be used.
type LoadError struct {
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return "words: " + e.Reason + ": " + e.Err.Error()
	}
	return "words: " + e.Reason
}

func (e *LoadError) Unwrap() error { return e.Err }
