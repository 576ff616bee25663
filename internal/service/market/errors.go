package market

import "fmt"

// FetchError reports a failed provider call for one identifier.
type FetchError struct {
	Source string // provider name, e.g. "market", "fred"
	ID     string // symbol or series id
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Source, e.ID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func fetchErr(source, id string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Source: source, ID: id, Err: err}
}
