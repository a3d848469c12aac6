package services

import (
	"fmt"
	"kolimeet-service/internal/domain"
)

// RetrievalError reports that candidate listings could not be fetched.
// The lookup is not retried; callers decide whether to offer a refresh.
type RetrievalError struct {
	Kind domain.Kind
	Err  error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve open %ss: %v", e.Kind, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }
