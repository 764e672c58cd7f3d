// ABOUTME: Reduction of batched write/delete responses into outcomes
// ABOUTME: Partitions per-item results and reports every rejected item
package records

import (
	"errors"
	"fmt"

	"github.com/harperreed/dealdesk/backend"
)

var (
	// ErrBatchRejected is matched when the whole request was refused.
	ErrBatchRejected = errors.New("batch rejected")

	// ErrNoSuccess is matched when a batch came back with no accepted item.
	ErrNoSuccess = errors.New("no record succeeded")
)

// RejectedError carries the backend's top-level message.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return "request rejected by backend"
	}
	return e.Message
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrBatchRejected
}

// Batch is a partitioned batch response.
type Batch[T any] struct {
	Succeeded []T
	Failed    []backend.Result
}

// First returns the first accepted item.
func (b Batch[T]) First() (T, bool) {
	if len(b.Succeeded) == 0 {
		var zero T
		return zero, false
	}
	return b.Succeeded[0], true
}

// Reduce partitions resp into accepted and rejected items. Every rejected
// item's field errors and message are sent to n once; reporting never stops
// the rest of the batch. A top-level failure reports its message and returns
// a *RejectedError.
func Reduce[T any](resp *backend.Response, decode func(backend.Record) T, n Notifier) (Batch[T], error) {
	if n == nil {
		n = Discard
	}
	if resp == nil {
		return Batch[T]{}, &RejectedError{}
	}
	if !resp.Success {
		if resp.Message != "" {
			n.Notify(resp.Message)
		}
		return Batch[T]{}, &RejectedError{Message: resp.Message}
	}

	var b Batch[T]
	for _, res := range resp.Results {
		if res.Success {
			b.Succeeded = append(b.Succeeded, decode(res.Data))
			continue
		}
		b.Failed = append(b.Failed, res)
		for _, fe := range res.Errors {
			n.Notify(fmt.Sprintf("%s: %s", fe.FieldLabel, fe.Message))
		}
		if res.Message != "" {
			n.Notify(res.Message)
		}
	}
	return b, nil
}

// ReduceDelete reports rejected deletions and says whether any succeeded.
func ReduceDelete(resp *backend.Response, n Notifier) bool {
	b, err := Reduce(resp, func(backend.Record) struct{} { return struct{}{} }, n)
	if err != nil {
		return false
	}
	return len(b.Succeeded) > 0
}
