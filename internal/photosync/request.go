package photosync

import (
	"context"
	"errors"
	"sync"

	"github.com/Oxyrus/virtualtourist/internal/apperr"
)

// ErrPending is returned by Result while the request is still running.
var ErrPending = errors.New("photosync: request still in flight")

// Request is the handle for one asynchronous sync operation. It completes
// exactly once. A cancelled request completes with a transport error wrapping
// context.Canceled and never with a value.
type Request[T any] struct {
	done   chan struct{}
	once   sync.Once
	cancel func()
	value  T
	err    error
}

func newRequest[T any](cancel func()) *Request[T] {
	return &Request[T]{done: make(chan struct{}), cancel: cancel}
}

// failedRequest returns a request that has already completed with err.
func failedRequest[T any](err error) *Request[T] {
	r := newRequest[T](nil)
	r.complete(*new(T), err)
	return r
}

// complete records the outcome. Only the first call has any effect.
func (r *Request[T]) complete(v T, err error) {
	r.once.Do(func() {
		r.value, r.err = v, err
		close(r.done)
	})
}

// Done is closed when the request completes.
func (r *Request[T]) Done() <-chan struct{} {
	return r.done
}

// Result returns the outcome of a completed request, or ErrPending.
func (r *Request[T]) Result() (T, error) {
	select {
	case <-r.done:
		return r.value, r.err
	default:
		var zero T
		return zero, ErrPending
	}
}

// Wait blocks until the request completes or ctx is done. Giving up on ctx
// does not cancel the request.
func (r *Request[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, apperr.Transport("wait abandoned", ctx.Err())
	}
}

// Cancel aborts the request if it is still the location's active one. It is
// safe to call at any time, any number of times.
func (r *Request[T]) Cancel() {
	if r.cancel != nil {
		r.cancel()
	}
}

func errCancelled() error {
	return apperr.Transport("request cancelled", context.Canceled)
}
