package util

import (
	"golang.org/x/sync/errgroup"
)

// Op represents a function that returns a value and/or an error
type Op[T any] = func() (T, error)

// Concurrent runs the operations specified in multiple goroutines, up to the limit of max_concurrent at the same time.
// Results of the successful ops come back in the order the ops were given, as do the errors of the failed ones; a failed
// op does not stop the others.
func Concurrent[T any](ops []Op[T], max_concurrent int) ([]T, []error) {
	if max_concurrent < 1 {
		max_concurrent = 1
	}

	// each op owns its slot, so no locking is needed
	results := make([]T, len(ops))
	errs := make([]error, len(ops))

	var group errgroup.Group
	group.SetLimit(max_concurrent)
	for i, o := range ops {
		group.Go(func() error {
			results[i], errs[i] = o()
			return nil
		})
	}
	group.Wait()

	var ok []T
	var failed []error
	for i := range ops {
		if errs[i] != nil {
			failed = append(failed, errs[i])
		} else {
			ok = append(ok, results[i])
		}
	}
	return ok, failed
}
