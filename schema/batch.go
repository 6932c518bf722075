package schema

import (
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/jacoelho/ucl/value"
)

// Task is one independent (schema, value) pair to validate. The
// single-threaded-per-context contract binds one parser/emitter/validator
// instance, not the package — validating many unrelated pairs concurrently
// over a bounded pool is a different, and fair, use of the same API.
type Task struct {
	Schema *value.Value
	Value  *value.Value
}

// Result carries a Task's outcome back indexed by its position in the
// input slice, since ants dispatches work out of order.
type Result struct {
	OK    bool
	Error *Error
}

// ValidateBatch validates every task concurrently over a pool of at most
// poolSize goroutines (poolSize <= 0 picks ants' default). Results line up
// index-for-index with tasks.
func ValidateBatch(tasks []Task, poolSize int) ([]Result, error) {
	if poolSize <= 0 {
		poolSize = ants.DefaultAntsPoolSize
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	results := make([]Result, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))

	for i, task := range tasks {
		i, task := i, task
		submitErr := pool.Submit(func() {
			defer wg.Done()
			ok, verr := Validate(task.Schema, task.Value)
			results[i] = Result{OK: ok, Error: verr}
		})
		if submitErr != nil {
			wg.Done()
			results[i] = Result{OK: false, Error: fail(CodeUnknown, task.Value, "submit failed: %v", submitErr)}
		}
	}

	wg.Wait()
	return results, nil
}
