package health

import (
	"context"
	"fmt"
	"runtime"
)

// GoroutineCountCheck fails when the goroutine count exceeds max, a cheap
// proxy for leaks.
func GoroutineCountCheck(max int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > max {
			return fmt.Errorf("too many goroutines: %d > %d", n, max)
		}
		return nil
	}
}
