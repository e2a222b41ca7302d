package usecase

import (
	"testing"

	"go.uber.org/goleak"
)

// The loop and the executor both spawn goroutines per request; fail the
// package if any test leaves one behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
