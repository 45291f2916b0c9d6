package vectorindex

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies Refresh's bounded errgroup of parallel readers leaves no
// goroutine behind, since this package is the only one spawning workers.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
