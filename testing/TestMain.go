// Package testing switches the binaries into test mode before their tests run.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("VITRINE_TEST_MODE", "1")
		if os.Getenv("DATA_SOURCE") == "" {
			_ = os.Setenv("DATA_SOURCE", "fixtures")
		}
		if os.Getenv("GOTENBERG_URL") == "" {
			_ = os.Setenv("GOTENBERG_URL", "http://127.0.0.1:0")
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain forces test mode for packages that delegate to it.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
