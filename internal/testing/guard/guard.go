// Package guard switches binaries into test mode when imported by tests.
package guard

import (
	"os"
	"sync"
)

// EnvVar is the flag read by app.InTestMode.
const EnvVar = "REVIEWDESK_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(EnvVar) == "" {
			_ = os.Setenv(EnvVar, "1")
		}
	})
}
