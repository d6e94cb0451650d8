package app

import (
	"os"
	"sync"
)

const testModeEnv = "GYMOPS_TEST_MODE"

// InTestMode reports whether GYMOPS_TEST_MODE=1 was set when first asked.
// The binaries return early in that mode so importing them from tests never
// opens postgres or redis.
var InTestMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})
