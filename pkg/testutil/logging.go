package testutil

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// TestLogLevelEnvName overrides the log level of test binaries. Setting it
// also enables log output when tests aren't run verbosely.
const TestLogLevelEnvName = "TEST_LOG_LEVEL"

func init() {
	logrus.SetLevel(logrus.TraceLevel)

	show := isVerboseRun()
	if level, err := logrus.ParseLevel(os.Getenv(TestLogLevelEnvName)); err == nil {
		logrus.SetLevel(level)
		show = true
	}

	if !show {
		logrus.SetOutput(io.Discard)
	}
}

func isVerboseRun() bool {
	for _, arg := range os.Args {
		if arg == "-test.v" || (strings.HasPrefix(arg, "-test.v=") && arg != "-test.v=false") {
			return true
		}
	}
	return false
}
