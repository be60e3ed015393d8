package cli

import "fmt"

// Exit codes form the scripting contract: 0 clean, 1 fatal findings,
// 2 usage error, 3 lookup target not found.
const (
	ExitOK       = 0
	ExitFatal    = 1
	ExitUsage    = 2
	ExitNotFound = 3
)

// ExitError carries an exit code up to main without calling os.Exit from
// inside a command, which would skip deferred cleanup.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func exitf(code int, format string, args ...interface{}) *ExitError {
	return &ExitError{Code: code, Message: fmt.Sprintf(format, args...)}
}
