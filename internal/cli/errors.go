package cli

import "errors"

// ErrUsage matches every error caused by bad flags, config or input.
var ErrUsage = errors.New("apimport: usage error")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string { return e.msg }

func (e usageError) Is(target error) bool { return target == ErrUsage }

// ExitCode maps an Execute error to a process exit status: 0 for nil, 2 for
// usage errors and 1 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		return 2
	default:
		return 1
	}
}
