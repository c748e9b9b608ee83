// Package launch hands control to the target program once the memory file
// is fully populated. On linux the process image is replaced outright so
// the target keeps this process's identity and the open memory file
// descriptor; elsewhere the target runs as a child with signals forwarded.
package launch

import (
	"fmt"
	"strings"
)

// Spec is the target command plus the placeholder token marking where the
// memory file path goes.
type Spec struct {
	Program     string
	Args        []string
	Placeholder string
}

// ExecError means the target program could not be found or invoked. It is
// fatal and never retried.
type ExecError struct {
	Program string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("error executing %s: %v", e.Program, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ExitStatusError carries the exit code of a spawned target on platforms
// without process image replacement.
type ExitStatusError struct {
	Code int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("target exited with code %d", e.Code)
}

// Substitute replaces every occurrence of the placeholder in each argument
// with the memory file path. Arguments without the token pass through
// unchanged.
func Substitute(args []string, placeholder, path string) []string {
	finalArgs := make([]string, len(args))
	for i, arg := range args {
		finalArgs[i] = strings.ReplaceAll(arg, placeholder, path)
	}
	return finalArgs
}
