//go:build !linux

package launch

import (
	"os"
	"os/exec"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/memfetch/internal/utils"
)

// Run spawns the target as a child, forwards signals, and waits. Platforms
// without exec-style process replacement propagate the child's exit code
// through ExitStatusError.
func Run(spec Spec, memPath string) error {
	binPath, err := exec.LookPath(spec.Program)
	if err != nil {
		return &ExecError{Program: spec.Program, Err: err}
	}
	cmd := exec.Command(binPath, Substitute(spec.Args, spec.Placeholder, memPath)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), utils.MemfdPathEnv+"="+memPath)

	log.Info().Str("op", "launch/run").Msgf("spawning %s with memory file %s", spec.Program, memPath)
	if err := cmd.Start(); err != nil {
		return &ExecError{Program: spec.Program, Err: err}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh)
	defer signal.Stop(sigCh)
	go func() {
		for sig := range sigCh {
			cmd.Process.Signal(sig)
		}
	}()

	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &ExitStatusError{Code: exitErr.ExitCode()}
		}
		return &ExecError{Program: spec.Program, Err: err}
	}
	return nil
}
