//go:build linux

package launch

import (
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/memfetch/internal/utils"
	"golang.org/x/sys/unix"
)

// Run replaces the current process image with the target program. It only
// returns on failure.
func Run(spec Spec, memPath string) error {
	binPath, err := exec.LookPath(spec.Program)
	if err != nil {
		return &ExecError{Program: spec.Program, Err: err}
	}
	argv := append([]string{spec.Program}, Substitute(spec.Args, spec.Placeholder, memPath)...)
	env := append(os.Environ(), utils.MemfdPathEnv+"="+memPath)
	log.Info().Str("op", "launch/run").Msgf("executing %s with memory file %s", spec.Program, memPath)
	if err := unix.Exec(binPath, argv, env); err != nil {
		return &ExecError{Program: spec.Program, Err: err}
	}
	return nil
}
