//go:build unix

package espeak

import (
	"os"

	"golang.org/x/sys/unix"
)

const pauseSupported = true

func stopProcess(p *os.Process) error {
	return unix.Kill(p.Pid, unix.SIGSTOP)
}

func continueProcess(p *os.Process) error {
	return unix.Kill(p.Pid, unix.SIGCONT)
}
