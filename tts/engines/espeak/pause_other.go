//go:build !unix

package espeak

import (
	"os"

	"github.com/dgnsrekt/readaloud/tts"
)

const pauseSupported = false

func stopProcess(*os.Process) error {
	return tts.ErrPauseUnsupported
}

func continueProcess(*os.Process) error {
	return tts.ErrPauseUnsupported
}
