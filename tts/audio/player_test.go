package audio

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type failingCloser struct{ closed bool }

func (c *failingCloser) Close() error {
	c.closed = true
	return errors.New("device gone")
}

func TestCloseLoggedReportsFailure(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetLevel(log.DebugLevel)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
	})

	c := &failingCloser{}
	if err := closeLogged(c); err == nil {
		t.Fatal("closeLogged() error = nil, want the close error")
	}
	if !c.closed {
		t.Error("Close was not called")
	}
	if !strings.Contains(buf.String(), "device gone") {
		t.Errorf("log output %q does not mention the error", buf.String())
	}
}

func TestDefaultConfig(t *testing.T) {
	if err := DefaultConfig().validate(); err != nil {
		t.Errorf("DefaultConfig().validate() = %v", err)
	}
	if err := (Config{SampleRate: 22050, Channels: 1}).validate(); err == nil {
		t.Error("22050 Hz accepted, want an error")
	}
}
