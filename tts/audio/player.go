// Package audio plays 16-bit PCM through the system audio device.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// ErrClosed is returned by Play after Close.
var ErrClosed = errors.New("audio player is closed")

// pollInterval is how often Play checks whether the device drained.
const pollInterval = 10 * time.Millisecond

// Config contains configuration for the audio player.
type Config struct {
	SampleRate int           // Device sample rate, 44100 or 48000
	Channels   int           // 1 = mono, 2 = stereo
	BufferSize time.Duration // Device buffer
}

// DefaultConfig returns the default player configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate: 44100,
		Channels:   1,
		BufferSize: 80 * time.Millisecond,
	}
}

func (c Config) validate() error {
	if c.SampleRate != 44100 && c.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", c.SampleRate)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", c.Channels)
	}
	return nil
}

// Player plays one PCM buffer at a time. Pause latches: a buffer handed to
// Play while paused does not start until Resume.
type Player struct {
	context  *oto.Context
	config   Config
	mu       sync.Mutex
	active   *oto.Player
	paused   bool
	closed   bool
	resumeCh chan struct{} // closed while not paused
}

var (
	sharedOnce   sync.Once
	sharedPlayer *Player
	sharedErr    error
)

// Shared returns the process-wide player. The audio device can only be
// opened once per process, so every engine shares it.
func Shared() (*Player, error) {
	sharedOnce.Do(func() {
		sharedPlayer, sharedErr = NewPlayer(DefaultConfig())
	})
	return sharedPlayer, sharedErr
}

// NewPlayer opens the audio device.
func NewPlayer(config Config) (*Player, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   config.BufferSize,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	resume := make(chan struct{})
	close(resume)
	return &Player{context: ctx, config: config, resumeCh: resume}, nil
}

// Play plays mono PCM16 recorded at sampleRate and blocks until it has been
// heard, ctx is done (ctx.Err()) or the player is closed.
func (p *Player) Play(ctx context.Context, pcm []byte, sampleRate int, volume float64) error {
	data := Resample(pcm, sampleRate, p.config.SampleRate)
	if p.config.Channels == 2 {
		data = MonoToStereo(data)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	resume := p.resumeCh
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-resume:
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	player := p.context.NewPlayer(bytes.NewReader(data))
	player.SetVolume(volume)

	p.mu.Lock()
	if p.active != nil {
		p.active.Pause()
	}
	p.active = player
	p.mu.Unlock()

	player.Play()
	defer p.release(player)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.mu.Lock()
			paused, closed := p.paused, p.closed
			p.mu.Unlock()

			if closed {
				return ErrClosed
			}
			if !paused && !player.IsPlaying() {
				return player.Err()
			}
		}
	}
}

// Pause pauses the active buffer and holds back the next one.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		return nil
	}
	p.paused = true
	p.resumeCh = make(chan struct{})
	if p.active != nil {
		p.active.Pause()
	}
	return nil
}

// Resume continues playback.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.paused {
		return nil
	}
	p.paused = false
	close(p.resumeCh)
	if p.active != nil {
		p.active.Play()
	}
	return nil
}

// Reset clears the pause latch without resuming the active buffer.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		p.paused = false
		close(p.resumeCh)
	}
}

// IsPaused reports whether the player is paused.
func (p *Player) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Close stops playback. Play returns ErrClosed afterwards.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.active != nil {
		p.active.Pause()
	}
	if p.paused {
		p.paused = false
		close(p.resumeCh)
	}
	return nil
}

func (p *Player) release(player *oto.Player) {
	p.mu.Lock()
	if p.active == player {
		p.active = nil
	}
	p.mu.Unlock()

	player.Pause()
	_ = closeLogged(player)
}

// closeLogged closes c and logs a failure; callers have nothing else to do
// with it.
func closeLogged(c io.Closer) error {
	err := c.Close()
	if err != nil {
		log.Debug("Closing audio player failed", "err", err)
	}
	return err
}
