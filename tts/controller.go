// Package tts reads paginated documents aloud. The Controller owns the
// playback session: it fetches page text, chunks it, dispatches utterances to
// a synthesis backend one at a time and keeps narration in step with page
// navigation.
package tts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts/sentence"
	"github.com/dgnsrekt/readaloud/tts/voice"
)

// Session is the mutable narration context of one reading surface.
type Session struct {
	Document Document
	Page     int
	Chunks   []string
	Chunk    int

	Voice    voice.Voice
	HasVoice bool
	Rate     float64
	Pitch    float64
	Volume   float64
	Muted    bool

	// Reading is set while the user wants narration to continue, including
	// across an empty page, and decides whether page steps autoplay.
	Reading bool
	Status  Status
}

// Controller is the playback state machine and navigation controller for a
// single session. All methods are safe for concurrent use; they are
// serialized on one lock and every request that starts narration cancels the
// narration in flight first.
type Controller struct {
	mu sync.Mutex

	// Collaborators
	backend Backend
	texts   TextSource
	prefs   PreferenceStore
	logger  *log.Logger

	config    Config
	machine   *StateMachine
	session   Session
	available bool
	closed    bool

	// chosenVoice is the ID (or name) picked with SetVoice. It outranks the
	// saved preference while the backend still offers it.
	chosenVoice string

	// Narration bookkeeping. gen is bumped on every cancellation; a
	// narration goroutine only touches the session while its generation is
	// current.
	gen         uint64
	cancel      context.CancelFunc
	wake        chan struct{}
	inFlight    bool
	nativePause bool

	subscribers map[int]chan Snapshot
	nextSub     int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used by the controller.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithPreferenceStore sets the store used to load and save the voice.
func WithPreferenceStore(store PreferenceStore) Option {
	return func(c *Controller) {
		c.prefs = store
	}
}

// NewController creates a controller that reads page text from texts and
// speaks it through backend. A nil or unavailable backend leaves the
// controller in a permanent SynthesisUnavailable status in which playback
// controls do nothing.
func NewController(backend Backend, texts TextSource, config Config, opts ...Option) *Controller {
	if config.ChunkSize <= 0 {
		config.ChunkSize = sentence.DefaultMaxLen
	}

	c := &Controller{
		backend:     backend,
		texts:       texts,
		logger:      log.Default(),
		config:      config,
		machine:     NewStateMachine(),
		wake:        make(chan struct{}),
		subscribers: make(map[int]chan Snapshot),
		session: Session{
			Page:   1,
			Rate:   ClampRate(config.Rate),
			Pitch:  ClampPitch(config.Pitch),
			Volume: ClampVolume(config.Volume),
			Muted:  config.Muted,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.available = backend != nil && backend.Available()
	if !c.available {
		c.session.Status = unavailableStatus()
		c.logger.Warn("Speech synthesis unavailable, playback disabled")
		return c
	}

	c.session.Status = Status{Kind: StatusInfo, Message: msgReady, Detail: "Open a document to start reading."}
	// Listen before the first read so a list that fills in between is
	// never missed.
	backend.OnVoicesChanged(c.refreshVoices)
	c.mu.Lock()
	c.resolveVoiceLocked()
	c.mu.Unlock()

	return c
}

// Load makes doc the active document, cancelling any narration and
// forgetting the text of the previous document. The session starts on page 1.
func (c *Controller) Load(doc Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrControllerClosed
	}
	if doc == nil {
		return ErrNoDocument
	}

	c.cancelLocked()
	if c.texts != nil {
		c.texts.Reset()
	}

	c.session.Document = doc
	c.session.Page = 1
	c.session.Chunks = nil
	c.session.Chunk = 0
	c.session.Reading = false
	c.settleLocked(StateIdle)

	if c.available {
		c.session.Status = readyStatus(1)
	}
	c.logger.Debug("Document loaded", "id", doc.ID(), "pages", doc.PageCount())
	c.publishLocked()

	return nil
}

// Play starts narration of the current page from its first chunk, or
// resumes when paused. Playing while already speaking does nothing.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked(); err != nil {
		return err
	}

	switch c.machine.Current() {
	case StatePreparing, StateSpeaking:
		return nil
	case StatePaused:
		return c.resumeLocked()
	}

	c.session.Reading = true
	c.startLocked()
	return nil
}

// Pause suspends narration without advancing the chunk index.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked(); err != nil {
		return err
	}

	switch c.machine.Current() {
	case StatePaused:
		return nil
	case StateSpeaking:
	default:
		return fmt.Errorf("%w: cannot pause while %s", ErrInvalidState, c.machine.Current())
	}

	c.transitionLocked(StatePaused)
	c.nativePause = true

	if err := c.backend.Pause(); err != nil && c.inFlight {
		// The utterance cannot be held, so drop it; resuming restarts the
		// page.
		c.logger.Debug("Backend pause failed, narration abandoned", "err", err)
		c.cancelLocked()
	}

	c.session.Status = pausedStatus()
	c.publishLocked()
	return nil
}

// Resume continues paused narration. When the backend lost the paused
// utterance the current page is read again from its first chunk.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked(); err != nil {
		return err
	}
	if c.machine.Current() != StatePaused {
		return fmt.Errorf("%w: cannot resume while %s", ErrInvalidState, c.machine.Current())
	}

	return c.resumeLocked()
}

// Toggle pauses while speaking and plays otherwise.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	state := c.machine.Current()
	c.mu.Unlock()

	switch state {
	case StateSpeaking:
		return c.Pause()
	case StatePreparing:
		return nil
	default:
		return c.Play()
	}
}

// Stop cancels narration and rewinds to the first chunk of the current page.
func (c *Controller) Stop() error {
	return c.stop(false)
}

// StopHard cancels narration and rewinds to the first page.
func (c *Controller) StopHard() error {
	return c.stop(true)
}

func (c *Controller) stop(hard bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked(); err != nil {
		return err
	}

	c.cancelLocked()
	c.session.Chunk = 0
	c.session.Reading = false
	if hard {
		c.session.Page = 1
		c.session.Chunks = nil
	}

	c.transitionLocked(StateStopped)
	c.session.Status = stoppedStatus()
	c.publishLocked()

	return nil
}

// SetVoice selects the voice with the given name or ID and saves it as the
// preferred voice.
func (c *Controller) SetVoice(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrControllerClosed
	}
	if !c.available {
		return ErrSynthesisUnavailable
	}

	v, ok := voice.Find(c.backend.Voices(), name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrVoiceNotFound, name)
	}

	if c.prefs != nil {
		if err := c.prefs.Set(PreferenceVoice, v.Name, c.config.Voice.SaveTTL); err != nil {
			c.logger.Warn("Could not save voice preference", "voice", v.Name, "err", err)
		}
	}

	c.chosenVoice = v.ID
	if c.chosenVoice == "" {
		c.chosenVoice = v.Name
	}

	if c.session.HasVoice && c.session.Voice == v {
		return nil
	}
	c.session.Voice = v
	c.session.HasVoice = true
	c.applyLocked()

	return nil
}

// SetRate changes the speaking rate, clamped to [MinRate, MaxRate].
func (c *Controller) SetRate(rate float64) error {
	return c.setParam(func(s *Session) bool {
		rate = ClampRate(rate)
		if s.Rate == rate {
			return false
		}
		s.Rate = rate
		return true
	})
}

// SetPitch changes the voice pitch, clamped to [MinPitch, MaxPitch].
func (c *Controller) SetPitch(pitch float64) error {
	return c.setParam(func(s *Session) bool {
		pitch = ClampPitch(pitch)
		if s.Pitch == pitch {
			return false
		}
		s.Pitch = pitch
		return true
	})
}

// SetVolume changes the volume, clamped to [0, 1].
func (c *Controller) SetVolume(volume float64) error {
	return c.setParam(func(s *Session) bool {
		volume = ClampVolume(volume)
		if s.Volume == volume {
			return false
		}
		s.Volume = volume
		return true
	})
}

// SetMuted mutes or unmutes narration.
func (c *Controller) SetMuted(muted bool) error {
	return c.setParam(func(s *Session) bool {
		if s.Muted == muted {
			return false
		}
		s.Muted = muted
		return true
	})
}

// ToggleMute flips the mute flag.
func (c *Controller) ToggleMute() error {
	return c.setParam(func(s *Session) bool {
		s.Muted = !s.Muted
		return true
	})
}

// setParam applies a parameter change. Utterances already dispatched
// cannot change, so an active session restarts the current page.
func (c *Controller) setParam(update func(*Session) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrControllerClosed
	}
	if update(&c.session) {
		c.applyLocked()
	}
	return nil
}

func (c *Controller) applyLocked() {
	switch c.machine.Current() {
	case StateSpeaking, StatePaused:
		if c.available && c.session.Document != nil {
			c.logger.Debug("Parameters changed, restarting page", "page", c.session.Page)
			c.startLocked()
			return
		}
	}
	c.publishLocked()
}

// Voices returns the voices the backend currently offers.
func (c *Controller) Voices() []voice.Voice {
	if c.backend == nil {
		return nil
	}
	return c.backend.Voices()
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every change,
// starting with the current one. The channel keeps only the latest snapshot
// when the reader falls behind. The returned function unsubscribes and
// closes the channel.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = ch
	ch <- c.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(sub)
			}
		})
	}
}

// Close cancels all narration and releases subscribers. The controller
// cannot be used afterwards.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.cancelLocked()
	c.closed = true
	c.session.Document = nil
	c.session.Reading = false

	for id, ch := range c.subscribers {
		delete(c.subscribers, id)
		close(ch)
	}

	return nil
}

// Private helper methods

func (c *Controller) checkLocked() error {
	switch {
	case c.closed:
		return ErrControllerClosed
	case !c.available:
		return ErrSynthesisUnavailable
	case c.session.Document == nil:
		return ErrNoDocument
	}
	return nil
}

// startLocked reads the current page from its first chunk.
func (c *Controller) startLocked() {
	c.cancelLocked()

	c.session.Chunk = 0
	c.session.Chunks = nil
	c.transitionLocked(StatePreparing)
	c.session.Status = readingStatus(c.session.Muted)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.narrate(ctx, c.gen, c.session.Document, c.session.Page)

	c.publishLocked()
}

func (c *Controller) resumeLocked() error {
	if c.cancel != nil && c.nativePause {
		err := c.backend.Resume()
		if err != nil && c.inFlight {
			c.logger.Debug("Backend resume failed, restarting page", "page", c.session.Page, "err", err)
			c.session.Reading = true
			c.startLocked()
			return nil
		}

		c.nativePause = false
		c.transitionLocked(StateSpeaking)
		close(c.wake)
		c.wake = make(chan struct{})
		c.session.Reading = true
		c.session.Status = readingStatus(c.session.Muted)
		c.publishLocked()
		return nil
	}

	c.logger.Debug("Nothing to resume, restarting page", "page", c.session.Page)
	c.session.Reading = true
	c.startLocked()
	return nil
}

// cancelLocked invalidates the narration in flight. It is safe to call when
// nothing is active.
func (c *Controller) cancelLocked() {
	c.gen++
	c.inFlight = false
	c.nativePause = false

	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil

	if err := c.backend.Cancel(); err != nil {
		c.logger.Debug("Backend cancel failed", "err", err)
	}
}

// releaseLocked drops the narration context after narration ended on its own.
func (c *Controller) releaseLocked() {
	c.inFlight = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) currentLocked(ctx context.Context, gen uint64) bool {
	return !c.closed && gen == c.gen && ctx.Err() == nil
}

// narrate is the sequential narration task for one page. It re-checks its
// generation every time it wakes up, after extraction, after each utterance
// and after a pause, before touching the session.
func (c *Controller) narrate(ctx context.Context, gen uint64, doc Document, page int) {
	text, err := c.texts.PageText(ctx, doc, page)

	c.mu.Lock()
	if !c.currentLocked(ctx, gen) {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.failLocked(msgExtraction, NewTTSError(err, "text", "extract").WithPage(page))
		c.mu.Unlock()
		return
	}

	chunks := sentence.Chunk(text, c.config.ChunkSize)
	if len(chunks) == 0 {
		c.logger.Info("Page has no text", "page", page)
		c.releaseLocked()
		c.transitionLocked(StateIdle)
		c.session.Status = emptyPageStatus()
		c.publishLocked()
		c.mu.Unlock()
		return
	}
	c.session.Chunks = chunks
	c.session.Chunk = 0
	c.mu.Unlock()

	for {
		c.mu.Lock()
		if !c.currentLocked(ctx, gen) {
			c.mu.Unlock()
			return
		}

		if c.machine.Current() == StatePaused {
			wake := c.wake
			c.mu.Unlock()
			select {
			case <-ctx.Done():
				return
			case <-wake:
			}
			continue
		}

		i := c.session.Chunk
		if i >= len(c.session.Chunks) {
			c.releaseLocked()
			c.session.Chunk = 0
			c.session.Reading = false
			c.transitionLocked(StateIdle)
			c.session.Status = finishedStatus()
			c.logger.Debug("Finished page", "page", page, "chunks", len(c.session.Chunks))
			c.publishLocked()
			c.mu.Unlock()
			return
		}

		u := c.utteranceLocked(c.session.Chunks[i])
		if c.machine.Current() == StatePreparing {
			c.transitionLocked(StateSpeaking)
		}
		c.session.Status = readingStatus(c.session.Muted)
		c.inFlight = true
		c.publishLocked()
		c.logger.Debug("Dispatching utterance", "page", page, "chunk", i, "len", len(u.Text))
		c.mu.Unlock()

		err := c.backend.Speak(ctx, u)

		c.mu.Lock()
		if !c.currentLocked(ctx, gen) {
			c.mu.Unlock()
			return
		}
		c.inFlight = false
		if err != nil {
			synthErr := fmt.Errorf("%w: %w", ErrSynthesis, err)
			c.failLocked(msgSpeechError, NewTTSError(synthErr, "backend", "speak").WithPage(page))
			c.mu.Unlock()
			return
		}
		c.session.Chunk++
		c.mu.Unlock()
	}
}

func (c *Controller) utteranceLocked(text string) Utterance {
	volume := c.session.Volume
	if c.session.Muted {
		volume = 0
	}
	return Utterance{
		Text:   text,
		Voice:  c.session.Voice,
		Rate:   c.session.Rate,
		Pitch:  c.session.Pitch,
		Volume: volume,
	}
}

// failLocked moves the session to StateError. The page is kept so the user
// can retry or navigate away.
func (c *Controller) failLocked(message string, err *TTSError) {
	c.logger.Error(message, "page", err.Page, "err", err)

	c.releaseLocked()
	c.session.Chunk = 0
	c.session.Reading = false
	c.transitionLocked(StateError)
	c.session.Status = errorStatus(message, err.Err)
	c.publishLocked()
}

func (c *Controller) transitionLocked(to StateType) bool {
	from := c.machine.Current()
	if from == to && to != StateSpeaking {
		return true
	}
	if err := c.machine.Transition(to); err != nil {
		c.logger.Warn("Rejected state transition", "err", err)
		return false
	}
	return true
}

// settleLocked moves to a resting state, passing through StateStopped when
// the state machine does not allow a direct transition.
func (c *Controller) settleLocked(to StateType) {
	if c.machine.Current() == to {
		return
	}
	if !c.machine.CanTransition(to) {
		c.transitionLocked(StateStopped)
	}
	c.transitionLocked(to)
}

func (c *Controller) resolveVoiceLocked() {
	preferred := c.config.Voice.Preferred
	if c.prefs != nil {
		if saved, ok := c.prefs.Get(PreferenceVoice); ok && saved != "" {
			preferred = saved
		}
	}

	voices := c.backend.Voices()
	if c.chosenVoice != "" {
		if _, ok := voice.Find(voices, c.chosenVoice); ok {
			preferred = c.chosenVoice
		}
	}

	v, ok := voice.Resolve(voices, preferred, c.config.Voice.Preferences())
	c.session.Voice = v
	c.session.HasVoice = ok
}

// refreshVoices runs when the backend's voice list changes.
func (c *Controller) refreshVoices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.resolveVoiceLocked()
	c.logger.Debug("Voice list changed", "voice", c.session.Voice.Name, "count", len(c.backend.Voices()))
	c.publishLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Page:      c.session.Page,
		State:     c.machine.Current(),
		Chunk:     c.session.Chunk,
		Rate:      c.session.Rate,
		Pitch:     c.session.Pitch,
		Volume:    c.session.Volume,
		Muted:     c.session.Muted,
		Reading:   c.session.Reading,
		Available: c.available,
		Status:    c.session.Status,
		Updated:   time.Now(),
	}
	if doc := c.session.Document; doc != nil {
		s.DocumentID = doc.ID()
		s.PageCount = doc.PageCount()
	}
	if c.session.HasVoice {
		s.Voice = c.session.Voice.Name
	}
	s.ChunkCount = len(c.session.Chunks)
	if s.Chunk < s.ChunkCount {
		s.ChunkText = c.session.Chunks[s.Chunk]
	}
	return s
}

func (c *Controller) publishLocked() {
	if len(c.subscribers) == 0 {
		return
	}

	snap := c.snapshotLocked()
	for _, ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
			// Replace the stale snapshot the reader has not picked up.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
