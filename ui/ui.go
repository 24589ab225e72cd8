// Package ui provides the terminal reading surface: the current page, the
// narration status and keyboard control of a tts.Controller.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/document"
	"github.com/dgnsrekt/readaloud/tts"
	te "github.com/muesli/termenv"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied"
	ellipsis             = "…"
)

// Deps are the collaborators the reading surface drives.
type Deps struct {
	Controller *tts.Controller
	Texts      tts.TextSource
	Document   *document.Document
	Engine     string // Backend name shown in the narration line
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, deps Deps) *tea.Program {
	log.Debug(
		"Starting readaloud",
		"glamour", cfg.GlamourEnabled,
		"watch", cfg.Watch,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, deps), opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	snapshotMsg             tts.Snapshot
	snapshotsClosedMsg      struct{}
	statusMessageTimeoutMsg struct{}
	reloadMsg               struct {
		doc       *document.Document
		err       error
		fromWatch bool
	}
)

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	width  int
	height int
	note   string
}

type model struct {
	common   *commonModel
	fatalErr error
	pager    pagerModel

	ctrl     *tts.Controller
	texts    tts.TextSource
	doc      *document.Document
	engine   string
	snapshot tts.Snapshot

	snapshots   <-chan tts.Snapshot
	unsubscribe func()
	watcher     *document.Watcher
	firstPage   tea.Cmd
}

func newModel(cfg Config, deps Deps) model {
	if cfg.GlamourStyle == styles.AutoStyle || cfg.GlamourStyle == "" {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	common := &commonModel{cfg: cfg}
	m := model{
		common: common,
		pager:  newPagerModel(common),
		ctrl:   deps.Controller,
		texts:  deps.Texts,
		doc:    deps.Document,
		engine: deps.Engine,
	}

	if m.ctrl == nil || m.doc == nil {
		m.fatalErr = errors.New("no document to read")
		return m
	}

	m.snapshot = m.ctrl.Snapshot()
	m.snapshots, m.unsubscribe = m.ctrl.Subscribe()
	m.common.note = m.noteFor(m.snapshot)
	m.firstPage = m.pager.wantPage(m.doc, m.snapshot.Page)

	if cfg.Watch && m.doc.Path() != "" {
		w, err := document.Watch(m.doc.Path(), log.Default())
		if err != nil {
			log.Error("unable to watch document", "path", m.doc.Path(), "error", err)
		} else {
			m.watcher = w
		}
	}

	return m
}

func (m model) Init() tea.Cmd {
	if m.fatalErr != nil {
		return nil
	}

	cmds := []tea.Cmd{waitForSnapshot(m.snapshots), m.firstPage}
	if m.watcher != nil {
		cmds = append(cmds, watchDocument(m.watcher, m.doc.Path()))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) && !(msg.String() == keyEsc && m.pager.state != pagerStateBrowse) {
			m.shutdown()
			return m, tea.Quit
		}
		if cmd, handled := m.handleNarrationKey(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.pager.setSize(msg.Width, msg.Height)

	case snapshotMsg:
		m.snapshot = tts.Snapshot(msg)
		m.common.note = m.noteFor(m.snapshot)
		m.pager.setChunk(m.snapshot.ChunkText)
		cmds = append(cmds,
			waitForSnapshot(m.snapshots),
			m.pager.wantPage(m.doc, m.snapshot.Page),
		)

	case snapshotsClosedMsg:
		m.fatalErr = tts.ErrControllerClosed
		return m, nil

	case reloadMsg:
		cmds = append(cmds, m.reload(msg))

	case copiedMsg:
		if msg.err != nil {
			return m, m.pager.showStatusMessage(pagerStatusMessage{"Could not copy: " + msg.err.Error(), true})
		}
		return m, m.pager.showStatusMessage(pagerStatusMessage{"Copied page text", false})

	case errMsg:
		log.Error("error", "error", msg.err)
		return m, m.pager.showStatusMessage(pagerStatusMessage{msg.Error(), true})
	}

	newPagerModel, cmd := m.pager.update(msg)
	m.pager = newPagerModel
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleNarrationKey runs the controller action bound to msg.
func (m *model) handleNarrationKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	var err error

	switch {
	case key.Matches(msg, keys.Toggle):
		err = m.ctrl.Toggle()
	case key.Matches(msg, keys.Stop):
		err = m.ctrl.Stop()
	case key.Matches(msg, keys.StopHard):
		err = m.ctrl.StopHard()
	case key.Matches(msg, keys.NextPage):
		err = m.ctrl.NextPage()
	case key.Matches(msg, keys.PrevPage):
		err = m.ctrl.PrevPage()
	case key.Matches(msg, keys.NextVoice):
		err = m.cycleVoice(1)
	case key.Matches(msg, keys.PrevVoice):
		err = m.cycleVoice(-1)
	case key.Matches(msg, keys.Faster):
		err = m.ctrl.SetRate(tts.NextRate(m.snapshot.Rate))
	case key.Matches(msg, keys.Slower):
		err = m.ctrl.SetRate(tts.PrevRate(m.snapshot.Rate))
	case key.Matches(msg, keys.PitchUp):
		err = m.ctrl.SetPitch(m.snapshot.Pitch + 0.1)
	case key.Matches(msg, keys.PitchDown):
		err = m.ctrl.SetPitch(m.snapshot.Pitch - 0.1)
	case key.Matches(msg, keys.Louder):
		err = m.ctrl.SetVolume(m.snapshot.Volume + 0.1)
	case key.Matches(msg, keys.Quieter):
		err = m.ctrl.SetVolume(m.snapshot.Volume - 0.1)
	case key.Matches(msg, keys.Mute):
		err = m.ctrl.ToggleMute()
	case key.Matches(msg, keys.Copy):
		return copyPage(m.texts, m.doc, m.snapshot.Page), true
	case key.Matches(msg, keys.Reload):
		return reloadDocument(m.doc.Path()), true
	default:
		return nil, false
	}

	if err != nil {
		return m.pager.showStatusMessage(pagerStatusMessage{err.Error(), true}), true
	}
	return nil, true
}

// cycleVoice selects the voice step positions away from the current one.
func (m *model) cycleVoice(step int) error {
	voices := m.ctrl.Voices()
	if len(voices) == 0 {
		return tts.ErrVoiceNotFound
	}

	current := -1
	for i, v := range voices {
		if v.Name == m.snapshot.Voice {
			current = i
			break
		}
	}

	next := (current + step + len(voices)) % len(voices)
	if current < 0 && step < 0 {
		next = len(voices) - 1
	}
	return m.ctrl.SetVoice(voices[next].ID)
}

// reload swaps in a re-read document, staying on the same page.
func (m *model) reload(msg reloadMsg) tea.Cmd {
	var cmds []tea.Cmd
	if msg.fromWatch && m.watcher != nil {
		cmds = append(cmds, watchDocument(m.watcher, m.doc.Path()))
	}

	if msg.err != nil {
		log.Error("unable to reload document", "error", msg.err)
		return tea.Batch(append(cmds, m.pager.showStatusMessage(pagerStatusMessage{"Reload failed: " + msg.err.Error(), true}))...)
	}
	if msg.doc.ID() == m.doc.ID() {
		return tea.Batch(cmds...)
	}

	pageNumber := m.snapshot.Page
	m.doc = msg.doc
	if err := m.ctrl.Load(msg.doc); err != nil {
		return tea.Batch(append(cmds, m.pager.showStatusMessage(pagerStatusMessage{err.Error(), true}))...)
	}
	if err := m.ctrl.GoToPage(pageNumber, false); err != nil {
		log.Debug("unable to restore page after reload", "page", pageNumber, "error", err)
	}

	m.pager.page = page{}
	m.pager.loading = 0
	cmds = append(cmds,
		m.pager.wantPage(m.doc, m.ctrl.Snapshot().Page),
		m.pager.showStatusMessage(pagerStatusMessage{"Reloaded", false}),
	)
	return tea.Batch(cmds...)
}

func (m *model) shutdown() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
}

func (m model) noteFor(s tts.Snapshot) string {
	title := m.doc.Title()
	if title == "" {
		title = stripAbsolutePath(m.doc.Path())
	}
	return fmt.Sprintf("Page %d/%d · %s", s.Page, s.PageCount, title)
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}
	return m.pager.View(renderNarrationStatus(m.engine, m.snapshot))
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// COMMANDS

func waitForSnapshot(ch <-chan tts.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return snapshotsClosedMsg{}
		}
		return snapshotMsg(s)
	}
}

func watchDocument(w *document.Watcher, path string) tea.Cmd {
	return func() tea.Msg {
		if err := w.Wait(context.Background()); err != nil {
			log.Debug("stopped watching document", "error", err)
			return nil
		}
		msg, _ := reloadDocument(path)().(reloadMsg)
		msg.fromWatch = true
		return msg
	}
}

func reloadDocument(path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := document.Open(path)
		return reloadMsg{doc: doc, err: err}
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// ETC

func stripAbsolutePath(fullPath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return fullPath
	}
	fp, _ := filepath.EvalSymlinks(fullPath)
	cp, _ := filepath.EvalSymlinks(cwd)
	return strings.ReplaceAll(fp, cp+string(os.PathSeparator), "")
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
