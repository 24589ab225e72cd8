package ui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/cache"
	"github.com/dgnsrekt/readaloud/internal/document"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/utils"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
)

const (
	statusBarHeight  = 1
	narrationHeight  = 1
	lineNumberWidth  = 4
	defaultWrapWidth = 80
)

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}

	lineNumberFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(green).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lineNumberFg).
			Render
)

// page is the source of the page on screen, kept so it can be re-rendered
// on resize or when the spoken chunk changes.
type page struct {
	number     int
	markdown   string
	paragraphs []string
}

type (
	pageLoadedMsg struct {
		page page
		err  error
	}
	contentRenderedMsg struct {
		number  int
		content string
	}
	copiedMsg struct{ err error }
)

type pagerState int

const (
	pagerStateBrowse pagerState = iota
	pagerStateStatusMessage
)

type pagerModel struct {
	common   *commonModel
	viewport viewport.Model
	help     help.Model
	state    pagerState
	showHelp bool

	statusMessage      pagerStatusMessage
	statusMessageTimer *time.Timer

	page    page
	loading int // page number being loaded, 0 when idle
	chunk   string
}

func newPagerModel(common *commonModel) pagerModel {
	h := help.New()
	h.Styles.ShortKey = detailStyle
	h.Styles.ShortDesc = detailStyle
	h.Styles.ShortSeparator = detailStyle
	h.Styles.FullKey = lipgloss.NewStyle().Foreground(statusBarNoteFg)
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(statusBarNoteFg)
	h.Styles.FullSeparator = lipgloss.NewStyle().Foreground(statusBarNoteFg)
	h.ShortSeparator = " • "

	return pagerModel{
		common:   common,
		state:    pagerStateBrowse,
		viewport: viewport.New(0, 0),
		help:     h,
	}
}

func (m *pagerModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = max(0, h-statusBarHeight-narrationHeight)
	m.help.Width = w

	if m.showHelp {
		m.viewport.Height = max(0, m.viewport.Height-lipgloss.Height(m.helpView()))
	}
}

func (m *pagerModel) toggleHelp() {
	m.showHelp = !m.showHelp
	m.setSize(m.common.width, m.common.height)
	if m.viewport.PastBottom() {
		m.viewport.GotoBottom()
	}
}

type pagerStatusMessage struct {
	message string
	isError bool
}

func (m *pagerModel) showStatusMessage(msg pagerStatusMessage) tea.Cmd {
	m.state = pagerStateStatusMessage
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)

	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

// wantPage starts loading number unless it is on screen or already loading.
func (m *pagerModel) wantPage(doc *document.Document, number int) tea.Cmd {
	if number == m.page.number || number == m.loading {
		return nil
	}
	m.loading = number
	return loadPage(doc, number)
}

func (m pagerModel) update(msg tea.Msg) (pagerModel, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case msg.String() == keyEsc && m.state != pagerStateBrowse:
			m.state = pagerStateBrowse
			return m, nil
		case key.Matches(msg, keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		case key.Matches(msg, keys.Help):
			m.toggleHelp()
			return m, nil
		}

	case pageLoadedMsg:
		if msg.page.number != m.loading {
			// A newer page was requested meanwhile.
			return m, nil
		}
		m.loading = 0
		if msg.err != nil {
			log.Error("unable to load page", "page", msg.page.number, "error", msg.err)
			return m, m.showStatusMessage(pagerStatusMessage{"Could not load page: " + msg.err.Error(), true})
		}
		m.page = msg.page
		m.viewport.GotoTop()
		return m, m.render()

	case contentRenderedMsg:
		if msg.number != m.page.number {
			return m, nil
		}
		m.viewport.SetContent(msg.content)
		return m, nil

	case tea.WindowSizeMsg:
		return m, m.render()

	case statusMessageTimeoutMsg:
		m.state = pagerStateBrowse
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// setChunk records the chunk being spoken and re-renders plain text pages
// so the chunk is highlighted.
func (m *pagerModel) setChunk(chunk string) {
	if chunk == m.chunk {
		return
	}
	m.chunk = chunk
	if m.page.number > 0 && m.page.markdown == "" {
		m.viewport.SetContent(m.renderText())
	}
}

// render returns a command that renders the current page. Plain text pages
// render synchronously.
func (m *pagerModel) render() tea.Cmd {
	if m.page.number == 0 {
		return nil
	}
	if m.page.markdown != "" && m.common.cfg.GlamourEnabled {
		return renderWithGlamour(*m, m.page.number, m.page.markdown)
	}
	m.viewport.SetContent(m.renderText())
	return nil
}

func (m pagerModel) wrapWidth() int {
	width := m.viewport.Width
	if m.common.cfg.GlamourMaxWidth > 0 {
		width = min(width, int(m.common.cfg.GlamourMaxWidth)) //nolint:gosec
	}
	if width <= 0 {
		width = defaultWrapWidth
	}
	return width
}

func (m pagerModel) renderText() string {
	paragraphs := m.page.paragraphs
	if len(paragraphs) == 0 && m.page.markdown != "" {
		paragraphs = []string{m.page.markdown}
	}
	if len(paragraphs) == 0 {
		return subtleStyle.Render("This page has no text.")
	}
	if m.common.cfg.Highlight {
		paragraphs = highlightChunk(paragraphs, m.chunk)
	}

	width := m.wrapWidth()
	if m.common.cfg.ShowLineNumbers {
		width -= lineNumberWidth
	}
	out := wordwrap.String(strings.Join(paragraphs, "\n\n"), max(1, width))
	return m.numberLines(out)
}

func (m pagerModel) numberLines(out string) string {
	if !m.common.cfg.ShowLineNumbers {
		return out
	}

	trunc := lipgloss.NewStyle().MaxWidth(m.viewport.Width - lineNumberWidth).Render
	lines := strings.Split(out, "\n")

	var content strings.Builder
	for i, s := range lines {
		content.WriteString(lineNumberStyle(fmt.Sprintf("%"+fmt.Sprint(lineNumberWidth)+"d", i+1)))
		content.WriteString(trunc(s))

		// don't add an artificial newline after the last split
		if i+1 < len(lines) {
			content.WriteRune('\n')
		}
	}
	return content.String()
}

func (m pagerModel) View(narration string) string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")
	fmt.Fprint(&b, truncate.StringWithTail(narration, uint(max(0, m.common.width)), ellipsis)+"\n") //nolint:gosec

	// Footer
	m.statusBarView(&b)

	if m.showHelp {
		fmt.Fprint(&b, "\n"+m.helpView())
	}

	return b.String()
}

func (m pagerModel) statusBarView(b *strings.Builder) {
	const (
		minPercent               float64 = 0.0
		maxPercent               float64 = 1.0
		percentToStringMagnitude float64 = 100.0
	)

	showStatusMessage := m.state == pagerStateStatusMessage
	style := statusBarNoteStyle
	if showStatusMessage {
		style = statusBarMessageStyle
		if m.statusMessage.isError {
			style = statusBarErrorStyle
		}
	}

	logo := logoView()

	// Scroll percent
	percent := math.Max(minPercent, math.Min(maxPercent, m.viewport.ScrollPercent()))
	scrollPercent := statusBarScrollPosStyle(fmt.Sprintf(" %3.f%% ", percent*percentToStringMagnitude))

	// "Help" note
	helpNote := statusBarHelpStyle(" ? Help ")

	// Note
	note := m.common.note
	if showStatusMessage {
		note = m.statusMessage.message
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	note = style(note)

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := style(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		scrollPercent,
		helpNote,
	)
}

func (m pagerModel) helpView() string {
	m.help.ShowAll = true
	s := "\n" + m.help.View(keys) + "\n"
	s = indent(s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(s, "\n")
		for i := 0; i < len(lines); i++ {
			l := ansi.PrintableRuneWidth(lines[i])
			n := max(m.common.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}

		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}

// COMMANDS

// loadPage reads a page in the background. Markdown pages keep their source
// for glamour; other pages become normalized paragraphs.
func loadPage(doc *document.Document, number int) tea.Cmd {
	return func() tea.Msg {
		p := page{number: number}
		if md, ok := doc.Markdown(number); ok {
			p.markdown = md
			return pageLoadedMsg{page: p}
		}

		runs, err := doc.PageRuns(context.Background(), number)
		if err != nil {
			return pageLoadedMsg{page: p, err: err}
		}
		for _, run := range runs {
			if text := cache.Normalize([]string{run}); text != "" {
				p.paragraphs = append(p.paragraphs, text)
			}
		}
		return pageLoadedMsg{page: p}
	}
}

func renderWithGlamour(m pagerModel, number int, md string) tea.Cmd {
	return func() tea.Msg {
		s, err := glamourRender(m, md)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return errMsg{err}
		}
		return contentRenderedMsg{number: number, content: s}
	}
}

func glamourRender(m pagerModel, markdown string) (string, error) {
	options := []glamour.TermRendererOption{
		utils.GlamourStyle(m.common.cfg.GlamourStyle),
		glamour.WithWordWrap(m.wrapWidth()),
	}
	if m.common.cfg.PreserveNewLines {
		options = append(options, glamour.WithPreservedNewLines())
	}

	r, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}

	return m.numberLines(out), nil
}

// copyPage copies the normalized text of a page, the same text that is read
// aloud, to the clipboard.
func copyPage(texts tts.TextSource, doc tts.Document, number int) tea.Cmd {
	return func() tea.Msg {
		text, err := texts.PageText(context.Background(), doc, number)
		if err != nil {
			return copiedMsg{err}
		}
		// Copy using OSC 52
		termenv.Copy(text)
		// Copy using native system clipboard
		_ = clipboard.WriteAll(text)
		return copiedMsg{}
	}
}
