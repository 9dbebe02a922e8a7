// Package ui provides the interactive text-to-speech form.
package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/utts/internal/tts"
	"github.com/dgnsrekt/utts/utils"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const (
	ellipsis = "…"

	statusReady        = "Ready"
	statusSynthesizing = "Synthesizing..."
	statusPlaying      = "Playing..."
	statusSaving       = "Saving..."
	statusDone         = "Done"
	statusSaved        = "Saved"
	statusError        = "Error"

	savedSpeedNote = "Saved file was generated with normal speed. To play back at a different speed use Play, which requires 'mpv' for variable-speed playback."
)

// busyState is the work in flight. Controls are disabled unless idle.
type busyState int

const (
	idle busyState = iota
	busySynthesizing
	busyPlaying
	busySaving
)

func (s busyState) String() string {
	return map[busyState]string{
		idle:             "idle",
		busySynthesizing: "synthesizing",
		busyPlaying:      "playing",
		busySaving:       "saving",
	}[s]
}

// promptKind is the file path prompt currently open, if any.
type promptKind int

const (
	promptNone promptKind = iota
	promptSave
	promptLoad
)

// dialog is a blocking message dismissed with enter or esc.
type dialog struct {
	title   string
	body    string
	isError bool
}

type model struct {
	cfg     Config
	speaker Speaker
	player  Player

	ctx    context.Context
	cancel context.CancelFunc

	textarea textarea.Model
	input    textinput.Model
	spinner  spinner.Model

	engines   []tts.EngineKind
	languages []string
	speeds    []float64
	engine    int
	language  int
	speed     int

	busy    busyState
	prompt  promptKind
	dialogs []dialog
	status  string

	width  int
	height int
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, speaker Speaker, player Player) *tea.Program {
	log.Debug("Starting utts", "engine", cfg.Engine, "lang", cfg.Language, "speed", cfg.Speed)

	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, speaker, player), opts...)
}

func newModel(cfg Config, speaker Speaker, player Player) model {
	ta := textarea.New()
	ta.Placeholder = "Enter text below..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Focus()

	ti := textinput.New()
	ti.Prompt = "> "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(fuchsia)

	ctx, cancel := context.WithCancel(context.Background())

	m := model{
		cfg:      cfg,
		speaker:  speaker,
		player:   player,
		ctx:      ctx,
		cancel:   cancel,
		textarea: ta,
		input:    ti,
		spinner:  sp,
		engines:  tts.Engines,
		status:   statusReady,
	}
	m.initSelectors()
	return m
}

// initSelectors fills the selector options and picks the configured values,
// adding them to the options when missing.
func (m *model) initSelectors() {
	if kind, err := tts.ParseEngineKind(m.cfg.Engine); err == nil {
		m.engine = max(slices.Index(m.engines, kind), 0)
	}

	m.languages = slices.Clone(m.cfg.Languages)
	if len(m.languages) == 0 {
		m.languages = []string{tts.DefaultLanguage}
	}
	lang := m.cfg.Language
	if lang == "" {
		lang = tts.DefaultLanguage
	}
	if !slices.Contains(m.languages, lang) {
		m.languages = append([]string{lang}, m.languages...)
	}
	m.language = slices.Index(m.languages, lang)

	m.speeds = slices.Clone(m.cfg.Speeds)
	speed := m.cfg.Speed
	if speed <= 0 {
		speed = tts.DefaultSpeed
	}
	for _, s := range []float64{tts.DefaultSpeed, speed} {
		if !slices.Contains(m.speeds, s) {
			m.speeds = append(m.speeds, s)
		}
	}
	slices.Sort(m.speeds)
	m.speed = slices.Index(m.speeds, speed)
}

func (m model) selectedEngine() tts.EngineKind { return m.engines[m.engine] }
func (m model) selectedLanguage() string      { return m.languages[m.language] }
func (m model) selectedSpeed() float64        { return m.speeds[m.speed] }

// text returns the trimmed form contents, "" when blank.
func (m model) text() string {
	return strings.TrimSpace(m.textarea.Value())
}

func (m model) request(text, outputPath string) tts.Request {
	return tts.Request{
		Text:       text,
		Engine:     m.selectedEngine(),
		Language:   m.selectedLanguage(),
		OutputPath: outputPath,
		Speed:      m.selectedSpeed(),
	}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Ctrl+C always quits, even while busy.
		if msg.String() == "ctrl+c" {
			m.cancel()
			return m, tea.Quit
		}
		if len(m.dialogs) > 0 {
			switch msg.String() {
			case "enter", "esc":
				m.dialogs = m.dialogs[1:]
			}
			return m, nil
		}
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		if m.busy != idle {
			return m, nil
		}

		switch msg.String() {
		case "ctrl+p":
			return m.play()
		case "ctrl+s":
			return m.openPrompt(promptSave)
		case "ctrl+o":
			return m.openPrompt(promptLoad)
		case "ctrl+v":
			return m, pasteCmd
		case "ctrl+e":
			m.engine = (m.engine + 1) % len(m.engines)
			return m, nil
		case "ctrl+l":
			m.language = (m.language + 1) % len(m.languages)
			return m, nil
		case "ctrl+r":
			m.speed = (m.speed + 1) % len(m.speeds)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.busy == idle {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case synthesizedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.busy = busyPlaying
		m.status = statusPlaying
		return m, playCmd(m.player, msg.path, msg.speed)

	case playbackStartedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		m.dialogs = append(m.dialogs, msg.notices...)
		m.status = statusDone
		return m, m.setIdle()

	case savedMsg:
		if msg.err != nil {
			return m.fail(msg.err)
		}
		body := "Saved to " + msg.path
		if msg.size > 0 {
			body += " (" + humanize.Bytes(uint64(msg.size)) + ")" //nolint:gosec
		}
		m.dialogs = append(m.dialogs, dialog{title: "Success", body: body})
		if msg.engine == tts.EngineCloud && msg.speed != 1.0 {
			m.dialogs = append(m.dialogs, dialog{title: "Note", body: savedSpeedNote})
		}
		m.status = statusSaved
		return m, m.setIdle()

	case pastedMsg:
		// the text field stays frozen until the running action completes
		if m.busy != idle {
			return m, nil
		}
		if msg.err != nil {
			m.dialogs = append(m.dialogs, dialog{title: "Error", body: msg.err.Error(), isError: true})
			return m, nil
		}
		m.textarea.SetValue(msg.text)
		return m, nil
	}

	var cmd tea.Cmd
	if m.prompt != promptNone {
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	if m.busy != idle || len(m.dialogs) > 0 {
		return m, nil
	}

	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// play synthesizes the form text to a temp file and then plays it.
func (m model) play() (tea.Model, tea.Cmd) {
	text := m.text()
	if text == "" {
		return m, nil
	}
	req := m.request(text, "")
	m.setBusy(busySynthesizing, statusSynthesizing)
	return m, tea.Batch(m.spinner.Tick, synthesizeCmd(m.ctx, m.speaker, req))
}

func (m model) openPrompt(kind promptKind) (tea.Model, tea.Cmd) {
	if kind == promptSave && m.text() == "" {
		return m, nil
	}
	m.prompt = kind
	m.input.Reset()
	switch kind {
	case promptSave:
		m.input.Placeholder = "output" + m.cfg.SaveExt
	case promptLoad:
		m.input.Placeholder = "file.txt"
	}
	m.textarea.Blur()
	m.input.Focus()
	return m, textinput.Blink
}

func (m model) closePrompt() (model, tea.Cmd) {
	m.prompt = promptNone
	m.input.Blur()
	m.textarea.Focus()
	return m, textarea.Blink
}

func (m model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "esc":
		m, cmd = m.closePrompt()
		return m, cmd

	case "enter":
		kind := m.prompt
		path := utils.ExpandPath(strings.TrimSpace(m.input.Value()))
		m, cmd = m.closePrompt()
		if path == "" {
			return m, cmd
		}
		switch kind {
		case promptSave:
			return m.save(path)
		case promptLoad:
			return m.load(path), cmd
		}
		return m, cmd
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) save(path string) (tea.Model, tea.Cmd) {
	text := m.text()
	if text == "" {
		return m, nil
	}
	if !utils.HasExt(path) {
		path += m.cfg.SaveExt
	}
	req := m.request(text, path)
	m.setBusy(busySaving, statusSaving)
	return m, tea.Batch(m.spinner.Tick, saveCmd(m.ctx, m.speaker, req))
}

// load replaces the form text with the contents of path.
func (m model) load(path string) model {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("Unable to load text", "path", path, "error", err)
		m.dialogs = append(m.dialogs, dialog{title: "Error", body: err.Error(), isError: true})
		return m
	}
	m.textarea.SetValue(string(data))
	m.status = "Loaded " + filepath.Base(path)
	return m
}

func (m *model) setBusy(state busyState, status string) {
	m.busy = state
	m.status = status
	m.textarea.Blur()
}

func (m *model) setIdle() tea.Cmd {
	m.busy = idle
	m.textarea.Focus()
	return textarea.Blink
}

func (m model) fail(err error) (tea.Model, tea.Cmd) {
	log.Debug("Action failed", "state", m.busy, "error", err)
	m.dialogs = append(m.dialogs, dialog{title: "Error", body: err.Error(), isError: true})
	m.status = statusError
	return m, m.setIdle()
}

func (m *model) setSize(w, h int) {
	m.width = w
	m.height = h
	m.textarea.SetWidth(max(w-2, 10))
	// header, prompt line, status bar and help
	m.textarea.SetHeight(max(h-5, 3))
	m.input.Width = max(w-4, 10)
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")

	if len(m.dialogs) > 0 {
		b.WriteString(m.dialogView(m.dialogs[0]))
	} else {
		b.WriteString(m.textarea.View())
	}
	b.WriteString("\n")

	switch m.prompt {
	case promptSave:
		b.WriteString("Save to: " + m.input.View())
	case promptLoad:
		b.WriteString("Load from: " + m.input.View())
	}
	b.WriteString("\n")

	b.WriteString(m.statusBarView())
	b.WriteString("\n")
	b.WriteString(m.helpView())

	return b.String()
}

func (m model) headerView() string {
	selector := func(label, value string) string {
		return selectorLabelStyle(label+": ") + selectorValueStyle(value)
	}
	return strings.Join([]string{
		logoStyle("utts"),
		selector("Engine", m.selectedEngine().String()),
		selector("Lang", m.selectedLanguage()),
		selector("Speed", tts.FormatSpeed(m.selectedSpeed())+"x"),
	}, "  ")
}

func (m model) dialogView(d dialog) string {
	style := dialogStyle
	if d.isError {
		style = dialogErrorStyle
	}
	width := max(min(m.width-4, 70), 20)
	box := style.Width(width).Render(dialogTitleStyle(d.title) + "\n\n" + d.body + "\n\n" + helpStyle("enter: ok"))
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, max(m.height-4, lipgloss.Height(box)), lipgloss.Center, lipgloss.Center, box)
}

func (m model) statusBarView() string {
	status := m.status
	if m.busy != idle {
		status = m.spinner.View() + " " + status
	}

	var msg string
	if m.status == statusError {
		msg = statusBarErrorStyle(status)
	} else {
		msg = statusBarMessageStyle(status)
	}

	note := fmt.Sprintf(" %d chars", len([]rune(m.textarea.Value())))
	if m.width > 0 {
		room := max(m.width-lipgloss.Width(msg), 0)
		note = runewidth.Truncate(note, room, ellipsis)
		note = statusBarStyle.Width(room).Render(note)
	} else {
		note = statusBarStyle.Render(note)
	}
	return msg + note
}

func (m model) helpView() string {
	help := "ctrl+p play • ctrl+s save • ctrl+o load • ctrl+v paste • ctrl+e engine • ctrl+l lang • ctrl+r speed • ctrl+c quit"
	if m.width > 0 {
		help = runewidth.Truncate(help, m.width, ellipsis)
	}
	return helpStyle(help)
}
