package ui

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/multilogue/internal/display"
	"github.com/five82/multilogue/internal/files"
	"github.com/five82/multilogue/internal/prefs"
	"github.com/five82/multilogue/internal/render"
	"github.com/five82/multilogue/internal/session"
	"github.com/five82/multilogue/internal/store"
)

// User-facing alert texts.
const (
	alertEditFailed  = "Could not switch to edit mode due to a content error."
	alertEmptyDialog = "Dialogue is empty. Nothing to save."
	alertOpenFailed  = "Error opening file: "
	alertSaveFailed  = "Could not save file: "
	alertStoreFailed = "Could not save the dialogue: "
	alertReadFailed  = "Could not read the dialogue: "
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Reconciler *display.Reconciler
	Renderer   *render.Plato
	Flow       *session.Flow
	// Snapshot reports store metadata for the header. Optional.
	Snapshot  func() store.Snapshot
	ThemeName string
	PrefsPath string
	Prefs     prefs.Prefs
	LogPath   string
	Logger    *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Collaborators
	ctx        context.Context
	reconciler *display.Reconciler
	renderer   *render.Plato
	flow       *session.Flow
	snapshot   func() store.Snapshot
	logger     *slog.Logger
	prefsPath  string
	prefs      prefs.Prefs
	logPath    string

	// UI state
	keys   keyMap
	theme  Theme
	width  int
	height int
	ready  bool

	// Dialogue state, as last reported by the reconciler
	state display.State
	// transition numbers reconciler calls; older results are dropped
	transition int

	view       viewport.Model
	editor     textarea.Model
	picker     filepicker.Model
	pickerOpen bool // picker shown over Viewing or Editing

	popup      *session.Popup
	tokenInput textinput.Model

	modal    Modal
	showHelp bool

	showLogs bool
	logView  viewport.Model

	status    logRecordMsg
	statusSeq int

	running int // machine runs in flight
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	theme := GetTheme(themeName)
	if opts.Renderer != nil {
		opts.Renderer.SetPalette(theme.Palette())
	}

	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.Placeholder = "Socrates: What is a dialogue?"

	token := textinput.New()
	token.EchoMode = textinput.EchoPassword
	token.EchoCharacter = '•'
	token.CharLimit = 0
	token.Placeholder = "API token"
	token.Prompt = "› "

	m := Model{
		ctx:        ctx,
		reconciler: opts.Reconciler,
		renderer:   opts.Renderer,
		flow:       opts.Flow,
		snapshot:   opts.Snapshot,
		logger:     logger,
		prefsPath:  prefsPath,
		prefs:      opts.Prefs,
		logPath:    opts.LogPath,
		keys:       DefaultKeyMap(),
		theme:      theme,
		view:       viewport.New(0, 0),
		logView:    viewport.New(0, 0),
		editor:     editor,
		popup:      &session.Popup{},
		tokenInput: token,
	}
	m.picker = m.newPicker()
	m.applyTheme()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		reconcileCmd(m.reconciler, m.transition),
		m.picker.Init(),
		headerTickCmd(HeaderRefreshInterval),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		if m.state.Mode == display.Viewing {
			cmd := m.reconcile()
			return m, cmd
		}
		return m, nil

	case tea.FocusMsg:
		cmd := m.reconcile()
		return m, cmd

	case storageChangedMsg:
		m.logger.Debug("storage changed, reconciling")
		cmd := m.reconcile()
		return m, cmd

	case stateMsg:
		return m.handleState(msg)

	case fileLoadedMsg:
		return m.handleFileLoaded(msg)

	case currentTextMsg:
		return m.handleCurrentText(msg)

	case saveAsConfirmedMsg:
		return m, saveFileCmd(msg.dir, msg.name, msg.text)

	case fileSavedMsg:
		return m.handleFileSaved(msg)

	case runCommandMsg:
		m.running++
		return m, runMachineCmd(m.ctx, m.flow, false)

	case machineDoneMsg:
		if m.running > 0 {
			m.running--
		}
		if msg.err != nil {
			m.logger.Debug("machine run ended", "error", msg.err)
		}
		return m, nil

	case showTokenPopupMsg:
		return m.openTokenPopup()

	case alertMsg:
		m.modal = newAlertModal(msg.text)
		return m, nil

	case logRecordMsg:
		cmd := m.setStatus(msg.Summary, msg.Level)
		return m, cmd

	case logRecordFadeMsg:
		if msg.seq == m.statusSeq {
			m.status = logRecordMsg{}
		}
		return m, nil

	case logsLoadedMsg:
		m.fillLogView(msg)
		return m, nil

	case headerTickMsg:
		return m, headerTickCmd(HeaderRefreshInterval)
	}

	// Directory listings and other widget-internal messages.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	cmds = append(cmds, cmd)
	if m.state.Mode == display.Editing {
		m.editor, cmd = m.editor.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.popup.Visible() {
		m.tokenInput, cmd = m.tokenInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	if m.popup.Visible() {
		return m.renderTokenPopup()
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showLogs {
		return m.renderLogs()
	}
	return m.renderMain()
}

// handleKey routes a key to the topmost layer: modal, token popup, help,
// log overlay, picker, then the dialogue area.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.popup.Visible() {
		return m.handlePopupKey(msg)
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.showLogs {
		if key.Matches(msg, m.keys.Escape, m.keys.Logs) {
			m.showLogs = false
			return m, nil
		}
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Run):
		m.running++
		return m, runMachineCmd(m.ctx, m.flow, true)
	case key.Matches(msg, m.keys.SaveToFile):
		return m, currentTextCmd(m.reconciler)
	case key.Matches(msg, m.keys.Logs):
		m.showLogs = true
		return m, loadLogsCmd(m.logPath)
	case key.Matches(msg, m.keys.OpenFile):
		if m.state.Mode == display.Picking && !m.pickerOpen {
			return m, nil
		}
		return m.openPicker()
	}

	if m.pickerOpen || m.state.Mode == display.Picking {
		return m.handlePickerKey(msg)
	}

	if m.state.Mode == display.Editing {
		if key.Matches(msg, m.keys.Save) {
			cmd := m.save(m.editor.Value())
			return m, cmd
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	return m.handleViewingKey(msg)
}

func (m Model) handleViewingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Edit):
		cmd := m.enterEdit()
		return m, cmd
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		return m.cycleTheme()
	case key.Matches(msg, m.keys.Top):
		m.view.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.view.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

// handleMouse turns a left click on the rendered dialogue into an edit
// gesture; the wheel scrolls it.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.state.Mode != display.Viewing || m.overlayActive() {
		return m, nil
	}
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if msg.Y >= headerHeight && msg.Y < m.height-statusHeight {
			cmd := m.enterEdit()
			return m, cmd
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m Model) overlayActive() bool {
	return m.modal != nil || m.popup.Visible() || m.showHelp || m.showLogs || m.pickerOpen
}

// Reconciler transitions. Each call takes the next transition number so
// that a result finishing after a later request is not applied over it.

func (m *Model) reconcile() tea.Cmd {
	m.transition++
	return reconcileCmd(m.reconciler, m.transition)
}

func (m *Model) enterEdit() tea.Cmd {
	m.transition++
	return enterEditCmd(m.reconciler, m.transition)
}

func (m *Model) save(text string) tea.Cmd {
	m.transition++
	return saveCmd(m.reconciler, m.transition, text)
}

func (m *Model) loadFile(path string) tea.Cmd {
	m.transition++
	return loadFileCmd(m.reconciler, m.transition, path)
}

func (m Model) stale(seq int) bool {
	return seq < m.transition
}

// handleState applies a reconciler result. Failed transitions keep the
// previous state and are alerted. Superseded results are dropped.
func (m Model) handleState(msg stateMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("dialogue transition failed", "op", msg.op.String(), "error", msg.err)
		switch msg.op {
		case opEdit:
			m.modal = newAlertModal(alertEditFailed)
		case opSave:
			m.modal = newAlertModal(alertStoreFailed + msg.err.Error())
		default:
			m.modal = newAlertModal(alertReadFailed + msg.err.Error())
		}
		return m, nil
	}
	if m.stale(msg.seq) {
		m.logger.Debug("dropping superseded transition", "op", msg.op.String(), "seq", msg.seq, "latest", m.transition)
		return m, nil
	}
	cmd := m.applyState(msg.state)
	return m, cmd
}

func (m *Model) applyState(st display.State) tea.Cmd {
	prev := m.state.Mode
	m.state = st

	switch st.Mode {
	case display.Viewing:
		m.editor.Blur()
		m.view.SetContent(st.View)
		m.view.GotoBottom()
	case display.Editing:
		m.pickerOpen = false
		m.editor.SetValue(st.Buffer)
		if m.popup.Visible() {
			return nil
		}
		return m.editor.Focus()
	case display.Picking:
		m.editor.Reset()
		m.editor.Blur()
		m.view.SetContent("")
		if prev != display.Picking {
			return m.resetPicker()
		}
	}
	return nil
}

func (m Model) handleFileLoaded(msg fileLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, files.ErrCancelled) {
			return m, nil
		}
		m.logger.Error("open file", "path", msg.path, "error", msg.err)
		m.modal = newAlertModal(alertOpenFailed + msg.err.Error())
		return m, nil
	}
	m.rememberDir(filepath.Dir(msg.path))
	m.logger.Info("dialogue loaded from file", "path", msg.path, "bytes", msg.size)
	var cmd tea.Cmd
	if m.stale(msg.seq) {
		m.logger.Debug("dropping superseded transition", "op", "load", "seq", msg.seq, "latest", m.transition)
	} else {
		cmd = m.applyState(msg.state)
	}
	status := m.setStatus("Loaded "+files.Describe(msg.path, msg.size), slog.LevelInfo)
	return m, tea.Batch(cmd, status)
}

func (m Model) handleCurrentText(msg currentTextMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.modal = newAlertModal(alertSaveFailed + msg.err.Error())
		return m, nil
	}
	if strings.TrimSpace(msg.text) == "" {
		m.logger.Info("save to file skipped, dialogue is empty")
		m.modal = newAlertModal(alertEmptyDialog)
		return m, nil
	}
	m.modal = newSaveAsModal(m.prefs.StartDir(), files.SuggestedName, msg.text)
	return m, textinput.Blink
}

func (m Model) handleFileSaved(msg fileSavedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, files.ErrCancelled) {
			return m, nil
		}
		m.logger.Error("save file", "path", msg.path, "error", msg.err)
		m.modal = newAlertModal(alertSaveFailed + msg.err.Error())
		return m, nil
	}
	m.rememberDir(filepath.Dir(msg.path))
	m.logger.Info("dialogue saved to file", "path", msg.path, "bytes", msg.size)
	status := m.setStatus("Saved "+files.Describe(msg.path, msg.size), slog.LevelInfo)
	cmd := m.reconcile()
	return m, tea.Batch(status, cmd)
}

// Token popup

func (m Model) openTokenPopup() (tea.Model, tea.Cmd) {
	m.popup.Show()
	m.tokenInput.Reset()
	m.editor.Blur()
	return m, m.tokenInput.Focus()
}

func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.flow.CancelPopup(m.popup)
		cmd := m.closeTokenPopup()
		return m, cmd
	case key.Matches(msg, m.keys.Confirm):
		if err := m.flow.SubmitPopupToken(m.popup, m.tokenInput.Value()); err != nil {
			m.tokenInput.Reset()
			return m, nil
		}
		cmd := m.closeTokenPopup()
		return m, cmd
	}
	var cmd tea.Cmd
	m.tokenInput, cmd = m.tokenInput.Update(msg)
	m.popup.SetInput(m.tokenInput.Value())
	return m, cmd
}

func (m *Model) closeTokenPopup() tea.Cmd {
	m.tokenInput.Reset()
	m.tokenInput.Blur()
	if m.state.Mode == display.Editing {
		return m.editor.Focus()
	}
	return nil
}

// Status bar

func (m *Model) setStatus(summary string, level slog.Level) tea.Cmd {
	m.statusSeq++
	m.status = logRecordMsg{Summary: summary, Level: level}
	return fadeCmd(m.statusSeq)
}

// Theme

func (m Model) cycleTheme() (tea.Model, tea.Cmd) {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.applyTheme()
	m.prefs.Theme = m.theme.Name
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save preferences", "error", err)
	}
	if m.state.Mode == display.Viewing {
		cmd := m.reconcile()
		return m, cmd
	}
	return m, nil
}

func (m *Model) applyTheme() {
	if m.renderer != nil {
		m.renderer.SetPalette(m.theme.Palette())
	}
	styles := m.theme.Styles()

	focused, blurred := textarea.DefaultStyles()
	focused.CursorLine = styles.Text
	focused.Text = styles.Text
	focused.Placeholder = styles.FaintText
	focused.Prompt = styles.AccentText
	blurred.Text = styles.MutedText
	blurred.Placeholder = styles.FaintText
	blurred.Prompt = styles.FaintText
	m.editor.FocusedStyle = focused
	m.editor.BlurredStyle = blurred

	m.tokenInput.PromptStyle = styles.AccentText
	m.tokenInput.TextStyle = styles.Text
	m.tokenInput.PlaceholderStyle = styles.FaintText

	m.picker.Styles = m.pickerStyles()
}

// Layout

func (m Model) contentWidth() int {
	return min(m.width, LayoutMaxContentWidth)
}

func (m Model) contentHeight() int {
	return max(m.height-headerHeight-statusHeight, 1)
}

func (m *Model) resize() {
	w, h := m.contentWidth(), m.contentHeight()
	if m.renderer != nil {
		m.renderer.SetWidth(w - 2)
	}
	m.view.Width = w
	m.view.Height = h
	m.editor.SetWidth(w)
	m.editor.SetHeight(h)
	m.logView.Width = m.width - 4
	m.logView.Height = max(m.height-6, 1)
	m.tokenInput.Width = modalWidth - 10
	m.sizePicker()
}

func (m *Model) rememberDir(dir string) {
	if dir == "" || dir == m.prefs.LastDir {
		return
	}
	m.prefs.LastDir = dir
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save preferences", "error", err)
	}
}

func (op stateOp) String() string {
	switch op {
	case opEdit:
		return "edit"
	case opSave:
		return "save"
	default:
		return "reconcile"
	}
}

// NewProgram builds the Bubble Tea program without starting it, so callers
// can attach it to the bridge and log handler before calling Run.
func NewProgram(opts Options, altScreen bool) *tea.Program {
	progOpts := []tea.ProgramOption{
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	}
	if altScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	return tea.NewProgram(New(opts), progOpts...)
}
