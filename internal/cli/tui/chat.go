package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/cli/client"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/conversation"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain/entity"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/extract"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/resolve"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/stream"
)

// UI configuration constants
const (
	defaultInputWidth     = 100
	defaultViewportWidth  = 100
	defaultViewportHeight = 30
	defaultWindowWidth    = 100
	defaultWindowHeight   = 40
	inputCharLimit        = 4000
	inputHeightReserved   = 2
	statusHeightReserved  = 3
	minContentHeight      = 10
)

// Style definitions
var (
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	productStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// streamState represents the state of a streaming turn
type streamState int

const (
	streamIdle streamState = iota
	streamStreaming
)

// ChatProgram encapsulates the chat TUI program
type ChatProgram struct {
	model chatModel
}

// NewChatProgram creates a new chat program instance
func NewChatProgram(apiClient *client.APIClient, userID string) *ChatProgram {
	return &ChatProgram{model: initialModel(apiClient, userID)}
}

// Run starts the chat TUI program
func (p *ChatProgram) Run() error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// chatModel is the Bubble Tea model containing all chat interface state
type chatModel struct {
	// Dependencies
	apiClient *client.APIClient
	userID    string

	// UI components
	input       textinput.Model
	contentView viewport.Model

	// Completed turns, already rendered
	history *strings.Builder

	// In-flight turn state, advanced by the reducer
	state  streamState
	turn   conversation.State
	cancel context.CancelFunc

	// Streaming data channels
	events <-chan stream.Event
	errs   <-chan error

	// Error state
	err error

	// Window dimensions
	width  int
	height int
}

// initialModel creates the initial chat model
func initialModel(apiClient *client.APIClient, userID string) chatModel {
	input := textinput.New()
	input.Placeholder = ""
	input.Focus()
	input.CharLimit = inputCharLimit
	input.Width = defaultInputWidth
	input.Prompt = ""
	input.TextStyle = lipgloss.NewStyle()
	input.PromptStyle = lipgloss.NewStyle()

	contentViewport := viewport.New(defaultViewportWidth, defaultViewportHeight)
	contentViewport.SetContent("")

	return chatModel{
		apiClient:   apiClient,
		userID:      userID,
		input:       input,
		contentView: contentViewport,
		state:       streamIdle,
		history:     &strings.Builder{},
		width:       defaultWindowWidth,
		height:      defaultWindowHeight,
	}
}

// Init initializes the model (Bubble Tea interface)
func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

// Message type definitions
type (
	streamInitMsg struct {
		events <-chan stream.Event
		errs   <-chan error
	}
	streamEventMsg struct{ event stream.Event }
	streamErrMsg   struct{ err error }
	streamDoneMsg  struct{}
	productsMsg    struct{ products []entity.Product }
)

// Update processes messages and updates the model (Bubble Tea interface)
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyPress(msg)...)

	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)

	case streamInitMsg:
		m.events = msg.events
		m.errs = msg.errs
		cmds = append(cmds, waitForEvent(m.events, m.errs))

	case streamEventMsg:
		m.turn = conversation.Apply(m.turn, msg.event)
		m.refreshContent()
		cmds = append(cmds, waitForEvent(m.events, m.errs))

	case streamErrMsg:
		m.turn = conversation.Finish(m.turn, msg.err)
		m.finishTurn()

	case streamDoneMsg:
		m.turn = conversation.Finish(m.turn, nil)
		if cmd := m.resolveProducts(); cmd != nil {
			cmds = append(cmds, cmd)
		} else {
			m.finishTurn()
		}

	case productsMsg:
		m.turn.Message.Products = msg.products
		m.finishTurn()
	}

	if m.state != streamStreaming {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m *chatModel) handleKeyPress(msg tea.KeyMsg) []tea.Cmd {
	var cmds []tea.Cmd

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		// Abort any in-flight turn before leaving.
		if m.cancel != nil {
			m.cancel()
		}
		cmds = append(cmds, tea.Quit)

	case tea.KeyEnter:
		if m.state != streamStreaming {
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				cmds = append(cmds, m.startTurn(text))
			}
		}

	case tea.KeyUp:
		m.contentView.LineUp(1)

	case tea.KeyDown:
		m.contentView.LineDown(1)

	case tea.KeyPgUp:
		m.contentView.ViewUp()

	case tea.KeyPgDown:
		m.contentView.ViewDown()
	}

	return cmds
}

// handleWindowResize handles window size changes
func (m *chatModel) handleWindowResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	contentHeight := msg.Height - inputHeightReserved - statusHeightReserved
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}

	m.contentView.Width = msg.Width
	m.contentView.Height = contentHeight
	m.input.Width = msg.Width - 3

	m.refreshContent()
}

// startTurn begins a new streaming turn.
func (m *chatModel) startTurn(text string) tea.Cmd {
	m.input.Reset()
	m.err = nil

	m.history.WriteString("\n")
	m.history.WriteString(boldStyle.Render("You"))
	m.history.WriteString("\n")
	m.history.WriteString(text)
	m.history.WriteString("\n\n")

	m.turn = conversation.NewState(uuid.New().String(), time.Now())
	m.state = streamStreaming
	m.refreshContent()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	apiClient := m.apiClient
	userID := m.userID
	return func() tea.Msg {
		events, errs, err := apiClient.ChatStream(ctx, text, userID, "", "")
		if err != nil {
			return streamErrMsg{err: err}
		}
		return streamInitMsg{events: events, errs: errs}
	}
}

// waitForEvent waits for the next stream event. The producer closes both
// channels when it finishes, so only the event channel's closure signals
// done; buffered events always win over the closed error channel.
func waitForEvent(events <-chan stream.Event, errs <-chan error) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-events:
			if !ok {
				return finishStream(errs)
			}
			return streamEventMsg{event: ev}
		default:
		}
		select {
		case ev, ok := <-events:
			if !ok {
				return finishStream(errs)
			}
			return streamEventMsg{event: ev}
		case err, ok := <-errs:
			if ok && err != nil {
				return streamErrMsg{err: err}
			}
			// Closed error channel means the stream ended. Trailing
			// events may still sit in the buffer.
			ev, ok := <-events
			if !ok {
				return finishStream(errs)
			}
			return streamEventMsg{event: ev}
		}
	}
}

// finishStream reports a transport error left behind by the producer,
// or done when the stream ended cleanly.
func finishStream(errs <-chan error) tea.Msg {
	select {
	case err, ok := <-errs:
		if ok && err != nil {
			return streamErrMsg{err: err}
		}
	default:
	}
	return streamDoneMsg{}
}

// resolveProducts returns a command fetching full records for products the
// assistant's tool results referenced, or nil when there are none.
func (m *chatModel) resolveProducts() tea.Cmd {
	ids := extract.ProductIDs(m.turn.Message.Steps)
	if len(ids) == 0 {
		return nil
	}

	apiClient := m.apiClient
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		resolver := resolve.New(apiClient, nil)
		return productsMsg{products: resolver.Resolve(ctx, ids)}
	}
}

// finishTurn renders the completed turn into history and returns to idle.
func (m *chatModel) finishTurn() {
	m.history.WriteString(m.renderTurn(m.turn))
	m.state = streamIdle
	m.events, m.errs = nil, nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.turn = conversation.State{}
	m.refreshContent()
}

// renderTurn renders one assistant turn: thought trace, reply, products.
func (m *chatModel) renderTurn(turn conversation.State) string {
	var b strings.Builder

	b.WriteString(accentStyle.Render("Assistant"))
	b.WriteString("\n")

	for _, step := range turn.Message.Steps {
		switch step.Kind {
		case conversation.StepReasoning:
			b.WriteString(stepStyle.Render("∴ " + step.Text))
			b.WriteString("\n")
		case conversation.StepToolCall:
			label := fmt.Sprintf("⚒ %s(%s)", step.ToolID, formatParams(step.Params))
			if step.ResultsSet {
				label += dimStyle.Render(fmt.Sprintf(" → %d results", len(step.Results)))
			}
			b.WriteString(stepStyle.Render(label))
			b.WriteString("\n")
		}
	}
	if len(turn.Message.Steps) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(turn.Message.Content)
	b.WriteString("\n")

	if len(turn.Message.Products) > 0 {
		b.WriteString("\n")
		b.WriteString(productStyle.Render("Recommended gear"))
		b.WriteString("\n")
		for _, p := range turn.Message.Products {
			b.WriteString(fmt.Sprintf("  • %s — $%.2f", p.Title, p.Price))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderLiveTurn renders the in-flight turn below the history.
func (m *chatModel) renderLiveTurn() string {
	var b strings.Builder

	b.WriteString(accentStyle.Render("Assistant"))
	b.WriteString(dimStyle.Render(" " + statusLabel(m.turn.Message.Status)))
	b.WriteString("\n")

	for _, step := range m.turn.Message.Steps {
		switch step.Kind {
		case conversation.StepReasoning:
			b.WriteString(stepStyle.Render("∴ " + step.Text))
			b.WriteString("\n")
		case conversation.StepToolCall:
			label := fmt.Sprintf("⚒ %s(%s)", step.ToolID, formatParams(step.Params))
			if step.ResultsSet {
				label += dimStyle.Render(fmt.Sprintf(" → %d results", len(step.Results)))
			}
			b.WriteString(stepStyle.Render(label))
			b.WriteString("\n")
		}
	}

	if m.turn.Message.Content != "" {
		b.WriteString(m.turn.Message.Content)
		b.WriteString("\n")
	}

	return b.String()
}

func statusLabel(s conversation.Status) string {
	switch s {
	case conversation.StatusThinking:
		return "· thinking"
	case conversation.StatusWorking:
		return "· working"
	case conversation.StatusTyping:
		return "· typing"
	default:
		return ""
	}
}

// formatParams renders tool-call params compactly for the trace line.
func formatParams(params map[string]interface{}) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, params[k]))
	}
	if len(parts) > 2 {
		parts = parts[:2]
		parts = append(parts, "…")
	}
	return strings.Join(parts, ", ")
}

// refreshContent refreshes the display content
func (m *chatModel) refreshContent() {
	display := m.history.String()
	if m.state == streamStreaming {
		display += m.renderLiveTurn()
	}
	if m.err != nil {
		display += "\n" + errorStyle.Render(fmt.Sprintf("error: %v", m.err))
	}

	if m.width > 0 {
		display = m.wrapText(display, m.width)
	}

	m.contentView.SetContent(display)
	m.contentView.GotoBottom()
}

// wrapText applies auto-wrapping to text using display cell widths.
func (m *chatModel) wrapText(text string, maxWidth int) string {
	if maxWidth <= 10 {
		return text
	}

	lines := strings.Split(text, "\n")
	var result strings.Builder

	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.WriteString(m.wrapLine(line, maxWidth))
	}

	return result.String()
}

// wrapLine wraps a single line, handling wide runes correctly.
func (m *chatModel) wrapLine(line string, maxWidth int) string {
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	var currentLine strings.Builder
	currentWidth := 0

	for _, r := range line {
		runeW := runewidth.RuneWidth(r)

		if currentWidth+runeW > maxWidth && currentWidth > 0 {
			result.WriteString(currentLine.String())
			result.WriteString("\n")
			currentLine.Reset()
			currentWidth = 0
		}

		currentLine.WriteRune(r)
		currentWidth += runeW
	}

	if currentLine.Len() > 0 {
		result.WriteString(currentLine.String())
	}

	return result.String()
}

// View renders the UI (Bubble Tea interface)
func (m chatModel) View() string {
	status := dimStyle.Render(fmt.Sprintf("Wayfinder trip planner • %s", m.userID))
	if m.turn.ConversationID != "" {
		status += dimStyle.Render(" • " + m.turn.ConversationID)
	}
	if m.state == streamStreaming {
		status += dimStyle.Render(" • streaming...")
	}

	content := m.contentView.View()

	var inputView string
	if m.state == streamStreaming {
		inputView = dimStyle.Render("> ") + dimStyle.Render("waiting for reply...")
	} else {
		inputView = promptStyle.Render("> ") + m.input.View()
	}

	help := ""
	if m.state != streamStreaming {
		help = dimStyle.Render("Enter send • ↑↓ scroll • Esc quit")
	}

	parts := []string{status, "", content, "", inputView}
	if help != "" {
		parts = append(parts, help)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
