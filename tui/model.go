// Package tui is an interactive study session built on Bubble Tea.
//
// Typing a question answers it from the active material. The commands
// "quiz [topic]", "progress" and "exit" generate a quiz, show progress and
// quit. While a quiz is open the next line is graded as its MCQ answer.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/poiesic/studybot/core"
)

// Session is the TUI-facing subset of the study assistant.
type Session interface {
	RAGAnswer(ctx context.Context, question string, topK int) (string, error)
	GenerateQuiz(ctx context.Context, topic string, topK int) (*core.Quiz, error)
	SubmitQuizAnswer(ctx context.Context, quiz *core.Quiz, choice string) (bool, error)
	TrackProgress(ctx context.Context) (core.Progress, error)
}

// Config holds display and retrieval settings for the session.
type Config struct {
	Title string
	// Topic is used by "quiz" when no topic is typed.
	Topic    string
	RAGTopK  int
	QuizTopK int
}

type answerMsg struct {
	question, answer string
}

type quizMsg struct {
	quiz *core.Quiz
}

type gradeMsg struct {
	quiz    *core.Quiz
	correct bool
}

type progressMsg struct {
	progress core.Progress
}

type errMsg struct {
	err error
}

// Model is the Bubble Tea model for a study session.
type Model struct {
	ctx      context.Context
	session  Session
	config   Config
	input    textinput.Model
	viewport viewport.Model
	history  []string
	status   string
	pending  *core.Quiz
	busy     bool
	ready    bool
}

// New creates a session model.
func New(ctx context.Context, session Session, config Config) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or type quiz, progress or exit"
	ti.Focus()
	ti.CharLimit = 0
	if config.Title == "" {
		config.Title = "Study Assistant"
	}
	return Model{
		ctx:      ctx,
		session:  session,
		config:   config,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   "Ready. Ask a question, or type quiz, progress or exit.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and result events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := transcriptBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, status, input line
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-bh)
		m.refresh()
		return m, nil

	case answerMsg:
		m.busy = false
		m.status = "Answered."
		m.push(FormatAnswer(msg.question, msg.answer))
		return m, nil

	case quizMsg:
		m.busy = false
		m.pending = msg.quiz
		m.status = "Type your answer to the MCQ (letter or option)."
		m.push(FormatQuiz(msg.quiz))
		return m, nil

	case gradeMsg:
		m.busy = false
		m.pending = nil
		m.status = "Quiz recorded."
		m.push(FormatGrade(msg.quiz, msg.correct))
		return m, nil

	case progressMsg:
		m.busy = false
		m.status = "Progress loaded."
		m.push(FormatProgress(msg.progress))
		return m, nil

	case errMsg:
		m.busy = false
		m.status = "Error: " + msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			line := strings.TrimSpace(m.input.Value())
			if line == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			return m.dispatch(line)
		}
		switch msg.String() {
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) dispatch(line string) (tea.Model, tea.Cmd) {
	command, arg, _ := strings.Cut(line, " ")
	command = strings.ToLower(command)

	if m.pending != nil && command != "exit" && command != "quit" {
		m.busy = true
		m.status = "Grading..."
		return m, m.grade(m.pending, line)
	}

	switch command {
	case "exit", "quit":
		return m, tea.Quit
	case "progress":
		m.busy = true
		m.status = "Loading progress..."
		return m, m.progress()
	case "quiz":
		topic := strings.TrimSpace(arg)
		if topic == "" {
			topic = m.config.Topic
		}
		if topic == "" {
			m.status = "Usage: quiz <topic>"
			return m, nil
		}
		m.busy = true
		m.status = fmt.Sprintf("Generating quiz on %q...", topic)
		return m, m.quiz(topic)
	}

	m.busy = true
	m.status = "Thinking..."
	return m, m.answer(line)
}

func (m Model) answer(question string) tea.Cmd {
	ctx, session, k := m.ctx, m.session, m.config.RAGTopK
	return func() tea.Msg {
		out, err := session.RAGAnswer(ctx, question, k)
		if err != nil {
			return errMsg{err}
		}
		return answerMsg{question: question, answer: out}
	}
}

func (m Model) quiz(topic string) tea.Cmd {
	ctx, session, k := m.ctx, m.session, m.config.QuizTopK
	return func() tea.Msg {
		quiz, err := session.GenerateQuiz(ctx, topic, k)
		if err != nil {
			return errMsg{err}
		}
		return quizMsg{quiz}
	}
}

func (m Model) grade(quiz *core.Quiz, choice string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		correct, err := session.SubmitQuizAnswer(ctx, quiz, choice)
		if err != nil {
			return errMsg{err}
		}
		return gradeMsg{quiz: quiz, correct: correct}
	}
}

func (m Model) progress() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		p, err := session.TrackProgress(ctx)
		if err != nil {
			return errMsg{err}
		}
		return progressMsg{p}
	}
}

func (m *Model) push(entry string) {
	m.history = append(m.history, entry)
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// View renders the layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render(m.config.Title)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 {
		return "Nothing yet."
	}
	return strings.Join(m.history, "\n\n"+separatorStyle.Render(strings.Repeat("-", 40))+"\n\n")
}

var (
	titleStyle         = lipgloss.NewStyle().Bold(true)
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	separatorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
