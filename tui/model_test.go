package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/poiesic/studybot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	questions []string
	topics    []string
	choices   []string
	answerErr error
}

func (f *fakeSession) RAGAnswer(_ context.Context, question string, _ int) (string, error) {
	f.questions = append(f.questions, question)
	if f.answerErr != nil {
		return "", f.answerErr
	}
	return "- cells need energy", nil
}

func (f *fakeSession) GenerateQuiz(_ context.Context, topic string, _ int) (*core.Quiz, error) {
	f.topics = append(f.topics, topic)
	return &core.Quiz{
		Topic: topic,
		MCQ: core.MCQ{
			Question: "What powers the cell?",
			Options:  []string{"a) Ribosome", "b) Mitochondria"},
			Correct:  "b) Mitochondria",
		},
		Short: core.ShortQuestion{Question: "Why?", Answer: "Energy."},
	}, nil
}

func (f *fakeSession) SubmitQuizAnswer(_ context.Context, quiz *core.Quiz, choice string) (bool, error) {
	f.choices = append(f.choices, choice)
	return choice == "b", nil
}

func (f *fakeSession) TrackProgress(_ context.Context) (core.Progress, error) {
	return core.Progress{StudentId: "alice", TotalQA: 2, TotalQuiz: 1, CorrectQuiz: 1, Accuracy: 100}, nil
}

func newModel(t *testing.T, session Session, config Config) Model {
	t.Helper()
	m := New(context.Background(), session, config)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return next.(Model)
}

// submit types line, presses enter and feeds the resulting message back.
func submit(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	next, cmd := next.(Model).Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestModel_Question(t *testing.T) {
	session := &fakeSession{}
	m := newModel(t, session, Config{})

	m, cmd := submit(t, m, "what is a cell?")
	assert.True(t, m.busy)
	assert.Empty(t, m.input.Value())

	m = run(t, m, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, []string{"what is a cell?"}, session.questions)
	require.Len(t, m.history, 1)
	assert.Contains(t, m.history[0], "cells need energy")
	assert.Contains(t, m.View(), "Study Assistant")
}

func TestModel_QuizRoundTrip(t *testing.T) {
	session := &fakeSession{}
	m := newModel(t, session, Config{Topic: "biology"})

	m, cmd := submit(t, m, "quiz")
	m = run(t, m, cmd)
	assert.Equal(t, []string{"biology"}, session.topics)
	require.NotNil(t, m.pending)
	assert.Contains(t, m.history[0], "What powers the cell?")
	assert.NotContains(t, m.history[0], "Energy.")

	// the next line answers the open quiz instead of asking a question
	m, cmd = submit(t, m, "b")
	m = run(t, m, cmd)
	assert.Nil(t, m.pending)
	assert.Equal(t, []string{"b"}, session.choices)
	assert.Empty(t, session.questions)
	assert.Contains(t, m.history[1], "Correct!")
	assert.Contains(t, m.history[1], "Energy.")
}

func TestModel_QuizTopic(t *testing.T) {
	session := &fakeSession{}
	m := newModel(t, session, Config{})

	m, cmd := submit(t, m, "quiz")
	assert.Nil(t, cmd)
	assert.Contains(t, m.status, "Usage")

	m, cmd = submit(t, m, "quiz photosynthesis")
	run(t, m, cmd)
	assert.Equal(t, []string{"photosynthesis"}, session.topics)
}

func TestModel_Progress(t *testing.T) {
	m := newModel(t, &fakeSession{}, Config{})

	m, cmd := submit(t, m, "progress")
	m = run(t, m, cmd)
	require.Len(t, m.history, 1)
	assert.Contains(t, m.history[0], "Total quiz attempts: 1")
	assert.Contains(t, m.history[0], "100.00%")
}

func TestModel_Error(t *testing.T) {
	session := &fakeSession{answerErr: errors.New("not ready")}
	m := newModel(t, session, Config{})

	m, cmd := submit(t, m, "anything")
	m = run(t, m, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, "Error: not ready", m.status)
	assert.Empty(t, m.history)
}

func TestModel_Exit(t *testing.T) {
	m := newModel(t, &fakeSession{}, Config{})

	_, cmd := submit(t, m, "exit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestFormatGrade(t *testing.T) {
	quiz := &core.Quiz{MCQ: core.MCQ{Correct: "b) Mitochondria"}}
	assert.Equal(t, "Correct!", FormatGrade(quiz, true))
	assert.Equal(t, "Not quite. The answer was b) Mitochondria.", FormatGrade(quiz, false))
}

func TestFormatQuiz_Unparsed(t *testing.T) {
	quiz := &core.Quiz{Topic: "x", MCQ: core.MCQ{Raw: "raw mcq"}, Short: core.ShortQuestion{Raw: "raw short"}}
	out := FormatQuiz(quiz)
	assert.Contains(t, out, "raw mcq")
	assert.Contains(t, out, "raw short")
}
