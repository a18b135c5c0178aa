package tui

import (
	"fmt"
	"strings"

	"github.com/poiesic/studybot/core"
)

// FormatAnswer renders a question and its bullet answer.
func FormatAnswer(question, answer string) string {
	return fmt.Sprintf("Question: %s\n\n%s", question, answer)
}

// FormatQuiz renders a quiz without revealing the correct option.
func FormatQuiz(quiz *core.Quiz) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quiz on %q\n\n", quiz.Topic)
	if quiz.MCQ.Question != "" && len(quiz.MCQ.Options) > 0 {
		fmt.Fprintf(&b, "MCQ: %s\n", quiz.MCQ.Question)
		for _, opt := range quiz.MCQ.Options {
			fmt.Fprintf(&b, "  %s\n", opt)
		}
	} else {
		fmt.Fprintf(&b, "MCQ:\n%s\n", quiz.MCQ.Raw)
	}
	b.WriteString("\nShort question: ")
	if quiz.Short.Question != "" {
		b.WriteString(quiz.Short.Question)
	} else {
		b.WriteString(quiz.Short.Raw)
	}
	return b.String()
}

// FormatGrade renders the result of an MCQ answer with the expected answers.
func FormatGrade(quiz *core.Quiz, correct bool) string {
	var b strings.Builder
	if correct {
		b.WriteString("Correct!")
	} else {
		b.WriteString("Not quite.")
		if quiz.MCQ.Correct != "" {
			fmt.Fprintf(&b, " The answer was %s.", quiz.MCQ.Correct)
		}
	}
	if quiz.Short.Answer != "" {
		fmt.Fprintf(&b, "\nShort answer: %s", quiz.Short.Answer)
	}
	return b.String()
}

// FormatProgress renders a progress report.
func FormatProgress(p core.Progress) string {
	return fmt.Sprintf("Progress report for %s\n- Total Q&A sessions: %d\n- Total quiz attempts: %d\n- Quiz accuracy: %.2f%%",
		p.StudentId, p.TotalQA, p.TotalQuiz, p.Accuracy)
}
