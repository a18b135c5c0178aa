package answer

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/studybot/ai"
	"github.com/poiesic/studybot/core"
)

// DefaultOptions is the number of MCQ options requested when none is given.
const DefaultOptions = 4

const correctMark = "✅"

var (
	mcqDecoding = ai.GenerateOptions{MaxLength: 250, Temperature: 0.7, Sample: true}
	sqDecoding  = ai.GenerateOptions{MaxLength: 180, Temperature: 0.7, Sample: true}
)

// QuizGenerator produces quiz questions from a context passage.
type QuizGenerator struct {
	generator ai.Generator
	logger    *slog.Logger
}

// NewQuizGenerator creates a QuizGenerator backed by generator.
func NewQuizGenerator(generator ai.Generator, opts ...Option) (*QuizGenerator, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	s, err := applyOptions("quiz", opts)
	if err != nil {
		return nil, err
	}
	return &QuizGenerator{generator: generator, logger: s.logger}, nil
}

// GenerateMCQ asks for one multiple choice question with nOptions options.
// nOptions <= 0 uses DefaultOptions.
func (q *QuizGenerator) GenerateMCQ(ctx context.Context, passage string, nOptions int) (core.MCQ, error) {
	if nOptions <= 0 {
		nOptions = DefaultOptions
	}
	if nOptions > 26 {
		return core.MCQ{}, ErrTooManyOptions
	}
	raw, err := generate(ctx, q.generator, q.logger, "mcq", mcqPrompt(passage, nOptions), mcqDecoding)
	if err != nil {
		return core.MCQ{}, err
	}
	mcq := ParseMCQ(raw)
	if mcq.Correct == "" {
		q.logger.Warn("generated MCQ has no marked answer", "options", len(mcq.Options))
	}
	return mcq, nil
}

// GenerateShortQuestion asks for one short descriptive question with its answer.
func (q *QuizGenerator) GenerateShortQuestion(ctx context.Context, passage string) (core.ShortQuestion, error) {
	raw, err := generate(ctx, q.generator, q.logger, "short", shortQuestionPrompt(passage), sqDecoding)
	if err != nil {
		return core.ShortQuestion{}, err
	}
	return ParseShortQuestion(raw), nil
}

// ParseMCQ recovers the question, options and correct option from model output.
//
// The question is the text after a "Q:" prefix, or the first line that is not an
// option. Options are lines starting with a letter and ')'. The line carrying ✅ is
// the correct option; the mark is removed and the option is listed once.
func ParseMCQ(raw string) core.MCQ {
	mcq := core.MCQ{Raw: raw}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		marked := strings.Contains(line, correctMark)
		if marked {
			line = strings.TrimSpace(strings.ReplaceAll(line, correctMark, ""))
		}

		if body, ok := cutPrefixFold(line, "q:"); ok {
			mcq.Question = strings.TrimSpace(body)
			continue
		}

		if marked {
			if mcq.Correct == "" {
				mcq.Correct = line
			}
			mcq.Options = append(mcq.Options, line)
			continue
		}
		if _, ok := optionLabel(line); ok {
			mcq.Options = append(mcq.Options, line)
			continue
		}
		if mcq.Question == "" && len(mcq.Options) == 0 {
			mcq.Question = line
		}
	}
	return mcq
}

// ParseShortQuestion splits "Q: ... A: ..." output into question and answer.
// Output without a Q: line is taken as the question in full.
func ParseShortQuestion(raw string) core.ShortQuestion {
	sq := core.ShortQuestion{Raw: raw}
	var answer []string
	inAnswer := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if body, ok := cutPrefixFold(line, "q:"); ok {
			// single-line output: "Q: what? A: that."
			if qi := indexAnswerTag(body); qi >= 0 {
				sq.Question = strings.TrimSpace(body[:qi])
				answer = append(answer, strings.TrimSpace(body[qi+2:]))
				inAnswer = true
				continue
			}
			sq.Question = strings.TrimSpace(body)
			inAnswer = false
			continue
		}
		if body, ok := cutPrefixFold(line, "a:"); ok {
			answer = append(answer, strings.TrimSpace(body))
			inAnswer = true
			continue
		}
		if inAnswer {
			answer = append(answer, line)
		}
	}
	sq.Answer = strings.TrimSpace(strings.Join(answer, " "))
	if sq.Question == "" {
		sq.Question = strings.TrimSpace(raw)
	}
	return sq
}

// Grade reports whether choice selects the correct option. A choice matches
// when it equals the correct option, its text without the letter, or its
// letter alone ("b" or "b)"). Comparison ignores surrounding space and case.
func Grade(mcq core.MCQ, choice string) bool {
	if mcq.Correct == "" {
		return false
	}
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return false
	}
	if strings.EqualFold(choice, mcq.Correct) {
		return true
	}

	label, ok := optionLabel(mcq.Correct)
	if !ok {
		return false
	}
	if strings.EqualFold(choice, strings.TrimSpace(mcq.Correct[2:])) {
		return true
	}
	letter := strings.TrimSuffix(choice, ")")
	return utf8.RuneCountInString(letter) == 1 && strings.EqualFold(letter, string(label))
}

// optionLabel returns the lower-case letter of an "x)" prefixed option line.
func optionLabel(line string) (rune, bool) {
	if len(line) < 2 || line[1] != ')' {
		return 0, false
	}
	c := line[0] | 0x20
	if c < 'a' || c > 'z' {
		return 0, false
	}
	return rune(c), true
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// indexAnswerTag finds an inline " A:" tag in s.
func indexAnswerTag(s string) int {
	i := strings.Index(s, " A:")
	if i < 0 {
		return -1
	}
	return i + 1
}
