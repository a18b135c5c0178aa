package answer

import (
	"fmt"
	"strings"
)

const summarizePromptTemplate = `Summarize the following text in a clear way using bullet points (4–6 bullets).
- Each bullet point should be a complete sentence.
- Avoid repetition.
- Focus only on the key ideas.

Text: %s`

const refinePromptTemplate = `You are a helpful study assistant.
Question: %s
Context: %s

Write the answer as 4–6 bullet points:
- Each bullet should be short and clear.
- Do not repeat the same idea.
- Keep it precise and relevant to the question.`

const ragPromptTemplate = `You are a study assistant.
Question: %s
Context: %s

Write a clear, student-friendly answer in 4–6 bullet points.
- Each bullet point should explain one important idea.
- Avoid repetition.
- Stay precise and grounded in the context.`

const mcqPromptTemplate = `From the following text, create ONE multiple-choice question.
- Give exactly %d options.
- Put ✅ after the correct option.
- Format like this:

Q: <question>
%s
Text: %s`

const shortQuestionPromptTemplate = `From the following text, create ONE short descriptive question with its correct answer.
Format like this:

Q: <question>
A: <answer>

Text: %s`

func summarizePrompt(context string) string {
	return fmt.Sprintf(summarizePromptTemplate, context)
}

func refinePrompt(question, context string) string {
	return fmt.Sprintf(refinePromptTemplate, question, context)
}

func ragPrompt(question, context string) string {
	return fmt.Sprintf(ragPromptTemplate, question, context)
}

func mcqPrompt(context string, nOptions int) string {
	var options strings.Builder
	for i := 0; i < nOptions; i++ {
		fmt.Fprintf(&options, "%c) <option%d>\n", optionLetter(i), i+1)
	}
	return fmt.Sprintf(mcqPromptTemplate, nOptions, options.String(), context)
}

func shortQuestionPrompt(context string) string {
	return fmt.Sprintf(shortQuestionPromptTemplate, context)
}

func optionLetter(i int) rune {
	return rune('a' + i)
}
