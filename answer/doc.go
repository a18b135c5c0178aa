// Package answer turns retrieved sentences into study material: bullet-point
// answers, multiple choice questions and short questions.
//
// Refiner summarizes long context and asks the generator for a bullet-point
// answer. QuizGenerator produces an MCQ and a short question from a context
// passage; ParseMCQ and ParseShortQuestion recover their structure from the
// model's free text, and Grade checks a student's MCQ choice.
package answer
