package llm

import (
	"fmt"
	"strings"

	"aesthetica/internal/knowledge"
	"aesthetica/internal/model"
)

const challengeSystemPrompt = `You are an expert art professor and aesthetic mentor.
Create one daily challenge that trains a student's aesthetic sense.
Write modern, direct English. Keep the main question to one sentence.
Respond with a single JSON object and nothing else.`

var typeInstructions = map[model.TaskType]string{
	model.TaskMultipleChoice: `Task: MULTIPLE_CHOICE. Ask one short question and give exactly 4 distinct, concise options.
Options are weighted, not right or wrong: one best answer (100), one partial answer (50),
one weak answer (20) and one distractor (0), in any order.
Return "optionScores" aligned with "options" and "correctOptionIndex" pointing at the 100 point option.`,
	model.TaskObservation: `Task: OBSERVATION. In one plain line, ask the student to describe a specific detail,
colour relationship or emotional trigger in the image. A short answer is expected.`,
	model.TaskAnalysis: `Task: ANALYSIS. Ask for a pointed critique of composition, lighting and style in one sentence.
The student will answer with a thoughtful essay.`,
}

var styleDirections = []string{
	"Focus on high-contrast, modern, avant-garde aesthetics.",
	"Focus on classical, harmonious, natural aesthetics.",
}

func buildChallengePrompt(taskType model.TaskType, category model.Category, style string) string {
	name, focus := string(category), ""
	if info, ok := knowledge.Lookup(category); ok {
		name = info.Name
		focus = strings.Join(info.Focus, ", ")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Category: %s.\n", name)
	if focus != "" {
		fmt.Fprintf(&b, "Useful angles for this category: %s.\n", focus)
	}
	fmt.Fprintf(&b, "Style direction: %s\n\n", style)
	b.WriteString(typeInstructions[taskType])
	b.WriteString(`

Also return "imagePrompt", a detailed English prompt for an image generator that produces the visual subject,
and "contextDescription", a short private note on the aesthetic principle being tested.
JSON fields: question, options, optionScores, correctOptionIndex, imagePrompt, contextDescription.`)
	return b.String()
}

const evaluationSystemPrompt = `You are a strict but encouraging art professor grading an aesthetic exercise.
Give a score from 0 to 100 and constructive feedback in English.
Respond with a single JSON object: score, feedback, strengths (array), improvements (array), correctOptionIndex.`

func buildEvaluationPrompt(challenge model.Challenge, answer string) string {
	correct := "n/a"
	if challenge.CorrectOptionIndex != nil {
		correct = fmt.Sprint(*challenge.CorrectOptionIndex)
	}
	return fmt.Sprintf(`Category: %s
Type: %s
Question: %s
Principle being tested: %s
Correct option index (multiple choice only): %s
Student answer: %s

For OBSERVATION, check whether the student noticed the details implied by the principle.
For ANALYSIS, check for specific terminology and a logical argument.`,
		challenge.Category,
		challenge.Type,
		strings.TrimSpace(challenge.Question),
		strings.TrimSpace(challenge.ContextDescription),
		correct,
		strings.TrimSpace(answer),
	)
}
