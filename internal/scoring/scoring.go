// Package scoring grades weighted multiple-choice answers without calling the evaluator.
package scoring

import (
	"aesthetica/internal/model"
)

const (
	feedbackPerfect = "Perfect! You captured the core aesthetic principle."
	feedbackGood    = "Not bad. The reasoning holds, but there is a sharper angle."
	feedbackPartial = "The angle is a little off. Pay more attention to the main subject."
	feedbackMiss    = "This judgement departs from aesthetic principles. Review the explanation."
	feedbackTimeUp  = "Time's up! Your instinct was too slow."
)

// Grade scores answer against the challenge's option weights.
// It reports false when the challenge is not a weighted multiple choice or the answer
// is not one of the options; the caller then falls back to the submission evaluator.
func Grade(challenge model.Challenge, answer string) (model.AssessmentResult, bool) {
	if challenge.Type != model.TaskMultipleChoice || len(challenge.Options) == 0 || len(challenge.OptionScores) == 0 {
		return model.AssessmentResult{}, false
	}
	idx := -1
	for i, opt := range challenge.Options {
		if opt == answer {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.AssessmentResult{}, false
	}

	score := 0
	if idx < len(challenge.OptionScores) {
		score = challenge.OptionScores[idx]
	}
	return model.AssessmentResult{
		Score:              score,
		Feedback:           feedbackFor(score),
		Strengths:          []string{"Intuitive judgement"},
		Improvements:       []string{"Detail observation"},
		CorrectOptionIndex: copyIndex(challenge.CorrectOptionIndex),
	}, true
}

func feedbackFor(score int) string {
	switch {
	case score >= 100:
		return feedbackPerfect
	case score >= 50:
		return feedbackGood
	case score > 0:
		return feedbackPartial
	default:
		return feedbackMiss
	}
}

// TimeUp is the forced result when the countdown expires with no answer drafted.
func TimeUp(challenge model.Challenge) model.AssessmentResult {
	return model.AssessmentResult{
		Score:              0,
		Feedback:           feedbackTimeUp,
		Strengths:          []string{},
		Improvements:       []string{"Decide faster"},
		CorrectOptionIndex: copyIndex(challenge.CorrectOptionIndex),
	}
}

func copyIndex(idx *int) *int {
	if idx == nil {
		return nil
	}
	return model.IntPtr(*idx)
}
