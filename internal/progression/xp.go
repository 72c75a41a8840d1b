package progression

import (
	"math"

	"aesthetica/internal/model"
)

const (
	// MCQTimerSeconds is the countdown length of one multiple-choice challenge.
	MCQTimerSeconds = 30

	mcqTimeBonusPerSecond = 2
)

var baseXP = map[model.TaskType]int{
	model.TaskMultipleChoice: 50,
	model.TaskObservation:    150,
	model.TaskAnalysis:       500,
}

// ComputeXP awards base XP scaled by score/100, plus a time bonus for multiple choice only.
func ComputeXP(taskType model.TaskType, score int, timeRemaining int) int {
	score = clamp(score, 0, 100)
	quality := float64(score) / 100

	timeBonus := 0
	if taskType == model.TaskMultipleChoice {
		timeBonus = clamp(timeRemaining, 0, MCQTimerSeconds) * mcqTimeBonusPerSecond
	}
	return int(math.Round(float64(baseXP[taskType])*quality + float64(timeBonus)))
}

// ElapsedAnswerSeconds is how long the user took on a timed challenge; untimed tasks report 0.
func ElapsedAnswerSeconds(taskType model.TaskType, timeRemaining int) int {
	if taskType != model.TaskMultipleChoice {
		return 0
	}
	return MCQTimerSeconds - clamp(timeRemaining, 0, MCQTimerSeconds)
}

// AverageScore rounds the mean of the score history, 0 when empty.
func AverageScore(points []model.ScorePoint) int {
	if len(points) == 0 {
		return 0
	}
	total := 0
	for _, p := range points {
		total += p.Score
	}
	return int(math.Round(float64(total) / float64(len(points))))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
