package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"aesthetica/internal/model"
)

const defaultFeedback = "Evaluation complete."

// EvaluateSubmission grades a free-form or unmatched answer. Any transport or parse failure
// is returned so the caller can let the user retry.
func (c *Client) EvaluateSubmission(ctx context.Context, apiKey string, challenge model.Challenge, answer string) (result model.AssessmentResult, err error) {
	ctx, span := tracer.Start(ctx, "llm.EvaluateSubmission", trace.WithAttributes(
		attribute.String("task.type", string(challenge.Type)),
		attribute.String("challenge.id", challenge.ID),
	))
	defer func() { endSpan(span, err) }()

	key, err := c.resolveKey(apiKey)
	if err != nil {
		return model.AssessmentResult{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content, err := c.chatJSON(ctx, key, evaluationSystemPrompt, buildEvaluationPrompt(challenge, answer), 0.2)
	if err != nil {
		return model.AssessmentResult{}, err
	}
	return parseAssessment(content, challenge)
}

func parseAssessment(content string, challenge model.Challenge) (model.AssessmentResult, error) {
	var parsed struct {
		Score              *float64 `json:"score"`
		Feedback           string   `json:"feedback"`
		Strengths          []string `json:"strengths"`
		Improvements       []string `json:"improvements"`
		CorrectOptionIndex *int     `json:"correctOptionIndex"`
	}
	if err := json.Unmarshal([]byte(extractJSONPayload(content)), &parsed); err != nil {
		return model.AssessmentResult{}, fmt.Errorf("parse assessment failed: %w", err)
	}
	if parsed.Score == nil {
		return model.AssessmentResult{}, fmt.Errorf("%w: missing score", ErrInvalidResponse)
	}

	result := model.AssessmentResult{
		Score:              clampScore(*parsed.Score),
		Feedback:           defaultText(parsed.Feedback, defaultFeedback),
		Strengths:          nonEmptyStrings(parsed.Strengths),
		Improvements:       nonEmptyStrings(parsed.Improvements),
		CorrectOptionIndex: parsed.CorrectOptionIndex,
	}
	if result.CorrectOptionIndex == nil && challenge.CorrectOptionIndex != nil {
		result.CorrectOptionIndex = model.IntPtr(*challenge.CorrectOptionIndex)
	}
	return result, nil
}
