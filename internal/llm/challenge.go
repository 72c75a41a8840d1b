package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"aesthetica/internal/model"
)

const (
	defaultImagePrompt        = "Abstract art"
	defaultContextDescription = "Analysis"
)

// GenerateChallenge produces the challenge text and then its image. Text failures are returned;
// an image failure falls back to a placeholder so the task can still be played.
func (c *Client) GenerateChallenge(ctx context.Context, apiKey string, taskType model.TaskType, pool []model.Category) (challenge model.Challenge, err error) {
	ctx, span := tracer.Start(ctx, "llm.GenerateChallenge", trace.WithAttributes(
		attribute.String("task.type", string(taskType)),
	))
	defer func() { endSpan(span, err) }()

	key, err := c.resolveKey(apiKey)
	if err != nil {
		return model.Challenge{}, err
	}
	if !taskType.Valid() {
		return model.Challenge{}, fmt.Errorf("unsupported task type %q", taskType)
	}
	category := pickCategory(pool)
	span.SetAttributes(attribute.String("challenge.category", string(category)))

	challenge, err = c.generateChallengeText(ctx, key, taskType, category)
	if err != nil {
		return model.Challenge{}, err
	}

	imageURL, imgErr := c.GenerateImage(ctx, key, challenge.ImagePrompt)
	if imgErr != nil {
		c.log.Warn("image generation failed, using placeholder", "challenge_id", challenge.ID, "error", imgErr)
		imageURL = PlaceholderImageURL(challenge.ID)
	}
	challenge.GeneratedImageURL = imageURL
	return challenge, nil
}

func (c *Client) generateChallengeText(ctx context.Context, apiKey string, taskType model.TaskType, category model.Category) (model.Challenge, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := buildChallengePrompt(taskType, category, styleDirections[rand.IntN(len(styleDirections))])
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		content, err := c.chatJSON(ctx, apiKey, challengeSystemPrompt, prompt, 0.9)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		challenge, err := parseChallenge(content, taskType, category)
		if err == nil {
			challenge.ID = uuid.Must(uuid.NewV7()).String()
			return challenge, nil
		}
		lastErr = fmt.Errorf("%w; raw=%s", err, truncateText(content, 240))
	}
	if lastErr == nil {
		lastErr = ErrInvalidResponse
	}
	return model.Challenge{}, lastErr
}

func pickCategory(pool []model.Category) model.Category {
	if len(pool) == 0 {
		pool = model.AllCategories
	}
	return pool[rand.IntN(len(pool))]
}

func parseChallenge(content string, taskType model.TaskType, category model.Category) (model.Challenge, error) {
	var parsed struct {
		Question           string    `json:"question"`
		Options            []string  `json:"options"`
		OptionScores       []float64 `json:"optionScores"`
		CorrectOptionIndex *int      `json:"correctOptionIndex"`
		ImagePrompt        string    `json:"imagePrompt"`
		ContextDescription string    `json:"contextDescription"`
	}
	if err := json.Unmarshal([]byte(extractJSONPayload(content)), &parsed); err != nil {
		return model.Challenge{}, fmt.Errorf("parse challenge failed: %w", err)
	}
	question := strings.TrimSpace(parsed.Question)
	if question == "" {
		return model.Challenge{}, fmt.Errorf("%w: empty question", ErrInvalidResponse)
	}

	challenge := model.Challenge{
		Category:           category,
		Type:               taskType,
		Question:           question,
		ImagePrompt:        defaultText(parsed.ImagePrompt, defaultImagePrompt),
		ContextDescription: defaultText(parsed.ContextDescription, defaultContextDescription),
	}
	if taskType != model.TaskMultipleChoice {
		return challenge, nil
	}

	options := nonEmptyStrings(parsed.Options)
	if len(options) < 2 {
		return model.Challenge{}, fmt.Errorf("%w: multiple choice needs options, got %d", ErrInvalidResponse, len(options))
	}
	scores := make([]int, len(options))
	for i := range scores {
		if i < len(parsed.OptionScores) {
			scores[i] = clampScore(parsed.OptionScores[i])
		}
	}
	best := bestOption(scores)
	if idx := parsed.CorrectOptionIndex; idx != nil && *idx >= 0 && *idx < len(options) {
		best = *idx
	}
	challenge.Options = options
	challenge.OptionScores = scores
	challenge.CorrectOptionIndex = model.IntPtr(best)
	return challenge, nil
}

func bestOption(scores []int) int {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}

func clampScore(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

func nonEmptyStrings(input []string) []string {
	result := make([]string, 0, len(input))
	for _, line := range input {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		result = append(result, line)
	}
	return result
}

func defaultText(v string, fallback string) string {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		return trimmed
	}
	return fallback
}
