package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) swaggerUI(w http.ResponseWriter, r *http.Request) {
	const page = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Aesthetica API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/docs/openapi.json',
      dom_id: '#swagger-ui'
    });
  </script>
</body>
</html>`
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (h *Handler) swaggerSpec(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, openAPISpec(requestBaseURL(r)))
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); forwarded != "" {
		scheme = strings.Split(forwarded, ",")[0]
		scheme = strings.TrimSpace(scheme)
	}

	host := strings.TrimSpace(r.Host)
	if host == "" {
		host = "localhost:8080"
	}
	return scheme + "://" + host
}

func ref(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func jsonContent(schema map[string]any) map[string]any {
	return map[string]any{
		"application/json": map[string]any{"schema": schema},
	}
}

// operation builds one OpenAPI operation. request may be empty; errors maps status to description.
func operation(summary, id, request, response string, errors map[string]string) map[string]any {
	responses := map[string]any{}
	if response == "" {
		responses["204"] = map[string]any{"description": "No Content"}
	} else {
		responses["200"] = map[string]any{"description": "OK", "content": jsonContent(ref(response))}
	}
	for status, desc := range errors {
		responses[status] = map[string]any{"description": desc, "content": jsonContent(ref("Error"))}
	}
	op := map[string]any{
		"summary":     summary,
		"operationId": id,
		"responses":   responses,
	}
	if request != "" {
		op["requestBody"] = map[string]any{"required": true, "content": jsonContent(ref(request))}
	}
	return op
}

var idParam = []map[string]any{{
	"name":     "id",
	"in":       "path",
	"required": true,
	"schema":   map[string]any{"type": "string"},
}}

func withParams(op map[string]any, params []map[string]any) map[string]any {
	op["parameters"] = params
	return op
}

func openAPISpec(serverURL string) map[string]any {
	str := map[string]any{"type": "string"}
	integer := map[string]any{"type": "integer"}
	boolean := map[string]any{"type": "boolean"}
	strList := map[string]any{"type": "array", "items": str}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       "Aesthetica API",
			"description": "Aesthetic training progression engine: challenges, XP, levels, streaks and badges.",
			"version":     "1.0.0",
		},
		"servers": []map[string]string{
			{"url": serverURL},
		},
		"paths": map[string]any{
			"/healthz": map[string]any{
				"get": operation("Liveness", "healthz", "", "HealthResponse", nil),
			},
			"/api/v1/stats": map[string]any{
				"get": operation("Stats with level progress and greeting", "stats", "", "StatsView", nil),
			},
			"/api/v1/availability": map[string]any{
				"get": operation("Daily quota and weekly cooldown", "availability", "", "Availability", nil),
			},
			"/api/v1/history": map[string]any{
				"get": withParams(
					operation("Completed tasks, newest first", "history", "", "HistoryResponse", map[string]string{"400": "Unknown filter"}),
					[]map[string]any{{
						"name":   "filter",
						"in":     "query",
						"schema": map[string]any{"type": "string", "enum": []string{"all", "errors", "mcq", "observation"}},
					}},
				),
			},
			"/api/v1/badges": map[string]any{
				"get": operation("Badge catalog with unlock state", "badges", "", "BadgesResponse", nil),
			},
			"/api/v1/levels": map[string]any{
				"get": operation("Level table", "levels", "", "LevelsResponse", nil),
			},
			"/api/v1/profile": map[string]any{
				"put": operation("Update username or avatar", "updateProfile", "ProfileUpdate", "UserStats", map[string]string{"400": "Invalid profile"}),
			},
			"/api/v1/settings/api-key": map[string]any{
				"put": operation("Configure the generation credential", "setAPIKey", "APIKeyRequest", "APIKeyResponse", map[string]string{"400": "Key too short"}),
			},
			"/api/v1/challenges": map[string]any{
				"post": operation("Start a challenge", "startChallenge", "StartChallengeRequest", "ActiveTask", map[string]string{
					"400": "Unknown task type or category",
					"409": "Quota reached or superseded",
					"428": "API key not configured",
					"502": "Generation failed",
				}),
			},
			"/api/v1/challenges/active": map[string]any{
				"get": operation("Task in progress", "activeChallenge", "", "ActiveTask", map[string]string{"404": "No active task"}),
			},
			"/api/v1/challenges/{id}/draft": map[string]any{
				"put": withParams(operation("Save the drafted answer", "draftAnswer", "AnswerRequest", "", map[string]string{
					"404": "Not the active task",
					"409": "Already graded",
				}), idParam),
			},
			"/api/v1/challenges/{id}/submit": map[string]any{
				"post": withParams(operation("Grade an answer", "submit", "AnswerRequest", "AssessmentResult", map[string]string{
					"400": "Empty answer",
					"404": "Not the active task",
					"409": "Already graded or evaluation in flight",
					"502": "Evaluation failed, draft kept",
				}), idParam),
			},
			"/api/v1/challenges/{id}/complete": map[string]any{
				"post": withParams(operation("Commit a graded task", "complete", "", "Completion", map[string]string{
					"404": "Not the active task",
					"409": "Not graded yet",
				}), idParam),
			},
			"/api/v1/challenges/{id}": map[string]any{
				"delete": withParams(operation("Abandon the active task", "cancel", "", "", map[string]string{"404": "Not the active task"}), idParam),
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"Error": map[string]any{
					"type":       "object",
					"properties": map[string]any{"error": str},
				},
				"HealthResponse": map[string]any{
					"type":       "object",
					"properties": map[string]any{"status": str},
				},
				"StartChallengeRequest": map[string]any{
					"type":     "object",
					"required": []string{"type"},
					"properties": map[string]any{
						"type":       map[string]any{"type": "string", "enum": []string{"MULTIPLE_CHOICE", "OBSERVATION", "ANALYSIS"}},
						"categories": strList,
					},
				},
				"AnswerRequest": map[string]any{
					"type":       "object",
					"properties": map[string]any{"answer": str},
				},
				"APIKeyRequest": map[string]any{
					"type":       "object",
					"properties": map[string]any{"api_key": str},
				},
				"APIKeyResponse": map[string]any{
					"type":       "object",
					"properties": map[string]any{"configured": boolean},
				},
				"ProfileUpdate": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"username": str,
						"avatar":   map[string]any{"type": "string", "description": "Image URL or data URL; empty clears it"},
					},
				},
				"Challenge": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":                 str,
						"category":           str,
						"type":               str,
						"question":           str,
						"options":            strList,
						"optionScores":       map[string]any{"type": "array", "items": integer},
						"correctOptionIndex": integer,
						"imagePrompt":        str,
						"generatedImageUrl":  str,
						"contextDescription": str,
					},
				},
				"AssessmentResult": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"score":              integer,
						"feedback":           str,
						"strengths":          strList,
						"improvements":       strList,
						"correctOptionIndex": integer,
					},
				},
				"ActiveTask": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"challenge":      ref("Challenge"),
						"draft":          str,
						"time_remaining": integer,
						"paused":         boolean,
						"timed_out":      boolean,
						"result":         ref("AssessmentResult"),
					},
				},
				"HistoryItem": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":         str,
						"date":       map[string]any{"type": "string", "format": "date-time"},
						"challenge":  ref("Challenge"),
						"userAnswer": str,
						"assessment": ref("AssessmentResult"),
						"xpGained":   integer,
					},
				},
				"HistoryResponse": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"filter": str,
						"items":  map[string]any{"type": "array", "items": ref("HistoryItem")},
					},
				},
				"Badge": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":          str,
						"name":        str,
						"description": str,
						"iconType":    str,
						"unlockedAt":  map[string]any{"type": "string", "format": "date-time"},
					},
				},
				"BadgeEntry": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":          str,
						"name":        str,
						"description": str,
						"iconType":    str,
						"group":       str,
						"unlocked":    boolean,
						"unlockedAt":  str,
					},
				},
				"BadgesResponse": map[string]any{
					"type":       "object",
					"properties": map[string]any{"badges": map[string]any{"type": "array", "items": ref("BadgeEntry")}},
				},
				"Level": map[string]any{
					"type":       "object",
					"properties": map[string]any{"level": integer, "xp": integer, "title": str},
				},
				"LevelsResponse": map[string]any{
					"type":       "object",
					"properties": map[string]any{"levels": map[string]any{"type": "array", "items": ref("Level")}},
				},
				"LevelProgress": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"level":   integer,
						"title":   str,
						"xp":      integer,
						"next_xp": integer,
						"percent": integer,
						"max":     boolean,
					},
				},
				"Availability": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"mcq_available":         boolean,
						"mcq_remaining":         integer,
						"observation_available": boolean,
						"weekly_available":      boolean,
						"next_weekly_at":        map[string]any{"type": "string", "format": "date-time"},
					},
				},
				"UserStats": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"schemaVersion":  integer,
						"username":       str,
						"avatar":         str,
						"lastStreakDate": str,
						"streak":         integer,
						"totalTasks":     integer,
						"averageScore":   integer,
						"xp":             integer,
						"level":          integer,
						"badges":         map[string]any{"type": "array", "items": ref("Badge")},
						"scoresHistory": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type":       "object",
								"properties": map[string]any{"date": str, "score": integer},
							},
						},
						"dailyProgress": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"lastDate":               str,
								"mcqCount":               integer,
								"observationDone":        boolean,
								"lastWeeklyAnalysisDate": str,
							},
						},
					},
				},
				"StatsView": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"stats":        ref("UserStats"),
						"level":        ref("LevelProgress"),
						"greeting":     str,
						"availability": ref("Availability"),
						"setup_needed": boolean,
					},
				},
				"Completion": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"item":      ref("HistoryItem"),
						"xp_gained": integer,
						"level_up": map[string]any{
							"type":       "object",
							"properties": map[string]any{"old": integer, "new": integer, "title": str},
						},
						"unlocked_badges": map[string]any{"type": "array", "items": ref("Badge")},
						"continue":        boolean,
						"stats":           ref("UserStats"),
						"degraded":        boolean,
					},
				},
			},
		},
	}
}
