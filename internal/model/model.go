package model

type TaskType string

const (
	TaskMultipleChoice TaskType = "MULTIPLE_CHOICE"
	TaskObservation    TaskType = "OBSERVATION"
	TaskAnalysis       TaskType = "ANALYSIS"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskMultipleChoice, TaskObservation, TaskAnalysis:
		return true
	default:
		return false
	}
}

type Category string

const (
	CategoryComposition    Category = "composition"
	CategoryColorTheory    Category = "color_theory"
	CategoryFashion        Category = "fashion"
	CategoryNature         Category = "nature"
	CategoryEmotion        Category = "emotion"
	CategoryDesign         Category = "design"
	CategoryCinematography Category = "cinematography"
)

// AllCategories is ordered as the categories are presented to users.
var AllCategories = []Category{
	CategoryComposition,
	CategoryColorTheory,
	CategoryFashion,
	CategoryNature,
	CategoryEmotion,
	CategoryDesign,
	CategoryCinematography,
}

func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Challenge is read-only once produced by the content provider.
type Challenge struct {
	ID                 string   `json:"id"`
	Category           Category `json:"category"`
	Type               TaskType `json:"type"`
	Question           string   `json:"question"`
	Options            []string `json:"options,omitempty"`
	OptionScores       []int    `json:"optionScores,omitempty"`
	CorrectOptionIndex *int     `json:"correctOptionIndex,omitempty"`
	ImagePrompt        string   `json:"imagePrompt"`
	GeneratedImageURL  string   `json:"generatedImageUrl,omitempty"`
	ContextDescription string   `json:"contextDescription"`
}

type AssessmentResult struct {
	Score              int      `json:"score"`
	Feedback           string   `json:"feedback"`
	Strengths          []string `json:"strengths"`
	Improvements       []string `json:"improvements"`
	CorrectOptionIndex *int     `json:"correctOptionIndex,omitempty"`
}

type HistoryItem struct {
	ID         string           `json:"id"`
	Date       string           `json:"date"`
	Challenge  Challenge        `json:"challenge"`
	UserAnswer string           `json:"userAnswer"`
	Assessment AssessmentResult `json:"assessment"`
	XPGained   int              `json:"xpGained"`
}

type DailyProgress struct {
	LastDate               string `json:"lastDate"`
	MCQCount               int    `json:"mcqCount"`
	ObservationDone        bool   `json:"observationDone"`
	LastWeeklyAnalysisDate string `json:"lastWeeklyAnalysisDate"`
}

type BadgeID string

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IconType    string  `json:"iconType"`
	UnlockedAt  string  `json:"unlockedAt,omitempty"`
}

type ScorePoint struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

type UserStats struct {
	SchemaVersion  int           `json:"schemaVersion"`
	Username       string        `json:"username"`
	Avatar         *string       `json:"avatar"`
	LastStreakDate string        `json:"lastStreakDate"`
	Streak         int           `json:"streak"`
	TotalTasks     int           `json:"totalTasks"`
	AverageScore   int           `json:"averageScore"`
	XP             int           `json:"xp"`
	Level          int           `json:"level"`
	Badges         []Badge       `json:"badges"`
	ScoresHistory  []ScorePoint  `json:"scoresHistory"`
	DailyProgress  DailyProgress `json:"dailyProgress"`
}

// HasBadge reports whether id is already in the unlocked set.
func (s UserStats) HasBadge(id BadgeID) bool {
	for _, b := range s.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Clone copies the slices so the result can be mutated independently.
func (s UserStats) Clone() UserStats {
	out := s
	out.Badges = make([]Badge, len(s.Badges))
	copy(out.Badges, s.Badges)
	out.ScoresHistory = make([]ScorePoint, len(s.ScoresHistory))
	copy(out.ScoresHistory, s.ScoresHistory)
	if s.Avatar != nil {
		avatar := *s.Avatar
		out.Avatar = &avatar
	}
	return out
}

func IntPtr(v int) *int {
	return &v
}
