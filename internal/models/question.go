package models

type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionCoding    QuestionType = "coding"
	QuestionPractical QuestionType = "practical"
	QuestionMixed     QuestionType = "mixed"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// DefaultPoints is the point value assigned to a generated question of this difficulty.
func (d DifficultyLevel) DefaultPoints() int {
	switch d {
	case DifficultyEasy:
		return 10
	case DifficultyHard:
		return 30
	default:
		return 20
	}
}

// GeneratedQuestion is one question produced by the question generator.
type GeneratedQuestion struct {
	Question       string          `json:"question"`
	Type           QuestionType    `json:"type"`
	Options        []string        `json:"options,omitempty"`
	CorrectAnswer  *int            `json:"correct_answer,omitempty"`
	// ExpectedAnswer holds a non-index answer, such as the expected output of a coding task
	ExpectedAnswer string          `json:"expected_answer,omitempty"`
	Explanation    string          `json:"explanation,omitempty"`
	Difficulty     DifficultyLevel `json:"difficulty"`
	Points         int             `json:"points"`
	StarterCode    string          `json:"starter_code,omitempty"`
	TestCases      []TestCase      `json:"test_cases,omitempty"`
	Requirements   []string        `json:"requirements,omitempty"`
}

type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}
