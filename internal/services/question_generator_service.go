package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/skillvault/skillvault-service/internal/llm"
	"github.com/skillvault/skillvault-service/internal/metrics"
	"github.com/skillvault/skillvault-service/internal/models"
	"github.com/skillvault/skillvault-service/internal/validator"
)

const (
	generationTemperature = 0.7
	generationMaxTokens   = 4000
	defaultTopicCount     = 5

	generatorSystemPrompt = "You are an expert technical assessment creator. You generate high-quality, relevant questions " +
		"for skill assessments. Always respond with valid JSON only, no markdown."
)

// questionItemSchema only insists on what every question type has
var questionItemSchema = &llm.Schema{
	Name: "generated-question-item",
	Definition: map[string]any{
		"type":     "object",
		"required": []string{"question"},
		"properties": map[string]any{
			"question": map[string]any{"type": "string", "minLength": 1},
			"options":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	},
}

type questionGeneratorService struct {
	provider  llm.Provider
	metrics   *metrics.Metrics
	logger    *slog.Logger
	validator *validator.Validator
	timeout   time.Duration
}

func NewQuestionGeneratorService(provider llm.Provider, m *metrics.Metrics, logger *slog.Logger, validator *validator.Validator, timeout time.Duration) QuestionGeneratorService {
	return &questionGeneratorService{
		provider:  provider,
		metrics:   m,
		logger:    logger,
		validator: validator,
		timeout:   timeout,
	}
}

// Generate makes exactly one completion request. Malformed or empty output is not retried.
func (s *questionGeneratorService) Generate(ctx context.Context, req *GenerateQuestionsRequest) *GenerationResult {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return s.fail(&GenerationError{Kind: GenerationInvalid, Message: "Invalid generation request", Err: errs})
	}

	questions, err := s.generate(ctx, req)
	if err != nil {
		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			genErr = &GenerationError{Kind: GenerationUpstream, Message: "Failed to generate questions", Err: err}
		}
		return s.fail(genErr)
	}

	s.metrics.QuestionGeneration(s.provider.ModelID(), "success")
	s.logger.Info("Generated questions", "count", len(questions), "assessment_title", req.AssessmentTitle, "model", s.provider.ModelID())

	return &GenerationResult{Success: true, Questions: questions, Model: s.provider.ModelID()}
}

// GenerateByTopic generates MCQs for one topic of a skill
func (s *questionGeneratorService) GenerateByTopic(ctx context.Context, req *GenerateByTopicRequest) *GenerationResult {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return s.fail(&GenerationError{Kind: GenerationInvalid, Message: "Invalid generation request", Err: errs})
	}

	count := req.Count
	if count == 0 {
		count = defaultTopicCount
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	return s.Generate(ctx, &GenerateQuestionsRequest{
		Skill:             req.Skill,
		AssessmentTitle:   fmt.Sprintf("%s - %s", req.Skill, req.Topic),
		Difficulty:        difficulty,
		QuestionType:      models.QuestionMCQ,
		NumberOfQuestions: count,
		Topics:            []string{req.Topic},
	})
}

// ProviderStatus checks the configured key with a tiny request
func (s *questionGeneratorService) ProviderStatus(ctx context.Context) *ProviderStatus {
	status := &ProviderStatus{Model: s.provider.ModelID()}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := llm.UserPrompt("", "test")
	req.MaxTokens = 5
	if _, err := s.provider.Generate(ctx, req); err != nil {
		s.logger.Warn("LLM provider check failed", "model", status.Model, "error", err)
		status.Error = err.Error()
		return status
	}

	status.Available = true
	return status
}

func (s *questionGeneratorService) generate(ctx context.Context, req *GenerateQuestionsRequest) ([]*models.GeneratedQuestion, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	llmReq := llm.UserPrompt(generatorSystemPrompt, buildGenerationPrompt(req))
	llmReq.JSON = true
	llmReq.Temperature = generationTemperature
	llmReq.MaxTokens = generationMaxTokens

	resp, err := s.provider.Generate(ctx, llmReq)
	if err != nil {
		return nil, &GenerationError{Kind: GenerationUpstream, Message: "Failed to generate questions", Err: err}
	}
	if len(bytes.TrimSpace(resp.Content)) == 0 {
		return nil, &GenerationError{Kind: GenerationUpstream, Message: "No response from the question generator"}
	}

	items, err := parseQuestionItems(resp.Content)
	if err != nil {
		s.logger.Warn("Unparseable generator output", "model", resp.Model, "content_length", len(resp.Content))
		return nil, err
	}

	questions := make([]*models.GeneratedQuestion, 0, len(items))
	for i, item := range items {
		q, err := decodeQuestion(item)
		if err != nil {
			return nil, &GenerationError{Kind: GenerationParse, Message: fmt.Sprintf("Invalid question at position %d", i+1), Err: err}
		}
		backfillQuestion(q, i, req)
		questions = append(questions, q)
	}

	return questions, nil
}

func (s *questionGeneratorService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *questionGeneratorService) fail(genErr *GenerationError) *GenerationResult {
	s.metrics.QuestionGeneration(s.provider.ModelID(), string(genErr.Kind))
	s.logger.Error("Question generation failed", "kind", genErr.Kind, "error", genErr)
	return &GenerationResult{Success: false, Error: genErr.Message, Kind: genErr.Kind, Model: s.provider.ModelID()}
}

// ===== PROMPT =====

func buildGenerationPrompt(req *GenerateQuestionsRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d %s level questions for a %q assessment focused on %s.\n",
		req.NumberOfQuestions, req.Difficulty, req.AssessmentTitle, req.Skill)

	if len(req.Topics) > 0 {
		fmt.Fprintf(&b, "\nSpecific topics to cover: %s\n", strings.Join(req.Topics, ", "))
	}

	switch req.QuestionType {
	case models.QuestionMCQ:
		b.WriteString("\nAll questions must be multiple choice.\n")
		writeMCQRules(&b, req.Skill)
	case models.QuestionCoding:
		b.WriteString("\nAll questions must be coding problems.\n")
		writeCodingRules(&b, req)
	case models.QuestionPractical:
		b.WriteString("\nAll questions must be practical tasks.\n")
		b.WriteString("For each practical question:\n")
		b.WriteString("- Describe a realistic scenario\n")
		b.WriteString("- List clear evaluation criteria in \"requirements\"\n")
		b.WriteString("- Require applying concepts to a real-world situation\n")
	case models.QuestionMixed:
		b.WriteString("\nAlternate question types: even positions (starting at 0) are multiple choice, odd positions are coding problems.\n")
		writeMCQRules(&b, req.Skill)
		writeCodingRules(&b, req)
	}

	fmt.Fprintf(&b, `
Respond with a JSON object containing a "questions" array in this format:
{
  "questions": [
    {
      "question": "Question text",
      "type": "mcq | coding | practical",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": 0,
      "explanation": "Why this answer is correct",
      "difficulty": "%s",
      "points": %d,
      "starterCode": "only for coding questions",
      "testCases": [{"input": "...", "expectedOutput": "..."}],
      "requirements": ["only for practical questions"]
    }
  ]
}

Rules:
1. Return only the JSON object, no markdown or code fences
2. Every question must be relevant to %s
3. Match the difficulty level: %s
4. Generate exactly %d questions
5. For multiple choice, correctAnswer is the index (0-3) of the correct option
`, req.Difficulty, req.Difficulty.DefaultPoints(), req.Skill, req.Difficulty, req.NumberOfQuestions)

	return b.String()
}

func writeMCQRules(b *strings.Builder, skill string) {
	b.WriteString("For each multiple choice question:\n")
	b.WriteString("- Provide exactly 4 options with exactly one correct\n")
	b.WriteString("- Include an explanation of the correct answer\n")
	b.WriteString("- Test understanding rather than memorization\n")
	fmt.Fprintf(b, "- Avoid trivial questions and stay relevant to %s\n", skill)
}

func writeCodingRules(b *strings.Builder, req *GenerateQuestionsRequest) {
	b.WriteString("For each coding question:\n")
	b.WriteString("- Give a clear problem statement with input/output examples\n")
	b.WriteString("- Provide starter code in \"starterCode\"\n")
	b.WriteString("- Provide 3-5 test cases\n")
	fmt.Fprintf(b, "- Match the %s level and stay practical for %s\n", req.Difficulty, req.Skill)
}

// ===== PARSING =====

// parseQuestionItems accepts a bare array or an object with a "questions" array
func parseQuestionItems(content json.RawMessage) ([]json.RawMessage, error) {
	body := stripCodeFence(bytes.TrimSpace(content))

	var items []json.RawMessage
	switch {
	case len(body) > 0 && body[0] == '[':
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, &GenerationError{Kind: GenerationParse, Message: "Invalid JSON response from the question generator", Err: err}
		}
	case len(body) > 0 && body[0] == '{':
		var wrapper struct {
			Questions *[]json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil, &GenerationError{Kind: GenerationParse, Message: "Invalid JSON response from the question generator", Err: err}
		}
		if wrapper.Questions == nil {
			return nil, &GenerationError{Kind: GenerationParse, Message: "Unexpected response format from the question generator"}
		}
		items = *wrapper.Questions
	default:
		if !json.Valid(body) {
			return nil, &GenerationError{Kind: GenerationParse, Message: "Invalid JSON response from the question generator"}
		}
		return nil, &GenerationError{Kind: GenerationParse, Message: "Unexpected response format from the question generator"}
	}

	if len(items) == 0 {
		return nil, &GenerationError{Kind: GenerationEmptyResult, Message: "No questions generated"}
	}
	return items, nil
}

func stripCodeFence(body []byte) []byte {
	if !bytes.HasPrefix(body, []byte("```")) {
		return body
	}
	body = bytes.TrimPrefix(body, []byte("```"))
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	body = bytes.TrimSuffix(bytes.TrimSpace(body), []byte("```"))
	return bytes.TrimSpace(body)
}

// rawQuestion is the generator's field naming
type rawQuestion struct {
	Question      string          `json:"question"`
	Type          string          `json:"type"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	Difficulty    string          `json:"difficulty"`
	Points        float64         `json:"points"`
	StarterCode   string          `json:"starterCode"`
	TestCases     []struct {
		Input          json.RawMessage `json:"input"`
		ExpectedOutput json.RawMessage `json:"expectedOutput"`
	} `json:"testCases"`
	Requirements []string `json:"requirements"`
}

func decodeQuestion(item json.RawMessage) (*models.GeneratedQuestion, error) {
	if err := llm.Validate(questionItemSchema, item); err != nil {
		return nil, err
	}

	var raw rawQuestion
	if err := json.Unmarshal(item, &raw); err != nil {
		return nil, err
	}

	q := &models.GeneratedQuestion{
		Question:     raw.Question,
		Type:         models.QuestionType(strings.ToLower(strings.TrimSpace(raw.Type))),
		Options:      raw.Options,
		Explanation:  raw.Explanation,
		Difficulty:   models.DifficultyLevel(strings.ToLower(strings.TrimSpace(raw.Difficulty))),
		Points:       int(raw.Points),
		StarterCode:  raw.StarterCode,
		Requirements: raw.Requirements,
	}

	q.CorrectAnswer, q.ExpectedAnswer = decodeAnswer(raw.CorrectAnswer, len(raw.Options))

	for _, tc := range raw.TestCases {
		q.TestCases = append(q.TestCases, models.TestCase{
			Input:          looseString(tc.Input),
			ExpectedOutput: looseString(tc.ExpectedOutput),
		})
	}

	return q, nil
}

// decodeAnswer reads an option index (number, digit string or A-D letter) or keeps the text answer
func decodeAnswer(raw json.RawMessage, optionCount int) (*int, string) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ""
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		idx := int(n)
		return &idx, ""
	}

	text := looseString(raw)
	if optionCount > 0 {
		trimmed := strings.TrimSpace(text)
		if idx, err := strconv.Atoi(trimmed); err == nil {
			return &idx, ""
		}
		if len(trimmed) == 1 {
			letter := strings.ToUpper(trimmed)[0]
			if letter >= 'A' && int(letter-'A') < optionCount {
				idx := int(letter - 'A')
				return &idx, ""
			}
		}
	}
	return nil, text
}

func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// backfillQuestion fills only what the generator left out
func backfillQuestion(q *models.GeneratedQuestion, index int, req *GenerateQuestionsRequest) {
	if q.Type == "" {
		switch {
		case req.QuestionType != models.QuestionMixed:
			q.Type = req.QuestionType
		case index%2 == 0:
			q.Type = models.QuestionMCQ
		default:
			q.Type = models.QuestionCoding
		}
	}
	if q.Difficulty == "" {
		q.Difficulty = req.Difficulty
	}
	if q.Points <= 0 {
		q.Points = req.Difficulty.DefaultPoints()
	}
}
