package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillvault/skillvault-service/internal/services"
	"github.com/skillvault/skillvault-service/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	generator services.QuestionGeneratorService
}

func NewQuestionHandler(generator services.QuestionGeneratorService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		generator:   generator,
	}
}

// GenerateQuestions drafts questions with the configured language model
// @Summary Generate questions
// @Description One completion request per call. Failures are reported in the result body.
// @Tags questions
// @Accept json
// @Produce json
// @Param request body services.GenerateQuestionsRequest true "Generation request"
// @Success 200 {object} services.GenerationResult
// @Failure 400 {object} services.GenerationResult
// @Failure 502 {object} services.GenerationResult
// @Router /questions/generate [post]
func (h *QuestionHandler) GenerateQuestions(c *gin.Context) {
	var req services.GenerateQuestionsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Generating questions",
		"skill", req.Skill,
		"difficulty", req.Difficulty,
		"count", req.NumberOfQuestions)

	result := h.generator.Generate(c.Request.Context(), &req)
	c.JSON(generationStatus(result), result)
}

// GenerateByTopic drafts questions for a single topic
// @Summary Generate questions by topic
// @Tags questions
// @Accept json
// @Produce json
// @Param request body services.GenerateByTopicRequest true "Topic request"
// @Success 200 {object} services.GenerationResult
// @Failure 400 {object} services.GenerationResult
// @Failure 502 {object} services.GenerationResult
// @Router /questions/generate/topic [post]
func (h *QuestionHandler) GenerateByTopic(c *gin.Context) {
	var req services.GenerateByTopicRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Generating questions by topic", "skill", req.Skill, "topic", req.Topic)

	result := h.generator.GenerateByTopic(c.Request.Context(), &req)
	c.JSON(generationStatus(result), result)
}

// ProviderStatus checks the language model is reachable
// @Summary Question generator status
// @Tags questions
// @Produce json
// @Success 200 {object} services.ProviderStatus
// @Failure 503 {object} services.ProviderStatus
// @Router /questions/status [get]
func (h *QuestionHandler) ProviderStatus(c *gin.Context) {
	status := h.generator.ProviderStatus(c.Request.Context())
	if !status.Available {
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}

func generationStatus(result *services.GenerationResult) int {
	if result.Success {
		return http.StatusOK
	}
	if result.Kind == services.GenerationInvalid {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}
