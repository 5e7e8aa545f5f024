package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"seo-strategist-pipeline/internal/models"
	"seo-strategist-pipeline/internal/pkg/logger"
	"seo-strategist-pipeline/internal/services"
)

// generationFailedMessage is the single banner shown for any remote
// generation failure.
const generationFailedMessage = "Generation failed. Please verify your connection or try again."

// WorkflowService is the orchestrator surface the handler drives.
type WorkflowService interface {
	Session() models.WorkspaceSession
	InFlight() (map[models.Phase]bool, string)
	GenerateStrategy(ctx context.Context, inputs models.FormInputs) error
	RunResearch(ctx context.Context) error
	GenerateArticle(ctx context.Context, instructions string) error
	GenerateImageConcepts(ctx context.Context, style, aspectRatio, suggestions string) error
	GenerateConceptImage(ctx context.Context, conceptID string) (*models.ImageConcept, error)
	Chat(ctx context.Context, message string) (*services.ChatResult, error)
	SetActivePhase(phase models.Phase) error
	UpdateArtifact(ctx context.Context, phase models.Phase, content string) error
	SelectHistoryEntry(id string) error
	NewProject()
	ApplyClient(id string) error
	SaveCurrentClient(ctx context.Context) (models.ClientProfile, error)
	ExportDocument() (content, filename string, err error)
	Content(mode string) (string, error)
}

// CollectionStore is the durable-collection surface the handler reads.
type CollectionStore interface {
	History() []models.HistoryEntry
	DeleteHistoryEntry(ctx context.Context, id string) error
	Clients() []models.ClientProfile
	DeleteClient(ctx context.Context, id string) error
}

type WorkflowHandler struct {
	workflow WorkflowService
	store    CollectionStore
	logger   *logger.Logger
}

func NewWorkflowHandler(workflow WorkflowService, collectionStore CollectionStore, log *logger.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		workflow: workflow,
		store:    collectionStore,
		logger:   log,
	}
}

func (handler *WorkflowHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", handler.Health)

	api := router.Group("/api/v1")
	{
		api.POST("/strategy", handler.GenerateStrategy)
		api.POST("/research", handler.RunResearch)
		api.POST("/article", handler.GenerateArticle)
		api.POST("/cover/concepts", handler.GenerateImageConcepts)
		api.POST("/cover/concepts/:id/image", handler.GenerateConceptImage)
		api.POST("/chat", handler.Chat)

		api.GET("/session", handler.GetSession)
		api.GET("/session/content", handler.GetContent)
		api.GET("/session/export", handler.ExportBrief)
		api.POST("/session/artifact", handler.UpdateArtifact)
		api.POST("/session/phase", handler.SetActivePhase)
		api.POST("/session/new", handler.NewProject)
		api.POST("/session/history/:id", handler.SelectHistoryEntry)
		api.POST("/session/client/:id", handler.ApplyClient)

		api.GET("/history", handler.ListHistory)
		api.DELETE("/history/:id", handler.DeleteHistoryEntry)

		api.GET("/clients", handler.ListClients)
		api.POST("/clients", handler.SaveClient)
		api.DELETE("/clients/:id", handler.DeleteClient)
	}
}

func (handler *WorkflowHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

type strategyRequest struct {
	Client          string `json:"client"`
	CompanyBrief    string `json:"company_brief"`
	BrandGuidelines string `json:"brand_guidelines"`
	TargetKeyword   string `json:"target_keyword" binding:"required"`
	SEOTitle        string `json:"seo_title"`
	Direction       string `json:"direction"`
	WordCountTarget string `json:"word_count_target"`
	CompetitorURLs  string `json:"competitor_urls"`
	PAAQuestions    string `json:"paa_questions"`
	Location        string `json:"location"`
	ContentType     string `json:"content_type"`
	AuthorInfo      string `json:"author_info"`
}

func (handler *WorkflowHandler) GenerateStrategy(c *gin.Context) {
	var request strategyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Target Keyword is required."})
		return
	}

	inputs := models.FormInputs{
		Client:          request.Client,
		CompanyBrief:    request.CompanyBrief,
		BrandGuidelines: request.BrandGuidelines,
		TargetKeyword:   request.TargetKeyword,
		SEOTitle:        request.SEOTitle,
		Direction:       request.Direction,
		WordCountTarget: request.WordCountTarget,
		CompetitorURLs:  request.CompetitorURLs,
		PAAQuestions:    request.PAAQuestions,
		Location:        request.Location,
		ContentType:     request.ContentType,
		AuthorInfo:      request.AuthorInfo,
	}

	if err := handler.workflow.GenerateStrategy(c.Request.Context(), inputs); err != nil {
		handler.respondError(c, err)
		return
	}
	handler.respondSession(c)
}

func (handler *WorkflowHandler) RunResearch(c *gin.Context) {
	if err := handler.workflow.RunResearch(c.Request.Context()); err != nil {
		handler.respondError(c, err)
		return
	}
	handler.respondSession(c)
}

type articleRequest struct {
	Instructions string `json:"instructions"`
}

func (handler *WorkflowHandler) GenerateArticle(c *gin.Context) {
	// The body is optional; an empty body means no extra instructions.
	var request articleRequest
	_ = c.ShouldBindJSON(&request)

	if err := handler.workflow.GenerateArticle(c.Request.Context(), request.Instructions); err != nil {
		handler.respondError(c, err)
		return
	}
	handler.respondSession(c)
}

type conceptsRequest struct {
	Style       string `json:"style" binding:"required"`
	AspectRatio string `json:"aspect_ratio" binding:"required"`
	Suggestions string `json:"suggestions"`
}

func (handler *WorkflowHandler) GenerateImageConcepts(c *gin.Context) {
	var request conceptsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Style and aspect ratio are required."})
		return
	}

	if err := handler.workflow.GenerateImageConcepts(c.Request.Context(), request.Style, request.AspectRatio, request.Suggestions); err != nil {
		handler.respondError(c, err)
		return
	}
	handler.respondSession(c)
}

func (handler *WorkflowHandler) GenerateConceptImage(c *gin.Context) {
	concept, err := handler.workflow.GenerateConceptImage(c.Request.Context(), c.Param("id"))
	if err != nil {
		// A failed render is a soft outcome for generation errors: the
		// concept stays retryable and the client sees generated=false.
		kind := models.KindOf(err)
		if kind == models.ErrorKindGeneration || kind == models.ErrorKindExternal || kind == models.ErrorKindTimeout {
			handler.logger.WithError(err).Warn("Concept image render failed", "concept_id", c.Param("id"))
			c.JSON(http.StatusOK, gin.H{"generated": false})
			return
		}
		handler.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generated": concept.GeneratedImage != nil,
		"concept":   concept,
	})
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (handler *WorkflowHandler) Chat(c *gin.Context) {
	var request chatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required."})
		return
	}

	result, err := handler.workflow.Chat(c.Request.Context(), request.Message)
	if err != nil {
		handler.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": result.Response,
		"edited":   result.HasEdit,
		"session":  handler.workflow.Session(),
	})
}

func (handler *WorkflowHandler) GetSession(c *gin.Context) {
	handler.respondSession(c)
}

func (handler *WorkflowHandler) GetContent(c *gin.Context) {
	content, err := handler.workflow.Content(c.Query("mode"))
	if err != nil {
		handler.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": content})
}

func (handler *WorkflowHandler) ExportBrief(c *gin.Context) {
	content, filename, err := handler.workflow.ExportDocument()
	if err != nil {
		handler.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(content))
}

type artifactRequest struct {
	Phase   string `json:"phase" binding:"required"`
	Content string `json:"content"`
}

func (handler *WorkflowHandler) UpdateArtifact(c *gin.Context) {
	var request artifactRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phase is required."})
		return
	}

	if err := handler.workflow.UpdateArtifact(c.Request.Context(), models.Phase(request.Phase), request.Content); err != nil {
		handler.respondError(c, err)
		return
	}
	handler.respondSession(c)
}

type phaseRequest struct {
	Phase string `json:"phase" binding:"required"`
}

func (handler *WorkflowHandler) SetActivePhase(c *gin.Context) {
	var request phaseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phase is required."})
		return
	}

	if err := handler.workflow.SetActivePhase(models.Phase(request.Phase)); err != nil {
		handler.respondError(c, err)
		return
	}
	handler.respondSession(c)
}

func (handler *WorkflowHandler) NewProject(c *gin.Context) {
	handler.workflow.NewProject()
	handler.respondSession(c)
}

func (handler *WorkflowHandler) SelectHistoryEntry(c *gin.Context) {
	if err := handler.workflow.SelectHistoryEntry(c.Param("id")); err != nil {
		handler.respondError(c, err)
		return
	}
	handler.respondSession(c)
}

func (handler *WorkflowHandler) ApplyClient(c *gin.Context) {
	if err := handler.workflow.ApplyClient(c.Param("id")); err != nil {
		handler.respondError(c, err)
		return
	}
	handler.respondSession(c)
}

func (handler *WorkflowHandler) ListHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": handler.store.History()})
}

func (handler *WorkflowHandler) DeleteHistoryEntry(c *gin.Context) {
	if err := handler.store.DeleteHistoryEntry(c.Request.Context(), c.Param("id")); err != nil {
		handler.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": handler.store.History()})
}

func (handler *WorkflowHandler) ListClients(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"clients": handler.store.Clients()})
}

func (handler *WorkflowHandler) SaveClient(c *gin.Context) {
	client, err := handler.workflow.SaveCurrentClient(c.Request.Context())
	if err != nil {
		handler.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client, "clients": handler.store.Clients()})
}

func (handler *WorkflowHandler) DeleteClient(c *gin.Context) {
	if err := handler.store.DeleteClient(c.Request.Context(), c.Param("id")); err != nil {
		handler.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": handler.store.Clients()})
}

func (handler *WorkflowHandler) respondSession(c *gin.Context) {
	session := handler.workflow.Session()
	inFlight, researchStage := handler.workflow.InFlight()

	c.JSON(http.StatusOK, gin.H{
		"session":        session,
		"in_flight":      inFlight,
		"research_stage": researchStage,
	})
}

// respondError maps the error taxonomy onto the HTTP surface: validation
// problems return their own message inline, remote generation failures
// collapse to one banner, persistence problems stay generic.
func (handler *WorkflowHandler) respondError(c *gin.Context, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		handler.logger.WithError(err).Error("Unclassified handler error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error."})
		return
	}

	switch appErr.Kind {
	case models.ErrorKindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Message})
	case models.ErrorKindGeneration, models.ErrorKindExternal, models.ErrorKindTimeout:
		handler.logger.WithError(err).Error("Generation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": generationFailedMessage})
	case models.ErrorKindPersistence:
		handler.logger.WithError(err).Error("Persistence failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error."})
	default:
		handler.logger.WithError(err).Error("Internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error."})
	}
}
