package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"seo-strategist-pipeline/internal/config"
	"seo-strategist-pipeline/internal/models"
	"seo-strategist-pipeline/internal/pkg/logger"
	"seo-strategist-pipeline/internal/prompts"
)

// GeminiService wraps the generative model behind the per-phase request
// shapes the orchestrator needs. All remote calls share one retry policy
// and one circuit breaker.
type GeminiService struct {
	client  *genai.Client
	config  config.GeminiConfig
	logger  *logger.Logger
	breaker *gobreaker.CircuitBreaker
}

// TextResult is the outcome of a text-generation phase.
type TextResult struct {
	Content        string
	Links          []models.GroundingLink
	ProcessingTime time.Duration
}

// ChatResult carries the assistant reply and, for edit requests that
// returned the response envelope, the full updated document.
type ChatResult struct {
	Response      string
	EditedContent string
	HasEdit       bool
}

func NewGeminiService(cfg config.GeminiConfig, log *logger.Logger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Gemini API key required")
	}

	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	service := &GeminiService{
		client: client,
		config: cfg,
		logger: log,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "gemini",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("Circuit breaker state changed",
					"breaker", name, "from", from.String(), "to", to.String())
			},
		}),
	}

	log.Info("Gemini service initialized",
		"model", cfg.Model,
		"image_model", cfg.ImageModel,
		"max_tokens", cfg.MaxTokens,
		"max_retries", cfg.MaxRetries)

	return service, nil
}

// GenerateText runs one text phase and returns the model output with any
// grounding links the call produced.
func (service *GeminiService) GenerateText(ctx context.Context, request prompts.Request) (*TextResult, error) {
	startTime := time.Now()

	result, err := service.callModel(ctx, service.config.Model, genai.Text(request.Text), service.buildConfig(request))
	if err != nil {
		service.logger.LogService("gemini", "generate_text", time.Since(startTime), map[string]interface{}{
			"prompt_length": len(request.Text),
			"grounded":      request.UseGrounding,
		}, err)
		return nil, err
	}

	content := extractText(result)
	if content == "" {
		err := models.NewGenerationError("GEMINI_EMPTY_RESPONSE", "Model returned no text").
			WithMetadata("finish_reason", finishReason(result))
		service.logger.LogService("gemini", "generate_text", time.Since(startTime), nil, err)
		return nil, err
	}

	duration := time.Since(startTime)
	links := extractGroundingLinks(result)

	service.logger.LogService("gemini", "generate_text", duration, map[string]interface{}{
		"prompt_length":   len(request.Text),
		"response_length": len(content),
		"grounding_links": len(links),
	}, nil)

	return &TextResult{Content: content, Links: links, ProcessingTime: duration}, nil
}

// conceptsPayload mirrors the structured concept response.
type conceptsPayload struct {
	Prompts []struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		Rationale    string `json:"rationale"`
		GeminiPrompt string `json:"gemini_prompt"`
	} `json:"prompts"`
}

var conceptsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"prompts": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"id":            {Type: genai.TypeString},
					"title":         {Type: genai.TypeString},
					"rationale":     {Type: genai.TypeString},
					"gemini_prompt": {Type: genai.TypeString},
				},
				Required: []string{"id", "title", "rationale", "gemini_prompt"},
			},
		},
	},
}

// GenerateConcepts runs the structured cover-concept phase and returns
// exactly five concepts.
func (service *GeminiService) GenerateConcepts(ctx context.Context, request prompts.Request) ([]models.ImageConcept, error) {
	startTime := time.Now()

	result, err := service.callModel(ctx, service.config.Model, genai.Text(request.Text), service.buildConfig(request))
	if err != nil {
		service.logger.LogService("gemini", "generate_concepts", time.Since(startTime), nil, err)
		return nil, err
	}

	concepts, err := parseConcepts(extractText(result))
	if err != nil {
		service.logger.LogService("gemini", "generate_concepts", time.Since(startTime), nil, err)
		return nil, err
	}

	service.logger.LogService("gemini", "generate_concepts", time.Since(startTime), map[string]interface{}{
		"concepts": len(concepts),
	}, nil)

	return concepts, nil
}

// GenerateImage renders one concept prompt with the image model. A
// response without an inline image part is not an error; the caller
// treats it as a retryable miss.
func (service *GeminiService) GenerateImage(ctx context.Context, prompt, aspectRatio string) (*models.GeneratedImage, error) {
	startTime := time.Now()

	if aspectRatio == "" {
		aspectRatio = "16:9"
	}

	generationConfig := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: aspectRatio},
	}

	result, err := service.callModel(ctx, service.config.ImageModel, genai.Text(prompt), generationConfig)
	if err != nil {
		service.logger.LogService("gemini", "generate_image", time.Since(startTime), nil, err)
		return nil, err
	}

	image := extractInlineImage(result)

	service.logger.LogService("gemini", "generate_image", time.Since(startTime), map[string]interface{}{
		"aspect_ratio": aspectRatio,
		"has_image":    image != nil,
	}, nil)

	return image, nil
}

// Chat sends one conversational turn: the phase context as the leading
// user turn, the transcript, then the new message.
func (service *GeminiService) Chat(ctx context.Context, system prompts.Request, history []models.ChatMessage, message string, editRequest bool) (*ChatResult, error) {
	startTime := time.Now()

	contents := []*genai.Content{
		genai.NewContentFromText(system.Text, genai.RoleUser),
	}
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == models.ChatRoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	result, err := service.callModel(ctx, service.config.Model, contents, service.buildConfig(system))
	if err != nil {
		service.logger.LogService("gemini", "chat", time.Since(startTime), map[string]interface{}{
			"edit_request": editRequest,
		}, err)
		return nil, err
	}

	text := extractText(result)
	if text == "" {
		return nil, models.NewGenerationError("GEMINI_EMPTY_RESPONSE", "Model returned no text")
	}

	chatResult := parseChatResponse(text, editRequest)

	service.logger.LogService("gemini", "chat", time.Since(startTime), map[string]interface{}{
		"edit_request": editRequest,
		"has_edit":     chatResult.HasEdit,
	}, nil)

	return chatResult, nil
}

func (service *GeminiService) buildConfig(request prompts.Request) *genai.GenerateContentConfig {
	temperature := float32(service.config.Temperature)
	generationConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(service.config.MaxTokens),
	}

	if request.ThinkingBudget > 0 {
		budget := request.ThinkingBudget
		generationConfig.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: &budget}
	}

	if request.UseGrounding {
		generationConfig.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	if request.WantConcepts {
		generationConfig.ResponseMIMEType = "application/json"
		generationConfig.ResponseSchema = conceptsSchema
	}

	return generationConfig
}

// callModel runs one GenerateContent call through the circuit breaker
// with bounded exponential retry.
func (service *GeminiService) callModel(ctx context.Context, model string, contents []*genai.Content, generationConfig *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, service.config.Timeout)
	defer cancel()

	operation := func() (*genai.GenerateContentResponse, error) {
		outcome, err := service.breaker.Execute(func() (interface{}, error) {
			return service.client.Models.GenerateContent(callCtx, model, contents, generationConfig)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, backoff.Permanent(err)
			}
			if callCtx.Err() != nil {
				return nil, backoff.Permanent(callCtx.Err())
			}
			return nil, err
		}
		return outcome.(*genai.GenerateContentResponse), nil
	}

	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = service.config.RetryDelay

	result, err := backoff.Retry(callCtx, operation,
		backoff.WithBackOff(exponential),
		backoff.WithMaxTries(uint(service.config.MaxRetries)))
	if err != nil {
		if callCtx.Err() != nil && ctx.Err() == nil {
			return nil, models.NewTimeoutError("GEMINI_TIMEOUT", "Generation call timed out").WithCause(err)
		}
		return nil, models.NewExternalError("GEMINI_CALL_FAILED", "Generation call failed").WithCause(err)
	}

	return result, nil
}

func extractText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String()
}

func extractInlineImage(result *genai.GenerateContentResponse) *models.GeneratedImage {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil
	}

	for _, part := range result.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return &models.GeneratedImage{
				MIMEType:   part.InlineData.MIMEType,
				Base64Data: encodeBase64(part.InlineData.Data),
			}
		}
	}
	return nil
}

// extractGroundingLinks collects the web sources behind a grounded
// response. Entries without a URI are dropped; a missing title falls
// back to the URI.
func extractGroundingLinks(result *genai.GenerateContentResponse) []models.GroundingLink {
	if result == nil || len(result.Candidates) == 0 {
		return nil
	}

	metadata := result.Candidates[0].GroundingMetadata
	if metadata == nil {
		return nil
	}

	var links []models.GroundingLink
	for _, chunk := range metadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		links = append(links, models.GroundingLink{Title: title, URI: chunk.Web.URI})
	}
	return links
}

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func finishReason(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	return string(result.Candidates[0].FinishReason)
}

// stripJSONFences removes markdown code fences some structured responses
// still arrive wrapped in.
func stripJSONFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func parseConcepts(raw string) ([]models.ImageConcept, error) {
	var payload conceptsPayload
	if err := json.Unmarshal([]byte(stripJSONFences(raw)), &payload); err != nil {
		return nil, models.NewGenerationError("CONCEPTS_PARSE_FAILED", "Concept response is not valid JSON").WithCause(err)
	}

	if len(payload.Prompts) != 5 {
		return nil, models.NewGenerationError("CONCEPTS_COUNT_MISMATCH", "Expected exactly five concepts").
			WithMetadata("count", len(payload.Prompts))
	}

	concepts := make([]models.ImageConcept, 0, len(payload.Prompts))
	for _, prompt := range payload.Prompts {
		if prompt.GeminiPrompt == "" {
			return nil, models.NewGenerationError("CONCEPT_PROMPT_EMPTY", "Concept is missing its image prompt")
		}
		id := prompt.ID
		if id == "" {
			id = uuid.New().String()
		}
		concepts = append(concepts, models.ImageConcept{
			ID:         id,
			Title:      prompt.Title,
			Rationale:  prompt.Rationale,
			PromptText: prompt.GeminiPrompt,
		})
	}
	return concepts, nil
}

const (
	markerExplanation = "---EXPLANATION---"
	markerContent     = "---UPDATED_CONTENT---"
	markerEnd         = "---END---"
)

// parseChatResponse splits an edit-envelope reply into explanation and
// updated document. A reply without the envelope, even on an edit
// request, degrades to a plain answer.
func parseChatResponse(text string, editRequest bool) *ChatResult {
	if !editRequest || !strings.Contains(text, markerContent) {
		return &ChatResult{Response: text}
	}

	explanation := "Document updated."
	if start := strings.Index(text, markerExplanation); start != -1 {
		rest := text[start+len(markerExplanation):]
		if end := strings.Index(rest, markerContent); end != -1 {
			if trimmed := strings.TrimSpace(rest[:end]); trimmed != "" {
				explanation = trimmed
			}
		}
	}

	contentStart := strings.Index(text, markerContent)
	rest := text[contentStart+len(markerContent):]
	content := rest
	if end := strings.Index(rest, markerEnd); end != -1 {
		content = rest[:end]
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return &ChatResult{Response: explanation}
	}

	return &ChatResult{Response: explanation, EditedContent: content, HasEdit: true}
}
