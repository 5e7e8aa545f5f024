package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"seo-strategist-pipeline/internal/markdown"
	"seo-strategist-pipeline/internal/models"
	"seo-strategist-pipeline/internal/pkg/logger"
	"seo-strategist-pipeline/internal/prompts"
)

// Generator is the generation surface the orchestrator drives.
// *GeminiService implements it; tests substitute a mock.
type Generator interface {
	GenerateText(ctx context.Context, request prompts.Request) (*TextResult, error)
	GenerateConcepts(ctx context.Context, request prompts.Request) ([]models.ImageConcept, error)
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (*models.GeneratedImage, error)
	Chat(ctx context.Context, system prompts.Request, history []models.ChatMessage, message string, editRequest bool) (*ChatResult, error)
}

// OutlineFetcher scrapes competitor pages for the analysis prompt.
type OutlineFetcher interface {
	FetchOutlines(ctx context.Context, urls []string) []models.CompetitorOutline
}

// WorkspaceStore is the persistence surface the orchestrator needs.
type WorkspaceStore interface {
	AddHistoryEntry(ctx context.Context, entry models.HistoryEntry) error
	UpdateHistoryEntry(ctx context.Context, id, keyword string, mutate func(*models.HistoryEntry)) error
	HistoryEntry(id string) (models.HistoryEntry, bool)
	ClientByID(id string) (models.ClientProfile, bool)
	SaveClient(ctx context.Context, client models.ClientProfile) error
}

// Orchestrator is the workflow state machine. It owns the single active
// workspace session, gates phase access, and serializes phase execution
// through per-phase in-flight flags.
type Orchestrator struct {
	generator Generator
	fetcher   OutlineFetcher
	store     WorkspaceStore
	logger    *logger.Logger

	mu               sync.Mutex
	session          *models.WorkspaceSession
	inFlight         map[models.Phase]bool
	conceptsInFlight map[string]bool
	researchStage    string
	coverAspectRatio string
}

func NewOrchestrator(generator Generator, fetcher OutlineFetcher, workspaceStore WorkspaceStore, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		generator:        generator,
		fetcher:          fetcher,
		store:            workspaceStore,
		logger:           log,
		session:          models.NewWorkspaceSession(),
		inFlight:         make(map[models.Phase]bool),
		conceptsInFlight: make(map[string]bool),
	}
}

// Session returns a copy of the current workspace session.
func (orchestrator *Orchestrator) Session() models.WorkspaceSession {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()
	return orchestrator.snapshotLocked()
}

func (orchestrator *Orchestrator) snapshotLocked() models.WorkspaceSession {
	snapshot := *orchestrator.session
	snapshot.ImageConcepts = append([]models.ImageConcept(nil), orchestrator.session.ImageConcepts...)
	snapshot.GroundingLinks = append([]models.GroundingLink(nil), orchestrator.session.GroundingLinks...)
	snapshot.ChatMessages = append([]models.ChatMessage(nil), orchestrator.session.ChatMessages...)
	return snapshot
}

// InFlight reports which phases are currently running; research also
// reports its current stage (framework or evidence).
func (orchestrator *Orchestrator) InFlight() (map[models.Phase]bool, string) {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()

	phases := make(map[models.Phase]bool, len(orchestrator.inFlight))
	for phase, running := range orchestrator.inFlight {
		if running {
			phases[phase] = true
		}
	}
	return phases, orchestrator.researchStage
}

func (orchestrator *Orchestrator) beginPhase(phase models.Phase) error {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()

	if orchestrator.inFlight[phase] {
		return models.NewValidationError("PHASE_ALREADY_RUNNING", "This phase is already running").
			WithMetadata("phase", string(phase))
	}
	orchestrator.inFlight[phase] = true
	return nil
}

func (orchestrator *Orchestrator) endPhase(phase models.Phase) {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()
	delete(orchestrator.inFlight, phase)
	if phase == models.PhaseResearch {
		orchestrator.researchStage = ""
	}
}

// GenerateStrategy runs the brief phase: optional competitor analysis,
// the brief call, the downstream reset, and a new history entry.
func (orchestrator *Orchestrator) GenerateStrategy(ctx context.Context, inputs models.FormInputs) error {
	if strings.TrimSpace(inputs.TargetKeyword) == "" {
		return models.NewValidationError("KEYWORD_REQUIRED", "Target Keyword is required.")
	}

	if err := orchestrator.beginPhase(models.PhaseStrategy); err != nil {
		return err
	}
	defer orchestrator.endPhase(models.PhaseStrategy)

	orchestrator.mu.Lock()
	orchestrator.session.Inputs = inputs
	revision := orchestrator.session.Revision
	orchestrator.mu.Unlock()

	startTime := time.Now()
	competitors := orchestrator.analyzeCompetitors(ctx, inputs)

	briefResult, err := orchestrator.generator.GenerateText(ctx, prompts.BuildBrief(inputs, competitors))
	if err != nil {
		orchestrator.logger.LogPhase(orchestrator.sessionID(), string(models.PhaseStrategy), "generate", time.Since(startTime), err)
		return err
	}

	links := append(competitorLinks(competitors), briefResult.Links...)

	orchestrator.mu.Lock()
	if orchestrator.session.Revision != revision {
		orchestrator.mu.Unlock()
		orchestrator.logger.Warn("Discarding stale brief result", "revision", revision)
		return models.NewValidationError("SESSION_SUPERSEDED", "The workspace was reset while generating.")
	}

	orchestrator.session.Brief = briefResult.Content
	orchestrator.session.ResetDerived()
	orchestrator.session.GroundingLinks = links
	orchestrator.session.ActivePhase = models.PhaseStrategy

	client := inputs.Client
	if client == "" {
		client = "Untitled"
	}
	entry := models.NewHistoryEntry(client, inputs.TargetKeyword, briefResult.Content, links)
	orchestrator.session.HistoryID = entry.ID
	sessionID := orchestrator.session.ID
	orchestrator.mu.Unlock()

	if err := orchestrator.store.AddHistoryEntry(ctx, entry); err != nil {
		orchestrator.logger.WithError(err).Warn("Failed to save history entry", "entry_id", entry.ID)
	}

	orchestrator.logger.LogPhase(sessionID, string(models.PhaseStrategy), "generate", time.Since(startTime), nil)
	return nil
}

// analyzeCompetitors runs the optional competitor pipeline. Failures are
// soft: the brief proceeds without competitor context.
func (orchestrator *Orchestrator) analyzeCompetitors(ctx context.Context, inputs models.FormInputs) []models.CompetitorAnalysis {
	urls := prompts.FilterCompetitorURLs(inputs.CompetitorURLs)
	if len(urls) == 0 {
		return nil
	}

	outlines := orchestrator.fetcher.FetchOutlines(ctx, urls)

	result, err := orchestrator.generator.GenerateText(ctx, prompts.BuildCompetitorAnalysis(urls, outlines))
	if err != nil {
		orchestrator.logger.WithError(err).Warn("Competitor analysis failed, continuing without it")
		return nil
	}

	competitors := make([]models.CompetitorAnalysis, 0, len(urls))
	for _, url := range urls {
		competitors = append(competitors, models.CompetitorAnalysis{
			URL:      url,
			Analysis: result.Content,
			Links:    result.Links,
		})
	}
	return competitors
}

func competitorLinks(competitors []models.CompetitorAnalysis) []models.GroundingLink {
	if len(competitors) == 0 {
		return nil
	}
	// All analyses share one grounded call, so one set of links.
	return append([]models.GroundingLink(nil), competitors[0].Links...)
}

// RunResearch executes the two-step research pipeline: framework design,
// then grounded evidence gathering, assembled into the dossier.
func (orchestrator *Orchestrator) RunResearch(ctx context.Context) error {
	orchestrator.mu.Lock()
	if !orchestrator.session.PhaseAvailable(models.PhaseResearch) {
		orchestrator.mu.Unlock()
		return models.NewValidationError("RESEARCH_LOCKED", "Generate a strategy brief first.")
	}
	brief := orchestrator.session.Brief
	inputs := orchestrator.session.Inputs
	revision := orchestrator.session.Revision
	orchestrator.mu.Unlock()

	if err := orchestrator.beginPhase(models.PhaseResearch); err != nil {
		return err
	}
	defer orchestrator.endPhase(models.PhaseResearch)

	startTime := time.Now()

	orchestrator.setResearchStage("framework")
	frameworkResult, err := orchestrator.generator.GenerateText(ctx, prompts.BuildResearchFramework(brief, inputs))
	if err != nil {
		orchestrator.logger.LogPhase(orchestrator.sessionID(), string(models.PhaseResearch), "framework", time.Since(startTime), err)
		return err
	}

	orchestrator.setResearchStage("evidence")
	evidenceResult, err := orchestrator.generator.GenerateText(ctx, prompts.BuildEvidenceResearch(frameworkResult.Content, inputs))
	if err != nil {
		orchestrator.logger.LogPhase(orchestrator.sessionID(), string(models.PhaseResearch), "evidence", time.Since(startTime), err)
		return err
	}

	dossier := buildDossier(inputs, frameworkResult.Content, evidenceResult.Content)

	orchestrator.mu.Lock()
	if orchestrator.session.Revision != revision {
		orchestrator.mu.Unlock()
		orchestrator.logger.Warn("Discarding stale research result", "revision", revision)
		return models.NewValidationError("SESSION_SUPERSEDED", "The workspace was reset while researching.")
	}
	orchestrator.session.Research = dossier
	orchestrator.session.GroundingLinks = append([]models.GroundingLink(nil), evidenceResult.Links...)
	orchestrator.session.Unlock(models.PhaseWriter)
	historyID := orchestrator.session.HistoryID
	keyword := orchestrator.session.Inputs.TargetKeyword
	sessionID := orchestrator.session.ID
	orchestrator.mu.Unlock()

	orchestrator.amendHistory(ctx, historyID, keyword, func(entry *models.HistoryEntry) {
		entry.Research = dossier
		entry.GroundingLinks = append([]models.GroundingLink(nil), evidenceResult.Links...)
	})

	orchestrator.logger.LogPhase(sessionID, string(models.PhaseResearch), "complete", time.Since(startTime), nil)
	return nil
}

func buildDossier(inputs models.FormInputs, framework, evidence string) string {
	var dossier strings.Builder
	dossier.WriteString("# Research Dossier: " + inputs.TargetKeyword + "\n")
	dossier.WriteString("## Client: " + inputs.Client + "\n")
	dossier.WriteString("## Generated: " + time.Now().Format("1/2/2006") + "\n\n---\n\n")
	dossier.WriteString("# Part 1: Research Framework & Topic Analysis\n\n")
	dossier.WriteString(framework)
	dossier.WriteString("\n\n---\n\n# Part 2: Verified Evidence & Citations\n\n")
	dossier.WriteString(evidence)
	dossier.WriteString("\n")
	return dossier.String()
}

func (orchestrator *Orchestrator) setResearchStage(stage string) {
	orchestrator.mu.Lock()
	orchestrator.researchStage = stage
	orchestrator.mu.Unlock()
}

// GenerateArticle writes the full article from the brief and dossier.
// The model's markdown is rendered to editor HTML before storage.
func (orchestrator *Orchestrator) GenerateArticle(ctx context.Context, instructions string) error {
	orchestrator.mu.Lock()
	if !orchestrator.session.PhaseAvailable(models.PhaseWriter) {
		orchestrator.mu.Unlock()
		return models.NewValidationError("WRITER_LOCKED", "Run the research phase first.")
	}
	brief := orchestrator.session.Brief
	research := orchestrator.session.Research
	inputs := orchestrator.session.Inputs
	revision := orchestrator.session.Revision
	orchestrator.mu.Unlock()

	if err := orchestrator.beginPhase(models.PhaseWriter); err != nil {
		return err
	}
	defer orchestrator.endPhase(models.PhaseWriter)

	startTime := time.Now()

	result, err := orchestrator.generator.GenerateText(ctx, prompts.BuildArticle(brief, research, inputs, instructions))
	if err != nil {
		orchestrator.logger.LogPhase(orchestrator.sessionID(), string(models.PhaseWriter), "generate", time.Since(startTime), err)
		return err
	}

	articleHTML := markdown.RenderForEditor(result.Content)

	orchestrator.mu.Lock()
	if orchestrator.session.Revision != revision {
		orchestrator.mu.Unlock()
		orchestrator.logger.Warn("Discarding stale article result", "revision", revision)
		return models.NewValidationError("SESSION_SUPERSEDED", "The workspace was reset while writing.")
	}
	orchestrator.session.Article = articleHTML
	orchestrator.session.Unlock(models.PhaseCover)
	historyID := orchestrator.session.HistoryID
	keyword := orchestrator.session.Inputs.TargetKeyword
	sessionID := orchestrator.session.ID
	orchestrator.mu.Unlock()

	orchestrator.amendHistory(ctx, historyID, keyword, func(entry *models.HistoryEntry) {
		entry.Article = articleHTML
	})

	orchestrator.logger.LogPhase(sessionID, string(models.PhaseWriter), "generate", time.Since(startTime), nil)
	return nil
}

// GenerateImageConcepts produces the five cover directions from the
// article, or from the brief when no article exists yet.
func (orchestrator *Orchestrator) GenerateImageConcepts(ctx context.Context, style, aspectRatio, suggestions string) error {
	orchestrator.mu.Lock()
	if !orchestrator.session.PhaseAvailable(models.PhaseCover) {
		orchestrator.mu.Unlock()
		return models.NewValidationError("COVER_LOCKED", "Generate a strategy brief first.")
	}
	content := orchestrator.session.Article
	if content == "" {
		content = orchestrator.session.Brief
	}
	revision := orchestrator.session.Revision
	orchestrator.mu.Unlock()

	if err := orchestrator.beginPhase(models.PhaseCover); err != nil {
		return err
	}
	defer orchestrator.endPhase(models.PhaseCover)

	startTime := time.Now()

	concepts, err := orchestrator.generator.GenerateConcepts(ctx, prompts.BuildImageConcepts(content, style, aspectRatio, suggestions))
	if err != nil {
		orchestrator.logger.LogPhase(orchestrator.sessionID(), string(models.PhaseCover), "concepts", time.Since(startTime), err)
		return err
	}

	orchestrator.mu.Lock()
	if orchestrator.session.Revision != revision {
		orchestrator.mu.Unlock()
		orchestrator.logger.Warn("Discarding stale concepts result", "revision", revision)
		return models.NewValidationError("SESSION_SUPERSEDED", "The workspace was reset while generating concepts.")
	}
	orchestrator.session.ImageConcepts = concepts
	orchestrator.coverAspectRatio = aspectRatio
	historyID := orchestrator.session.HistoryID
	keyword := orchestrator.session.Inputs.TargetKeyword
	sessionID := orchestrator.session.ID
	orchestrator.mu.Unlock()

	orchestrator.amendHistory(ctx, historyID, keyword, func(entry *models.HistoryEntry) {
		entry.ImageConcepts = append([]models.ImageConcept(nil), concepts...)
	})

	orchestrator.logger.LogPhase(sessionID, string(models.PhaseCover), "concepts", time.Since(startTime), nil)
	return nil
}

// GenerateConceptImage renders one concept by id. A model response with
// no image is a soft outcome: the concept stays imageless and retryable.
func (orchestrator *Orchestrator) GenerateConceptImage(ctx context.Context, conceptID string) (*models.ImageConcept, error) {
	orchestrator.mu.Lock()
	concept := orchestrator.session.ConceptByID(conceptID)
	if concept == nil {
		orchestrator.mu.Unlock()
		return nil, models.NewValidationError("CONCEPT_NOT_FOUND", "No concept with that id.").
			WithMetadata("concept_id", conceptID)
	}
	if orchestrator.conceptsInFlight[conceptID] {
		orchestrator.mu.Unlock()
		return nil, models.NewValidationError("CONCEPT_ALREADY_RUNNING", "This concept is already rendering.")
	}
	orchestrator.conceptsInFlight[conceptID] = true
	concept.IsLoading = true
	promptText := concept.PromptText
	aspectRatio := orchestrator.coverAspectRatio
	revision := orchestrator.session.Revision
	orchestrator.mu.Unlock()

	defer func() {
		orchestrator.mu.Lock()
		delete(orchestrator.conceptsInFlight, conceptID)
		if current := orchestrator.session.ConceptByID(conceptID); current != nil {
			current.IsLoading = false
		}
		orchestrator.mu.Unlock()
	}()

	image, err := orchestrator.generator.GenerateImage(ctx, promptText, aspectRatio)
	if err != nil {
		return nil, err
	}

	orchestrator.mu.Lock()
	if orchestrator.session.Revision != revision {
		orchestrator.mu.Unlock()
		return nil, models.NewValidationError("SESSION_SUPERSEDED", "The workspace was reset while rendering.")
	}
	current := orchestrator.session.ConceptByID(conceptID)
	if current == nil {
		orchestrator.mu.Unlock()
		return nil, models.NewValidationError("CONCEPT_NOT_FOUND", "The concept set was regenerated.")
	}
	current.GeneratedImage = image
	current.IsLoading = false
	snapshot := *current
	concepts := append([]models.ImageConcept(nil), orchestrator.session.ImageConcepts...)
	historyID := orchestrator.session.HistoryID
	keyword := orchestrator.session.Inputs.TargetKeyword
	orchestrator.mu.Unlock()

	if image != nil {
		orchestrator.amendHistory(ctx, historyID, keyword, func(entry *models.HistoryEntry) {
			entry.ImageConcepts = concepts
		})
	}

	return &snapshot, nil
}

// Chat answers a question about the active artifact, or applies an edit
// when the message carries edit intent and the model returns the
// envelope.
func (orchestrator *Orchestrator) Chat(ctx context.Context, message string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, models.NewValidationError("MESSAGE_REQUIRED", "Message is required.")
	}

	orchestrator.mu.Lock()
	phase := orchestrator.session.ActivePhase
	contextText := orchestrator.session.Artifact(phase)
	if contextText == "" {
		orchestrator.mu.Unlock()
		return nil, models.NewValidationError("NO_ACTIVE_DOCUMENT", "There is no document to discuss yet.")
	}
	inputs := orchestrator.session.Inputs
	history := append([]models.ChatMessage(nil), orchestrator.session.ChatMessages...)
	revision := orchestrator.session.Revision
	orchestrator.mu.Unlock()

	editRequest := prompts.IsEditIntent(message)
	system := prompts.BuildChatSystem(contextText, inputs, editRequest)

	result, err := orchestrator.generator.Chat(ctx, system, history, message, editRequest)
	if err != nil {
		return nil, err
	}

	orchestrator.mu.Lock()
	if orchestrator.session.Revision != revision {
		orchestrator.mu.Unlock()
		return nil, models.NewValidationError("SESSION_SUPERSEDED", "The workspace was reset during the chat call.")
	}

	orchestrator.session.AppendChat(models.ChatRoleUser, message)
	orchestrator.session.AppendChat(models.ChatRoleModel, result.Response)

	var amended string
	if result.HasEdit {
		content := result.EditedContent
		if phase == models.PhaseWriter {
			content = markdown.RenderForEditor(content)
		}
		orchestrator.session.SetArtifact(phase, content)
		amended = content
	}
	historyID := orchestrator.session.HistoryID
	keyword := orchestrator.session.Inputs.TargetKeyword
	orchestrator.mu.Unlock()

	if result.HasEdit {
		orchestrator.amendHistory(ctx, historyID, keyword, func(entry *models.HistoryEntry) {
			applyArtifactToEntry(entry, phase, amended)
		})
	}

	return result, nil
}

// SetActivePhase switches the workspace tab. Switching documents resets
// the chat transcript, matching a fresh conversation per artifact.
func (orchestrator *Orchestrator) SetActivePhase(phase models.Phase) error {
	if !phase.Valid() {
		return models.NewValidationError("PHASE_INVALID", "Unknown phase.")
	}

	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()

	if !orchestrator.session.PhaseAvailable(phase) {
		return models.NewValidationError("PHASE_LOCKED", "That phase is not available yet.").
			WithMetadata("phase", string(phase))
	}
	if orchestrator.session.ActivePhase != phase {
		orchestrator.session.ChatMessages = nil
	}
	orchestrator.session.ActivePhase = phase
	return nil
}

// UpdateArtifact applies a manual source-mode edit to one phase's
// content and amends the history entry.
func (orchestrator *Orchestrator) UpdateArtifact(ctx context.Context, phase models.Phase, content string) error {
	if !phase.Valid() || phase == models.PhaseCover {
		return models.NewValidationError("PHASE_INVALID", "That phase has no editable document.")
	}

	orchestrator.mu.Lock()
	if !orchestrator.session.PhaseAvailable(phase) {
		orchestrator.mu.Unlock()
		return models.NewValidationError("PHASE_LOCKED", "That phase is not available yet.")
	}
	orchestrator.session.SetArtifact(phase, content)
	historyID := orchestrator.session.HistoryID
	keyword := orchestrator.session.Inputs.TargetKeyword
	orchestrator.mu.Unlock()

	orchestrator.amendHistory(ctx, historyID, keyword, func(entry *models.HistoryEntry) {
		applyArtifactToEntry(entry, phase, content)
	})
	return nil
}

func applyArtifactToEntry(entry *models.HistoryEntry, phase models.Phase, content string) {
	switch phase {
	case models.PhaseStrategy:
		entry.Brief = content
	case models.PhaseResearch:
		entry.Research = content
	case models.PhaseWriter:
		entry.Article = content
	}
}

// SelectHistoryEntry restores a saved run into the workspace.
func (orchestrator *Orchestrator) SelectHistoryEntry(id string) error {
	entry, ok := orchestrator.store.HistoryEntry(id)
	if !ok {
		return models.NewValidationError("HISTORY_ENTRY_NOT_FOUND", "No saved run with that id.").
			WithMetadata("id", id)
	}

	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()
	orchestrator.session.LoadHistoryEntry(entry)
	return nil
}

// NewProject resets the workspace. The revision bump makes any in-flight
// phase discard its result on completion.
func (orchestrator *Orchestrator) NewProject() {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()
	orchestrator.session.Reset()
	orchestrator.coverAspectRatio = ""
}

// ApplyClient fills the form inputs from a saved client profile.
func (orchestrator *Orchestrator) ApplyClient(id string) error {
	client, ok := orchestrator.store.ClientByID(id)
	if !ok {
		return models.NewValidationError("CLIENT_NOT_FOUND", "No saved client with that id.").
			WithMetadata("id", id)
	}

	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()
	orchestrator.session.Inputs.Client = client.Name
	orchestrator.session.Inputs.CompanyBrief = client.Brief
	orchestrator.session.Inputs.BrandGuidelines = client.BrandGuidelines
	return nil
}

// SaveCurrentClient stores the session's client fields as a profile.
func (orchestrator *Orchestrator) SaveCurrentClient(ctx context.Context) (models.ClientProfile, error) {
	orchestrator.mu.Lock()
	inputs := orchestrator.session.Inputs
	orchestrator.mu.Unlock()

	if strings.TrimSpace(inputs.Client) == "" {
		return models.ClientProfile{}, models.NewValidationError("CLIENT_NAME_REQUIRED", "Client name is required.")
	}

	client := models.NewClientProfile(inputs.Client, inputs.CompanyBrief, inputs.BrandGuidelines)
	if err := orchestrator.store.SaveClient(ctx, client); err != nil {
		return models.ClientProfile{}, err
	}
	return client, nil
}

// ExportDocument builds the downloadable brief and its filename.
func (orchestrator *Orchestrator) ExportDocument() (content, filename string, err error) {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()

	if orchestrator.session.Brief == "" {
		return "", "", models.NewValidationError("NOTHING_TO_EXPORT", "Generate a strategy brief first.")
	}

	snapshot := orchestrator.snapshotLocked()
	return BuildExportDocument(&snapshot, time.Now()), ExportFilename(&snapshot), nil
}

// Content returns the active artifact as raw source or rendered HTML.
func (orchestrator *Orchestrator) Content(mode string) (string, error) {
	orchestrator.mu.Lock()
	phase := orchestrator.session.ActivePhase
	content := orchestrator.session.Artifact(phase)
	orchestrator.mu.Unlock()

	if content == "" {
		return "", models.NewValidationError("NO_ACTIVE_DOCUMENT", "There is no document to copy yet.")
	}

	switch mode {
	case "", "source":
		return content, nil
	case "html":
		// The article already lives as HTML.
		if phase == models.PhaseWriter {
			return content, nil
		}
		return markdown.RenderForPreview(content), nil
	default:
		return "", models.NewValidationError("MODE_INVALID", "Mode must be source or html.")
	}
}

func (orchestrator *Orchestrator) amendHistory(ctx context.Context, id, keyword string, mutate func(*models.HistoryEntry)) {
	if err := orchestrator.store.UpdateHistoryEntry(ctx, id, keyword, mutate); err != nil {
		orchestrator.logger.WithError(err).Warn("Failed to amend history entry", "entry_id", id)
	}
}

func (orchestrator *Orchestrator) sessionID() string {
	orchestrator.mu.Lock()
	defer orchestrator.mu.Unlock()
	return orchestrator.session.ID
}
