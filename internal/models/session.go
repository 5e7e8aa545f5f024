package models

import (
	"time"

	"github.com/google/uuid"
)

// Phase identifies one step of the content workflow.
type Phase string

const (
	PhaseStrategy Phase = "strategy"
	PhaseResearch Phase = "research"
	PhaseWriter   Phase = "writer"
	PhaseCover    Phase = "cover"
)

var phaseRank = map[Phase]int{
	PhaseStrategy: 0,
	PhaseResearch: 1,
	PhaseWriter:   2,
	PhaseCover:    3,
}

func (phase Phase) Valid() bool {
	_, ok := phaseRank[phase]
	return ok
}

// FormInputs carries the full strategy input form.
type FormInputs struct {
	Client          string `json:"client"`
	CompanyBrief    string `json:"company_brief"`
	BrandGuidelines string `json:"brand_guidelines"`
	TargetKeyword   string `json:"target_keyword"`
	SEOTitle        string `json:"seo_title"`
	Direction       string `json:"direction"`
	WordCountTarget string `json:"word_count_target"`
	CompetitorURLs  string `json:"competitor_urls"`
	PAAQuestions    string `json:"paa_questions"`
	Location        string `json:"location"`
	ContentType     string `json:"content_type"`
	AuthorInfo      string `json:"author_info"`
}

// WorkspaceSession is the single active workspace: form inputs, the
// generated artifacts of every phase, and the workflow bookkeeping that
// gates phase access.
type WorkspaceSession struct {
	ID       string `json:"id"`
	Revision int64  `json:"revision"`

	// HistoryID names the history entry created by the latest brief
	// generation; later phases amend that entry by id.
	HistoryID string `json:"history_id,omitempty"`

	Inputs FormInputs `json:"inputs"`

	Brief    string `json:"brief"`
	Research string `json:"research"`
	// Article holds rendered editor HTML, not markdown.
	Article string `json:"article"`

	ImageConcepts  []ImageConcept  `json:"image_concepts,omitempty"`
	GroundingLinks []GroundingLink `json:"grounding_links,omitempty"`
	ChatMessages   []ChatMessage   `json:"chat_messages,omitempty"`

	ActivePhase Phase `json:"active_phase"`

	// UnlockedThrough is a high-water mark: once a phase unlocks it
	// stays unlocked even if an earlier artifact is edited to empty.
	UnlockedThrough Phase `json:"unlocked_through"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewWorkspaceSession() *WorkspaceSession {
	now := time.Now().UTC()
	return &WorkspaceSession{
		ID:              uuid.New().String(),
		Revision:        1,
		ActivePhase:     PhaseStrategy,
		UnlockedThrough: PhaseStrategy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// PhaseAvailable reports whether the workflow allows entering phase.
// Research and writer unlock strictly in order; the cover phase only
// needs a brief, so it unlocks together with research.
func (session *WorkspaceSession) PhaseAvailable(phase Phase) bool {
	unlocked, ok := phaseRank[session.UnlockedThrough]
	if !ok {
		unlocked = 0
	}

	switch phase {
	case PhaseStrategy:
		return true
	case PhaseResearch:
		return unlocked >= phaseRank[PhaseResearch]
	case PhaseWriter:
		return unlocked >= phaseRank[PhaseWriter]
	case PhaseCover:
		return unlocked >= phaseRank[PhaseResearch]
	default:
		return false
	}
}

// Unlock raises the high-water mark to phase. It never lowers it.
func (session *WorkspaceSession) Unlock(phase Phase) {
	if phaseRank[phase] > phaseRank[session.UnlockedThrough] {
		session.UnlockedThrough = phase
	}
}

// Artifact returns the stored content for phase. The cover phase has no
// single text artifact.
func (session *WorkspaceSession) Artifact(phase Phase) string {
	switch phase {
	case PhaseStrategy:
		return session.Brief
	case PhaseResearch:
		return session.Research
	case PhaseWriter:
		return session.Article
	default:
		return ""
	}
}

// SetArtifact replaces the content for phase without touching the
// unlock watermark. Used for manual source-mode edits and chat edits.
func (session *WorkspaceSession) SetArtifact(phase Phase, content string) {
	switch phase {
	case PhaseStrategy:
		session.Brief = content
	case PhaseResearch:
		session.Research = content
	case PhaseWriter:
		session.Article = content
	}
	session.UpdatedAt = time.Now().UTC()
}

// ResetDerived clears everything downstream of a newly generated brief:
// research, article, image concepts, grounding links and the chat
// transcript. The brief itself and the form inputs survive.
func (session *WorkspaceSession) ResetDerived() {
	session.Research = ""
	session.Article = ""
	session.ImageConcepts = nil
	session.GroundingLinks = nil
	session.ChatMessages = nil
	session.UnlockedThrough = PhaseResearch
	session.UpdatedAt = time.Now().UTC()
}

// Reset returns the session to a blank project and bumps the revision
// so in-flight results from the previous project are discarded.
func (session *WorkspaceSession) Reset() {
	session.Revision++
	session.HistoryID = ""
	session.Inputs = FormInputs{}
	session.Brief = ""
	session.Research = ""
	session.Article = ""
	session.ImageConcepts = nil
	session.GroundingLinks = nil
	session.ChatMessages = nil
	session.ActivePhase = PhaseStrategy
	session.UnlockedThrough = PhaseStrategy
	session.UpdatedAt = time.Now().UTC()
}

// LoadHistoryEntry restores a saved run into the session.
func (session *WorkspaceSession) LoadHistoryEntry(entry HistoryEntry) {
	session.Revision++
	session.HistoryID = entry.ID
	session.Inputs.Client = entry.Client
	session.Inputs.TargetKeyword = entry.Keyword
	session.Brief = entry.Brief
	session.Research = entry.Research
	session.Article = entry.Article
	session.ImageConcepts = append([]ImageConcept(nil), entry.ImageConcepts...)
	session.GroundingLinks = append([]GroundingLink(nil), entry.GroundingLinks...)
	session.ChatMessages = nil
	session.ActivePhase = PhaseStrategy

	session.UnlockedThrough = PhaseResearch
	if entry.Research != "" {
		session.UnlockedThrough = PhaseWriter
	}
	if entry.Article != "" {
		session.UnlockedThrough = PhaseCover
	}
	session.UpdatedAt = time.Now().UTC()
}

// AppendChat records one transcript message.
func (session *WorkspaceSession) AppendChat(role ChatRole, text string) {
	session.ChatMessages = append(session.ChatMessages, ChatMessage{
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	session.UpdatedAt = time.Now().UTC()
}

// ConceptByID returns a pointer into the session's concept slice.
func (session *WorkspaceSession) ConceptByID(id string) *ImageConcept {
	for index := range session.ImageConcepts {
		if session.ImageConcepts[index].ID == id {
			return &session.ImageConcepts[index]
		}
	}
	return nil
}
