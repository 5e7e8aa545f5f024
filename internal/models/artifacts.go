package models

import (
	"time"

	"github.com/google/uuid"
)

// GroundingLink is one web source returned by a grounded generation call.
type GroundingLink struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// GeneratedImage holds one inline image returned by the image model.
type GeneratedImage struct {
	MIMEType   string `json:"mime_type"`
	Base64Data string `json:"base64_data"`
}

// ImageConcept is one of the five cover-image directions produced by the
// concept phase. PromptText is the full prompt handed to the image model.
type ImageConcept struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Rationale      string          `json:"rationale"`
	PromptText     string          `json:"prompt_text"`
	GeneratedImage *GeneratedImage `json:"generated_image,omitempty"`
	IsLoading      bool            `json:"is_loading"`
}

type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// CompetitorOutline is the scraped structure of one competitor page.
type CompetitorOutline struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Headings []string `json:"headings"`
	Fetched  bool     `json:"fetched"`
}

// CompetitorAnalysis is the grounded model analysis of one competitor URL.
type CompetitorAnalysis struct {
	URL      string          `json:"url"`
	Analysis string          `json:"analysis"`
	Links    []GroundingLink `json:"links,omitempty"`
}

// HistoryEntry is one saved brief run. Research, article and image
// concepts are amended onto the entry as later phases complete.
type HistoryEntry struct {
	ID             string          `json:"id"`
	Timestamp      time.Time       `json:"timestamp"`
	Client         string          `json:"client"`
	Keyword        string          `json:"keyword"`
	Brief          string          `json:"brief"`
	Research       string          `json:"research,omitempty"`
	Article        string          `json:"article,omitempty"`
	GroundingLinks []GroundingLink `json:"grounding_links,omitempty"`
	ImageConcepts  []ImageConcept  `json:"image_concepts,omitempty"`
}

func NewHistoryEntry(client, keyword, brief string, links []GroundingLink) HistoryEntry {
	return HistoryEntry{
		ID:             uuid.New().String(),
		Timestamp:      time.Now().UTC(),
		Client:         client,
		Keyword:        keyword,
		Brief:          brief,
		GroundingLinks: links,
	}
}

// ClientProfile is a reusable client record applied to the input form.
type ClientProfile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Brief           string `json:"brief"`
	BrandGuidelines string `json:"brand_guidelines"`
}

func NewClientProfile(name, brief, brandGuidelines string) ClientProfile {
	return ClientProfile{
		ID:              uuid.New().String(),
		Name:            name,
		Brief:           brief,
		BrandGuidelines: brandGuidelines,
	}
}
