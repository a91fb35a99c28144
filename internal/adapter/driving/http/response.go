package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/deploylinks/internal/domain/comment"
	"github.com/ericfisherdev/deploylinks/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// WebhookResponse acknowledges a webhook delivery.
type WebhookResponse struct {
	Event  string `json:"event"`
	Status string `json:"status"` // "accepted", "ignored" or "pong".
}

// DeploymentCommentResponse is the JSON representation of a PR's deployment
// comment: the raw body, the links parsed out of it and a sanitized HTML
// rendering.
type DeploymentCommentResponse struct {
	ID                  int64             `json:"id"`
	Repository          string            `json:"repository"`
	Number              int               `json:"number"`
	Author              string            `json:"author"`
	Links               map[string]string `json:"links"`
	HasTranslationStats bool              `json:"has_translation_stats"`
	Body                string            `json:"body"`
	HTML                string            `json:"html"`
	CreatedAt           string            `json:"created_at"`
	UpdatedAt           string            `json:"updated_at"`
}

// toDeploymentCommentResponse converts a domain IssueComment holding the
// deployment comment to its JSON representation.
func toDeploymentCommentResponse(repo model.Repo, number int, c model.IssueComment) DeploymentCommentResponse {
	doc := comment.Parse(c.Body)

	links := make(map[string]string, len(model.Platforms))
	for platform, link := range doc.Links() {
		links[string(platform)] = link
	}

	return DeploymentCommentResponse{
		ID:                  c.ID,
		Repository:          repo.FullName(),
		Number:              number,
		Author:              c.Author,
		Links:               links,
		HasTranslationStats: doc.HasTranslationStats(),
		Body:                c.Body,
		HTML:                RenderMarkdown(c.Body),
		CreatedAt:           c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
