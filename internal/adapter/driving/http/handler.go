// Package httphandler is the HTTP driving adapter: the GitHub webhook
// receiver, the snapshot service pingback and a small read-only API.
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/deploylinks/internal/application"
	"github.com/ericfisherdev/deploylinks/internal/domain/comment"
	"github.com/ericfisherdev/deploylinks/internal/domain/model"
	"github.com/ericfisherdev/deploylinks/internal/domain/port/driven"
	"github.com/ericfisherdev/deploylinks/internal/metrics"
)

// maxBodyBytes matches the largest payload GitHub delivers to webhooks.
const maxBodyBytes = 25 << 20

// JobQueue accepts work to run after the HTTP response has been written.
type JobQueue interface {
	Enqueue(job application.Job) error
}

// Handler is the HTTP driving adapter.
type Handler struct {
	svc           *application.DeploymentService
	clients       *application.InstallationClients
	queue         JobQueue
	webhookSecret []byte
	botLogin      string
	logger        *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. An empty
// webhookSecret disables signature verification.
func NewHandler(
	svc *application.DeploymentService,
	clients *application.InstallationClients,
	queue JobQueue,
	webhookSecret string,
	botLogin string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		svc:           svc,
		clients:       clients,
		queue:         queue,
		webhookSecret: []byte(webhookSecret),
		botLogin:      botLogin,
		logger:        logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered, each
// instrumented for request metrics, and wrapped with logging and recovery
// middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	route := func(pattern, handlerID string, fn http.HandlerFunc) {
		mux.Handle(pattern, metrics.Instrument(handlerID, fn))
	}

	route("POST /webhooks/github", "webhook", h.GitHubWebhook)
	route("POST /snapshots/new", "snapshot_pingback", h.SnapshotPingback)
	route("GET /api/v1/repos/{owner}/{repo}/prs/{number}/comment", "deployment_comment", h.GetDeploymentComment)
	route("GET /api/v1/health", "health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// GitHubWebhook receives GitHub App webhook deliveries. The signature is
// checked, the event is acknowledged and processing continues in the
// background.
func (h *Handler) GitHubWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	payload, err := gh.ValidatePayload(r, h.webhookSecret)
	if err != nil {
		h.logger.Warn("webhook rejected", "delivery", gh.DeliveryID(r), "error", err)
		writeError(w, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	eventType := gh.WebHookType(r)
	switch eventType {
	case "ping", "pull_request", "status", "issue_comment":
	default:
		metrics.WebhookEvents.WithLabelValues(eventType, "").Inc()
		writeJSON(w, http.StatusAccepted, WebhookResponse{Event: eventType, Status: "ignored"})
		return
	}

	event, err := gh.ParseWebHook(eventType, payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	var (
		job    application.Job
		action string
	)

	switch e := event.(type) {
	case *gh.PingEvent:
		metrics.WebhookEvents.WithLabelValues(eventType, "").Inc()
		h.logger.Info("webhook ping", "hook_id", e.GetHookID(), "zen", e.GetZen())
		writeJSON(w, http.StatusOK, WebhookResponse{Event: eventType, Status: "pong"})
		return

	case *gh.PullRequestEvent:
		action = e.GetAction()
		ev := model.PullRequestEvent{
			Repo:           repoFromEvent(e.GetRepo()),
			InstallationID: e.GetInstallation().GetID(),
			Action:         action,
			Number:         e.GetPullRequest().GetNumber(),
			Title:          e.GetPullRequest().GetTitle(),
		}
		job = h.installationJob(eventType, ev.Repo, ev.InstallationID, func(ctx context.Context, store driven.CommentStore) error {
			return h.svc.HandlePullRequest(ctx, store, ev)
		})

	case *gh.StatusEvent:
		ev := model.StatusEvent{
			Repo:           repoFromEvent(e.GetRepo()),
			InstallationID: e.GetInstallation().GetID(),
			Context:        e.GetContext(),
			State:          e.GetState(),
			TargetURL:      e.GetTargetURL(),
		}
		job = h.installationJob(eventType, ev.Repo, ev.InstallationID, func(ctx context.Context, store driven.CommentStore) error {
			return h.svc.HandleStatus(ctx, store, ev)
		})

	case *gh.IssueCommentEvent:
		action = e.GetAction()
		ev := model.IssueCommentEvent{
			Repo:           repoFromEvent(e.GetRepo()),
			InstallationID: e.GetInstallation().GetID(),
			Action:         action,
			IssueNumber:    e.GetIssue().GetNumber(),
			Body:           e.GetComment().GetBody(),
			Author:         e.GetComment().GetUser().GetLogin(),
		}
		job = h.installationJob(eventType, ev.Repo, ev.InstallationID, func(ctx context.Context, store driven.CommentStore) error {
			return h.svc.HandleIssueComment(ctx, store, ev)
		})

	default:
		writeError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	metrics.WebhookEvents.WithLabelValues(eventType, action).Inc()

	if job.Run == nil {
		h.logger.Warn("webhook without installation", "event", eventType, "delivery", gh.DeliveryID(r))
		writeError(w, http.StatusBadRequest, "missing installation")
		return
	}

	if err := h.queue.Enqueue(job); err != nil {
		h.logger.Error("failed to enqueue webhook", "event", eventType, "delivery", gh.DeliveryID(r), "error", err)
		writeError(w, http.StatusServiceUnavailable, "event queue unavailable")
		return
	}

	writeJSON(w, http.StatusAccepted, WebhookResponse{Event: eventType, Status: "accepted"})
}

// installationJob binds fn to the comment store of installationID. It returns
// a zero Job when the delivery carries no installation.
func (h *Handler) installationJob(
	eventType string,
	repo model.Repo,
	installationID int64,
	fn func(ctx context.Context, store driven.CommentStore) error,
) application.Job {
	if installationID == 0 {
		return application.Job{}
	}
	return application.Job{
		Name: fmt.Sprintf("%s %s", eventType, repo.FullName()),
		Run: func(ctx context.Context) error {
			return fn(ctx, h.clients.ForInstallation(installationID))
		},
	}
}

// SnapshotPingback is called by the snapshot service when new builds are
// available. The query names the repository; the body is a JSON array of pull
// request numbers whose links are refreshed in the background. The
// installation is resolved before the body is read, so an uninstalled
// repository answers 404 whatever the body holds.
func (h *Handler) SnapshotPingback(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	repoName := r.URL.Query().Get("repo")
	if owner == "" || repoName == "" {
		writeError(w, http.StatusBadRequest, "Bad Request: missing parameters")
		return
	}

	store, err := h.clients.ForRepo(r.Context(), owner, repoName)
	if err != nil {
		if errors.Is(err, driven.ErrNotInstalled) {
			writeError(w, http.StatusNotFound, driven.ErrNotInstalled.Error())
			return
		}
		h.logger.Error("installation lookup failed", "owner", owner, "repo", repoName, "error", err)
		writeError(w, http.StatusInternalServerError, "Unknown response from GitHub API: "+upstreamStatus(err))
		return
	}

	var prNumbers []int
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&prNumbers); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request: body must be a JSON array of pull request numbers")
		return
	}

	repo := model.Repo{Owner: owner, Name: repoName}
	job := application.Job{
		Name: "snapshot pingback " + repo.FullName(),
		Run: func(ctx context.Context) error {
			return h.svc.HandleSnapshotPingback(ctx, store, repo, prNumbers)
		},
	}
	if err := h.queue.Enqueue(job); err != nil {
		h.logger.Error("failed to enqueue pingback", "repo", repo.FullName(), "error", err)
		writeError(w, http.StatusServiceUnavailable, "event queue unavailable")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetDeploymentComment returns the deployment comment of a pull request.
func (h *Handler) GetDeploymentComment(w http.ResponseWriter, r *http.Request) {
	repo := model.Repo{Owner: r.PathValue("owner"), Name: r.PathValue("repo")}

	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number <= 0 {
		writeError(w, http.StatusBadRequest, "invalid PR number")
		return
	}

	store, err := h.clients.ForRepo(r.Context(), repo.Owner, repo.Name)
	if err != nil {
		if errors.Is(err, driven.ErrNotInstalled) {
			writeError(w, http.StatusNotFound, driven.ErrNotInstalled.Error())
			return
		}
		h.logger.Error("installation lookup failed", "repo", repo.FullName(), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	comments, err := store.ListIssueComments(r.Context(), repo, number)
	if err != nil {
		h.logger.Error("failed to list comments", "repo", repo.FullName(), "number", number, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	c, ok := comment.FindDeploymentComment(comments, h.botLogin)
	if !ok {
		writeError(w, http.StatusNotFound, "deployment comment not found")
		return
	}

	writeJSON(w, http.StatusOK, toDeploymentCommentResponse(repo, number, c))
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// repoFromEvent extracts the owner and name of a webhook's repository.
func repoFromEvent(r *gh.Repository) model.Repo {
	return model.Repo{Owner: r.GetOwner().GetLogin(), Name: r.GetName()}
}

// upstreamStatus returns the HTTP status carried by err, or "unknown".
func upstreamStatus(err error) string {
	var upstream *model.UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode != 0 {
		return strconv.Itoa(upstream.StatusCode)
	}
	return "unknown"
}
