package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clintrovert/praxis/internal/bridge"
	"github.com/clintrovert/praxis/internal/match"
	"github.com/clintrovert/praxis/internal/trigger"
	"github.com/clintrovert/praxis/pkg/types"
)

// autoTriggerLabel marks freshly opened PRs that should get a Jira issue
// without anyone commenting.
const autoTriggerLabel = "needs-jira"

// Handler handles webhook and REST API requests
type Handler struct {
	orchestrator  *bridge.Orchestrator
	issues        bridge.IssueService
	pulls         bridge.PullRequestService
	webhookSecret string
	logger        *zap.Logger
}

// NewHandler creates a new REST handler
func NewHandler(
	orchestrator *bridge.Orchestrator,
	issues bridge.IssueService,
	pulls bridge.PullRequestService,
	webhookSecret string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		orchestrator:  orchestrator,
		issues:        issues,
		pulls:         pulls,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// TriggerRequest represents a manual processing request
type TriggerRequest struct {
	PRNumber int    `json:"pr_number"`
	Comment  string `json:"comment"`
}

type issueCommentEvent struct {
	Action  string `json:"action"`
	Comment struct {
		Body string `json:"body"`
	} `json:"comment"`
	Issue struct {
		Number      int              `json:"number"`
		PullRequest *json.RawMessage `json:"pull_request"`
	} `json:"issue"`
}

type pullRequestEvent struct {
	Action      string `json:"action"`
	PullRequest struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
	} `json:"pull_request"`
}

// HandleWebhook handles POST /webhook. The signature is verified against the
// raw body before any parsing; processing is dispatched to a background
// goroutine so the response never waits on Jira or GitHub.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}

	signature := r.Header.Get("X-Hub-Signature-256")
	if !VerifySignature(h.webhookSecret, body, signature) {
		h.logger.Warn("rejected webhook with invalid signature")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	if !json.Valid(body) {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	h.logger.Info("received github webhook", zap.String("event", eventType))

	switch eventType {
	case "issue_comment":
		h.handleIssueComment(body)
	case "pull_request":
		h.handlePullRequest(body)
	default:
		h.logger.Info("unhandled webhook event", zap.String("event", eventType))
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleIssueComment(body []byte) {
	var event issueCommentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("failed to parse issue_comment payload", zap.Error(err))
		return
	}

	// Only fresh comments on pull requests are considered.
	if event.Action != "created" || event.Issue.PullRequest == nil {
		return
	}

	if !trigger.IsCreationRequest(event.Comment.Body) {
		return
	}

	h.processInBackground(event.Issue.Number, event.Comment.Body)
}

func (h *Handler) handlePullRequest(body []byte) {
	var event pullRequestEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("failed to parse pull_request payload", zap.Error(err))
		return
	}

	if event.Action != "opened" {
		return
	}

	for _, label := range event.PullRequest.Labels {
		if label.Name == autoTriggerLabel {
			comment := "Auto-triggered: Create Jira issue for this PR\n\nType: Task\nSummary: " + event.PullRequest.Title
			h.processInBackground(event.PullRequest.Number, comment)
			return
		}
	}
}

// processInBackground runs the decision procedure detached from the inbound
// request. Failures are logged and reported back on the PR thread only.
func (h *Handler) processInBackground(prNumber int, comment string) {
	go func() {
		ctx := context.Background()
		if _, err := h.orchestrator.ProcessComment(ctx, prNumber, comment); err != nil {
			h.logger.Error("background comment processing failed",
				zap.Int("pr_number", prNumber),
				zap.Error(err),
			)
			h.orchestrator.ReportError(ctx, prNumber, err)
		}
	}()
}

// HandleTrigger handles POST /trigger, the synchronous manual path. It skips
// signature verification; only trusted local callers reach it.
func (h *Handler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.orchestrator.ProcessComment(r.Context(), req.PRNumber, req.Comment)
	if err != nil {
		h.logger.Error("manual trigger failed", zap.Int("pr_number", req.PRNumber), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// HandleHealth handles GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleSync handles POST /api/v1/sync
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if err := h.orchestrator.SyncNow(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cache := h.orchestrator.Cache()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"synced":    len(cache.AllItems()),
		"last_sync": cache.LastSync(),
	})
}

// HandleListIssues handles GET /api/v1/issues with optional status and
// assignee filters over the cached snapshot.
func (h *Handler) HandleListIssues(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	assignee := r.URL.Query().Get("assignee")

	items := h.orchestrator.Cache().AllItems()
	filtered := make([]*types.Issue, 0, len(items))
	for _, issue := range items {
		if status != "" && (issue.Status == nil || !strings.EqualFold(issue.Status.Name, status)) {
			continue
		}
		if assignee != "" && (issue.Assignee == nil || !strings.EqualFold(issue.Assignee.DisplayName, assignee)) {
			continue
		}
		filtered = append(filtered, issue)
	}

	respondJSON(w, http.StatusOK, filtered)
}

// HandleSearchIssues handles GET /api/v1/issues/search, scoring the cached
// snapshot against the q parameter. A stale cache is refreshed first.
func (h *Handler) HandleSearchIssues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}

	threshold := h.orchestrator.Threshold()
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			http.Error(w, "threshold must be a number between 0 and 1", http.StatusBadRequest)
			return
		}
		threshold = parsed
	}

	cache := h.orchestrator.Cache()
	if cache.NeedsSync() {
		if err := cache.Sync(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	respondJSON(w, http.StatusOK, match.FindSimilar(cache.AllItems(), query, threshold))
}

// HandleListBoards handles GET /api/v1/boards
func (h *Handler) HandleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.issues.GetBoards(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, boards)
}

// HandleListPulls handles GET /api/v1/pulls
func (h *Handler) HandleListPulls(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		state = "all"
	}

	prs, err := h.pulls.ListPullRequests(r.Context(), state)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, prs)
}

// HandleListPullComments handles GET /api/v1/pulls/{number}/comments
func (h *Handler) HandleListPullComments(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		http.Error(w, "invalid pull request number", http.StatusBadRequest)
		return
	}

	comments, err := h.pulls.ListComments(r.Context(), number)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, comments)
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/webhook", h.HandleWebhook)
	r.Post("/trigger", h.HandleTrigger)
	r.Get("/health", h.HandleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sync", h.HandleSync)
		r.Get("/issues", h.HandleListIssues)
		r.Get("/issues/search", h.HandleSearchIssues)
		r.Get("/boards", h.HandleListBoards)
		r.Get("/pulls", h.HandleListPulls)
		r.Get("/pulls/{number}/comments", h.HandleListPullComments)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
