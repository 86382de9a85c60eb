package rest

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/praxis/internal/bridge"
	"github.com/clintrovert/praxis/internal/jira"
	"github.com/clintrovert/praxis/pkg/types"
)

const testSecret = "test-webhook-secret"

type stubIssueService struct {
	mu      sync.Mutex
	issues  []*types.Issue
	boards  []*types.Board
	created []*types.CreateIssueRequest
}

func (s *stubIssueService) SearchIssues(ctx context.Context) ([]*types.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issues, nil
}

func (s *stubIssueService) CreateIssue(ctx context.Context, req *types.CreateIssueRequest) (*types.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, req)
	key := fmt.Sprintf("PRX-%d", 300+len(s.created))
	return &types.Issue{
		ID: key, Key: key,
		Summary:     req.Summary,
		Description: req.Description,
		Type:        &types.IssueType{Name: req.IssueType},
		Labels:      req.Labels,
	}, nil
}

func (s *stubIssueService) GetBoards(ctx context.Context) ([]*types.Board, error) {
	return s.boards, nil
}

func (s *stubIssueService) BrowseURL(key string) string {
	return "https://jira.example.com/browse/" + key
}

func (s *stubIssueService) createdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.created)
}

type stubPullService struct {
	mu       sync.Mutex
	pr       *types.PullRequest
	comments []string
}

func (s *stubPullService) GetPullRequest(ctx context.Context, number int) (*types.PullRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pr, nil
}

func (s *stubPullService) ListPullRequests(ctx context.Context, state string) ([]*types.PullRequest, error) {
	return []*types.PullRequest{s.pr}, nil
}

func (s *stubPullService) ListComments(ctx context.Context, number int) ([]*types.Comment, error) {
	return []*types.Comment{{ID: 1, Body: "hello", PullRequestNumber: number}}, nil
}

func (s *stubPullService) AddComment(ctx context.Context, number int, body string) (*types.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, body)
	return &types.Comment{ID: int64(len(s.comments)), Body: body, PullRequestNumber: number}, nil
}

func (s *stubPullService) PullRequestURL(number int) string {
	return fmt.Sprintf("https://github.com/acme/widgets/pull/%d", number)
}

func (s *stubPullService) commentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comments)
}

func newTestRouter(issues *stubIssueService, pulls *stubPullService) chi.Router {
	cache := jira.NewCache(issues, zap.NewNop())
	orchestrator := bridge.NewOrchestrator(issues, pulls, cache, "PRX", 0.7, zap.NewNop())
	handler := NewHandler(orchestrator, issues, pulls, testSecret, zap.NewNop())

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(router http.Handler, event string, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Hub-Signature-256", signature)
	}
	req.Header.Set("X-GitHub-Event", event)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"action":"created"}`)
	good := sign(testSecret, body)

	assert.True(t, VerifySignature(testSecret, body, good))
	assert.False(t, VerifySignature(testSecret, body, ""))
	assert.False(t, VerifySignature(testSecret, body, "sha256=deadbeef"))

	// Flipping one byte of the body invalidates the old signature.
	tampered := append([]byte{}, body...)
	tampered[0] ^= 0x01
	assert.False(t, VerifySignature(testSecret, tampered, good))

	// Flipping one byte of the signature fails too.
	badSig := []byte(good)
	badSig[len(badSig)-1] ^= 0x01
	assert.False(t, VerifySignature(testSecret, body, string(badSig)))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	router := newTestRouter(&stubIssueService{}, &stubPullService{})
	body := []byte(`{"action":"created"}`)

	rec := postWebhook(router, "issue_comment", body, "sha256=0000")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postWebhook(router, "issue_comment", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	router := newTestRouter(&stubIssueService{}, &stubPullService{})
	body := []byte(`{not json`)

	rec := postWebhook(router, "issue_comment", body, sign(testSecret, body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookAcknowledgesUnknownEvent(t *testing.T) {
	router := newTestRouter(&stubIssueService{}, &stubPullService{})
	body := []byte(`{"action":"completed"}`)

	rec := postWebhook(router, "workflow_run", body, sign(testSecret, body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestWebhookIssueCommentTriggersProcessing(t *testing.T) {
	issues := &stubIssueService{}
	pulls := &stubPullService{pr: &types.PullRequest{Number: 12, Title: "Add retries"}}
	router := newTestRouter(issues, pulls)

	body, err := json.Marshal(map[string]interface{}{
		"action":  "created",
		"comment": map[string]string{"body": "create jira for this"},
		"issue": map[string]interface{}{
			"number":       12,
			"pull_request": map[string]string{"url": "https://api.github.com/repos/acme/widgets/pulls/12"},
		},
	})
	require.NoError(t, err)

	rec := postWebhook(router, "issue_comment", body, sign(testSecret, body))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Processing happens in the background after the response is written.
	assert.Eventually(t, func() bool {
		return issues.createdCount() == 1 && pulls.commentCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebhookIssueCommentIgnoresNonPR(t *testing.T) {
	issues := &stubIssueService{}
	pulls := &stubPullService{pr: &types.PullRequest{Number: 12, Title: "Add retries"}}
	router := newTestRouter(issues, pulls)

	body, err := json.Marshal(map[string]interface{}{
		"action":  "created",
		"comment": map[string]string{"body": "create jira for this"},
		"issue":   map[string]interface{}{"number": 12},
	})
	require.NoError(t, err)

	rec := postWebhook(router, "issue_comment", body, sign(testSecret, body))
	assert.Equal(t, http.StatusOK, rec.Code)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, issues.createdCount())
}

func TestWebhookPullRequestOpenedWithLabel(t *testing.T) {
	issues := &stubIssueService{}
	pulls := &stubPullService{pr: &types.PullRequest{Number: 20, Title: "Refactor config loading"}}
	router := newTestRouter(issues, pulls)

	body, err := json.Marshal(map[string]interface{}{
		"action": "opened",
		"pull_request": map[string]interface{}{
			"number": 20,
			"title":  "Refactor config loading",
			"labels": []map[string]string{{"name": "needs-jira"}},
		},
	})
	require.NoError(t, err)

	rec := postWebhook(router, "pull_request", body, sign(testSecret, body))
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Eventually(t, func() bool {
		return issues.createdCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	issues.mu.Lock()
	defer issues.mu.Unlock()
	assert.Equal(t, "Refactor config loading", issues.created[0].Summary)
	assert.Equal(t, "Task", issues.created[0].IssueType)
}

func TestWebhookPullRequestWithoutLabelIgnored(t *testing.T) {
	issues := &stubIssueService{}
	pulls := &stubPullService{pr: &types.PullRequest{Number: 21, Title: "Docs"}}
	router := newTestRouter(issues, pulls)

	body, err := json.Marshal(map[string]interface{}{
		"action": "opened",
		"pull_request": map[string]interface{}{
			"number": 21,
			"title":  "Docs",
			"labels": []map[string]string{{"name": "documentation"}},
		},
	})
	require.NoError(t, err)

	rec := postWebhook(router, "pull_request", body, sign(testSecret, body))
	assert.Equal(t, http.StatusOK, rec.Code)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, issues.createdCount())
}

func TestManualTrigger(t *testing.T) {
	issues := &stubIssueService{}
	pulls := &stubPullService{pr: &types.PullRequest{Number: 5, Title: "Fix cache key collision"}}
	router := newTestRouter(issues, pulls)

	body := []byte(`{"pr_number": 5, "comment": "create jira please"}`)
	req := httptest.NewRequest(http.MethodPost, "/trigger", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result types.ProcessingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, types.ActionCreated, result.Action)
	require.NotNil(t, result.Issue)
	assert.Equal(t, "[GitHub PR] Fix cache key collision", result.Issue.Summary)
}

func TestManualTriggerSkipped(t *testing.T) {
	router := newTestRouter(&stubIssueService{}, &stubPullService{})

	body := []byte(`{"pr_number": 5, "comment": "no trigger here"}`)
	req := httptest.NewRequest(http.MethodPost, "/trigger", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result types.ProcessingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, types.ActionSkipped, result.Action)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubIssueService{}, &stubPullService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListIssuesFilters(t *testing.T) {
	issues := &stubIssueService{issues: []*types.Issue{
		{Key: "PRX-1", Status: &types.Status{Name: "Done"}},
		{Key: "PRX-2", Status: &types.Status{Name: "In Progress"}},
	}}
	router := newTestRouter(issues, &stubPullService{})

	// Populate the cache first.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/issues?status=done", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []*types.Issue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "PRX-1", listed[0].Key)
}

func TestSearchIssuesEndpoint(t *testing.T) {
	issues := &stubIssueService{issues: []*types.Issue{
		{Key: "PRX-1", Summary: "fix login page styling"},
		{Key: "PRX-2", Summary: "database migration tooling"},
	}}
	router := newTestRouter(issues, &stubPullService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/issues/search?q=fix+login+page+styling&threshold=0.5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var results []*types.MatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "PRX-1", results[0].Issue.Key)
}

func TestSearchIssuesRequiresQuery(t *testing.T) {
	router := newTestRouter(&stubIssueService{}, &stubPullService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/issues/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
