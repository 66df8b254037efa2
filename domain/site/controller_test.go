package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/aimaker-waitlist/config/router"
	"github.com/akeren/aimaker-waitlist/domain/waitlist"
	"github.com/akeren/aimaker-waitlist/internal/log"
	apperrors "github.com/akeren/aimaker-waitlist/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type brokenService struct {
	waitlist.WaitlistService
}

func (brokenService) List(context.Context) (*waitlist.ListResponse, error) {
	return nil, apperrors.NewStorageError(waitlist.MessageUnexpected, errors.New("parse data/waitlist.json: unexpected EOF"))
}

func newSiteTestRouter(t *testing.T, service waitlist.WaitlistService, opts PageOptions) *router.RouterService {
	t.Helper()

	rs := router.CreateRouterService(log.NewLoggerWithJSONOutput(), nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	rs.MountController(NewSiteController(service, opts))
	return rs
}

func get(rs *router.RouterService, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func memoryService(seed ...string) waitlist.WaitlistService {
	return waitlist.NewWaitlistService(log.NewLoggerWithJSONOutput(), waitlist.NewMemoryRepository(seed...), nil)
}

func TestHomePage(t *testing.T) {
	rs := newSiteTestRouter(t, memoryService(), PageOptions{})

	w := get(rs, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), ProductName)
	assert.Contains(t, w.Body.String(), "/api/join-waitlist")
}

func TestViewWaitlistPage_ListsEmails(t *testing.T) {
	rs := newSiteTestRouter(t, memoryService("a@b.com", "<script>@x.io"), PageOptions{})

	w := get(rs, "/view-waitlist")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Total: 2 emails")
	assert.Contains(t, w.Body.String(), "a@b.com")
	assert.Contains(t, w.Body.String(), "&lt;script&gt;@x.io")
	assert.NotContains(t, w.Body.String(), "<script>@x.io")
}

func TestViewWaitlistPage_Empty(t *testing.T) {
	rs := newSiteTestRouter(t, memoryService(), PageOptions{})

	w := get(rs, "/view-waitlist")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Total: 0 emails")
	assert.Contains(t, w.Body.String(), "No emails in the waitlist yet.")
}

func TestViewWaitlistPage_AdminToken(t *testing.T) {
	rs := newSiteTestRouter(t, memoryService("a@b.com"), PageOptions{AdminToken: "s3cret"})

	w := get(rs, "/view-waitlist")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "a@b.com")

	w = get(rs, "/view-waitlist?token=s3cret")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@b.com")
}

func TestViewWaitlistPage_LoadFailure(t *testing.T) {
	hidden := newSiteTestRouter(t, brokenService{}, PageOptions{})
	w := get(hidden, "/view-waitlist")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to load waitlist data")
	assert.NotContains(t, w.Body.String(), "unexpected EOF")

	exposed := newSiteTestRouter(t, brokenService{}, PageOptions{ExposeErrorDetails: true})
	w = get(exposed, "/view-waitlist")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "unexpected EOF")
}
