package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/enquiry-console/internal/application"
	"github.com/bryanwahyu/enquiry-console/internal/application/console"
	appenq "github.com/bryanwahyu/enquiry-console/internal/application/enquiries"
	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
	"github.com/bryanwahyu/enquiry-console/internal/infra/db/memory"
	"github.com/bryanwahyu/enquiry-console/internal/middleware"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type store interface {
	domain.Repository
	middleware.Pinger
}

// flakyStore fails queries on demand
type flakyStore struct {
	*memory.EnquiryRepository
	failQuery atomic.Bool
}

func (f *flakyStore) Query(ctx context.Context, opts domain.QueryOptions) ([]*domain.Enquiry, error) {
	if f.failQuery.Load() {
		return nil, errors.New("store unavailable")
	}
	return f.EnquiryRepository.Query(ctx, opts)
}

type testServer struct {
	*httptest.Server
	repo   store
	client *http.Client
}

func newTestServer(t *testing.T, n int) *testServer {
	return newTestServerWith(t, memory.NewEnquiryRepository(), n)
}

func newTestServerWith(t *testing.T, repo store, n int) *testServer {
	t.Helper()

	svc := appenq.NewService(repo, nil, application.FixedClock(t0))
	for i := 1; i <= n; i++ {
		require.NoError(t, svc.Create(context.Background(), &domain.Enquiry{
			Name:             fmt.Sprintf("enquiry %02d", i),
			CarBrand:         "Toyota",
			CarName:          "Corolla",
			PhoneNumber:      "0400 000 000",
			Location:         "Sydney",
			ServicesRequired: []string{"Detailing", "Ceramic coating"},
			CreatedAt:        t0.Add(time.Duration(i) * time.Minute),
		}))
	}

	h := NewRouter(Deps{
		Service:  svc,
		Sessions: console.NewSessions(svc, 15),
		Health: map[string]middleware.HealthChecker{
			"store": middleware.PingChecker{Target: repo},
		},
		Limiter:      middleware.NewRateLimiter(1000, 1000),
		LimitPerPage: 15,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testServer{Server: srv, repo: repo, client: &http.Client{Jar: jar}}
}

func (s *testServer) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := s.client.Get(s.URL + path)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (s *testServer) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := s.client.PostForm(s.URL+path, form)
	require.NoError(t, err)
	return readBody(t, resp)
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	return readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func rows(body string) int {
	return strings.Count(body, `/delete">Delete</a>`)
}

func TestConsoleFirstPage(t *testing.T) {
	s := newTestServer(t, 16)

	status, body := s.get(t, "/")
	require.Equal(t, http.StatusOK, status)

	assert.Contains(t, body, "Page 1 of 2")
	assert.Equal(t, 15, rows(body))
	assert.Contains(t, body, "enquiry 16")
	assert.NotContains(t, body, "enquiry 01")
	assert.Contains(t, body, "Detailing, Ceramic coating")
	assert.Contains(t, body, `disabled>Previous`)
	assert.Contains(t, body, `<button type="submit">Next</button>`)
	for _, col := range []string{"Name", "Car Brand", "Car Name", "Service Required", "Phone Number", "Location", "Date", "Actions"} {
		assert.Contains(t, body, "<th>"+col+"</th>")
	}
}

func TestConsoleNextAndPrevious(t *testing.T) {
	s := newTestServer(t, 16)
	s.get(t, "/")

	status, body := s.post(t, "/pages/next", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Page 2 of 2")
	assert.Equal(t, 1, rows(body))
	assert.Contains(t, body, "enquiry 01")
	assert.Contains(t, body, `disabled>Next`)

	// next on the last page stays put
	_, body = s.post(t, "/pages/next", nil)
	assert.Contains(t, body, "Page 2 of 2")

	_, body = s.post(t, "/pages/previous", nil)
	assert.Contains(t, body, "Page 1 of 2")
	assert.Equal(t, 15, rows(body))
}

func TestConsoleSessionsAreIndependent(t *testing.T) {
	s := newTestServer(t, 16)
	s.get(t, "/")
	s.post(t, "/pages/next", nil)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	other := &http.Client{Jar: jar}
	resp, err := other.Get(s.URL + "/")
	require.NoError(t, err)
	_, body := readBody(t, resp)
	assert.Contains(t, body, "Page 1 of 2")

	_, body = s.get(t, "/")
	assert.Contains(t, body, "Page 2 of 2")

	_, body = s.get(t, "/?reload=1")
	assert.Contains(t, body, "Page 1 of 2")
}

func TestConsoleMarkAttended(t *testing.T) {
	s := newTestServer(t, 3)
	_, body := s.get(t, "/")
	require.Equal(t, 3, strings.Count(body, "Mark as Attended"))

	list, err := s.repo.Query(context.Background(), domain.QueryOptions{Limit: 1})
	require.NoError(t, err)
	id := list[0].ID

	status, body := s.post(t, "/enquiries/"+string(id)+"/attend", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, console.MsgAttended)
	assert.Equal(t, 2, strings.Count(body, "Mark as Attended"))

	got, err := s.repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.Attended)

	// notices are shown once
	_, body = s.get(t, "/")
	assert.NotContains(t, body, console.MsgAttended)
}

func TestConsoleMarkAttendedRefreshFails(t *testing.T) {
	repo := &flakyStore{EnquiryRepository: memory.NewEnquiryRepository()}
	s := newTestServerWith(t, repo, 2)
	s.get(t, "/")

	list, err := repo.EnquiryRepository.Query(context.Background(), domain.QueryOptions{Limit: 1})
	require.NoError(t, err)
	id := list[0].ID

	repo.failQuery.Store(true)
	_, body := s.post(t, "/enquiries/"+string(id)+"/attend", nil)
	assert.Contains(t, body, console.MsgAttended)
	assert.Contains(t, body, `class="notice error"`)
	assert.Contains(t, body, "store unavailable")

	got, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.Attended)
}

func TestConsoleMarkAttendedUnknown(t *testing.T) {
	s := newTestServer(t, 2)
	s.get(t, "/")

	_, body := s.post(t, "/enquiries/missing-id/attend", nil)
	assert.Contains(t, body, `class="notice error"`)
	assert.Contains(t, body, domain.ErrNotFound.Error())
	assert.Equal(t, 2, rows(body))
}

func TestConsoleDelete(t *testing.T) {
	s := newTestServer(t, 2)
	s.get(t, "/")

	list, err := s.repo.Query(context.Background(), domain.QueryOptions{Limit: 1})
	require.NoError(t, err)
	id := string(list[0].ID)

	status, body := s.get(t, "/enquiries/"+id+"/delete")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, console.DeletePrompt)
	assert.Contains(t, body, "enquiry 02")

	// cancel leaves the record alone
	_, body = s.post(t, "/enquiries/"+id+"/delete", url.Values{"confirm": {"no"}})
	assert.Equal(t, 2, rows(body))
	assert.NotContains(t, body, console.MsgDeleted)

	_, body = s.post(t, "/enquiries/"+id+"/delete", url.Values{"confirm": {"yes"}})
	assert.Contains(t, body, console.MsgDeleted)
	assert.Equal(t, 1, rows(body))
	assert.Contains(t, body, "Page 1 of 1")

	_, err = s.repo.Get(context.Background(), domain.ID(id))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConsoleConfirmUnknownRedirects(t *testing.T) {
	s := newTestServer(t, 1)
	status, body := s.get(t, "/enquiries/missing-id/delete")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, domain.ErrNotFound.Error())
	assert.Contains(t, body, "Page 1 of 1")
}

func TestConsoleRejectsMalformedID(t *testing.T) {
	s := newTestServer(t, 1)
	status, _ := s.post(t, "/enquiries/bad%20id/attend", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPIListWalksCollection(t *testing.T) {
	s := newTestServer(t, 23)

	seen := map[domain.ID]bool{}
	var prev time.Time
	cursor := ""
	for pages := 0; ; pages++ {
		require.Less(t, pages, 10)

		path := "/api/enquiries?limit=10"
		if cursor != "" {
			path += "&cursor=" + url.QueryEscape(cursor)
		}
		status, body := s.get(t, path)
		require.Equal(t, http.StatusOK, status, body)

		var res domain.PaginatedResult
		require.NoError(t, json.Unmarshal([]byte(body), &res))
		assert.Equal(t, int64(23), res.Total)
		assert.Equal(t, 3, res.TotalPages)
		assert.Equal(t, 10, res.PageSize)

		for _, e := range res.Data {
			assert.False(t, seen[e.ID], "duplicate %s", e.ID)
			seen[e.ID] = true
			if !prev.IsZero() {
				assert.True(t, e.CreatedAt.Before(prev))
			}
			prev = e.CreatedAt
		}
		if res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}
	assert.Len(t, seen, 23)
}

func TestAPIErrors(t *testing.T) {
	s := newTestServer(t, 1)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad cursor", http.MethodGet, "/api/enquiries?cursor=not-a-cursor", "", http.StatusBadRequest},
		{"cursor with path id", http.MethodGet, "/api/enquiries?cursor=" + domain.Cursor{CreatedAt: t0, ID: "enquiries/x"}.Encode(), "", http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/api/enquiries/nope", "", http.StatusNotFound},
		{"unattend", http.MethodPatch, "/api/enquiries/nope", `{"attended":false}`, http.StatusBadRequest},
		{"bad json", http.MethodPatch, "/api/enquiries/nope", `{`, http.StatusBadRequest},
		{"patch unknown", http.MethodPatch, "/api/enquiries/nope", `{"attended":true}`, http.StatusNotFound},
		{"delete unknown", http.MethodDelete, "/api/enquiries/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, status, body)
			assert.Contains(t, body, `"error"`)
		})
	}
}

func TestAPIPatchAndDelete(t *testing.T) {
	s := newTestServer(t, 1)
	list, err := s.repo.Query(context.Background(), domain.QueryOptions{Limit: 1})
	require.NoError(t, err)
	id := string(list[0].ID)

	status, body := s.do(t, http.MethodPatch, "/api/enquiries/"+id, `{"attended":true}`)
	require.Equal(t, http.StatusOK, status, body)
	var e domain.Enquiry
	require.NoError(t, json.Unmarshal([]byte(body), &e))
	assert.True(t, e.Attended)

	status, _ = s.do(t, http.MethodDelete, "/api/enquiries/"+id, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = s.get(t, "/api/enquiries/"+id)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOperationalEndpoints(t *testing.T) {
	s := newTestServer(t, 0)

	status, body := s.get(t, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"store":{"status":"up"`)

	status, body = s.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	status, _ = s.get(t, "/readyz")
	assert.Equal(t, http.StatusOK, status)

	status, body = s.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "enquiry_console_http_requests_total")
}

func TestEmptyCollection(t *testing.T) {
	s := newTestServer(t, 0)
	_, body := s.get(t, "/")
	assert.Contains(t, body, "No enquiries")
	assert.Contains(t, body, "Page 1 of 0")
	assert.Contains(t, body, `disabled>Next`)
}
