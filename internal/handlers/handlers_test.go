package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shrikavin.dev/internal/background"
	"shrikavin.dev/internal/cache"
	"shrikavin.dev/internal/config"
	"shrikavin.dev/internal/content"
	"shrikavin.dev/internal/models"
	"shrikavin.dev/internal/ratelimit"
	"shrikavin.dev/internal/services"
	"shrikavin.dev/internal/storage/sqlite"
)

const (
	iPhoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []models.ContactMessage
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg models.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testServer struct {
	handler http.Handler
	store   *sqlite.Store
	mailer  *recordingMailer
	cfg     *config.Config
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()
	portfolio, err := content.Default()
	require.NoError(t, err)

	dir := t.TempDir()
	cfg := &config.Config{
		DataPath:       dir,
		ResumePath:     filepath.Join(dir, "resume.pdf"),
		BackgroundFPS:  60,
		SubmitGuardTTL: time.Minute,
		ContactSalt:    "test",
		Portfolio:      portfolio,
	}

	store, err := sqlite.Open(context.Background(), filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	limiter := ratelimit.NewLimiter(ratelimit.Config{Limit: rateLimit, Window: time.Hour})
	t.Cleanup(limiter.Stop)

	m := &recordingMailer{}
	h, err := SetupRoutes(cfg, Dependencies{
		Store:   store,
		Mailer:  m,
		Guard:   cache.NewMemory(),
		Limiter: limiter,
		Logger:  log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)
	return &testServer{handler: h, store: store, mailer: m, cfg: cfg}
}

func (s *testServer) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)
	return rec
}

func (s *testServer) get(path, ua string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if ua != "" {
		r.Header.Set("User-Agent", ua)
	}
	return s.do(r)
}

func formRequest(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Accept", "text/html")
	return r
}

func validForm() url.Values {
	return url.Values{
		"name":    {"Jane Doe"},
		"email":   {"jane@example.com"},
		"subject": {"Hello"},
		"message": {"Great portfolio!"},
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 5)
	rec := s.get("/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, 5)
	rec := s.get("/", desktopUA)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 7, doc.Find("main > section, main > footer").Length())
	assert.Equal(t, "Shrikavin_B_Resume.pdf", doc.Find("#resume-link").AttrOr("download", ""))
}

func TestSectionFragment(t *testing.T) {
	s := newTestServer(t, 5)

	rec := s.get("/sections/projects", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Featured Projects")
	assert.NotContains(t, rec.Body.String(), "<html")

	assert.Equal(t, http.StatusNotFound, s.get("/sections/blog", "").Code)
}

func TestStatic(t *testing.T) {
	s := newTestServer(t, 5)
	rec := s.get("/static/js/app.js", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "IntersectionObserver")

	assert.Equal(t, http.StatusOK, s.get("/static/css/site.css", "").Code)
}

func TestProjects(t *testing.T) {
	s := newTestServer(t, 5)

	rec := s.get("/api/projects", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var projects []models.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projects))
	assert.Len(t, projects, len(s.cfg.Portfolio.Projects))

	rec = s.get("/api/projects/skflix", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var project models.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
	assert.Equal(t, "SKFLIX", project.Title)

	rec = s.get("/api/projects/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Project not found"}`, rec.Body.String())
}

func TestPortfolioAndSkills(t *testing.T) {
	s := newTestServer(t, 5)

	rec := s.get("/api/portfolio", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p models.Portfolio
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, s.cfg.Portfolio.Profile.Name, p.Profile.Name)

	rec = s.get("/api/skills", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var skills []services.SkillCategoryView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &skills))
	require.NotEmpty(t, skills)
	first := s.cfg.Portfolio.SkillCategories[0].Skills[0]
	assert.Equal(t, float64(first.Level), skills[0].Skills[0].Width)
}

func TestContact_FormSuccess(t *testing.T) {
	s := newTestServer(t, 5)

	rec := s.do(formRequest(validForm()))
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, services.SuccessMessage, doc.Find(".form-notice").Text())
	doc.Find("#contact-form input").Each(func(_ int, sel *goquery.Selection) {
		assert.Empty(t, sel.AttrOr("value", ""), "field %s is cleared", sel.AttrOr("name", ""))
	})
	assert.Empty(t, doc.Find("#contact-form textarea").Text())

	assert.Equal(t, 1, s.mailer.count())
	msgs, err := s.store.ListMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.NotNil(t, msgs[0].DeliveredAt)
}

func TestContact_JSON(t *testing.T) {
	s := newTestServer(t, 5)

	body := `{"name":"Jane","email":"jane@example.com","subject":"Hi","message":"Hello there"}`
	r := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rec := s.do(r)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, services.SuccessMessage, resp["message"])
	assert.NotEmpty(t, resp["id"])

	r = httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("{not json"))
	r.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, s.do(r).Code)
}

func TestContact_MissingFields(t *testing.T) {
	s := newTestServer(t, 5)

	form := validForm()
	form.Set("subject", "")
	rec := s.do(formRequest(form))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", doc.Find(`input[name="name"]`).AttrOr("value", ""), "entered values are kept")
	assert.Contains(t, doc.Find(".field-error").Text(), "subject is required")

	body := `{"name":"","email":"jane@example.com","subject":"Hi","message":"Hello"}`
	r := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rec = s.do(r)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "name")

	assert.Zero(t, s.mailer.count(), "nothing is sent for an invalid form")
	msgs, err := s.store.ListMessages(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestContact_DeliveryFailure(t *testing.T) {
	s := newTestServer(t, 5)
	s.mailer.err = errors.New("relay down")

	rec := s.do(formRequest(validForm()))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	msgs, err := s.store.ListMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Nil(t, msgs[0].DeliveredAt)
}

func TestContact_RateLimited(t *testing.T) {
	s := newTestServer(t, 2)

	assert.Equal(t, http.StatusOK, s.do(formRequest(validForm())).Code)
	assert.Equal(t, http.StatusOK, s.do(formRequest(validForm())).Code)

	rec := s.do(formRequest(validForm()))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, 2, s.mailer.count())
}

func TestContact_RateLimitedFormGetsHTML(t *testing.T) {
	s := newTestServer(t, 1)

	require.Equal(t, http.StatusOK, s.do(formRequest(validForm())).Code)

	rec := s.do(formRequest(validForm()))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	form := doc.Find("#contact-form")
	require.Equal(t, 1, form.Length(), "the form survives a rejection")
	assert.Equal(t, 1, form.Find(`button[type="submit"]`).Length())
	assert.Contains(t, form.Find(".form-notice").Text(), "too many messages")
	assert.Equal(t, "Jane Doe", form.Find(`input[name="name"]`).AttrOr("value", ""))

	r := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Jane"}`))
	r.Header.Set("Content-Type", "application/json")
	rec = s.do(r)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, 1, s.mailer.count())
}

func TestContact_SpoofedForwardingSharesLimit(t *testing.T) {
	s := newTestServer(t, 1)

	for i := 0; i < 5; i++ {
		r := formRequest(validForm())
		r.RemoteAddr = "203.0.113.7:4000"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		s.do(r)
	}
	assert.Equal(t, 1, s.mailer.count(), "forged forwarding headers do not open new buckets")
}

func TestSetupRoutes_InvalidTrustedProxy(t *testing.T) {
	portfolio, err := content.Default()
	require.NoError(t, err)
	cfg := &config.Config{BackgroundFPS: 30, Portfolio: portfolio, TrustedProxies: []string{"nope"}}

	_, err = SetupRoutes(cfg, Dependencies{Logger: log.New(io.Discard, "", 0)})
	assert.Error(t, err)
}

func TestResume(t *testing.T) {
	s := newTestServer(t, 5)

	assert.Equal(t, http.StatusNotFound, s.get("/resume", desktopUA).Code, "missing asset is a 404")

	require.NoError(t, os.WriteFile(s.cfg.ResumePath, []byte("%PDF-1.4 test"), 0o644))

	rec := s.get("/resume", desktopUA)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=Shrikavin_B_Resume.pdf", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4 test", rec.Body.String())

	rec = s.get("/resume", iPhoneUA)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "inline", rec.Header().Get("Content-Disposition"))
}

func TestResumeLink(t *testing.T) {
	s := newTestServer(t, 5)

	var link services.ResumeLink
	rec := s.get("/api/resume/link", iPhoneUA)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))
	assert.True(t, link.Handheld)
	assert.Equal(t, "_blank", link.Target)
	assert.Empty(t, link.Download)
	assert.Equal(t, services.SaveHint, link.Hint)

	link = services.ResumeLink{}
	rec = s.get("/api/resume/link", desktopUA)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))
	assert.False(t, link.Handheld)
	assert.Equal(t, "Shrikavin_B_Resume.pdf", link.Download)
}

func TestBackgroundSnapshot(t *testing.T) {
	s := newTestServer(t, 5)

	rec := s.get("/api/background?width=800&height=600&steps=5&seed=7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap background.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, uint64(5), snap.Frame)
	assert.Len(t, snap.Particles, 60)
	assert.Len(t, snap.Shapes, 5)

	rec = s.get("/api/background?width=0&height=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	snap = background.Snapshot{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Empty(t, snap.Particles)

	assert.Equal(t, http.StatusBadRequest, s.get("/api/background?width=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.get("/api/background?width=-5", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.get("/api/background?width=NaN", "").Code)
}

func TestBackgroundStream(t *testing.T) {
	s := newTestServer(t, 5)
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/background?width=400&height=400"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var snap background.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, 400.0, snap.Width)
	assert.Len(t, snap.Particles, 20)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: "resize", Width: 800, Height: 600}))
	require.NoError(t, conn.WriteJSON(clientMessage{Type: "pointer", X: 10, Y: 10}))

	resized := false
	for i := 0; i < 200 && !resized; i++ {
		snap = background.Snapshot{}
		require.NoError(t, conn.ReadJSON(&snap))
		resized = snap.Width == 800
	}
	assert.True(t, resized, "resize message applied to the field")
	assert.Len(t, snap.Particles, 60)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
}

func TestBackgroundStream_InvalidViewport(t *testing.T) {
	s := newTestServer(t, 5)
	rec := s.get("/ws/background?width=-1&height=10", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
