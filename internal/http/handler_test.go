package http

import (
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"

	"javinity/internal/content"
	"javinity/internal/repository/memory"
	"javinity/internal/service"
	"javinity/internal/session"
	"javinity/internal/validation"
)

type testClient struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	site, err := content.Default()
	if err != nil {
		t.Fatal(err)
	}
	logger, _ := test.NewNullLogger()
	views := memory.NewViewRepository()
	sessions, err := session.NewManager("test-secret", time.Hour, false)
	if err != nil {
		t.Fatal(err)
	}

	blog := service.NewBlogService(views, site.Blog)
	auth := service.NewAuthService(views, validation.New(), service.NewStubSubmitter(0, logger))

	router := gin.New()
	NewHandler(site, blog, auth, sessions, logger, []string{"*"}).RegisterRoutes(router)
	return &testClient{t: t, router: router, cookies: make(map[string]*http.Cookie)}
}

func (tc *testClient) do(method, target string, body string, contentType string) *httptest.ResponseRecorder {
	tc.t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range tc.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		tc.cookies[c.Name] = c
	}
	return w
}

func (tc *testClient) get(target string) *httptest.ResponseRecorder {
	return tc.do(http.MethodGet, target, "", "")
}

func (tc *testClient) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return tc.do(http.MethodPost, target, form.Encode(), "application/x-www-form-urlencoded")
}

func (tc *testClient) postJSON(method, target string, body any) *httptest.ResponseRecorder {
	tc.t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		tc.t.Fatal(err)
	}
	return tc.do(method, target, string(data), "application/json")
}

var (
	blogViewRe = regexp.MustCompile(`action="/blog/([0-9a-f-]+)/like"`)
	authViewRe = regexp.MustCompile(`action="/auth/([0-9a-f-]+)/mode"`)
	likeRe     = regexp.MustCompile(`<span class="like-count">(\d+)</span>`)
	toggleRe   = regexp.MustCompile(`class="menu-toggle" href="([^"]+)"`)
)

func extract(t *testing.T, re *regexp.Regexp, body string) string {
	t.Helper()
	m := re.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("pattern %s not found in body", re)
	}
	return m[1]
}

func TestHomePage(t *testing.T) {
	tc := newTestClient(t)

	w := tc.get("/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Welcome to Javinity", "Featured Posts", "About Javinity", "Stay Updated", `href="/blog"`, `href="/auth"`} {
		if !strings.Contains(body, want) {
			t.Errorf("home page missing %q", want)
		}
	}
	if strings.Contains(body, `id="mobile-menu"`) {
		t.Error("mobile menu should start closed")
	}
	if !strings.Contains(body, `href="/?menu=open"`) {
		t.Error("menu toggle should open the menu")
	}
}

func TestMobileMenuToggle(t *testing.T) {
	tc := newTestClient(t)

	body := tc.get("/blog?menu=open").Body.String()
	if !strings.Contains(body, `id="mobile-menu"`) {
		t.Error("mobile menu should be open")
	}
	vid := extract(t, blogViewRe, body)
	if got := html.UnescapeString(extract(t, toggleRe, body)); got != "/blog?v="+vid {
		t.Errorf("toggle href = %q, want it to close the menu on the same view", got)
	}
}

func TestMenuToggleAfterFailedLogin(t *testing.T) {
	tc := newTestClient(t)
	vid := extract(t, authViewRe, tc.get("/auth").Body.String())

	w := tc.postForm("/auth/"+vid+"/login", url.Values{"email": {"nope"}, "password": {"abc"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
	href := html.UnescapeString(extract(t, toggleRe, w.Body.String()))
	if !strings.HasPrefix(href, "/auth?") {
		t.Fatalf("toggle href = %q, want the auth page", href)
	}

	w = tc.get(href)
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s = %d", href, w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `id="mobile-menu"`) {
		t.Error("mobile menu should be open")
	}
	if extract(t, authViewRe, body) != vid || !strings.Contains(body, `data-field="email"`) {
		t.Error("toggling the menu should keep the failed form")
	}
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	tc := newTestClient(t)

	w := tc.get("/write")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Page not found") {
		t.Error("missing not found message")
	}

	w = tc.get("/api/nope")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"error"`) {
		t.Errorf("api 404 = %d %s", w.Code, w.Body.String())
	}
}

func TestBlogLikeAndComments(t *testing.T) {
	tc := newTestClient(t)

	body := tc.get("/blog").Body.String()
	vid := extract(t, blogViewRe, body)
	if got := extract(t, likeRe, body); got != "42" {
		t.Fatalf("like count = %s, want 42", got)
	}
	if n := strings.Count(body, `class="comment"`); n != 2 {
		t.Fatalf("got %d comments, want 2", n)
	}

	w := tc.postForm("/blog/"+vid+"/like", nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("like status = %d", w.Code)
	}
	loc := w.Header().Get("Location")
	if loc != "/blog?v="+vid+"#like" {
		t.Fatalf("location = %q", loc)
	}
	body = tc.get("/blog?v=" + vid).Body.String()
	if got := extract(t, likeRe, body); got != "43" {
		t.Errorf("like count = %s, want 43", got)
	}

	tc.postForm("/blog/"+vid+"/comments", url.Values{"text": {"Nice post!"}})
	body = tc.get("/blog?v=" + vid).Body.String()
	if n := strings.Count(body, `class="comment"`); n != 3 {
		t.Fatalf("got %d comments, want 3", n)
	}
	if !strings.Contains(body, "Nice post!") || !strings.Contains(body, "Just now") {
		t.Error("new comment not rendered")
	}
	if !strings.Contains(body, `placeholder="Add a comment..." value=""`) {
		t.Error("draft should be cleared")
	}

	tc.postForm("/blog/"+vid+"/comments", url.Values{"text": {"   "}})
	body = tc.get("/blog?v=" + vid).Body.String()
	if n := strings.Count(body, `class="comment"`); n != 3 {
		t.Errorf("whitespace comment changed list to %d entries", n)
	}

	body = tc.get("/blog").Body.String()
	if got := extract(t, likeRe, body); got != "42" {
		t.Errorf("remounted like count = %s, want 42", got)
	}
	if n := strings.Count(body, `class="comment"`); n != 2 {
		t.Errorf("remounted view has %d comments, want 2", n)
	}
}

func TestBlogActionOnStaleViewRemounts(t *testing.T) {
	tc := newTestClient(t)
	tc.get("/blog")

	w := tc.postForm("/blog/00000000-0000-0000-0000-000000000000/like", nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/blog" {
		t.Errorf("stale like = %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestAuthFlow(t *testing.T) {
	tc := newTestClient(t)

	body := tc.get("/auth").Body.String()
	vid := extract(t, authViewRe, body)
	if !strings.Contains(body, `action="/auth/`+vid+`/login"`) {
		t.Fatal("login form should be shown first")
	}

	w := tc.postForm("/auth/"+vid+"/login", url.Values{"email": {"nope"}, "password": {"abc"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid login status = %d", w.Code)
	}
	body = w.Body.String()
	for _, field := range []string{"email", "password"} {
		if !strings.Contains(body, `data-field="`+field+`"`) {
			t.Errorf("missing %s error", field)
		}
	}
	if !strings.Contains(body, `value="nope"`) {
		t.Error("entered email should be kept")
	}

	w = tc.postForm("/auth/"+vid+"/login", url.Values{"email": {"a@b.com"}, "password": {"abcdef"}})
	if w.Code != http.StatusSeeOther {
		t.Fatalf("valid login status = %d", w.Code)
	}
	body = tc.get("/auth?v=" + vid).Body.String()
	if !strings.Contains(body, "Login submitted.") || strings.Contains(body, `class="error"`) {
		t.Error("successful login not reflected")
	}

	tc.postForm("/auth/"+vid+"/mode", url.Values{"mode": {"signup"}})
	body = tc.get("/auth?v=" + vid).Body.String()
	if !strings.Contains(body, "Confirm Password") {
		t.Fatal("signup form not shown")
	}
	if strings.Contains(body, `value="a@b.com"`) {
		t.Error("login state leaked into signup form")
	}

	w = tc.postForm("/auth/"+vid+"/signup", url.Values{
		"name": {"Al"}, "email": {"a@b.com"}, "password": {"abcdef"}, "confirmPassword": {"abcdeg"},
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("mismatch signup status = %d", w.Code)
	}
	body = w.Body.String()
	if !strings.Contains(body, `data-field="confirmPassword"`) {
		t.Error("missing confirmPassword error")
	}
	for _, field := range []string{"name", "email", "password"} {
		if strings.Contains(body, `data-field="`+field+`"`) {
			t.Errorf("unexpected %s error", field)
		}
	}

	if w := tc.postForm("/auth/"+vid+"/mode", url.Values{"mode": {"admin"}}); w.Code != http.StatusBadRequest {
		t.Errorf("bad mode status = %d", w.Code)
	}
}

func TestAPIBlog(t *testing.T) {
	tc := newTestClient(t)

	w := tc.do(http.MethodPost, "/api/blog/views", "", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("mount status = %d", w.Code)
	}
	var view struct {
		ID   string `json:"id"`
		Like struct {
			Liked bool `json:"liked"`
			Count int  `json:"count"`
		} `json:"like"`
		Comments []struct {
			Author string `json:"author"`
			Date   string `json:"date"`
		} `json:"comments"`
		Draft struct {
			Text string `json:"text"`
		} `json:"draft"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Like.Count != 42 || len(view.Comments) != 2 {
		t.Fatalf("unexpected view %+v", view)
	}
	base := "/api/blog/views/" + view.ID

	w = tc.do(http.MethodPost, base+"/like", "", "")
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if !view.Like.Liked || view.Like.Count != 43 {
		t.Errorf("like = %+v", view.Like)
	}

	w = tc.postJSON(http.MethodPut, base+"/draft", map[string]string{"text": "Nice"})
	if w.Code != http.StatusOK {
		t.Fatalf("draft status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.Draft.Text != "Nice" {
		t.Errorf("draft = %q", view.Draft.Text)
	}

	w = tc.postJSON(http.MethodPost, base+"/comments", map[string]string{"text": "   "})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"appended":false`) {
		t.Errorf("whitespace comment = %d %s", w.Code, w.Body.String())
	}

	w = tc.postJSON(http.MethodPost, base+"/comments", map[string]string{"text": "Nice post!"})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment status = %d", w.Code)
	}
	var resp struct {
		Appended bool `json:"appended"`
		View     struct {
			Comments []struct {
				Author string `json:"author"`
				Text   string `json:"text"`
				Date   string `json:"date"`
			} `json:"comments"`
			Draft struct {
				Text string `json:"text"`
			} `json:"draft"`
		} `json:"view"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	last := resp.View.Comments[len(resp.View.Comments)-1]
	if !resp.Appended || last.Author != "You" || last.Date != "Just now" || last.Text != "Nice post!" || resp.View.Draft.Text != "" {
		t.Errorf("unexpected comment response %+v", resp)
	}

	if w := tc.postJSON(http.MethodPost, base+"/comments", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("missing text status = %d", w.Code)
	}

	if w := tc.do(http.MethodDelete, base, "", ""); w.Code != http.StatusNoContent {
		t.Errorf("unmount status = %d", w.Code)
	}
	if w := tc.get(base); w.Code != http.StatusNotFound {
		t.Errorf("get after unmount = %d", w.Code)
	}
}

func TestAPIAuth(t *testing.T) {
	tc := newTestClient(t)

	w := tc.postJSON(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "abcdef"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d %s", w.Code, w.Body.String())
	}

	w = tc.postJSON(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Al", "email": "a@b.com", "password": "abcdef", "confirmPassword": "abcdeg",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("signup status = %d", w.Code)
	}
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Errors) != 1 || resp.Errors["confirmPassword"] != "Passwords don't match" {
		t.Errorf("errors = %v", resp.Errors)
	}
}

func TestHealthAndCORS(t *testing.T) {
	tc := newTestClient(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://other.test")
	w := httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow origin = %q", got)
	}
}

func TestCORSAllowList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(corsMiddleware([]string{"http://allowed.test"}))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	tests := []struct {
		origin     string
		wantStatus int
		wantACAO   string
	}{
		{"http://allowed.test", http.StatusOK, "http://allowed.test"},
		{"http://denied.test", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.origin, w.Code, tt.wantStatus)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantACAO {
			t.Errorf("%s: allow origin = %q, want %q", tt.origin, got, tt.wantACAO)
		}
	}
}

func TestAuthContinueWith(t *testing.T) {
	tc := newTestClient(t)
	body := tc.get("/auth").Body.String()
	vid := extract(t, authViewRe, body)
	if !strings.Contains(body, "Or continue with") || !strings.Contains(body, `action="/auth/`+vid+`/continue"`) {
		t.Fatal("provider buttons missing")
	}

	w := tc.postForm("/auth/"+vid+"/continue", url.Values{"provider": {"google"}})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/auth?v="+vid {
		t.Errorf("continue = %d %q", w.Code, w.Header().Get("Location"))
	}
	if w := tc.postForm("/auth/"+vid+"/continue", url.Values{"provider": {"myspace"}}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown provider status = %d", w.Code)
	}

	if w := tc.postJSON(http.MethodPost, "/api/auth/continue", map[string]string{"provider": "github"}); w.Code != http.StatusOK {
		t.Errorf("api continue status = %d", w.Code)
	}
}
