package http

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"javinity/internal/content"
	"javinity/internal/domain"
	"javinity/internal/service"
	"javinity/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Handler wires HTTP routes to the view services.
type Handler struct {
	site        *content.Site
	blog        service.BlogService
	auth        service.AuthService
	sessions    *session.Manager
	logger      *logrus.Logger
	corsOrigins []string
	templates   *template.Template
}

func NewHandler(site *content.Site, blog service.BlogService, auth service.AuthService, sessions *session.Manager, logger *logrus.Logger, corsOrigins []string) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		site:        site,
		blog:        blog,
		auth:        auth,
		sessions:    sessions,
		logger:      logger,
		corsOrigins: corsOrigins,
		templates:   template.Must(template.New("").ParseFS(templateFS, "templates/*.html")),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(h.templates)
	router.Use(requestLogger(h.logger))
	router.Use(corsMiddleware(h.corsOrigins))

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	router.StaticFS("/static", http.FS(static))

	pages := router.Group("/", h.sessions.Middleware())
	{
		pages.GET("/", h.homePage)

		pages.GET("/auth", h.authPage)
		pages.POST("/auth/:view/mode", h.authSetMode)
		pages.POST("/auth/:view/login", h.authLogin)
		pages.POST("/auth/:view/signup", h.authSignup)
		pages.POST("/auth/:view/continue", h.authContinue)

		pages.GET("/blog", h.blogPage)
		pages.POST("/blog/:view/like", h.blogLike)
		pages.POST("/blog/:view/comments", h.blogComment)
	}

	api := router.Group("/api", h.sessions.Middleware())
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		api.POST("/blog/views", h.apiMountBlog)
		api.GET("/blog/views/:view", h.apiGetBlog)
		api.DELETE("/blog/views/:view", h.apiUnmountBlog)
		api.POST("/blog/views/:view/like", h.apiToggleLike)
		api.PUT("/blog/views/:view/draft", h.apiUpdateDraft)
		api.POST("/blog/views/:view/comments", h.apiSubmitComment)

		api.POST("/auth/login", h.apiLogin)
		api.POST("/auth/signup", h.apiSignup)
		api.POST("/auth/continue", h.apiContinue)
	}

	router.NoRoute(h.notFound)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			break
		}
	}
	switch {
	case len(origins) == 0:
		cfg.AllowAllOrigins = true
	case !cfg.AllowAllOrigins:
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// navData is what the navigation bar needs to render the menu toggle.
type navData struct {
	domain.NavState
	ToggleURL string
}

// navFor reads the mobile menu state from page, the URL the visitor is looking at.
// The flag lives only in the query string, so following any navigation link closes
// the menu again.
func navFor(page url.URL) navData {
	q := page.Query()
	state := domain.NavState{MenuOpen: q.Get("menu") == "open"}
	next := state.ToggleMenu()

	if next.MenuOpen {
		q.Set("menu", "open")
	} else {
		q.Del("menu")
	}

	u := url.URL{Path: page.Path, RawQuery: q.Encode()}
	return navData{NavState: state, ToggleURL: u.String()}
}

// requestPage is the page URL for a response rendered straight from the request.
// Pages re-rendered by a POST action have no GET route of their own, so they fall
// back to the home page.
func requestPage(c *gin.Context) url.URL {
	if c.Request.Method != http.MethodGet {
		return url.URL{Path: "/"}
	}
	return *c.Request.URL
}

// viewPage is the GET address of a mounted view. The menu flag of a GET request is kept.
func viewPage(c *gin.Context, path, viewID string) url.URL {
	q := url.Values{}
	if c.Request.Method == http.MethodGet {
		q = c.Request.URL.Query()
	}
	q.Set("v", viewID)
	return url.URL{Path: path, RawQuery: q.Encode()}
}

func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	h.renderPage(c, status, name, requestPage(c), data)
}

func (h *Handler) renderPage(c *gin.Context, status int, name string, page url.URL, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Site"] = h.site
	data["Nav"] = navFor(page)
	if _, ok := data["Title"]; !ok {
		data["Title"] = h.site.Name
	}
	c.HTML(status, name, data)
}

func (h *Handler) notFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.render(c, http.StatusNotFound, "notfound", gin.H{
		"Title": "Page not found | " + h.site.Name,
		"Path":  c.Request.URL.Path,
	})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	h.render(c, http.StatusInternalServerError, "error", gin.H{
		"Title":   "Error | " + h.site.Name,
		"Message": "The page could not be loaded. Please try again.",
	})
}

// viewGone reports whether err means the view instance is no longer live.
func viewGone(err error) bool {
	return errors.Is(err, service.ErrViewNotFound)
}
