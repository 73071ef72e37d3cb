package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"javinity/internal/domain"
	"javinity/internal/service"
	"javinity/internal/session"
)

func (h *Handler) homePage(c *gin.Context) {
	h.render(c, http.StatusOK, "home", nil)
}

// -------- Blog

func (h *Handler) blogPage(c *gin.Context) {
	ctx := c.Request.Context()
	sid := session.ID(c)

	var (
		view *domain.BlogView
		err  error
	)
	if vid := c.Query("v"); vid != "" {
		view, err = h.blog.Get(ctx, sid, vid)
		if err != nil && !viewGone(err) {
			h.serverError(c, err)
			return
		}
	}
	if view == nil {
		if view, err = h.blog.Mount(ctx, sid); err != nil {
			h.serverError(c, err)
			return
		}
	}

	h.renderPage(c, http.StatusOK, "blog", viewPage(c, "/blog", view.ID), gin.H{
		"Title": h.site.Blog.Title + " | " + h.site.Name,
		"Blog":  view,
	})
}

func (h *Handler) blogLike(c *gin.Context) {
	vid := c.Param("view")
	if _, err := h.blog.ToggleLike(c.Request.Context(), session.ID(c), vid); err != nil {
		h.actionFailed(c, err, "/blog")
		return
	}
	c.Redirect(http.StatusSeeOther, viewURL("/blog", vid, "like"))
}

func (h *Handler) blogComment(c *gin.Context) {
	ctx := c.Request.Context()
	sid := session.ID(c)
	vid := c.Param("view")
	text := c.PostForm("text")

	if _, err := h.blog.UpdateDraft(ctx, sid, vid, text); err != nil {
		h.actionFailed(c, err, "/blog")
		return
	}
	if _, _, err := h.blog.SubmitComment(ctx, sid, vid, text); err != nil {
		h.actionFailed(c, err, "/blog")
		return
	}
	c.Redirect(http.StatusSeeOther, viewURL("/blog", vid, "comments"))
}

// -------- Auth

func (h *Handler) authPage(c *gin.Context) {
	ctx := c.Request.Context()
	sid := session.ID(c)

	var (
		view *domain.AuthView
		err  error
	)
	if vid := c.Query("v"); vid != "" {
		view, err = h.auth.Get(ctx, sid, vid)
		if err != nil && !viewGone(err) {
			h.serverError(c, err)
			return
		}
	}
	if view == nil {
		if view, err = h.auth.Mount(ctx, sid); err != nil {
			h.serverError(c, err)
			return
		}
	}
	h.renderAuth(c, http.StatusOK, view, "")
}

func (h *Handler) authSetMode(c *gin.Context) {
	vid := c.Param("view")
	mode, err := domain.ParseAuthMode(c.PostForm("mode"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.auth.SetMode(c.Request.Context(), session.ID(c), vid, mode); err != nil {
		h.actionFailed(c, err, "/auth")
		return
	}
	c.Redirect(http.StatusSeeOther, viewURL("/auth", vid, ""))
}

func (h *Handler) authLogin(c *gin.Context) {
	var creds domain.LoginCredentials
	if err := c.ShouldBind(&creds); err != nil {
		c.String(http.StatusBadRequest, "invalid form")
		return
	}

	vid := c.Param("view")
	view, err := h.auth.Login(c.Request.Context(), session.ID(c), vid, creds)
	if err != nil {
		h.authFailed(c, err, vid)
		return
	}
	if len(view.Login.Errors) > 0 {
		h.renderAuth(c, http.StatusUnprocessableEntity, view, "")
		return
	}
	c.Redirect(http.StatusSeeOther, viewURL("/auth", vid, ""))
}

func (h *Handler) authSignup(c *gin.Context) {
	var creds domain.SignupCredentials
	if err := c.ShouldBind(&creds); err != nil {
		c.String(http.StatusBadRequest, "invalid form")
		return
	}

	vid := c.Param("view")
	view, err := h.auth.Signup(c.Request.Context(), session.ID(c), vid, creds)
	if err != nil {
		h.authFailed(c, err, vid)
		return
	}
	if len(view.Signup.Errors) > 0 {
		h.renderAuth(c, http.StatusUnprocessableEntity, view, "")
		return
	}
	c.Redirect(http.StatusSeeOther, viewURL("/auth", vid, ""))
}

func (h *Handler) authContinue(c *gin.Context) {
	provider, err := domain.ParseSocialProvider(c.PostForm("provider"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	h.auth.ContinueWith(provider)
	c.Redirect(http.StatusSeeOther, viewURL("/auth", c.Param("view"), ""))
}

func (h *Handler) authFailed(c *gin.Context, err error, vid string) {
	if errors.Is(err, service.ErrSubmitInProgress) {
		view, getErr := h.auth.Get(c.Request.Context(), session.ID(c), vid)
		if getErr != nil {
			h.actionFailed(c, getErr, "/auth")
			return
		}
		h.renderAuth(c, http.StatusConflict, view, "Your previous submission is still being processed.")
		return
	}
	h.actionFailed(c, err, "/auth")
}

func (h *Handler) renderAuth(c *gin.Context, status int, view *domain.AuthView, notice string) {
	h.renderPage(c, status, "auth", viewPage(c, "/auth", view.ID), gin.H{
		"Title":  "Login or Sign Up | " + h.site.Name,
		"Auth":   view,
		"Notice": notice,
	})
}

// actionFailed sends the visitor back to a freshly mounted page when the view they
// acted on is gone, and shows the error page otherwise.
func (h *Handler) actionFailed(c *gin.Context, err error, page string) {
	if viewGone(err) {
		c.Redirect(http.StatusSeeOther, page)
		return
	}
	h.serverError(c, err)
}

func viewURL(page, viewID, fragment string) string {
	u := url.URL{Path: page, RawQuery: url.Values{"v": {viewID}}.Encode(), Fragment: fragment}
	return u.String()
}
