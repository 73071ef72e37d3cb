package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"javinity/internal/domain"
	"javinity/internal/session"
)

type textRequest struct {
	Text *string `json:"text" binding:"required"`
}

type commentResponse struct {
	Appended bool             `json:"appended"`
	View     *domain.BlogView `json:"view"`
}

func (h *Handler) apiMountBlog(c *gin.Context) {
	view, err := h.blog.Mount(c.Request.Context(), session.ID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) apiGetBlog(c *gin.Context) {
	view, err := h.blog.Get(c.Request.Context(), session.ID(c), c.Param("view"))
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) apiUnmountBlog(c *gin.Context) {
	if err := h.blog.Unmount(c.Request.Context(), session.ID(c), c.Param("view")); err != nil {
		apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) apiToggleLike(c *gin.Context) {
	view, err := h.blog.ToggleLike(c.Request.Context(), session.ID(c), c.Param("view"))
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) apiUpdateDraft(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.blog.UpdateDraft(c.Request.Context(), session.ID(c), c.Param("view"), *req.Text)
	if err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) apiSubmitComment(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, appended, err := h.blog.SubmitComment(c.Request.Context(), session.ID(c), c.Param("view"), *req.Text)
	if err != nil {
		apiError(c, err)
		return
	}
	status := http.StatusOK
	if appended {
		status = http.StatusCreated
	}
	c.JSON(status, commentResponse{Appended: appended, View: view})
}

func (h *Handler) apiLogin(c *gin.Context) {
	var creds domain.LoginCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := h.auth.SubmitLogin(creds); errs != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "email": creds.Email})
}

func (h *Handler) apiSignup(c *gin.Context) {
	var creds domain.SignupCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := h.auth.SubmitSignup(creds); errs != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "name": creds.Name, "email": creds.Email})
}

type providerRequest struct {
	Provider string `json:"provider" binding:"required"`
}

func (h *Handler) apiContinue(c *gin.Context) {
	var req providerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	provider, err := domain.ParseSocialProvider(req.Provider)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.auth.ContinueWith(provider)
	c.JSON(http.StatusOK, gin.H{"ok": true, "provider": provider})
}

func apiError(c *gin.Context, err error) {
	if viewGone(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
