package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/dailyreflect/internal/common"
	"github.com/dmitrijs2005/dailyreflect/internal/logging"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
	srvmodels "github.com/dmitrijs2005/dailyreflect/internal/server/models"
	"github.com/dmitrijs2005/dailyreflect/internal/server/services"
	"github.com/gin-gonic/gin"
)

type handler struct {
	users       UserAPI
	reflections ReflectionAPI
	log         logging.Logger
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	User         models.User `json:"user"`
}

func publicUser(u *srvmodels.User) models.User {
	return models.User{ID: u.ID, Email: u.Email}
}

func (h *handler) signUp(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	u, err := h.users.Register(c.Request.Context(), body.Email, []byte(body.Password))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, publicUser(u))
}

func (h *handler) token(c *gin.Context) {
	var (
		u    *srvmodels.User
		pair *services.TokenPair
		err  error
	)

	switch c.Query("grant_type") {
	case "password":
		var body credentials
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
			return
		}
		u, pair, err = h.users.Login(c.Request.Context(), body.Email, []byte(body.Password))
	case "refresh_token":
		var body refreshRequest
		if err := c.ShouldBindJSON(&body); err != nil || body.RefreshToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
			return
		}
		u, pair, err = h.users.RefreshToken(c.Request.Context(), body.RefreshToken)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported grant_type"})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
		User:         publicUser(u),
	})
}

func (h *handler) listReflections(c *gin.Context) {
	rows, err := h.reflections.List(c.Request.Context(), UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *handler) upsertReflections(c *gin.Context) {
	var rows []models.Reflection
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if err := h.reflections.Upsert(c.Request.Context(), UserIDFromContext(c), rows); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"upserted": len(rows)})
}

func (h *handler) patchReflection(c *gin.Context) {
	var p models.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}
	if p.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	row, err := h.reflections.Patch(c.Request.Context(), UserIDFromContext(c), c.Param("id"), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *handler) deleteReflection(c *gin.Context) {
	if err := h.reflections.Delete(c.Request.Context(), UserIDFromContext(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps service sentinels to status codes. Unknown errors are
// logged and reported as 500 without detail.
func (h *handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		h.log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
