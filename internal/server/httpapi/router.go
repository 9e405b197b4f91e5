// Package httpapi exposes the reflections server over HTTP with gin.
//
// Routes:
//
//	GET    /healthz
//	POST   /auth/v1/signup
//	POST   /auth/v1/token?grant_type=password|refresh_token
//	GET    /rest/v1/reflections
//	POST   /rest/v1/reflections/upsert
//	PATCH  /rest/v1/reflections/:id
//	DELETE /rest/v1/reflections/:id
//
// Every /rest route requires "Authorization: Bearer <access token>".
// Errors are returned as {"error": "..."}.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/dailyreflect/internal/logging"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
	srvmodels "github.com/dmitrijs2005/dailyreflect/internal/server/models"
	"github.com/dmitrijs2005/dailyreflect/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// UserAPI is the part of services.UserService the handlers use.
type UserAPI interface {
	Register(ctx context.Context, email string, password []byte) (*srvmodels.User, error)
	Login(ctx context.Context, email string, password []byte) (*srvmodels.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*srvmodels.User, *services.TokenPair, error)
	ParseAccessToken(token string) (string, error)
}

// ReflectionAPI is the part of services.ReflectionService the handlers use.
type ReflectionAPI interface {
	List(ctx context.Context, userID string) ([]models.Reflection, error)
	Upsert(ctx context.Context, userID string, entries []models.Reflection) error
	Patch(ctx context.Context, userID, id string, p models.Patch) (models.Reflection, error)
	Delete(ctx context.Context, userID, id string) error
}

// maxBodyBytes caps request bodies; a whole journal upsert fits easily.
const maxBodyBytes = 4 << 20

func NewRouter(allowedOrigins []string, log logging.Logger, users UserAPI, reflections ReflectionAPI) *gin.Engine {
	h := &handler{users: users, reflections: reflections, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	// no origins means no browser access at all
	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{"Authorization", "Content-Type"},
		}))
	}
	r.Use(limitBody(maxBodyBytes))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth/v1")
	{
		authGroup.POST("/signup", h.signUp)
		authGroup.POST("/token", h.token)
	}

	rest := r.Group("/rest/v1/reflections")
	rest.Use(Auth(users))
	{
		rest.GET("", h.listReflections)
		rest.POST("/upsert", h.upsertReflections)
		rest.PATCH("/:id", h.patchReflection)
		rest.DELETE("/:id", h.deleteReflection)
	}
	return r
}
