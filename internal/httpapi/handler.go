// Package httpapi contains the gin handlers for the taskdock HTTP surface:
// the auth endpoints and the per-user task CRUD operations.
package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskdock-dev/taskdock/internal/auth"
	"github.com/taskdock-dev/taskdock/internal/store"
	"github.com/taskdock-dev/taskdock/pkg/schema"
)

// principalKey is the gin context key holding the verified identity.
const principalKey = "taskdock.principal"

type Handler struct {
	Tasks *store.TaskStore
	Auth  *auth.Authenticator
	Log   *zap.Logger
}

// RequireAuth extracts and verifies the bearer token, aborting with 401
// before any store access happens. The resolved principal is stashed in
// the request context for the task handlers.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrUnauthenticated.Error()})
			return
		}

		principal, err := h.Auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrUnauthenticated.Error()})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func principalFrom(c *gin.Context) schema.Principal {
	p, _ := c.MustGet(principalKey).(schema.Principal)
	return p
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var creds credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, principal, err := h.Auth.Login(creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		h.Log.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The token appears under both keys; existing callers read either.
	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"idToken": token,
		"user":    principal,
	})
}

func (h *Handler) Register(c *gin.Context) {
	var creds credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Auth.Register(creds.Email, creds.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailRequired),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrEmailInUse):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.Log.Error("register failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "user registered"})
}

func (h *Handler) ListTasks(c *gin.Context) {
	principal := principalFrom(c)

	tasks, err := h.Tasks.List(principal.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c *gin.Context) {
	principal := principalFrom(c)

	var input struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.Tasks.Create(principal.UID, input.Text)
	if err != nil {
		if errors.Is(err, store.ErrEmptyText) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	principal := principalFrom(c)
	taskID := c.Param("id")

	var input struct {
		Completed bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Tasks.SetCompleted(principal.UID, taskID, input.Completed); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	principal := principalFrom(c)
	taskID := c.Param("id")

	if err := h.Tasks.Delete(principal.UID, taskID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MissingTaskID answers PUT/DELETE on the bare /tasks path: omitting the
// task id is a validation failure, not a route miss.
func (h *Handler) MissingTaskID(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "task id is required"})
}
