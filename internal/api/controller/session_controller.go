package controller

import (
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/api/service"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionController handles session-related HTTP requests.
type SessionController struct {
	sessionService service.SessionService
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessionService service.SessionService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
	}
}

// Create opens a new session and returns its token.
func (sc *SessionController) Create(c *gin.Context) {
	res, err := sc.sessionService.Create(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "Failed to create session", "error", err)
		response.HandleError(c, err)
		return
	}

	slog.InfoContext(c.Request.Context(), "Session created", "session.id", res.SessionID)
	response.CreatedResponse(c, res)
}

// Get returns the current snapshot of a session. Requires its bearer token.
func (sc *SessionController) Get(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	s, err := sc.sessionService.Get(c.Request.Context(), c.Param("id"), strings.TrimSpace(token))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessResponse(c, s)
}
