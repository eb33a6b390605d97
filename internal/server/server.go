package server

import (
	"context"
	"ctchen222/tictactoe/internal/api/controller"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/hub"
	"ctchen222/tictactoe/internal/hub/types"
	"ctchen222/tictactoe/internal/player"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	hub            *hub.Hub
	engine         *gin.Engine
	sessionService service.SessionService
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewServer builds the router. An empty allowedOrigins accepts any origin.
func NewServer(h *hub.Hub, engineController *controller.EngineController, sessionController *controller.SessionController, sessionService service.SessionService, allowedOrigins []string) *Server {
	s := &Server{
		hub:            h,
		sessionService: sessionService,
		allowedOrigins: allowedOrigins,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), s.cors())

	r.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})
	r.GET("/ws", s.handleWebSocket)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/evaluate", engineController.Evaluate)
		v1.POST("/move", engineController.Move)
		v1.POST("/sessions", sessionController.Create)
		v1.GET("/sessions/:id", sessionController.Get)
	}

	s.engine = r
	return s
}

// Engine returns the bare gin router.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the router wrapped with OpenTelemetry HTTP instrumentation.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, "tictactoe")
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.allowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(s.allowedOrigins, origin)
}

// handleWebSocket authenticates the session token, upgrades the connection
// and hands it to the hub.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	sessionID := c.Query("session")
	sid, err := s.sessionService.VerifyToken(c.Query("token"))
	if err != nil || sid != sessionID {
		span.SetStatus(codes.Error, "Unauthorized websocket request")
		response.ErrorResponse(c, http.StatusUnauthorized, "invalid session token")
		return
	}
	span.SetAttributes(attribute.String("session.id", sessionID))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	p := player.NewPlayer(uuid.New().String(), sessionID, conn)
	span.SetAttributes(attribute.String("player.id", p.ID))

	req := &types.RegistrationRequest{
		Player:    p,
		SessionID: sessionID,
		Ctx:       context.WithoutCancel(ctx),
	}
	select {
	case s.hub.Register() <- req:
	case <-ctx.Done():
		conn.Close()
	}
}
