package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/entity"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/events"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type sessionUseCase interface {
	CreateSession(ctx context.Context) (*entity.Session, error)
	GetSession(ctx context.Context, id string) (*entity.Session, error)
	DeleteSession(ctx context.Context, id string) error
	Leaderboard(ctx context.Context, id string) ([]entity.LeaderboardEntry, error)

	SetNames(ctx context.Context, id, first, second string) (*usecase.Outcome, error)
	Start(ctx context.Context, id string) (*usecase.Outcome, error)
	SelectCell(ctx context.Context, id string, cell entity.Cell) (*usecase.Outcome, error)
	Reset(ctx context.Context, id string) (*usecase.Outcome, error)
	Wait(ctx context.Context, id string) (*usecase.Outcome, error)
}

type eventFeed interface {
	Subscribe(ctx context.Context, sessionID string) (<-chan events.Envelope, error)
}

type Server struct {
	logger *slog.Logger

	sessions sessionUseCase
	feed     eventFeed

	router *gin.Engine
}

func New(logger *slog.Logger, sessions sessionUseCase, feed eventFeed) *Server {
	server := &Server{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
		feed:     feed,
	}

	router := gin.New()
	router.Use(gin.Recovery(), server.logRequests())

	router.GET("/ping", server.ping)

	api := router.Group("/api/sessions")
	api.POST("", server.createSession)
	api.GET("/:id", server.getSession)
	api.DELETE("/:id", server.deleteSession)
	api.PUT("/:id/players", server.setPlayers)
	api.POST("/:id/start", server.start)
	api.POST("/:id/cells/:row/:col", server.selectCell)
	api.POST("/:id/reset", server.reset)
	api.POST("/:id/wait", server.wait)
	api.GET("/:id/leaderboard", server.leaderboard)
	api.GET("/:id/events", server.streamEvents)

	server.router = router

	return server
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// Start serves HTTP until ctx is done, then shuts the server down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	// no WriteTimeout: event streams stay open for the whole session
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       30 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

func (that *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		that.logger.Debug("request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (that *Server) ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
