package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/entity"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/events"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/usecase"
)

type playersRequest struct {
	First  string `json:"first"`
	Second string `json:"second"`
}

type sessionView struct {
	ID       string                    `json:"id"`
	Status   entity.GameStatus         `json:"status"`
	Names    [2]string                 `json:"names"`
	CanStart bool                      `json:"can_start"`
	Board    entity.BoardState         `json:"board"`
	Leaders  []entity.LeaderboardEntry `json:"leaders"`
}

type commandResponse struct {
	Session sessionView       `json:"session"`
	Events  []events.Envelope `json:"events"`
}

type leaderboardResponse struct {
	Leaders []entity.LeaderboardEntry `json:"leaders"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newSessionView(session *entity.Session) sessionView {
	leaders := session.Leaders
	if leaders == nil {
		leaders = []entity.LeaderboardEntry{}
	}

	return sessionView{
		ID:       session.ID,
		Status:   session.Game.Status,
		Names:    session.Game.Names,
		CanStart: session.Game.IsNotStarted() && session.Game.HasBothNames(),
		Board:    session.Board,
		Leaders:  leaders,
	}
}

func (that *Server) createSession(c *gin.Context) {
	session, err := that.sessions.CreateSession(c.Request.Context())
	if err != nil {
		that.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newSessionView(session))
}

func (that *Server) getSession(c *gin.Context) {
	session, err := that.sessions.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSessionView(session))
}

func (that *Server) deleteSession(c *gin.Context) {
	if err := that.sessions.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		that.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (that *Server) setPlayers(c *gin.Context) {
	var request playersRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	outcome, err := that.sessions.SetNames(c.Request.Context(), c.Param("id"), request.First, request.Second)
	that.respondOutcome(c, outcome, err)
}

func (that *Server) start(c *gin.Context) {
	outcome, err := that.sessions.Start(c.Request.Context(), c.Param("id"))
	that.respondOutcome(c, outcome, err)
}

func (that *Server) selectCell(c *gin.Context) {
	cell, err := parseCell(c.Param("row"), c.Param("col"))
	if err != nil {
		that.respondError(c, err)
		return
	}

	outcome, err := that.sessions.SelectCell(c.Request.Context(), c.Param("id"), cell)
	that.respondOutcome(c, outcome, err)
}

func (that *Server) reset(c *gin.Context) {
	outcome, err := that.sessions.Reset(c.Request.Context(), c.Param("id"))
	that.respondOutcome(c, outcome, err)
}

func (that *Server) wait(c *gin.Context) {
	outcome, err := that.sessions.Wait(c.Request.Context(), c.Param("id"))
	that.respondOutcome(c, outcome, err)
}

func (that *Server) leaderboard(c *gin.Context) {
	leaders, err := that.sessions.Leaderboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.respondError(c, err)
		return
	}

	if leaders == nil {
		leaders = []entity.LeaderboardEntry{}
	}

	c.JSON(http.StatusOK, leaderboardResponse{Leaders: leaders})
}

// streamEvents sends the session events as server-sent events until the client leaves.
func (that *Server) streamEvents(c *gin.Context) {
	log := that.logger.With("method", "streamEvents")

	id := c.Param("id")
	ctx := c.Request.Context()

	if _, err := that.sessions.GetSession(ctx, id); err != nil {
		that.respondError(c, err)
		return
	}

	feed, err := that.feed.Subscribe(ctx, id)
	if err != nil {
		that.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	// headers go out now, so the client knows the subscription is live
	c.Status(http.StatusOK)
	c.Writer.Flush()

	log.Info("event stream opened", "session", id)

	c.Stream(func(_ io.Writer) bool {
		select {
		case envelope, ok := <-feed:
			if !ok {
				return false
			}

			c.SSEvent(envelope.Type, envelope)

			return true
		case <-ctx.Done():
			return false
		}
	})

	log.Info("event stream closed", "session", id)
}

func (that *Server) respondOutcome(c *gin.Context, outcome *usecase.Outcome, err error) {
	if err != nil {
		that.respondError(c, err)
		return
	}

	envelopes, err := events.NewEnvelopes(outcome.Session.ID, outcome.Events)
	if err != nil {
		that.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, commandResponse{
		Session: newSessionView(outcome.Session),
		Events:  envelopes,
	})
}

func (that *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, apperror.ErrInvalidCell):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, apperror.ErrNamesRequired), errors.Is(err, apperror.ErrNamesLocked),
		errors.Is(err, apperror.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		that.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}

func parseCell(rawRow, rawCol string) (entity.Cell, error) {
	row, err := strconv.Atoi(rawRow)
	if err != nil {
		return entity.Cell{}, fmt.Errorf("%w: row %q", apperror.ErrInvalidCell, rawRow)
	}

	col, err := strconv.Atoi(rawCol)
	if err != nil {
		return entity.Cell{}, fmt.Errorf("%w: col %q", apperror.ErrInvalidCell, rawCol)
	}

	return entity.Cell{Row: row, Col: col}, nil
}
