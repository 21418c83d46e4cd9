package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/entity"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/leaderboard"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/repository"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
	Update(ctx context.Context, id string, fn repository.UpdateFunc) (*entity.Session, error)
}

type publisher interface {
	Publish(ctx context.Context, sessionID string, events []tictactoe.Event) error
}

// Outcome is the session state after a command and the events it produced, in order.
type Outcome struct {
	Session *entity.Session
	Events  []tictactoe.Event
}

// SessionManager runs player commands against stored sessions. Commands are
// processed one at a time, each to completion. Instances sharing a store stay
// consistent because every command is committed with Update, which reruns the
// command when another instance changed the session first.
type SessionManager struct {
	logger *slog.Logger

	sessionRepo sessionRepo
	publisher   publisher

	startingPlayer int

	mu sync.Mutex
}

func NewSessionManager(logger *slog.Logger, sessionRepo sessionRepo, publisher publisher, startingPlayer int) *SessionManager {
	return &SessionManager{
		logger:         logger.With("component", "session-manager"),
		sessionRepo:    sessionRepo,
		publisher:      publisher,
		startingPlayer: startingPlayer,
	}
}

func (that *SessionManager) CreateSession(ctx context.Context) (*entity.Session, error) {
	session := entity.NewSession(pkg.GenerateSessionID(), that.startingPlayer)

	if err := that.updateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "session", session.ID)

	return session, nil
}

func (that *SessionManager) GetSession(ctx context.Context, id string) (*entity.Session, error) {
	return that.getSessionByID(ctx, id)
}

func (that *SessionManager) DeleteSession(ctx context.Context, id string) error {
	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (that *SessionManager) Leaderboard(ctx context.Context, id string) ([]entity.LeaderboardEntry, error) {
	session, err := that.getSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return session.Leaders, nil
}

// SetNames sets both player names. Names can only change before a game starts.
func (that *SessionManager) SetNames(ctx context.Context, id, first, second string) (*Outcome, error) {
	return that.apply(ctx, id, func(game *sessionGame) error {
		if game.controller.Status() != entity.StatusNotStarted {
			return apperror.ErrNamesLocked
		}

		game.controller.SetNames(first, second)

		return nil
	})
}

func (that *SessionManager) Start(ctx context.Context, id string) (*Outcome, error) {
	return that.apply(ctx, id, func(game *sessionGame) error {
		if game.controller.Status() == entity.StatusNotStarted && !game.controller.CanStart() {
			return apperror.ErrNamesRequired
		}

		game.controller.Start()

		return nil
	})
}

// SelectCell plays the cell for the current player. Occupied cells and moves
// outside a running game are ignored without an error. An unknown session is
// reported before a cell outside the grid.
func (that *SessionManager) SelectCell(ctx context.Context, id string, cell entity.Cell) (*Outcome, error) {
	return that.apply(ctx, id, func(game *sessionGame) error {
		if !cell.IsValid() {
			return fmt.Errorf("%w: row %d, col %d", apperror.ErrInvalidCell, cell.Row, cell.Col)
		}

		game.controller.SelectCell(cell)

		return nil
	})
}

func (that *SessionManager) Reset(ctx context.Context, id string) (*Outcome, error) {
	return that.apply(ctx, id, func(game *sessionGame) error {
		game.controller.RequestReset()

		return nil
	})
}

// Wait freezes a finished game for review. It's ignored in any other state.
func (that *SessionManager) Wait(ctx context.Context, id string) (*Outcome, error) {
	return that.apply(ctx, id, func(game *sessionGame) error {
		game.controller.RequestWait()

		return nil
	})
}

// apply runs the command on the session components and commits the result.
// The command is rerun from the stored state when the commit hits a conflict.
func (that *SessionManager) apply(ctx context.Context, id string, command func(*sessionGame) error) (*Outcome, error) {
	log := that.logger.With("method", "apply", "session", id)

	that.mu.Lock()
	defer that.mu.Unlock()

	var (
		game       *sessionGame
		commandErr error
		attempts   int
	)

	session, err := that.sessionRepo.Update(ctx, id, func(session *entity.Session) error {
		attempts++

		game, commandErr = that.assemble(session)
		if commandErr != nil {
			return commandErr
		}

		if commandErr = command(game); commandErr != nil {
			return commandErr
		}

		game.snapshot(session)

		return nil
	})
	if commandErr != nil {
		return nil, commandErr
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if attempts > 1 {
		log.Debug("command rerun after a concurrent update", "attempts", attempts)
	}

	if len(game.events) > 0 {
		if err = that.publisher.Publish(ctx, session.ID, game.events); err != nil {
			log.Error("failed to publish events", "error", err)
		}
	}

	return &Outcome{Session: session, Events: game.events}, nil
}

// sessionGame is the live board, controller and leaderboard of one session.
type sessionGame struct {
	board      *tictactoe.Board
	controller *tictactoe.GameController
	leaders    *leaderboard.Leaderboard

	events []tictactoe.Event
}

// assemble wires the components so that board events are recorded before the
// controller reacts to them.
func (that *SessionManager) assemble(session *entity.Session) (*sessionGame, error) {
	game := &sessionGame{}

	game.board = tictactoe.RestoreBoard(session.Board)
	game.board.Subscribe(game.record)

	controller, err := tictactoe.NewGameController(game.board, that.startingPlayer)
	if err != nil {
		return nil, err
	}

	game.controller = controller
	game.controller.Restore(session.Game)
	game.controller.Subscribe(game.record)

	game.leaders = leaderboard.Restore(session.Leaders)
	game.controller.Subscribe(game.leaders.Listener())

	return game, nil
}

func (that *sessionGame) record(event tictactoe.Event) {
	that.events = append(that.events, event)
}

func (that *sessionGame) snapshot(session *entity.Session) {
	session.Game = that.controller.State()
	session.Board = that.board.State()
	session.Leaders = that.leaders.Entries()
	session.UpdatedAt = time.Now().UTC()
}

func (that *SessionManager) getSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (that *SessionManager) updateSession(ctx context.Context, session *entity.Session) error {
	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}
