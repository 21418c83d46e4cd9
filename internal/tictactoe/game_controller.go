package tictactoe

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/entity"
)

const (
	TextDraw           = "Draw"
	TextStartNewGame   = "start a new game first"
	winnerTextTemplate = "Winner is: %s. Congrats!"
)

// GameController drives the game lifecycle around a board and hands the
// results of finished games to its subscribers.
type GameController struct {
	emitter

	board          *Board
	startingPlayer int
	state          entity.GameState
}

func NewGameController(board *Board, startingPlayer int) (*GameController, error) {
	if !entity.IsValidPlayer(startingPlayer) {
		return nil, fmt.Errorf("%w: starting player %d", apperror.ErrInvalidPlayer, startingPlayer)
	}

	controller := &GameController{
		board:          board,
		startingPlayer: startingPlayer,
		state:          entity.NewGameState(),
	}

	board.Subscribe(controller.handleBoardEvent)

	return controller, nil
}

// Restore replaces the lifecycle state with a snapshot taken with State.
func (that *GameController) Restore(state entity.GameState) {
	that.state = state
	that.state.PendingResults = append([]entity.Result(nil), state.PendingResults...)
}

func (that *GameController) State() entity.GameState {
	state := that.state
	state.PendingResults = append([]entity.Result(nil), that.state.PendingResults...)

	return state
}

func (that *GameController) Board() *Board {
	return that.board
}

func (that *GameController) Status() entity.GameStatus {
	return that.state.Status
}

func (that *GameController) SetNames(first, second string) {
	that.state.Names = [2]string{strings.TrimSpace(first), strings.TrimSpace(second)}
}

func (that *GameController) Names() [2]string {
	return that.state.Names
}

func (that *GameController) CanStart() bool {
	return that.state.HasBothNames()
}

// Start begins a game. It returns true only when the game actually started.
func (that *GameController) Start() bool {
	switch {
	case that.state.IsFinished():
		that.emit(Notice{Text: TextStartNewGame})
		return false
	case that.state.IsStarted():
		return false
	case !that.CanStart():
		return false
	}

	that.board.clear(that.startingPlayer, false)

	that.state.Status = entity.StatusStarted
	that.board.Activate()
	that.emit(GameStarted{})

	return true
}

// SelectCell forwards the move to the board while the game is running.
func (that *GameController) SelectCell(cell entity.Cell) bool {
	if !that.state.IsStarted() {
		return false
	}

	return that.board.SelectCell(cell)
}

// RequestReset hands over the pending results, clears the players and
// prepares an empty inactive board for the next game.
func (that *GameController) RequestReset() {
	results := that.takePendingResults()

	that.state.Names = [2]string{}
	that.state.Status = entity.StatusNotStarted
	that.board.clear(that.startingPlayer, false)

	that.emit(GameReset{Results: results})
}

// RequestWait hands over the pending results and freezes the board for
// review. It only applies to a finished game and returns false otherwise.
func (that *GameController) RequestWait() bool {
	if !that.state.IsFinished() {
		return false
	}

	results := that.takePendingResults()

	that.state.Status = entity.StatusFinished
	that.board.Deactivate()

	that.emit(GameWait{Results: results})

	return true
}

func (that *GameController) handleBoardEvent(event Event) {
	switch outcome := event.(type) {
	case Win:
		results := make([]entity.Result, 0, len(outcome.Opponents))
		for _, opponent := range outcome.Opponents {
			results = append(results, entity.Result{
				Name:     that.state.Names[opponent.ID],
				WinCount: winCount(opponent.Won),
			})
		}

		that.finish(winnerText(that.state.Names[outcome.Winner]), results)
	case Draw:
		results := make([]entity.Result, 0, len(entity.Players))
		for _, player := range entity.Players {
			results = append(results, entity.Result{Name: that.state.Names[player]})
		}

		that.finish(TextDraw, results)
	}
}

func (that *GameController) finish(text string, results []entity.Result) {
	that.state.Status = entity.StatusFinished
	that.state.PendingResults = results

	that.emit(GameFinished{
		Text:    text,
		Results: append([]entity.Result(nil), results...),
	})
}

// takePendingResults returns the pending results once, so a game is never counted twice.
func (that *GameController) takePendingResults() []entity.Result {
	results := that.state.PendingResults
	that.state.PendingResults = nil

	if results == nil {
		return []entity.Result{}
	}

	return results
}

func winCount(won bool) int {
	if won {
		return 1
	}

	return 0
}

func winnerText(name string) string {
	return fmt.Sprintf(winnerTextTemplate, name)
}
