package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/entity"
)

type boardOptions struct {
	startingPlayer int
	active         bool
}

type BoardOption func(*boardOptions)

// WithStartingPlayer sets the player who moves first. Defaults to entity.PlayerFirst.
func WithStartingPlayer(player int) BoardOption {
	return func(opts *boardOptions) {
		opts.startingPlayer = player
	}
}

// WithActive sets whether the board accepts moves right away. Defaults to false.
func WithActive(active bool) BoardOption {
	return func(opts *boardOptions) {
		opts.active = active
	}
}

// Board owns the grid, the turn tracker and the active flag of one game.
type Board struct {
	emitter

	state entity.BoardState
}

func NewBoard(opts ...BoardOption) (*Board, error) {
	options := boardOptions{startingPlayer: entity.PlayerFirst}
	for _, opt := range opts {
		opt(&options)
	}

	board := &Board{}
	if err := board.Initialize(options.startingPlayer, options.active); err != nil {
		return nil, err
	}

	return board, nil
}

// RestoreBoard rebuilds a board from a snapshot taken with State.
func RestoreBoard(state entity.BoardState) *Board {
	return &Board{state: state}
}

func (that *Board) Initialize(startingPlayer int, active bool) error {
	if !entity.IsValidPlayer(startingPlayer) {
		return fmt.Errorf("%w: starting player %d", apperror.ErrInvalidPlayer, startingPlayer)
	}

	that.clear(startingPlayer, active)

	return nil
}

// clear empties the grid for a starting player the caller already validated.
func (that *Board) clear(startingPlayer int, active bool) {
	that.state = entity.NewBoardState(startingPlayer, active)
}

// Activate opens the board for moves and announces whose turn it is.
func (that *Board) Activate() {
	that.state.Active = true
	that.emit(TurnChanged{Player: that.state.Turn})
}

// Deactivate closes the board for moves and keeps its cells for review.
func (that *Board) Deactivate() {
	that.state.Active = false
}

func (that *Board) IsActive() bool {
	return that.state.Active
}

func (that *Board) IsCellSelectable(cell entity.Cell) bool {
	return that.state.Active && cell.IsValid() && that.state.Cells[cell.Row][cell.Col] == entity.CellFree
}

// SelectCell marks the cell for the current player. Unselectable cells are
// ignored and false is returned.
func (that *Board) SelectCell(cell entity.Cell) bool {
	if !that.IsCellSelectable(cell) {
		return false
	}

	player := that.state.Turn
	that.state.Cells[cell.Row][cell.Col] = player

	if that.hasWonWithCell(player, cell) {
		that.emit(Win{
			Winner: player,
			Opponents: [2]OpponentOutcome{
				{ID: player, Won: true},
				{ID: entity.Opponent(player), Won: false},
			},
		})

		return true
	}

	that.state.FreeCells--

	if that.state.FreeCells > 0 {
		that.state.Turn = entity.Opponent(player)
		that.emit(TurnChanged{Player: that.state.Turn})

		return true
	}

	that.emit(Draw{})

	return true
}

func (that *Board) Turn() int {
	return that.state.Turn
}

func (that *Board) FreeCells() int {
	return that.state.FreeCells
}

// CellValue returns entity.CellFree or the id of the player who marked the cell.
func (that *Board) CellValue(cell entity.Cell) int {
	if !cell.IsValid() {
		return entity.CellFree
	}

	return that.state.Cells[cell.Row][cell.Col]
}

func (that *Board) State() entity.BoardState {
	return that.state
}
