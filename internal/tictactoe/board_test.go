package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/entity"
)

type recorder struct {
	events []Event
}

func (that *recorder) listen(event Event) {
	that.events = append(that.events, event)
}

func (that *recorder) count(name string) int {
	total := 0
	for _, event := range that.events {
		if event.EventName() == name {
			total++
		}
	}

	return total
}

func newActiveBoard(t *testing.T) (*Board, *recorder) {
	t.Helper()

	board, err := NewBoard(WithActive(true))
	require.NoError(t, err)

	rec := &recorder{}
	board.Subscribe(rec.listen)

	return board, rec
}

func cell(row, col int) entity.Cell {
	return entity.Cell{Row: row, Col: col}
}

func TestNewBoard(t *testing.T) {
	t.Run("Defaults to an inactive empty board with the first player", func(t *testing.T) {
		// When: a board is built without options
		board, err := NewBoard()
		require.NoError(t, err)

		// Then: it matches the initial state
		assert.Equal(t, entity.NewBoardState(entity.PlayerFirst, false), board.State())
		assert.False(t, board.IsActive())
		assert.Equal(t, 9, board.FreeCells())
	})

	t.Run("Honors starting player and active options", func(t *testing.T) {
		// When: a board is built for the second player and active
		board, err := NewBoard(WithStartingPlayer(entity.PlayerSecond), WithActive(true))
		require.NoError(t, err)

		// Then: the options are applied
		assert.Equal(t, entity.PlayerSecond, board.Turn())
		assert.True(t, board.IsActive())
	})

	t.Run("Rejects an unknown starting player", func(t *testing.T) {
		// When: the starting player is out of range
		board, err := NewBoard(WithStartingPlayer(2))

		// Then: ErrInvalidPlayer is returned
		require.ErrorIs(t, err, apperror.ErrInvalidPlayer)
		assert.Nil(t, board)
	})
}

func TestBoard_SelectCell(t *testing.T) {
	t.Run("Accepted move marks the cell and changes the turn", func(t *testing.T) {
		// Given: an active board
		board, rec := newActiveBoard(t)

		// When: the first player selects the center
		accepted := board.SelectCell(cell(1, 1))

		// Then: the cell belongs to player 0 and player 1 is up
		require.True(t, accepted)
		assert.Equal(t, entity.PlayerFirst, board.CellValue(cell(1, 1)))
		assert.Equal(t, entity.PlayerSecond, board.Turn())
		assert.Equal(t, 8, board.FreeCells())
		assert.Equal(t, []Event{TurnChanged{Player: entity.PlayerSecond}}, rec.events)
	})

	t.Run("Inactive board ignores moves", func(t *testing.T) {
		// Given: an inactive board
		board, err := NewBoard()
		require.NoError(t, err)
		rec := &recorder{}
		board.Subscribe(rec.listen)

		// When: a cell is selected
		accepted := board.SelectCell(cell(0, 0))

		// Then: nothing changes
		assert.False(t, accepted)
		assert.Equal(t, entity.NewBoardState(entity.PlayerFirst, false), board.State())
		assert.Empty(t, rec.events)
	})

	t.Run("Occupied cell can't be reselected by either player", func(t *testing.T) {
		// Given: player 0 owns the corner and player 1 is up
		board, rec := newActiveBoard(t)
		require.True(t, board.SelectCell(cell(0, 0)))
		before := board.State()
		rec.events = nil

		// When: player 1 tries the same corner
		accepted := board.SelectCell(cell(0, 0))

		// Then: the cell still belongs to player 0 and no event fired
		assert.False(t, accepted)
		assert.Equal(t, before, board.State())
		assert.Empty(t, rec.events)

		// When: player 1 moves elsewhere and player 0 retries its own cell
		require.True(t, board.SelectCell(cell(2, 2)))
		before = board.State()
		assert.False(t, board.SelectCell(cell(0, 0)))

		// Then: the board is unchanged again
		assert.Equal(t, before, board.State())
		assert.Equal(t, entity.PlayerFirst, board.CellValue(cell(0, 0)))
	})

	t.Run("Out of range cell is ignored", func(t *testing.T) {
		// Given: an active board
		board, rec := newActiveBoard(t)

		// When: a cell outside the grid is selected
		accepted := board.SelectCell(cell(3, 0))

		// Then: it's ignored
		assert.False(t, accepted)
		assert.Equal(t, 9, board.FreeCells())
		assert.Empty(t, rec.events)
	})

	t.Run("Free cell count tracks accepted moves", func(t *testing.T) {
		// Given: an active board
		board, _ := newActiveBoard(t)

		// When: k distinct cells without a win are selected
		moves := []entity.Cell{cell(0, 0), cell(0, 1), cell(0, 2), cell(1, 1)}
		for k, move := range moves {
			require.True(t, board.SelectCell(move))

			// Then: 9 - k cells remain after each move
			assert.Equal(t, 9-(k+1), board.FreeCells())
		}
	})
}

func TestBoard_Win(t *testing.T) {
	t.Run("Column win for the first player", func(t *testing.T) {
		// Given: an active board starting with player 0
		board, rec := newActiveBoard(t)

		// When: the players alternate into a column 0 win for player 0
		for _, move := range []entity.Cell{cell(0, 0), cell(1, 1), cell(1, 0), cell(0, 2), cell(2, 0)} {
			require.True(t, board.SelectCell(move))
		}

		// Then: a single win for player 0 is emitted
		require.Equal(t, 1, rec.count(EventWin))
		win, ok := rec.events[len(rec.events)-1].(Win)
		require.True(t, ok)
		assert.Equal(t, entity.PlayerFirst, win.Winner)
		assert.Equal(t, [2]OpponentOutcome{{ID: 0, Won: true}, {ID: 1, Won: false}}, win.Opponents)

		// And: the winning move is kept, the turn is not toggled and the board stays active
		assert.Equal(t, entity.PlayerFirst, board.CellValue(cell(2, 0)))
		assert.Equal(t, entity.PlayerFirst, board.Turn())
		assert.Equal(t, 5, board.FreeCells())
		assert.True(t, board.IsActive())
	})

	t.Run("Anti-diagonal win", func(t *testing.T) {
		// Given: an active board
		board, rec := newActiveBoard(t)

		// When: player 0 fills (2,0), (1,1), (0,2)
		for _, move := range []entity.Cell{cell(2, 0), cell(0, 0), cell(1, 1), cell(1, 0), cell(0, 2)} {
			require.True(t, board.SelectCell(move))
		}

		// Then: player 0 wins
		require.Equal(t, 1, rec.count(EventWin))
		assert.Equal(t, entity.PlayerFirst, rec.events[len(rec.events)-1].(Win).Winner)
	})

	t.Run("Edge row win for the second player", func(t *testing.T) {
		// Given: an active board
		board, rec := newActiveBoard(t)

		// When: player 1 fills the bottom row
		for _, move := range []entity.Cell{cell(0, 0), cell(2, 0), cell(0, 1), cell(2, 1), cell(1, 1), cell(2, 2)} {
			require.True(t, board.SelectCell(move))
		}

		// Then: player 1 wins
		require.Equal(t, 1, rec.count(EventWin))
		win := rec.events[len(rec.events)-1].(Win)
		assert.Equal(t, entity.PlayerSecond, win.Winner)
		assert.Equal(t, [2]OpponentOutcome{{ID: 1, Won: true}, {ID: 0, Won: false}}, win.Opponents)
	})

	t.Run("Edge column win", func(t *testing.T) {
		// Given: an active board
		board, rec := newActiveBoard(t)

		// When: player 0 fills column 2
		for _, move := range []entity.Cell{cell(0, 2), cell(0, 0), cell(1, 2), cell(1, 0), cell(2, 2)} {
			require.True(t, board.SelectCell(move))
		}

		// Then: player 0 wins
		assert.Equal(t, 1, rec.count(EventWin))
	})

	t.Run("Main diagonal win", func(t *testing.T) {
		// Given: an active board
		board, rec := newActiveBoard(t)

		// When: player 0 fills the main diagonal
		for _, move := range []entity.Cell{cell(0, 0), cell(0, 1), cell(1, 1), cell(0, 2), cell(2, 2)} {
			require.True(t, board.SelectCell(move))
		}

		// Then: player 0 wins
		assert.Equal(t, 1, rec.count(EventWin))
	})
}

func TestBoard_Draw(t *testing.T) {
	// Given: an active board
	board, rec := newActiveBoard(t)

	// When: all nine cells are filled without three in a row
	//  0 1 0
	//  0 1 1
	//  1 0 0
	moves := []entity.Cell{
		cell(0, 0), cell(0, 1), cell(0, 2), cell(1, 1), cell(1, 0),
		cell(1, 2), cell(2, 1), cell(2, 0), cell(2, 2),
	}
	for _, move := range moves {
		require.True(t, board.SelectCell(move))
	}

	// Then: exactly one draw and no win
	assert.Equal(t, 1, rec.count(EventDraw))
	assert.Zero(t, rec.count(EventWin))
	assert.Equal(t, Draw{}, rec.events[len(rec.events)-1])
	assert.Zero(t, board.FreeCells())
}

func TestBoard_ActivateDeactivate(t *testing.T) {
	// Given: an inactive board for the second player
	board, err := NewBoard(WithStartingPlayer(entity.PlayerSecond))
	require.NoError(t, err)
	rec := &recorder{}
	board.Subscribe(rec.listen)

	// When: the board is activated
	board.Activate()

	// Then: it's active and announces the current player
	assert.True(t, board.IsActive())
	assert.Equal(t, []Event{TurnChanged{Player: entity.PlayerSecond}}, rec.events)

	// When: a move is made and the board is deactivated
	require.True(t, board.SelectCell(cell(1, 1)))
	board.Deactivate()

	// Then: the move is preserved but no more moves are accepted
	assert.False(t, board.IsActive())
	assert.Equal(t, entity.PlayerSecond, board.CellValue(cell(1, 1)))
	assert.False(t, board.IsCellSelectable(cell(0, 0)))
}

func TestRestoreBoard(t *testing.T) {
	// Given: a board in the middle of a game
	board, _ := newActiveBoard(t)
	require.True(t, board.SelectCell(cell(0, 0)))

	// When: it's restored from its snapshot
	restored := RestoreBoard(board.State())

	// Then: the restored board continues from the same state
	assert.Equal(t, board.State(), restored.State())
	assert.True(t, restored.SelectCell(cell(0, 1)))
	assert.Equal(t, entity.PlayerSecond, restored.CellValue(cell(0, 1)))
}
