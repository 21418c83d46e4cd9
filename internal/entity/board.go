package entity

const (
	BoardSize = 3

	CellFree = -1

	PlayerFirst  = 0
	PlayerSecond = 1
)

// Players lists the participant ids in turn order.
var Players = [2]int{PlayerFirst, PlayerSecond}

type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Cell) IsValid() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// BoardState is the serializable part of a board.
type BoardState struct {
	Cells     [BoardSize][BoardSize]int `json:"cells"`
	Turn      int                       `json:"turn"`
	Active    bool                      `json:"active"`
	FreeCells int                       `json:"free_cells"`
}

func NewBoardState(startingPlayer int, active bool) BoardState {
	state := BoardState{
		Turn:      startingPlayer,
		Active:    active,
		FreeCells: BoardSize * BoardSize,
	}

	for row := range state.Cells {
		for col := range state.Cells[row] {
			state.Cells[row][col] = CellFree
		}
	}

	return state
}

func IsValidPlayer(player int) bool {
	return player == PlayerFirst || player == PlayerSecond
}

// Opponent returns the other index of Players.
func Opponent(player int) int {
	return Players[(player+1)%len(Players)]
}
