package tictactoe

import "github.com/rocketscienceinc/tictactoe-leaderboard/internal/entity"

type line [entity.BoardSize]entity.Cell

// linesThrough returns the row, the column and the diagonals the target lies on.
// Only these can be completed by a mark placed on the target.
func linesThrough(target entity.Cell) []line {
	var row, col line
	for i := range entity.BoardSize {
		row[i] = entity.Cell{Row: target.Row, Col: i}
		col[i] = entity.Cell{Row: i, Col: target.Col}
	}

	lines := []line{row, col}

	if target.Row == target.Col {
		var diagonal line
		for i := range entity.BoardSize {
			diagonal[i] = entity.Cell{Row: i, Col: i}
		}
		lines = append(lines, diagonal)
	}

	if target.Row+target.Col == entity.BoardSize-1 {
		var antiDiagonal line
		for i := range entity.BoardSize {
			antiDiagonal[i] = entity.Cell{Row: entity.BoardSize - 1 - i, Col: i}
		}
		lines = append(lines, antiDiagonal)
	}

	return lines
}

func (that *Board) hasWonWithCell(player int, target entity.Cell) bool {
	for _, candidate := range linesThrough(target) {
		if that.hasWonWithLine(player, candidate) {
			return true
		}
	}

	return false
}

func (that *Board) hasWonWithLine(player int, candidate line) bool {
	opponent := entity.Opponent(player)
	owned := 0

	for _, cell := range candidate {
		switch that.state.Cells[cell.Row][cell.Col] {
		case opponent:
			// a mixed line can't be won
			return false
		case player:
			owned++
		}
	}

	return owned == entity.BoardSize
}
