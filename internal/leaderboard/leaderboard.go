package leaderboard

import (
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/entity"
	"github.com/rocketscienceinc/tictactoe-leaderboard/internal/tictactoe"
)

// Leaderboard accumulates wins per player name in first-seen order.
type Leaderboard struct {
	entries []entity.LeaderboardEntry
}

func New() *Leaderboard {
	return &Leaderboard{entries: []entity.LeaderboardEntry{}}
}

func Restore(entries []entity.LeaderboardEntry) *Leaderboard {
	board := New()
	board.entries = append(board.entries, entries...)

	return board
}

func (that *Leaderboard) RecordResults(results []entity.Result) {
	for _, result := range results {
		index := that.indexByName(result.Name)
		if index == -1 {
			that.entries = append(that.entries, entity.LeaderboardEntry{
				Name:     result.Name,
				WinCount: result.WinCount,
			})

			continue
		}

		that.entries[index].WinCount += result.WinCount
	}
}

func (that *Leaderboard) Entries() []entity.LeaderboardEntry {
	return append([]entity.LeaderboardEntry{}, that.entries...)
}

// Listener records the results carried by reset and wait events.
func (that *Leaderboard) Listener() tictactoe.Listener {
	return func(event tictactoe.Event) {
		switch finished := event.(type) {
		case tictactoe.GameReset:
			that.RecordResults(finished.Results)
		case tictactoe.GameWait:
			that.RecordResults(finished.Results)
		}
	}
}

// indexByName is a linear scan, the board holds a handful of names.
func (that *Leaderboard) indexByName(name string) int {
	for i, entry := range that.entries {
		if entry.Name == name {
			return i
		}
	}

	return -1
}
