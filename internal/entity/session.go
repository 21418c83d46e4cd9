package entity

import "time"

type GameStatus string

const (
	StatusNotStarted GameStatus = "not_started"
	StatusStarted    GameStatus = "started"
	StatusFinished   GameStatus = "finished"
)

type GameState struct {
	Status GameStatus `json:"status"`
	Names  [2]string  `json:"names"`

	// PendingResults holds the outcome of the last finished game until it
	// is handed over to the leaderboard by a reset or a wait.
	PendingResults []Result `json:"pending_results,omitempty"`
}

func NewGameState() GameState {
	return GameState{Status: StatusNotStarted}
}

func (that *GameState) IsNotStarted() bool {
	return that.Status == StatusNotStarted
}

func (that *GameState) IsStarted() bool {
	return that.Status == StatusStarted
}

func (that *GameState) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *GameState) HasBothNames() bool {
	return that.Names[PlayerFirst] != "" && that.Names[PlayerSecond] != ""
}

type Session struct {
	ID        string             `json:"id"`
	Game      GameState          `json:"game"`
	Board     BoardState         `json:"board"`
	Leaders   []LeaderboardEntry `json:"leaders"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func NewSession(id string, startingPlayer int) *Session {
	return &Session{
		ID:        id,
		Game:      NewGameState(),
		Board:     NewBoardState(startingPlayer, false),
		Leaders:   []LeaderboardEntry{},
		UpdatedAt: time.Now().UTC(),
	}
}
