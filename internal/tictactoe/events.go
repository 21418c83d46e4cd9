package tictactoe

import "github.com/rocketscienceinc/tictactoe-leaderboard/internal/entity"

const (
	EventTurnChanged  = "board.turn_changed"
	EventWin          = "board.finished.win"
	EventDraw         = "board.finished.draw"
	EventGameStarted  = "game.started"
	EventGameFinished = "game.finished"
	EventGameReset    = "game.finished.reset"
	EventGameWait     = "game.finished.wait"
	EventNotice       = "game.notice"
)

// Event is an outcome emitted by the board or the game controller.
type Event interface {
	EventName() string
}

type Listener func(Event)

type TurnChanged struct {
	Player int `json:"player"`
}

type OpponentOutcome struct {
	ID  int  `json:"id"`
	Won bool `json:"won"`
}

type Win struct {
	Winner    int                `json:"winner"`
	Opponents [2]OpponentOutcome `json:"opponents"`
}

type Draw struct{}

type GameStarted struct{}

// GameFinished asks the presentation layer to show the result dialog.
type GameFinished struct {
	Text    string          `json:"text"`
	Results []entity.Result `json:"results"`
}

type GameReset struct {
	Results []entity.Result `json:"results"`
}

type GameWait struct {
	Results []entity.Result `json:"results"`
}

type Notice struct {
	Text string `json:"text"`
}

func (TurnChanged) EventName() string  { return EventTurnChanged }
func (Win) EventName() string          { return EventWin }
func (Draw) EventName() string         { return EventDraw }
func (GameStarted) EventName() string  { return EventGameStarted }
func (GameFinished) EventName() string { return EventGameFinished }
func (GameReset) EventName() string    { return EventGameReset }
func (GameWait) EventName() string     { return EventGameWait }
func (Notice) EventName() string       { return EventNotice }

// emitter delivers events synchronously, in subscription order.
type emitter struct {
	listeners []Listener
}

func (that *emitter) Subscribe(listener Listener) {
	that.listeners = append(that.listeners, listener)
}

func (that *emitter) emit(event Event) {
	for _, listener := range that.listeners {
		listener(event)
	}
}
