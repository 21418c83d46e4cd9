package entity

// Result is what one participant brings to the leaderboard from a single game.
type Result struct {
	Name     string `json:"name"`
	WinCount int    `json:"win_count"`
}

type LeaderboardEntry struct {
	Name     string `json:"name"`
	WinCount int    `json:"win_count"`
}
