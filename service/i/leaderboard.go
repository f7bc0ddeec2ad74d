package i

import "context"

// Standing is a team's score in a lobby.
type Standing struct {
	Team  string
	Score int
}

// Leaderboard ranks the teams of a lobby.
type Leaderboard interface {
	// Record sets the score of team in lobby.
	Record(ctx context.Context, lobby, team string, score int) error

	// Top returns up to n standings, highest score first.
	Top(ctx context.Context, lobby string, n int64) ([]Standing, error)
}
