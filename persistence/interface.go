// persistence/interface.go
package persistence

import (
	"context"
	"fmt"

	"github.com/bisca-online/gameserver/models"
)

// Store is the durable-record collaborator. Implementations must be safe for
// concurrent use across game sessions.
type Store interface {
	// SaveGame records a finished game and returns its durable id.
	SaveGame(ctx context.Context, snap models.GameSnapshot) (int64, error)
	// SaveMatch creates the match row, or updates it when the snapshot
	// already carries a durable id. Returns the durable id either way.
	SaveMatch(ctx context.Context, snap models.MatchSnapshot) (int64, error)
	// GetPlayerStats aggregates a user's game history.
	GetPlayerStats(ctx context.Context, userID int64) (*models.PlayerStats, error)
	Close() error
}

var ErrRecordNotFound = fmt.Errorf("record not found")
