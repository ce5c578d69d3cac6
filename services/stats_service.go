// services/stats_service.go
package services

import (
	"context"

	"github.com/bisca-online/gameserver/game"
	"github.com/bisca-online/gameserver/models"
	"github.com/bisca-online/gameserver/persistence"
)

// StatsService answers the admin read queries exposed over RPC.
type StatsService struct {
	store persistence.Store
	games *game.Manager
}

func NewStatsService(store persistence.Store, games *game.Manager) *StatsService {
	return &StatsService{store: store, games: games}
}

func (s *StatsService) GetPlayerStats(ctx context.Context, userID int64) (*models.PlayerStats, error) {
	return s.store.GetPlayerStats(ctx, userID)
}

// PendingGames returns the user's waiting game summaries.
func (s *StatsService) PendingGames(userID int64) []game.Summary {
	pending := s.games.PendingFor(userID)
	out := make([]game.Summary, 0, len(pending))
	for _, g := range pending {
		out = append(out, g.Summarize())
	}
	return out
}
