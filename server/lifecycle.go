// server/lifecycle.go
package server

import (
	"github.com/bisca-online/gameserver/game"
	"github.com/bisca-online/gameserver/logger"
	"github.com/bisca-online/gameserver/network"
	"github.com/bisca-online/gameserver/timer"
)

// moveTimerFor lazily creates the per-game move countdown. One timer object
// per game for its whole life; Start/Stop rearm it between moves.
func (s *GameServer) moveTimerFor(g *game.Game) *timer.MoveTimer {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if t, ok := s.moveTimers[g.ID]; ok {
		return t
	}
	t := timer.NewMoveTimer(s.timers,
		func(remaining int) { s.onTimerTick(g, remaining) },
		func(remaining int) { s.onTimerWarning(g, remaining) },
		func() { s.onTimerExpired(g) },
	)
	s.moveTimers[g.ID] = t
	return t
}

func (s *GameServer) startMoveTimer(g *game.Game) {
	seconds := int(s.cfg.Game.MoveTimeout.Seconds())
	g.SetTimeRemaining(seconds)
	s.moveTimerFor(g).Start(seconds, int(s.cfg.Game.WarningAt.Seconds()))
}

func (s *GameServer) stopMoveTimer(g *game.Game) {
	s.mutex.Lock()
	t, ok := s.moveTimers[g.ID]
	s.mutex.Unlock()
	if ok {
		t.Stop()
	}
}

func (s *GameServer) onTimerTick(g *game.Game, remaining int) {
	g.SetTimeRemaining(remaining)
	s.broadcaster.SendToGame(g, network.MsgTypeTimerTick, map[string]interface{}{
		"game_id":        g.ID,
		"time_remaining": remaining,
	})
}

func (s *GameServer) onTimerWarning(g *game.Game, remaining int) {
	s.broadcaster.SendToGame(g, network.MsgTypeTimerWarning, map[string]interface{}{
		"game_id":        g.ID,
		"time_remaining": remaining,
	})
}

// onTimerExpired forfeits the player whose clock ran out. TimeoutForfeit
// takes the game lock and refuses if the game concluded through another path
// in the meantime, so a timer racing a late move settles nothing twice.
func (s *GameServer) onTimerExpired(g *game.Game) {
	loser, err := g.TimeoutForfeit()
	if err != nil {
		return
	}
	logger.Log.Infof("Game %d: player %d forfeited on move timeout", g.ID, loser)

	s.broadcaster.SendToGame(g, network.MsgTypeTimeoutNotice, map[string]interface{}{
		"game_id": g.ID,
		"player":  loser,
	})
	s.concludeGame(g, "timeout")
}

// scheduleTrickResolution arms the short display delay between the second
// card hitting the table and the trick resolving.
func (s *GameServer) scheduleTrickResolution(g *game.Game) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if id, ok := s.delayTasks[g.ID]; ok {
		s.timers.Cancel(id)
	}
	s.delayTasks[g.ID] = s.timers.Schedule(s.cfg.Game.TrickDelay, 0, func() {
		s.resolveTrick(g)
	})
}

func (s *GameServer) cancelTrickResolution(g *game.Game) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if id, ok := s.delayTasks[g.ID]; ok {
		s.timers.Cancel(id)
		delete(s.delayTasks, g.ID)
	}
}

func (s *GameServer) resolveTrick(g *game.Game) {
	s.mutex.Lock()
	delete(s.delayTasks, g.ID)
	s.mutex.Unlock()

	out, err := g.ResolveTrick()
	if err != nil {
		// The game ended (resignation, timeout) while the delay was pending.
		return
	}

	if out.GameOver {
		s.concludeGame(g, "")
		return
	}

	s.startMoveTimer(g)
	s.broadcaster.PushState(g)
}

// concludeGame runs the shared end-of-game path: cancel outstanding work for
// the session, push final views, announce the result, and hand the game to
// the settlement orchestrator exactly once per guard.
func (s *GameServer) concludeGame(g *game.Game, reason string) {
	s.cancelTrickResolution(g)
	s.stopMoveTimer(g)
	g.SetTimeRemaining(0)

	winner, drawn := g.Winner()
	p1Points, p2Points := g.Points()
	resigned, timedOut := g.ForfeitFlags()
	matchWinner, matchOver, _ := g.MatchState()

	s.broadcaster.PushState(g)
	s.broadcaster.SendToGame(g, network.MsgTypeGameOver, gameOverNotice{
		GameID:        g.ID,
		Winner:        winner,
		Draw:          drawn,
		Player1Points: p1Points,
		Player2Points: p2Points,
		Resigned:      resigned,
		Timeout:       timedOut,
		IsMatch:       g.IsMatch,
		MatchOver:     matchOver,
		MatchWinner:   matchWinner,
		Reason:        reason,
	})

	s.settlement.GameEnded(g)

	// A finished match game that does not end the match keeps the session
	// alive for the next-game request; everything else is terminal and
	// leaves the registry. Settlement already holds its own reference.
	if g.Status() == game.StatusEnded {
		s.mutex.Lock()
		delete(s.moveTimers, g.ID)
		s.mutex.Unlock()
		s.games.Remove(g.ID)
	}
	s.updateGameGauges()
}
