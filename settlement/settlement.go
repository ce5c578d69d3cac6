// settlement/settlement.go
package settlement

import (
	"context"
	"time"

	"github.com/bisca-online/gameserver/config"
	"github.com/bisca-online/gameserver/game"
	"github.com/bisca-online/gameserver/ledger"
	"github.com/bisca-online/gameserver/logger"
	"github.com/bisca-online/gameserver/persistence"
)

// Game payout tiers by the winner's points.
const (
	payoutWin      = 3 // 61-90
	payoutCapote   = 4 // 91-119
	payoutBandeira = 6 // 120 (or a forfeit sweep beyond it)
)

// FailureCounter receives settlement failures for metrics. May be nil.
type FailureCounter interface {
	IncSettlementFailures()
}

// Orchestrator maps game/match lifecycle transitions to ledger and
// persistence calls. Calls are best-effort and asynchronous: a collaborator
// failure is logged and counted but never rolls back in-memory game state,
// since the outcome is already final from the players' perspective. The
// exactly-once property comes from the guard flags on the game, flipped
// under the game's own lock before any call is issued.
type Orchestrator struct {
	ledger  ledger.Ledger
	store   persistence.Store
	coins   config.CoinsConfig
	metrics FailureCounter
	timeout time.Duration
}

func New(l ledger.Ledger, s persistence.Store, coins config.CoinsConfig, metrics FailureCounter) *Orchestrator {
	return &Orchestrator{
		ledger:  l,
		store:   s,
		coins:   coins,
		metrics: metrics,
		timeout: 10 * time.Second,
	}
}

// GameDealt handles the entry transition: entry fees for a standalone game,
// or — on a match's first deal — the durable match row followed by the stake
// debit keyed to it. Safe to call repeatedly; guards make reruns no-ops.
//
// The match row is created synchronously, not on the debit goroutine: the
// game can conclude right after this call returns (an instant resign is a
// single packet), and the end path must update the row the stakes reference
// rather than create a second one.
func (o *Orchestrator) GameDealt(g *game.Game) {
	if !g.IsMatch {
		if g.MarkFeesDeducted() {
			go o.deductFees(g)
		}
		return
	}
	if !g.MarkStakesDeducted() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	matchID, err := o.store.SaveMatch(ctx, g.MatchSnapshot())
	if err != nil {
		o.fail("match persist", g.ID, err)
		return
	}
	g.SetDurableMatchID(matchID)
	go o.deductStakes(g, matchID)
}

func (o *Orchestrator) deductFees(g *game.Game) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	p1, p2 := g.Participants()
	for _, uid := range []int64{p1, p2} {
		if _, err := o.ledger.Debit(ctx, uid, o.coins.EntryFee, ledger.TypeGameFee, ledger.RefGame, g.ID); err != nil {
			o.fail("entry fee debit", g.ID, err)
		}
	}
}

func (o *Orchestrator) deductStakes(g *game.Game, matchID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	p1, p2 := g.Participants()
	for _, uid := range []int64{p1, p2} {
		if _, err := o.ledger.Debit(ctx, uid, g.Stake, ledger.TypeMatchStake, ledger.RefMatch, matchID); err != nil {
			o.fail("stake debit", g.ID, err)
		}
	}
}

// GameEnded handles every game conclusion: the durable game record, the
// standalone payout or draw refund, the match row update, and — when the
// match just ended — the match payout. Invoking it twice produces at most
// one of each ledger call.
func (o *Orchestrator) GameEnded(g *game.Game) {
	winner, drawn := g.Winner()
	p1Points, p2Points := g.Points()
	_, p2 := g.Participants()
	matchWinner, matchOver, _ := g.MatchState()

	// Claim the guards synchronously, before any collaborator call, so a
	// duplicate trigger (late move racing a timer) settles nothing twice.
	var payout, refund bool
	if !g.IsMatch {
		if winner != 0 {
			payout = g.MarkPayoutAwarded()
		} else if drawn {
			refund = g.MarkRefundIssued()
		}
	} else if matchOver && matchWinner != 0 {
		payout = g.MarkPayoutAwarded()
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
		defer cancel()

		if !g.IsMatch {
			if payout {
				winnerPoints := p1Points
				if winner == p2 {
					winnerPoints = p2Points
				}
				if _, err := o.ledger.Credit(ctx, winner, payoutFor(winnerPoints), ledger.TypeGamePayout, ledger.RefGame, g.ID); err != nil {
					o.fail("game payout", g.ID, err)
				}
			}
			if refund {
				p1, p2 := g.Participants()
				for _, uid := range []int64{p1, p2} {
					if _, err := o.ledger.Credit(ctx, uid, o.coins.DrawRefund, ledger.TypeGamePayout, ledger.RefGame, g.ID); err != nil {
						o.fail("draw refund", g.ID, err)
					}
				}
			}
		} else {
			o.settleMatch(ctx, g, payout)
		}

		if _, err := o.store.SaveGame(ctx, g.Snapshot()); err != nil {
			o.fail("game persist", g.ID, err)
		}
	}()
}

func (o *Orchestrator) settleMatch(ctx context.Context, g *game.Game, payout bool) {
	matchID, err := o.store.SaveMatch(ctx, g.MatchSnapshot())
	if err != nil {
		o.fail("match persist", g.ID, err)
	} else {
		g.SetDurableMatchID(matchID)
	}

	matchWinner, over, _ := g.MatchState()
	if over && matchWinner != 0 && payout {
		coins := g.Stake*2 - o.coins.MatchCommission
		if _, err := o.ledger.Credit(ctx, matchWinner, coins, ledger.TypeMatchPayout, ledger.RefMatch, g.DurableMatchID()); err != nil {
			o.fail("match payout", g.ID, err)
		}
	}
}

func payoutFor(points int) int64 {
	switch {
	case points >= 120:
		return payoutBandeira
	case points >= 91:
		return payoutCapote
	default:
		return payoutWin
	}
}

func (o *Orchestrator) fail(what string, gameID int64, err error) {
	logger.Log.Errorf("Settlement %s failed for game %d: %v", what, gameID, err)
	if o.metrics != nil {
		o.metrics.IncSettlementFailures()
	}
}
