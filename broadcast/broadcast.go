// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"

	"github.com/bisca-online/gameserver/game"
	"github.com/bisca-online/gameserver/logger"
	"github.com/bisca-online/gameserver/network"
	"github.com/bisca-online/gameserver/session"
)

// GameBroadcaster pushes game state to players. Each participant receives
// their own filtered view; the opponent's hand never crosses the wire.
type GameBroadcaster struct {
	sessions *session.Manager
}

func NewGameBroadcaster(sessions *session.Manager) *GameBroadcaster {
	return &GameBroadcaster{sessions: sessions}
}

// PushState sends each seated participant their projection of the game.
func (b *GameBroadcaster) PushState(g *game.Game) {
	p1, p2 := g.Participants()
	for _, uid := range []int64{p1, p2} {
		if uid == 0 {
			continue
		}
		b.SendToUser(uid, network.MsgTypeGameState, g.StateFor(uid))
	}
}

// SendToGame sends the same payload to both participants.
func (b *GameBroadcaster) SendToGame(g *game.Game, msgID uint16, v interface{}) {
	p1, p2 := g.Participants()
	for _, uid := range []int64{p1, p2} {
		if uid != 0 {
			b.SendToUser(uid, msgID, v)
		}
	}
}

// SendToUser marshals v and delivers it to every session of the user.
func (b *GameBroadcaster) SendToUser(userID int64, msgID uint16, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("Failed to marshal message %d for user %d: %v", msgID, userID, err)
		return
	}
	for _, s := range b.sessions.GetByUserID(userID) {
		if err := s.Send(msgID, data); err != nil {
			// Dead connections are cleaned up by their read loop.
			continue
		}
	}
}

// BroadcastAll sends to every live session, identified or not. Used for the
// lobby list.
func (b *GameBroadcaster) BroadcastAll(msgID uint16, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("Failed to marshal broadcast message %d: %v", msgID, err)
		return
	}
	for _, s := range b.sessions.All() {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
}
