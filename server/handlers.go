// server/handlers.go
package server

import (
	"encoding/json"
	"time"

	"github.com/bisca-online/gameserver/game"
	"github.com/bisca-online/gameserver/logger"
	"github.com/bisca-online/gameserver/network"
	"github.com/bisca-online/gameserver/session"
)

type identifyRequest struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

type createGameRequest struct {
	Variant int    `json:"variant"`
	Type    string `json:"type"`
	Stake   int64  `json:"stake"`
}

type gameRequest struct {
	GameID int64 `json:"game_id"`
}

type playCardRequest struct {
	GameID int64 `json:"game_id"`
	CardID int   `json:"card_id"`
}

type errorNotice struct {
	Message string `json:"message"`
}

type gameOverNotice struct {
	GameID        int64  `json:"game_id"`
	Winner        int64  `json:"winner"`
	Draw          bool   `json:"draw"`
	Player1Points int    `json:"player1_points"`
	Player2Points int    `json:"player2_points"`
	Resigned      bool   `json:"resigned"`
	Timeout       bool   `json:"timeout"`
	IsMatch       bool   `json:"is_match"`
	MatchOver     bool   `json:"match_over"`
	MatchWinner   int64  `json:"match_winner"`
	Reason        string `json:"reason,omitempty"`
}

func (s *GameServer) sendError(sess *session.Session, message string) {
	data, _ := json.Marshal(errorNotice{Message: message})
	sess.Send(network.MsgTypeError, data)
}

func (s *GameServer) reply(sess *session.Session, msgID uint16, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Log.Errorf("Failed to marshal reply %d: %v", msgID, err)
		return
	}
	sess.Send(msgID, data)
}

// requireUser rejects game events from connections that have not identified.
func (s *GameServer) requireUser(sess *session.Session) (game.User, bool) {
	uid, name := sess.User()
	if uid == 0 {
		s.sendError(sess, "User not authenticated")
		return game.User{}, false
	}
	return game.User{ID: uid, Name: name}, true
}

func (s *GameServer) handleIdentify(sess *session.Session, packet *network.Packet) {
	var req identifyRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil || req.UserID == 0 {
		s.sendError(sess, "Invalid identify payload")
		return
	}
	sess.Identify(req.UserID, req.Name)
	s.reply(sess, network.MsgTypeIdentify, req)
	logger.Log.Infof("Session %s identified as user %d (%s)", sess.GetID(), req.UserID, req.Name)
}

func (s *GameServer) handleCreateGame(sess *session.Session, packet *network.Packet) {
	user, ok := s.requireUser(sess)
	if !ok {
		return
	}

	var req createGameRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "Invalid create payload")
		return
	}

	g, err := s.games.Create(user, game.Options{
		Variant: req.Variant,
		Type:    req.Type,
		Stake:   req.Stake,
	})
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}

	logger.Log.Infof("%s created game %d - variant: %d, type: %s, stake: %d",
		user.Name, g.ID, g.Variant, g.Type, g.Stake)

	s.reply(sess, network.MsgTypeGameCreated, g.Summarize())
	s.broadcastLobby()
	s.updateGameGauges()
}

func (s *GameServer) handleListGames(sess *session.Session) {
	s.reply(sess, network.MsgTypeGames, s.lobbySummaries())
}

func (s *GameServer) handleGetGameState(sess *session.Session, packet *network.Packet) {
	user, ok := s.requireUser(sess)
	if !ok {
		return
	}
	var req gameRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "Invalid payload")
		return
	}
	g, found := s.games.Get(req.GameID)
	if !found {
		s.sendError(sess, game.ErrGameNotFound.Error())
		return
	}
	if !g.IsParticipant(user.ID) {
		s.sendError(sess, game.ErrNotParticipant.Error())
		return
	}
	s.reply(sess, network.MsgTypeGameState, g.StateFor(user.ID))
}

func (s *GameServer) handleJoinGame(sess *session.Session, packet *network.Packet) {
	user, ok := s.requireUser(sess)
	if !ok {
		return
	}
	var req gameRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "Invalid payload")
		return
	}

	g, err := s.games.Join(req.GameID, user)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}
	logger.Log.Infof("%s joined game %d", user.Name, g.ID)

	// Both seats are taken: deal and start the clock.
	if g.Deal() {
		s.settlement.GameDealt(g)
	}

	s.reply(sess, network.MsgTypeGameJoined, g.Summarize())

	p2, p2Name := g.Player2()
	s.broadcaster.SendToGame(g, network.MsgTypeGameStarted, map[string]interface{}{
		"game_id":      g.ID,
		"player1":      g.Player1,
		"player1_name": g.Player1Name,
		"player2":      p2,
		"player2_name": p2Name,
	})

	s.startMoveTimer(g)
	s.broadcaster.PushState(g)
	s.broadcastLobby()
	s.updateGameGauges()
}

func (s *GameServer) handlePlayCard(sess *session.Session, packet *network.Packet) {
	user, ok := s.requireUser(sess)
	if !ok {
		return
	}
	var req playCardRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "Invalid payload")
		return
	}
	g, found := s.games.Get(req.GameID)
	if !found {
		s.sendError(sess, game.ErrGameNotFound.Error())
		return
	}

	started := time.Now()
	trickReady, err := g.PlayCard(user.ID, req.CardID)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}
	if s.mon != nil {
		s.mon.IncMoves()
		s.mon.ObserveMoveLatency(time.Since(started))
	}

	if trickReady {
		// Clock stops while the trick sits on the table; resolution is a
		// scheduled continuation, not a sleep, so other games keep moving.
		s.stopMoveTimer(g)
		s.broadcaster.PushState(g)
		s.scheduleTrickResolution(g)
		return
	}

	s.startMoveTimer(g)
	s.broadcaster.PushState(g)
}

func (s *GameServer) handleResign(sess *session.Session, packet *network.Packet) {
	user, ok := s.requireUser(sess)
	if !ok {
		return
	}
	var req gameRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "Invalid payload")
		return
	}
	g, found := s.games.Get(req.GameID)
	if !found {
		s.sendError(sess, game.ErrGameNotFound.Error())
		return
	}

	if err := g.Resign(user.ID); err != nil {
		s.sendError(sess, err.Error())
		return
	}
	logger.Log.Infof("%s resigned from game %d", user.Name, g.ID)
	s.concludeGame(g, "resigned")
}

func (s *GameServer) handleNextMatchGame(sess *session.Session, packet *network.Packet) {
	user, ok := s.requireUser(sess)
	if !ok {
		return
	}
	var req gameRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "Invalid payload")
		return
	}
	g, found := s.games.Get(req.GameID)
	if !found {
		s.sendError(sess, game.ErrGameNotFound.Error())
		return
	}
	if !g.IsParticipant(user.ID) {
		s.sendError(sess, game.ErrNotParticipant.Error())
		return
	}

	if err := g.PrepareNextGame(); err != nil {
		s.sendError(sess, err.Error())
		return
	}
	logger.Log.Infof("Game %d advanced to match game %d", g.ID, g.GameNumber())

	s.startMoveTimer(g)
	s.broadcaster.PushState(g)
}

func (s *GameServer) handleCancelGame(sess *session.Session, packet *network.Packet) {
	user, ok := s.requireUser(sess)
	if !ok {
		return
	}
	var req gameRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, "Invalid payload")
		return
	}

	if err := s.games.Cancel(req.GameID, user.ID); err != nil {
		s.sendError(sess, err.Error())
		return
	}
	logger.Log.Infof("%s cancelled game %d", user.Name, req.GameID)

	s.reply(sess, network.MsgTypeGameCancelled, gameRequest{GameID: req.GameID})
	s.broadcastLobby()
	s.updateGameGauges()
}

func (s *GameServer) handlePendingGames(sess *session.Session) {
	user, ok := s.requireUser(sess)
	if !ok {
		return
	}
	pending := s.games.PendingFor(user.ID)
	summaries := make([]game.Summary, 0, len(pending))
	for _, g := range pending {
		summaries = append(summaries, g.Summarize())
	}
	s.reply(sess, network.MsgTypePendingGames, map[string]interface{}{
		"count": len(summaries),
		"games": summaries,
	})
}

func (s *GameServer) lobbySummaries() []game.Summary {
	waiting := s.games.ListWaiting()
	out := make([]game.Summary, 0, len(waiting))
	for _, g := range waiting {
		out = append(out, g.Summarize())
	}
	return out
}

func (s *GameServer) broadcastLobby() {
	s.broadcaster.BroadcastAll(network.MsgTypeGames, s.lobbySummaries())
}

func (s *GameServer) updateGameGauges() {
	if s.mon != nil {
		s.mon.SetGameCounts(s.games.Counts())
	}
}
