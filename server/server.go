package server

import (
	"net/http"
	"net/rpc"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bisca-online/gameserver/broadcast"
	"github.com/bisca-online/gameserver/config"
	"github.com/bisca-online/gameserver/game"
	"github.com/bisca-online/gameserver/ledger"
	"github.com/bisca-online/gameserver/logger"
	"github.com/bisca-online/gameserver/monitor"
	"github.com/bisca-online/gameserver/network"
	"github.com/bisca-online/gameserver/persistence"
	"github.com/bisca-online/gameserver/services"
	"github.com/bisca-online/gameserver/session"
	"github.com/bisca-online/gameserver/settlement"
	"github.com/bisca-online/gameserver/timer"

	gameserver_rpc "github.com/bisca-online/gameserver/rpc"
)

// GameServer owns the websocket endpoint and wires the registry, timers,
// settlement, and per-player state pushes together.
type GameServer struct {
	cfg      *config.Config
	upgrader websocket.Upgrader

	games       *game.Manager
	sessions    *session.Manager
	broadcaster *broadcast.GameBroadcaster
	timers      *timer.Manager
	settlement  *settlement.Orchestrator
	mon         *monitor.Monitor
	rpcServer   *gameserver_rpc.Server

	mutex      sync.Mutex
	moveTimers map[int64]*timer.MoveTimer
	delayTasks map[int64]int64 // pending trick-resolution task per game

	shutdownChan chan struct{}
}

func NewGameServer(cfg *config.Config, store persistence.Store, led ledger.Ledger, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		cfg: cfg,
		games: game.NewManager(game.ManagerConfig{
			MaxPendingGames: cfg.Game.MaxPendingGames,
			MinStake:        cfg.Coins.MinStake,
			MaxStake:        cfg.Coins.MaxStake,
			WaitingTTL:      cfg.Game.WaitingTTL,
		}),
		sessions:     session.NewManager(),
		timers:       timer.NewManager(),
		mon:          mon,
		moveTimers:   make(map[int64]*timer.MoveTimer),
		delayTasks:   make(map[int64]int64),
		shutdownChan: make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.broadcaster = broadcast.NewGameBroadcaster(s.sessions)
	var failures settlement.FailureCounter
	if mon != nil {
		failures = mon
	}
	s.settlement = settlement.New(led, store, cfg.Coins, failures)

	rpcServer, err := gameserver_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	stats := services.NewStatsService(store, s.games)
	rpc.Register(gameserver_rpc.NewAdminService(stats))

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	if s.mon != nil {
		s.mon.StartServer(s.cfg.Server.MetricsAddress)
	}

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.timers.Close()
	s.games.Close()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessions.Add(sess)
	if s.mon != nil {
		s.mon.IncOnlinePlayers()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessions.Remove(sess.GetID())
		if s.mon != nil {
			s.mon.DecOnlinePlayers()
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeIdentify:
		s.handleIdentify(sess, packet)
	case network.MsgTypeCreateGame:
		s.handleCreateGame(sess, packet)
	case network.MsgTypeListGames:
		s.handleListGames(sess)
	case network.MsgTypeGetGameState:
		s.handleGetGameState(sess, packet)
	case network.MsgTypeJoinGame:
		s.handleJoinGame(sess, packet)
	case network.MsgTypePlayCard:
		s.handlePlayCard(sess, packet)
	case network.MsgTypeResign:
		s.handleResign(sess, packet)
	case network.MsgTypeNextMatchGame:
		s.handleNextMatchGame(sess, packet)
	case network.MsgTypeCancelGame:
		s.handleCancelGame(sess, packet)
	case network.MsgTypePendingGames:
		s.handlePendingGames(sess)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}
