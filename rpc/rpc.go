package rpc

import (
	"context"
	"net"
	"net/rpc"
	"time"

	"github.com/bisca-online/gameserver/game"
	"github.com/bisca-online/gameserver/logger"
	"github.com/bisca-online/gameserver/models"
	"github.com/bisca-online/gameserver/services"
)

// Server manages the RPC listener for the internal admin surface.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes read-only queries over net/rpc. Methods follow the
// net/rpc signature: exported args struct, pointer reply, error return.
type AdminService struct {
	stats *services.StatsService
}

func NewAdminService(stats *services.StatsService) *AdminService {
	return &AdminService{stats: stats}
}

type PlayerStatsArgs struct {
	UserID int64
}

type PlayerStatsReply struct {
	Stats *models.PlayerStats
}

func (a *AdminService) GetPlayerStats(args *PlayerStatsArgs, reply *PlayerStatsReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := a.stats.GetPlayerStats(ctx, args.UserID)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}

type PendingGamesArgs struct {
	UserID int64
}

type PendingGamesReply struct {
	Count int
	Games []game.Summary
}

func (a *AdminService) GetPendingGames(args *PendingGamesArgs, reply *PendingGamesReply) error {
	reply.Games = a.stats.PendingGames(args.UserID)
	reply.Count = len(reply.Games)
	return nil
}
