package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/yahtzee/internal/config"
	"github.com/palemoky/yahtzee/internal/game/room"
	"github.com/palemoky/yahtzee/internal/game/session"
	"github.com/palemoky/yahtzee/internal/server/handler"
	"github.com/palemoky/yahtzee/internal/server/storage"
)

const recordTimeout = 5 * time.Second

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client
	leaderboard *storage.LeaderboardManager
	roomManager *room.RoomManager
	handler     *handler.Handler
	upgrader    websocket.Upgrader
	httpServer  *http.Server

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter

	// 连接控制
	maxConnections int
	semaphore      chan struct{}

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	done     chan struct{}
	doneOnce sync.Once
}

// NewServer 创建服务器实例，启用 Redis 时连接失败返回错误
func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:  cfg,
		clients: make(map[string]*Client),
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		done:           make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	if cfg.Redis.Enabled {
		rdb, err := storage.Connect(context.Background(), cfg.Redis)
		if err != nil {
			s.rateLimiter.Stop()
			return nil, err
		}
		s.redis = rdb
		s.leaderboard = storage.NewLeaderboardManager(rdb)
	}

	s.roomManager = room.NewRoomManager(room.Options{
		Session:     sessionOptions(cfg.Game),
		RoomTimeout: cfg.Game.RoomTimeoutDuration(),
		OnGameOver:  s.recordGame,
	})

	deps := handler.HandlerDeps{Server: s, RoomManager: s.roomManager}
	if s.leaderboard != nil {
		deps.Leaderboard = s.leaderboard
	}
	s.handler = handler.NewHandler(deps)

	log.Info().
		Int("conn_per_sec", cfg.Security.RateLimit.MaxPerSecond).
		Int("msg_per_sec", cfg.Security.MessageLimit.MaxPerSecond).
		Int("max_connections", cfg.Server.MaxConnections).
		Bool("strict_turns", cfg.Game.StrictTurns).
		Bool("leaderboard", s.leaderboard != nil).
		Msg("🔒 服务器配置")

	return s, nil
}

func sessionOptions(cfg config.GameConfig) session.Options {
	opts := session.DefaultOptions()
	opts.MinPlayers = cfg.MinPlayers
	opts.MaxPlayers = cfg.MaxPlayers
	opts.StrictTurns = cfg.StrictTurns
	return opts
}

// recordGame 游戏结束后写入排行榜
func (s *Server) recordGame(code string, outcome session.Outcome) {
	if s.leaderboard == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := s.leaderboard.RecordGame(ctx, storage.NewGameResult(code, outcome)); err != nil {
		log.Error().Err(err).Str("room", code).Msg("记录排行榜失败")
		return
	}
	log.Debug().Str("room", code).Int("players", len(outcome.Standings)).Msg("🏅 排行榜已更新")
}

// Addr 监听地址
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Server.Host, fmt.Sprint(s.config.Server.Port))
}

// Start 启动服务器，阻塞直到关闭
func (s *Server) Start() error {
	addr := s.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		IdleTimeout:       60 * time.Second,
	}

	go s.monitorStats()

	log.Info().Str("addr", addr).Int("cpus", runtime.NumCPU()).Msgf("🚀 服务器启动在 ws://%s/ws", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RoomManager 房间管理器
func (s *Server) RoomManager() *room.RoomManager {
	return s.roomManager
}
