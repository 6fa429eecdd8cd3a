package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/yahtzee/internal/protocol"
	"github.com/palemoky/yahtzee/internal/server/handler"
	"github.com/palemoky/yahtzee/internal/server/storage"
)

// Router HTTP 路由：WebSocket 入口和房间 REST 接口
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)

	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", s.handleListRooms)
		r.Post("/", s.handleCreateRoom)
		r.Get("/{code}", s.handleGetRoom)
	})
	r.Get("/leaderboard", s.handleLeaderboard)

	return r
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleCreateRoom 创建房间，返回房间号
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	if s.IsMaintenanceMode() {
		writeError(w, http.StatusServiceUnavailable, protocol.ErrCodeServerMaintenance)
		return
	}

	room := s.roomManager.CreateRoom()
	log.Info().Str("room", room.Code).Str("request_id", middleware.GetReqID(r.Context())).Msg("🏠 通过 HTTP 创建房间")
	writeJSON(w, http.StatusCreated, protocol.RoomCreatedPayload{Code: room.Code})
}

// handleGetRoom 查询房间，不存在返回 404
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	room := s.roomManager.GetRoom(code)
	if room == nil {
		writeError(w, http.StatusNotFound, protocol.ErrCodeRoomNotFound)
		return
	}
	writeJSON(w, http.StatusOK, room.Info())
}

// handleListRooms 可加入的房间列表
func (s *Server) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, protocol.RoomListResultPayload{Rooms: s.roomManager.GetRoomList()})
}

// handleLeaderboard 排行榜，?type=total|daily&limit=N
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.leaderboard == nil {
		writeError(w, http.StatusServiceUnavailable, protocol.ErrCodeLeaderboardDisabled)
		return
	}

	board := r.URL.Query().Get("type")
	switch board {
	case "":
		board = storage.BoardTotal
	case storage.BoardTotal, storage.BoardDaily:
	default:
		writeError(w, http.StatusBadRequest, protocol.ErrCodeInvalidPayload)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	entries, err := s.leaderboard.GetLeaderboard(ctx, board, limit)
	if err != nil {
		log.Error().Err(err).Msg("获取排行榜失败")
		writeError(w, http.StatusInternalServerError, protocol.ErrCodeUnknown)
		return
	}
	writeJSON(w, http.StatusOK, protocol.LeaderboardResultPayload{
		Type:    board,
		Entries: handler.LeaderboardEntries(entries),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("写入响应失败")
	}
}

func writeError(w http.ResponseWriter, status, code int) {
	writeJSON(w, status, protocol.ErrorPayload{Code: code, Message: protocol.ErrorMessages[code]})
}
