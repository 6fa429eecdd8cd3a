package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/yahtzee/internal/config"
	"github.com/palemoky/yahtzee/internal/logger"
	"github.com/palemoky/yahtzee/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Warn().Err(err).Msg("加载配置文件失败，使用默认配置")
		cfg = config.Default()
		cfg.LoadFromEnv()
	}

	if err := logger.Init(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}); err != nil {
		log.Fatal().Err(err).Msg("初始化日志失败")
	}

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("创建服务器失败")
	}

	// 第一次信号等待游戏结束后关闭，第二次立即关闭
	quit := make(chan os.Signal, 2)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Dur("timeout", cfg.Game.ShutdownTimeoutDuration()).Msg("🛑 收到关闭信号，等待游戏结束...")
		go srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration())

		<-quit
		log.Warn().Msg("🛑 再次收到关闭信号，立即关闭")
		srv.Shutdown()
	}()

	// 启动服务器，关闭后返回
	log.Info().Str("addr", srv.Addr()).Msg("🎲 Yahtzee 服务器启动中...")
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("服务器启动失败")
	}
}
