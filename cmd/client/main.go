package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/yahtzee/internal/logger"
	"github.com/palemoky/yahtzee/internal/sound"
	"github.com/palemoky/yahtzee/internal/transport"
	"github.com/palemoky/yahtzee/internal/ui"
)

func main() {
	serverAddr := flag.String("server", "localhost:1780", "服务器地址")
	soundDir := flag.String("sounds", sound.DefaultDir, "音效目录")
	logLevel := flag.String("log-level", "info", "日志级别")
	flag.Parse()

	// 终端被界面占用，日志写入文件
	if path, err := logger.DefaultFilePath(); err == nil {
		if err := logger.Init(logger.Options{Level: *logLevel, File: path}); err != nil {
			fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		}
	}
	defer logger.Close()

	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			panic(r)
		}
	}()

	sm := sound.NewSoundManager(*soundDir)
	go func() {
		if err := sm.Init(); err != nil {
			log.Debug().Err(err).Msg("音效不可用")
		}
	}()
	defer sm.Close()

	serverURL := fmt.Sprintf("ws://%s/ws", *serverAddr)
	client := transport.NewClient(serverURL)
	defer client.Close()

	model := ui.NewOnlineModel(client, sm)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("客户端运行出错")
		fmt.Fprintf(os.Stderr, "启动客户端时出错: %v\n", err)
		os.Exit(1)
	}
}
