package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"fyne.io/fyne/v2"

	"InkBoard/internal/config"
	"InkBoard/internal/engine"
	inknet "InkBoard/internal/net"
	"InkBoard/internal/render"
	"InkBoard/internal/state"
	"InkBoard/internal/ui"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "settings file")
		join       = flag.String("join", "", "share link or host:port of a board to join")
		discover   = flag.Bool("discover", false, "join the first board found on the LAN")
		port       = flag.Int("port", 0, "port to host on (overrides the settings file)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()
	setupLogging(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("[MAIN] bad settings", "err", err)
		os.Exit(2)
	}
	if *port != 0 {
		cfg.Net.Port = *port
	}
	opts, err := cfg.Options()
	if err != nil {
		slog.Error("[MAIN] bad settings", "err", err)
		os.Exit(2)
	}

	// links opened through the OS arrive as the first argument
	if *join == "" && flag.NArg() > 0 && strings.HasPrefix(flag.Arg(0), inknet.LinkScheme) {
		*join = flag.Arg(0)
	}
	if *discover && *join == "" {
		found, err := inknet.Browse(2 * time.Second)
		if err != nil {
			slog.Warn("[MAIN] discovery failed", "err", err)
		}
		if len(found) == 0 {
			slog.Error("[MAIN] no board found on the LAN")
			os.Exit(1)
		}
		slog.Info("[MAIN] boards found", "addrs", found)
		*join = found[0]
	}

	e := engine.New(opts)
	board := ui.NewBoardWidget(e)
	size := fyne.NewSize(float32(cfg.Board.Width), float32(cfg.Board.Height))

	if *join != "" {
		runClient(*join, e, board, size)
		return
	}
	runHost(cfg, e, board, size)
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	engine.SetLogger(logger)
	render.SetLogger(logger)
	inknet.SetLogger(logger)
	state.SetLogger(logger)
}

func runHost(cfg config.File, e *engine.Engine, board *ui.BoardWidget, size fyne.Size) {
	slog.Info("[MAIN] starting as HOST", "site", e.Site())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := inknet.NewHub(func(op state.Op) { e.ApplyRemote(op) }, e.SyncOps)
	e.OnLocalOp(hub.Broadcast)
	go func() {
		if err := hub.ListenAndServe(ctx, cfg.Net.Port); err != nil {
			slog.Error("[MAIN] host server stopped", "err", err)
			board.SetStatus(fmt.Sprintf("Sharing unavailable: %v", err))
		}
	}()

	if cfg.Net.Advertise {
		server, err := inknet.Advertise(cfg.Net.Name, cfg.Net.Port)
		if err != nil {
			slog.Warn("[MAIN] not advertising on the LAN", "err", err)
		} else {
			defer server.Shutdown()
		}
	}

	link := inknet.ShareLink(inknet.OutgoingIP(), cfg.Net.Port)
	slog.Info("[MAIN] share link", "link", link)
	ui.RunApp("InkBoard", link, board, size)
}

func runClient(link string, e *engine.Engine, board *ui.BoardWidget, size fyne.Size) {
	slog.Info("[MAIN] starting as CLIENT", "site", e.Site(), "link", link)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go connectToHost(ctx, link, e, board)
	ui.RunApp("InkBoard", "", board, size)
}

func connectToHost(ctx context.Context, link string, e *engine.Engine, board *ui.BoardWidget) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := inknet.Dial(dialCtx, link)
	if err != nil {
		board.SetStatus(fmt.Sprintf("Connection failed: %v", err))
		return
	}
	defer client.Close()
	board.SetStatus("Connected to " + link)

	e.OnLocalOp(func(op state.Op) {
		if err := client.Send(op); err != nil {
			slog.Warn("[MAIN] failed to send op", "type", op.Type, "err", err)
		}
	})
	defer e.OnLocalOp(nil)

	if err := client.Listen(func(op state.Op) { e.ApplyRemote(op) }); err != nil {
		board.SetStatus(fmt.Sprintf("Disconnected from host: %v", err))
		return
	}
	board.SetStatus("Host closed the board")
}
