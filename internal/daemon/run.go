package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/screenline/internal/config"
	"github.com/1broseidon/screenline/internal/hotkeys"
	"github.com/1broseidon/screenline/internal/ipc"
	"github.com/1broseidon/screenline/internal/menu"
	"github.com/1broseidon/screenline/internal/platform"
	"github.com/1broseidon/screenline/internal/runtimepath"
	"github.com/1broseidon/screenline/internal/tray"
	"github.com/1broseidon/screenline/internal/uiloop"
	"github.com/1broseidon/screenline/internal/x11"
)

// shutdownTimeout bounds each shutdown step.
const shutdownTimeout = 2 * time.Second

// Options configures Run.
type Options struct {
	// ConfigPath overrides the default settings file.
	ConfigPath string
	// Tray shows a system tray icon. Run must then be called from the main
	// goroutine.
	Tray bool
}

// parseLevel maps a log_level setting to a slog level.
func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Run starts the daemon and blocks until it is told to stop by a signal, the
// Quit menu item or ctx. SIGHUP reloads the settings file.
func Run(ctx context.Context, opts Options) error {
	lockPath, err := runtimepath.LockPath()
	if err != nil {
		return err
	}
	lock, err := runtimepath.AcquireLock(lockPath)
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := config.LoadEnvFile(); err != nil {
		log.Printf("Warning: Failed to load .env file: %v", err)
	}

	path := opts.ConfigPath
	if path == "" {
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}
	res, notice := config.LoadOrDefault(path)
	if notice != "" {
		log.Printf("Warning: %s", notice)
	}
	log.Printf("Configuration loaded from %s", path)

	level := new(slog.LevelVar)
	level.Set(parseLevel(res.Config.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	conn, err := x11.NewConnection()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	backend := platform.NewLinuxBackend(conn)

	registrar, err := hotkeys.NewKeybindRegistrar(backend)
	if err != nil {
		conn.Close(0)
		return err
	}
	presenter := x11.NewPresenter(conn, logger)
	loop := uiloop.New(logger)

	pump, err := conn.StartPump()
	if err != nil {
		conn.Close(0)
		return fmt.Errorf("failed to start event loop: %w", err)
	}
	defer conn.Close(shutdownTimeout)
	defer presenter.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var engine *Engine
	reload := func() error {
		cctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		return loop.Call(cctx, engine.Reload)
	}
	watcher := config.NewWatcher(path, logger, func() {
		log.Println("Settings file changed, reloading")
		if err := reload(); err != nil {
			log.Printf("Reload failed: %v", err)
		}
	})

	var trayUI *tray.Tray
	engine = NewEngine(EngineConfig{
		Presenter:  presenter,
		Screen:     platform.NewScreen(backend, logger),
		Backend:    backend,
		Scheduler:  loop,
		Registrar:  registrar,
		Foreground: x11.NewForegroundSource(logger),
		Clipboard:  NewSystemClipboard(),
		Store:      NewFileStore(path, watcher),
		Logger:     logger,
		Level:      level,
		Quit:       stop,
		OnChange: func() {
			if trayUI != nil {
				trayUI.Refresh()
			}
		},
	}, res.Config, notice)
	presenter.SetPointerHandler(engine.HandlePointer)
	if opts.Tray {
		trayUI = tray.New(loopSource{loop: loop, engine: engine}, logger)
	}

	if res.FirstRun {
		if err := engine.store.Save(res.Config); err != nil {
			log.Printf("Warning: Failed to write default settings: %v", err)
		} else {
			log.Printf("Wrote default settings to %s", path)
		}
	}

	server, err := ipc.NewServer(engine, loop.Call)
	if err != nil {
		return err
	}

	displays := NewDisplayWatcher(DisplayWatcherConfig{Logger: logger}, BackendLayout(backend), func() {
		loop.Post(engine.Relayout)
	})

	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := loop.Run(loopCtx, pump)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	// The engine is closed on the loop before the loop stops so that every
	// surface and grab is released while the connection is still live.
	g.Go(func() error {
		<-gctx.Done()
		cctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := loop.Call(cctx, func() error { engine.Close(); return nil }); err != nil {
			logger.Warn("daemon: engine close timed out", "error", err)
		}
		stopLoop()
		return nil
	})
	g.Go(func() error { return server.Serve(gctx) })
	g.Go(func() error {
		if err := watcher.Run(gctx); err != nil {
			log.Printf("Warning: Settings file watcher stopped: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		displays.Run(gctx)
		return nil
	})
	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				log.Println("Received SIGHUP, reloading settings")
				if err := reload(); err != nil {
					log.Printf("Reload failed: %v", err)
				}
			}
		}
	})

	loop.Post(engine.Start)
	log.Println("screenline daemon started successfully")

	if trayUI != nil {
		trayUI.Run(gctx)
	}

	err = g.Wait()
	log.Println("screenline daemon stopped")
	return err
}

// loopSource serves the tray from the UI loop.
type loopSource struct {
	loop   *uiloop.Loop
	engine *Engine
}

func (s loopSource) Items(ctx context.Context) ([]menu.Item, string, error) {
	var (
		items  []menu.Item
		notice string
	)
	err := s.loop.Call(ctx, func() error {
		items = s.engine.Menu()
		notice = s.engine.notice
		return nil
	})
	return items, notice, err
}

func (s loopSource) Invoke(ctx context.Context, id string) error {
	return s.loop.Call(ctx, func() error { return s.engine.InvokeMenu(id) })
}
