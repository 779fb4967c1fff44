/*
Renders a tumbling mesh into the terminal with half-block glyphs.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"

	"github.com/spaghettifunk/halfblock/engine"
	"github.com/spaghettifunk/halfblock/engine/assets"
	"github.com/spaghettifunk/halfblock/engine/core"
	"github.com/spaghettifunk/halfblock/engine/renderer"
	"github.com/spaghettifunk/halfblock/engine/renderer/remote"
	"github.com/spaghettifunk/halfblock/engine/renderer/terminal"
	"github.com/spaghettifunk/halfblock/testbed"
)

func main() {
	configPath := flag.String("config", "", "TOML or YAML scene config, reloaded when it changes")
	benchFrames := flag.Int("bench", 0, "render N frames offscreen and report the frame rate")
	serveAddr := flag.String("serve", "", "stream frames to ssh viewers on this address instead of the local terminal")
	hostKey := flag.String("host-key", "", "PEM host key for -serve, a fresh key is generated when empty")
	flag.Parse()

	if err := run(*configPath, *benchFrames, *serveAddr, *hostKey); err != nil {
		fmt.Fprintln(os.Stderr, "halfblock:", err)
		os.Exit(1)
	}
}

func run(configPath string, benchFrames int, serveAddr, hostKey string) error {
	config := engine.DefaultApplicationConfig()
	if configPath != "" {
		loaded, err := engine.LoadConfig(configPath)
		if err != nil {
			return err
		}
		config = loaded
	}
	if err := core.SetLogLevel(config.LogLevel); err != nil {
		return err
	}
	if err := core.SetLogOutput(config.LogFile); err != nil {
		return err
	}
	defer core.SetLogOutput("")

	tb, err := testbed.NewTestGame(config)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if benchFrames > 0 {
		return bench(ctx, tb, benchFrames)
	}

	mode, err := terminal.ParseColorMode(config.ColorMode)
	if err != nil {
		return err
	}
	metrics := core.NewMetrics()
	var backend renderer.RendererBackend
	if serveAddr != "" {
		// viewers sit behind other terminals, so the local one says nothing
		if mode == terminal.ColorModeAuto {
			mode = terminal.ColorModeTrueColor
		}
		backend = remote.New(serveAddr, hostKey, mode, metrics, config.StatusLine)
	} else {
		backend = terminal.New(os.Stdout, mode, metrics, config.StatusLine)
	}
	e, err := engine.New(tb.Game, backend, metrics)
	if err != nil {
		return err
	}
	if serveAddr == "" {
		e.SetSizeProbe(func() (int, int, error) {
			cols, rows, err := terminal.Size(os.Stdout)
			if err != nil {
				return 0, 0, err
			}
			// one row stays free for the status line or the parked cursor
			w, h := terminal.FitFramebuffer(cols, rows, 1)
			return w, h, nil
		})
	}

	if err := e.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := e.Shutdown(); err != nil {
			core.LogError("shutdown: %v", err)
		}
	}()

	if configPath != "" {
		watcher, err := assets.NewWatcher(configPath, func(path string) {
			e.Events().Fire(core.EVENT_CODE_CONFIG_CHANGED, nil, core.EventContext{Path: path})
		})
		if err != nil {
			core.LogWarn("config hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigCh)

	// start shutdown goroutine
	go func() {
		select {
		case <-sigCh:
			e.Events().Fire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
			cancel()
		case <-ctx.Done():
		}
	}()

	return e.Run(ctx)
}

func bench(ctx context.Context, tb *testbed.TestGame, frames int) error {
	config := tb.ApplicationConfig
	if config.AutoSize() {
		config.Width, config.Height = 80, 48
	}
	e, err := engine.New(tb.Game, renderer.NewHeadlessBackend(), nil)
	if err != nil {
		return err
	}
	if err := e.Initialize(); err != nil {
		return err
	}
	defer e.Shutdown()

	bar := progressbar.Default(int64(frames), fmt.Sprintf("rendering %dx%d", config.Width, config.Height))
	result, err := e.Bench(ctx, frames, engine.BenchFrameStepMS, func() { bar.Add(1) })
	bar.Close()
	if err != nil {
		return err
	}
	fmt.Println(result)
	return nil
}
