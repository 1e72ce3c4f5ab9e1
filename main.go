/*
Volren renders scalar volume datasets with GPU ray casting. It loads a
.dat volume and a transfer function from a TOML config, then draws it
into a window (or headless to the debug server with -headless).
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/spaghettifunk/volren/engine"
	"github.com/spaghettifunk/volren/engine/config"
	"github.com/spaghettifunk/volren/engine/core"
)

func main() {
	configPath := flag.String("config", "", "path to a volren.toml config file")
	headless := flag.Bool("headless", false, "render on the CPU and stream frames to the debug server")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			core.LogFatal("%v", err)
		}
		cfg = loaded
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		core.SetLogLevel(level)
	}

	app, err := engine.New(cfg, *configPath, *headless)
	if err != nil {
		panic(err)
	}
	if err := app.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		_ = app.Shutdown()
	}()

	if err := app.Run(); err != nil {
		panic(err)
	}
	_ = app.Shutdown()
}
