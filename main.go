package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"browsermcp/pkg/channels"
	_ "browsermcp/pkg/channels/autoload" // registers built-in channels
	"browsermcp/pkg/config"
	"browsermcp/pkg/gateway"
	"browsermcp/pkg/handler"
	"browsermcp/pkg/monitor"
	"browsermcp/pkg/snapshot"
	"browsermcp/pkg/system"
	"browsermcp/pkg/tools"
	"browsermcp/pkg/tools/browser"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"
)

const serverName = "browsermcp"

var version = "0.1.3"

func main() {
	configPath := flag.String("config", "", "path to the system config file (.json, .yaml or .yml)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", serverName, version)
		return
	}

	// stdout carries the MCP stream; all logging goes to stderr.
	monitor.SetupSlog("info")

	sysCfg, err := config.LoadSystemConfig(*configPath)
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "path", *configPath, "error", err)
	}
	monitor.SetLevel(sysCfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, sysCfg); err != nil {
		slog.Error("browsermcp stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, sysCfg *config.SystemConfig) error {
	// --- 1. Free the extension port ---
	if sysCfg.ReclaimPort {
		if err := system.ReclaimPort(ctx, sysCfg.WSHost, sysCfg.WSPort, sysCfg.PortWait()); err != nil {
			return fmt.Errorf("failed to reclaim port %d: %w", sysCfg.WSPort, err)
		}
	}

	// --- 2. Gateway ---
	metrics := monitor.NewMetrics()
	chans, err := channels.LoadFromConfig(sysCfg, channels.Resources{Metrics: metrics})
	if err != nil {
		return err
	}

	builder := gateway.NewGatewayBuilder().
		WithSystemConfig(sysCfg).
		WithMetrics(metrics).
		WithChannel(chans...)
	var trafficMonitor monitor.Monitor
	if sysCfg.MonitorTraffic {
		trafficMonitor = monitor.NewCLIMonitor()
		builder.WithMonitor(trafficMonitor)
	}

	gw, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build gateway: %w", err)
	}

	// --- 3. Tools and MCP server ---
	capturer := snapshot.NewCapturer(gw, snapshot.OptionsFromConfig(sysCfg.Snapshot))
	registry := tools.NewToolRegistry()
	browser.NewToolset(gw, capturer).Register(registry)
	srv := handler.NewMCPServer(registry, serverName, version)

	// --- 4. Serve until stdin closes or a signal arrives ---
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		slog.Info("MCP server running on stdio", "version", version, "tools", len(registry.GetAll()))
		if err := srv.Run(gctx, &mcp.StdioTransport{}); err != nil && gctx.Err() == nil {
			slog.Info("MCP session ended", "error", err)
		}
		return nil
	})

	if configPath != "" {
		g.Go(func() error {
			for next := range config.WatchConfig(gctx, configPath) {
				applyReload(sysCfg, next, capturer)
			}
			return nil
		})
	}

	_ = g.Wait()

	// --- 5. Shutdown, bounded by the grace period ---
	watchdog := time.AfterFunc(sysCfg.ShutdownGrace(), func() {
		slog.Warn("Shutdown grace period elapsed, exiting", "grace", sysCfg.ShutdownGrace())
		os.Exit(0)
	})
	defer watchdog.Stop()

	slog.Info("Shutting down")
	gw.StopAll()
	if trafficMonitor != nil {
		if err := trafficMonitor.Stop(); err != nil {
			slog.Warn("Failed to stop traffic monitor", "error", err)
		}
	}
	slog.Info("Bye!")
	return nil
}

// applyReload re-applies the settings that can change at runtime and warns
// about the ones that need a restart.
func applyReload(current, next *config.SystemConfig, capturer *snapshot.Capturer) {
	monitor.SetLevel(next.LogLevel)
	capturer.SetOptions(snapshot.OptionsFromConfig(next.Snapshot))
	slog.Info("Config reloaded", "log_level", next.LogLevel)

	if next.Addr() != current.Addr() || !slices.Equal(next.Channels, current.Channels) ||
		next.CallTimeoutMs != current.CallTimeoutMs || next.MonitorTraffic != current.MonitorTraffic {
		slog.Warn("Listener, channel, timeout and monitor changes take effect after a restart")
	}
}
