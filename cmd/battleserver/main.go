// Command battleserver boots the networked battle engine: it loads
// configuration, builds the shared registry, registers the battle module,
// and starts its transports, grounded on the teacher's cmd/server/main.go
// and internal/server/kernel.go's AppModules-iteration pattern, trimmed down
// from that command's HTTP/DB/session stack to what a headless battle
// server needs.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/nfrund/battlehub/internal/config"
	appmw "github.com/nfrund/battlehub/internal/middleware"
	"github.com/nfrund/battlehub/internal/module"
	battlemod "github.com/nfrund/battlehub/internal/modules/battle"
	"github.com/nfrund/battlehub/internal/pubsub"
	"github.com/nfrund/battlehub/internal/registry"
)

// appModules mirrors the teacher's internal/server/kernel.go AppModules:
// the set of feature modules booted every run.
var appModules = []module.Module{
	battlemod.New(),
}

// shutdownGrace bounds how long module/server shutdown is given to finish
// once an interrupt is received; unrelated to the in-battle turn idle timer.
const shutdownGrace = 10 * time.Second

func main() {
	cfg := config.New()
	reg := registry.New(cfg)

	tracer, shutdownTracing, err := pubsub.SetupOTel(context.Background(), pubsub.LoadTracingConfigFromEnv())
	if err != nil {
		slog.Error("otel tracing setup failed, publishing untraced", "error", err)
		tracer = nil
	} else {
		defer shutdownTracing()
	}

	var bridge *pubsub.WatermillBridge
	if tracer != nil {
		bridge = pubsub.NewWatermillBridgeWithTracer(tracer)
	} else {
		bridge = pubsub.NewWatermillBridge()
	}
	registry.Set[pubsub.Publisher](reg, registry.PublisherKey, bridge)
	registry.Set[pubsub.Subscriber](reg, registry.SubscriberKey, bridge)

	for _, mod := range appModules {
		if err := mod.Register(reg); err != nil {
			slog.Error("module registration failed", "module", mod.Name(), "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(appmw.Logger)
	debug := e.Group("/app")
	debug.Use(appmw.RateLimiter())

	for _, mod := range appModules {
		if err := mod.Boot(ctx, debug, reg); err != nil {
			slog.Error("module boot failed", "module", mod.Name(), "error", err)
			os.Exit(1)
		}
	}

	go func() {
		if err := e.Start(cfg.DebugAddr()); err != nil {
			slog.Info("debug http server stopped", "error", err)
		}
	}()

	slog.Info("battleserver running", "listen_addr", cfg.ListenAddr(), "spectator_addr", cfg.SpectatorAddr())
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	for _, mod := range appModules {
		if err := mod.Shutdown(shutdownCtx); err != nil {
			slog.Warn("module shutdown error", "module", mod.Name(), "error", err)
		}
	}
	_ = e.Shutdown(shutdownCtx)
}
