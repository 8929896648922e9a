package battle

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/battlehub/internal/battle/dex"
	"github.com/nfrund/battlehub/internal/battle/effect/catalog"
	"github.com/nfrund/battlehub/internal/battle/transport"
	"github.com/nfrund/battlehub/internal/battle/transport/tcp"
	"github.com/nfrund/battlehub/internal/battle/transport/ws"
	"github.com/nfrund/battlehub/internal/module"
	"github.com/nfrund/battlehub/internal/registry"
	"github.com/nfrund/battlehub/internal/script"
)

// Module wires the whole battle engine into the host process: the dex,
// scripted-effect catalog, the turn/field/room machinery via Manager, and
// the two transports, grounded on the teacher's
// internal/modules/wargame.WargameModule (Name/Register/Boot split,
// registry.MustGet-driven dependency lookup).
type Module struct {
	module.BaseModule

	manager  *Manager
	listener *tcp.Listener
	bridge   *ws.Bridge
}

var _ module.Module = (*Module)(nil)

// New constructs an unregistered battle module.
func New() *Module {
	return &Module{}
}

func (m *Module) Name() string { return "battle" }

// Register builds and publishes the battle domain's shared services: the
// dex, the scripted-effect catalog and its context-aware script engine, a
// struct validator, and the Manager every transport routes frames through.
func (m *Module) Register(reg *registry.Registry) error {
	cfg := reg.Config()

	dexImpl := dex.Dex(SeedDex())
	registry.Set(reg, registry.DexKey, dexImpl)

	cat := catalog.New()
	registry.Set(reg, registry.CatalogKey, cat)

	scriptEngine := script.NewContextAwareEngine(script.NewEngine(), cfg.MaxConcurrentScripts())
	registry.Set(reg, registry.ScriptEngineKey, scriptEngine)

	registry.Set(reg, registry.ValidatorKey, validator.New())

	publisher, _ := registry.Get(reg, registry.PublisherKey)
	m.manager = NewManager(dexImpl, publisher, cfg.TurnIdleTimeout(), cfg.RoomIdleTimeout())

	m.listener = tcp.NewListener(cfg.ListenAddr())
	m.bridge = ws.NewBridge()

	slog.Info("battle module registered", "listen_addr", cfg.ListenAddr(), "spectator_addr", cfg.SpectatorAddr())
	return nil
}

// Boot starts both transports' accept loops plus the frame-routing
// goroutines, and mounts a debug route for manually triggering a demo
// battle, mirroring the teacher's WargameModule.Boot "/debug/hit" route.
func (m *Module) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	cfg := reg.Config()

	go func() {
		if err := m.listener.Serve(ctx, func(c *tcp.Conn) {}); err != nil {
			slog.Error("tcp transport stopped", "error", err)
		}
	}()
	go m.pumpFrames(ctx, m.listener.Incoming())

	mux := http.NewServeMux()
	mux.HandleFunc("/spectate", m.bridge.Handler(func(c *ws.Conn) {}))
	go func() {
		srv := &http.Server{Addr: cfg.SpectatorAddr(), Handler: mux}
		go func() {
			<-ctx.Done()
			_ = srv.Close()
		}()
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("websocket spectator transport stopped", "error", err)
		}
	}()
	go m.pumpFrames(ctx, m.bridge.Incoming())

	g.GET("/debug/battles", func(c echo.Context) error {
		return c.JSON(http.StatusOK, m.manager.Sessions())
	})
	g.POST("/debug/demo-battle", func(c echo.Context) error {
		factory := &catalog.Factory{
			Engine:  registry.MustGet(reg, registry.ScriptEngineKey),
			Catalog: registry.MustGet(reg, registry.CatalogKey),
		}
		teamA, teamB := DemoTeams()
		a, b := &discardMember{id: uuid.New().String()}, &discardMember{id: uuid.New().String()}
		session, err := m.manager.CreateBattle(c.Request().Context(), 3, 1, factory, teamA, teamB, a, b)
		if err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.String(http.StatusOK, session.ID)
	})
	g.POST("/debug/custom-battle", m.handleCustomBattle(reg))
	return nil
}

// customBattleRequest is the JSON body for submitting a user-built matchup,
// validated before either team ever reaches BuildTeam.
type customBattleRequest struct {
	TeamA []TeamMemberSpec `json:"teamA" validate:"required,min=1,dive"`
	TeamB []TeamMemberSpec `json:"teamB" validate:"required,min=1,dive"`
}

func (m *Module) handleCustomBattle(reg *registry.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req customBattleRequest
		if err := c.Bind(&req); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}

		v := registry.MustGet(reg, registry.ValidatorKey)
		if err := v.Struct(req); err != nil {
			return c.String(http.StatusUnprocessableEntity, err.Error())
		}

		factory := &catalog.Factory{
			Engine:  registry.MustGet(reg, registry.ScriptEngineKey),
			Catalog: registry.MustGet(reg, registry.CatalogKey),
		}
		a, b := &discardMember{id: uuid.New().String()}, &discardMember{id: uuid.New().String()}
		session, err := m.manager.CreateBattle(c.Request().Context(), 3, 1, factory, req.TeamA, req.TeamB, a, b)
		if err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.String(http.StatusOK, session.ID)
	}
}

func (m *Module) Shutdown(ctx context.Context) error {
	return nil
}

// pumpFrames drains one transport's decoded client frames into the manager
// until ctx is canceled.
func (m *Module) pumpFrames(ctx context.Context, incoming <-chan transport.ClientFrame) {
	for {
		select {
		case <-ctx.Done():
			return
		case cf := <-incoming:
			m.manager.RouteFrame(cf)
		}
	}
}

// discardMember is a headless room.Member for the debug/CLI demo battle:
// there's no live connection to push frames over, so Send just reports
// success and drops the frame.
type discardMember struct{ id string }

func (d *discardMember) ID() string          { return d.id }
func (d *discardMember) Send(_ []byte) bool  { return true }
func (d *discardMember) Close()              {}
