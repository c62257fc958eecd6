package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/slipgate-emu/slipgate/internal/core"
	"github.com/slipgate-emu/slipgate/internal/core/data"
	"github.com/slipgate-emu/slipgate/internal/core/debug"
	"github.com/slipgate-emu/slipgate/internal/core/ticket"
	"github.com/slipgate-emu/slipgate/internal/game"
)

// Session tickets survive a launcher hand-off for this long.
const ticketTTL = 30 * time.Minute

// Controller is the main entrypoint for the server. It's responsible for
// initializing any shared resources (such as the database and logging),
// defining the transport servers, and launching everything.
type Controller struct {
	Config *core.Config

	logger  *logrus.Logger
	wg      sync.WaitGroup
	engine  *game.Engine
	servers []*frontend
}

func (c *Controller) Start(ctx context.Context) error {
	var err error
	// Set up the logger, which will be used by all sub-servers.
	c.logger, err = core.NewLogger(c.Config)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}

	// Start any debug utilities if we're configured to do so.
	if c.Config.Debugging.PprofEnabled {
		debug.StartUtilities(c.logger, c.Config.Debugging.PprofPort)
	}

	db, err := data.Initialize(c.Config.DatabaseURL(), c.Config.Debugging.DatabaseLoggingEnabled)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer func() {
		if err := data.Shutdown(db); err != nil {
			c.logger.Errorf("error closing database connection: %v", err)
		}
	}()
	if err := data.Migrate(db); err != nil {
		return fmt.Errorf("error running migrations: %w", err)
	}

	tickets, err := ticket.New(c.Config.Redis.URL, ticketTTL)
	if err != nil {
		return fmt.Errorf("error connecting to redis: %w", err)
	}
	defer func() {
		if err := tickets.Close(); err != nil {
			c.logger.Errorf("error closing redis connection: %v", err)
		}
	}()

	c.engine = game.NewEngine(c.Config, c.logger, db, tickets)
	go c.engine.RunMaintenance(ctx)

	// Configure and run all of our servers.
	c.declareServers()
	return c.run(ctx)
}

// Set up all of the servers we want to run.
func (c *Controller) declareServers() {
	c.servers = []*frontend{
		{
			Address: c.buildAddress(c.Config.GameServer.Port),
			Backend: &game.ServerBackend{
				Name:        "GAME",
				SessionKind: game.SessionGame,
				Engine:      c.engine,
				Logger:      c.logger,
			},
		},
		{
			Address: c.buildAddress(c.Config.ChatServer.Port),
			Backend: &game.ServerBackend{
				Name:        "CHAT",
				SessionKind: game.SessionChat,
				Engine:      c.engine,
				Logger:      c.logger,
			},
		},
		{
			Address: c.buildAddress(c.Config.RelayServer.Port),
			Backend: &game.ServerBackend{
				Name:        "RELAY",
				SessionKind: game.SessionRelay,
				Engine:      c.engine,
				Logger:      c.logger,
			},
		},
	}
}

func (c *Controller) run(ctx context.Context) error {
	// Failure to initialize one of the registered servers is considered terminal.
	for _, server := range c.servers {
		server.Config = c.Config
		server.Logger = c.logger

		if err := server.Start(ctx, &c.wg); err != nil {
			return fmt.Errorf("error starting %s server: %w", server.Backend.Identifier(), err)
		}
	}

	c.wg.Wait()
	return nil
}

func (c *Controller) buildAddress(port int) string {
	return fmt.Sprintf("%s:%v", c.Config.Hostname, port)
}
