package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"asset-sync/core/loader"
	"asset-sync/core/logger"
	"asset-sync/core/middleware/auth"
	"asset-sync/core/middleware/rayid"
	"asset-sync/core/syncer"
	"asset-sync/feature/objects"
	featuresync "asset-sync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the asset-sync API server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Configuration and Logger
		cfg, logg, err := setup()
		if err != nil {
			return err
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 2. Initialize Storage
		store, err := newObjectStore(cfg, logg)
		if err != nil {
			return err
		}

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 4. Initialize Feature Loader
		mgr := loader.NewManager()

		containers := []string{}
		for _, t := range syncer.Targets(cfg.Sync) {
			containers = append(containers, t.Container)
		}
		mgr.Register(featuresync.NewFeature(store, cfg.Sync, afero.NewOsFs(), logg))
		mgr.Register(objects.NewFeature(store, containers, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with the ray ID
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API)
		if !cfg.Server.AuthEnabled() {
			logg.Warn("No API key configured, the API is unauthenticated")
		}
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		// 6. Start Server
		errc := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port), zap.Strings("features", mgr.Loaded()))
			errc <- app.Listen(cfg.Server.Addr())
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errc:
			return err
		case <-c:
		}
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
