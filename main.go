package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "keyportal/docs" // registers the swagger spec

	"keyportal/controller"
	"keyportal/middleware"
	"keyportal/repository"
	"keyportal/seeder"
	"keyportal/service"
	"keyportal/util"
)

// @title           Key Portal API
// @version         1.0
// @description     Issues TOTP codes for usage-limited access keys.

// @contact.name    API Support

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host            localhost:4000
// @BasePath        /
func main() {
	cfg, err := util.LoadConfig()
	if err != nil {
		panic(err)
	}

	log, err := util.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	repo, closeStore, err := repository.Open(cfg, log)
	if err != nil {
		log.Fatal("failed to open key store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("failed to close key store", zap.Error(err))
		}
	}()

	if cfg.KeysFile != "" {
		admin := service.NewKeyAdminService(repo, log, cfg.AppName)
		if _, err := seeder.SeedKeys(admin, cfg.KeysFile, log); err != nil {
			log.Fatal("failed to seed keys", zap.String("file", cfg.KeysFile), zap.Error(err))
		}
	}

	pageController, err := controller.NewPageController()
	if err != nil {
		log.Fatal("failed to load page assets", zap.Error(err))
	}
	keyController := controller.NewKeyController(service.NewKeyService(repo, log), log)

	app := fiber.New(fiber.Config{AppName: cfg.AppName, DisableStartupMessage: true})
	app.Use(middleware.TimerMetrics(log))
	controller.RegisterRoutes(app, keyController, pageController)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		_ = app.Shutdown()
	}()

	log.Info("listening", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Error("server stopped", zap.Error(err))
	}
}
