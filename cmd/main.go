package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	httpctx "github.com/dtroode/examcert-server/internal/api/http/context"
	"github.com/dtroode/examcert-server/internal/api/http/router"
	"github.com/dtroode/examcert-server/internal/config"
	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/model"
	"github.com/dtroode/examcert-server/internal/repository/recordstore"
	"github.com/dtroode/examcert-server/internal/server"
	"github.com/dtroode/examcert-server/internal/service"
	"github.com/dtroode/examcert-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	store, err := recordstore.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize record store", "error", err)
	}

	tokenManager := token.NewJWT(cfg.Session.Secret, cfg.Session.TTL)
	usersService := service.NewUsers(store, tokenManager, logger)
	examService := service.NewExam(store, service.DefaultQuestions, cfg.Exam.PassScore, logger)

	gin.SetMode(gin.ReleaseMode)
	r := router.New(usersService, examService, tokenManager, httpctx.NewManager(), logger)
	httpServer := server.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	logAppVersion()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server on", "address", httpServer.Address(), "backend", store.Backend())
		if err := httpServer.Start(sl); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("error during server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped with error", "error", err, "address", httpServer.Address())
		stop()
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
