package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"approcciala/controller"
	"approcciala/model"
	"approcciala/platform"
	"approcciala/service"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		platform.Logger.Errorf("server stopped: %s", err)
		os.Exit(1)
	}
}

func run() error {
	fmt.Println("Server started...")

	cfg, err := platform.LoadConfig(".env")
	if err != nil {
		return err
	}

	platform.InitFile(cfg.LogPath, "gin")
	if err := platform.InitAppLogger(cfg.LogPath, "approcciala"); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logger := platform.Logger

	//init database
	db, err := platform.InitDB(cfg)
	if err != nil {
		return err
	}
	model.TrialPeriod = time.Duration(cfg.TrialDays) * 24 * time.Hour
	if err := model.InstallDB(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	store := model.NewStore(db)

	bucket, err := platform.NewBucket(cfg.StorageDir, cfg.StorageBucket, cfg.PublicBaseURL)
	if err != nil {
		return err
	}

	// assistant replies and welcome mails
	replies := service.NewDeferrer(context.Background(), logger)

	tokens := service.NewTokenService(cfg.AccessSecret, cfg.TokenTTL)
	auth := service.NewAuthService(store, tokens)
	mailer, err := platform.NewMailer(cfg)
	if err != nil {
		return err
	}
	if mailer != nil {
		auth.OnSignUp(func(user *model.User) {
			replies.Schedule(service.WelcomeTask(mailer, user))
		})
	}
	workspaces := service.NewWorkspaces(auth, bucket, cfg.MaxImages, cfg.WorkspaceTTL)
	defer workspaces.Close()

	dashboard := service.NewDashboard(store)

	maintenance := service.NewMaintenance(store, logger)
	if err := maintenance.Start(cfg.MaintenanceCron); err != nil {
		return fmt.Errorf("invalid MAINTENANCE_CRON %q: %w", cfg.MaintenanceCron, err)
	}
	defer maintenance.Stop()

	router := controller.Router{
		Auth:       controller.NewAuthController(auth, tokens, workspaces),
		Dashboard:  controller.NewDashboardController(dashboard),
		Chat:       controller.NewChatController(dashboard, store, replies, cfg.AssistantReplyDelay),
		Bucket:     bucket,
		CORSOrigin: cfg.CORSOrigin,
	}
	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Infof("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	// deferred tasks already scheduled still run
	if err := replies.Wait(ctx); err != nil {
		logger.Warnf("pending deferred tasks dropped: %s", err)
	}
	return nil
}
