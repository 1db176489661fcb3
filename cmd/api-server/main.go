package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicdesk/appointment-scheduling/internal/api"
	"github.com/clinicdesk/appointment-scheduling/internal/booking"
	"github.com/clinicdesk/appointment-scheduling/internal/config"
	"github.com/clinicdesk/appointment-scheduling/internal/db"
	"github.com/clinicdesk/appointment-scheduling/internal/eventlog"
	"github.com/clinicdesk/appointment-scheduling/internal/notify"
	"github.com/clinicdesk/appointment-scheduling/internal/patient"
	redisclient "github.com/clinicdesk/appointment-scheduling/internal/redis"
	"github.com/clinicdesk/appointment-scheduling/internal/schedule"
)

const version = "0.1.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	directory := patient.NewDirectory(patient.NewPgRepository(pgPool))
	locker := redisclient.NewRedisScheduleLocker(rdb, cfg.LockTTL)
	store := schedule.NewStore(schedule.NewPgRepository(pgPool), locker)
	recorder := eventlog.NewPgRecorder(pgPool)

	var sms *notify.WebhookSMSSender
	if cfg.SMSWebhookURL != "" {
		sms = notify.NewWebhookSMSSender(cfg.SMSWebhookURL, cfg.SMSWebhookToken)
	}
	sink := notify.NewSink(notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailFrom), sms, cfg.NotifyTimeout)

	engine := booking.NewEngine(directory, store, sink, recorder)

	router := api.NewRouter(api.RouterConfig{
		Engine:  engine,
		PgPool:  pgPool,
		Redis:   rdb,
		Env:     cfg.Env,
		Version: version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}
