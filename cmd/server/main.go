package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/complyops/backoffice/internal/admin"
	"github.com/complyops/backoffice/internal/config"
	"github.com/complyops/backoffice/internal/jobs"
	"github.com/complyops/backoffice/internal/orchestrator"
	"github.com/complyops/backoffice/internal/pool"
	"github.com/complyops/backoffice/internal/queue"
	"github.com/complyops/backoffice/internal/reconcile"
	"github.com/complyops/backoffice/internal/scheduler"
	"github.com/complyops/backoffice/internal/storage/postgres"
	"github.com/complyops/backoffice/internal/upstream"
	"github.com/complyops/backoffice/internal/worker"
)

func main() {
	log.Println("Starting...")

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	dbCfg, err := postgres.LoadConfigFromEnv(ctx)
	if err != nil {
		log.Fatal("Failed to load DB config:", err)
	}

	db, err := postgres.ConnectDB(dbCfg)
	if err != nil {
		log.Fatal("Connection failed:", err)
	}
	log.Println("SUCCESS! Database connected")

	if err := postgres.Migrate(db); err != nil {
		log.Fatal("Migration failed:", err)
	}

	queueRepo := postgres.NewQueueRepository(db)
	deadLetterRepo := postgres.NewDeadLetterRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	jobRecordRepo := postgres.NewJobRecordRepository(db)
	mappingRepo := postgres.NewMappingRepository(db)
	syncLogRepo := postgres.NewSyncLogRepository(db)
	directoryRepo := postgres.NewDirectoryRepository(db)

	q := queue.New(queueRepo, deadLetterRepo, notificationRepo, queue.Settings{
		MaxAttempts:    cfg.MaxAttempts,
		BackoffBase:    cfg.BackoffBase,
		RetentionAge:   cfg.RetentionAge,
		RetentionCount: cfg.RetentionCount,
		OperatorRoles:  cfg.OperatorRoles,
	})

	engine := reconcile.NewEngine(mappingRepo, syncLogRepo)
	payroll := upstream.NewClient(cfg.PayrollBaseURL, cfg.PayrollToken)
	lms := upstream.NewClient(cfg.LMSBaseURL, cfg.LMSToken)
	sources := jobs.SyncSources{
		PayrollEmployees: upstream.PayrollEmployees(payroll),
		LMSTrainers:      upstream.LMSTrainers(lms),
		LMSStudents:      upstream.LMSStudents(lms),
		LMSEnrollments:   upstream.LMSEnrollments(lms),
	}

	routine := &jobs.RoutineDeps{
		Directory:     directoryRepo,
		Notifier:      notificationRepo,
		Mailer:        jobs.LogMailer{},
		Sentiment:     jobs.KeywordSentiment{},
		SyncLogs:      syncLogRepo,
		QueueMetrics:  q.GetMetrics,
		OperatorRoles: cfg.OperatorRoles,
	}

	registry := worker.NewRegistry(jobs.AllTypes())
	registry.Use(orchestrator.RecordRuns(jobRecordRepo))
	if err := jobs.RegisterAll(registry, engine, directoryRepo, mappingRepo, sources, routine); err != nil {
		log.Fatal("Handler registration failed:", err)
	}

	workerPool := pool.NewWorkerPool(cfg.WorkerCount, q, registry, cfg.LockDuration, cfg.MaxStalledCount)

	sched, err := scheduler.New(q, jobRecordRepo, cfg.SchedulerTimezone)
	if err != nil {
		log.Fatal("Scheduler setup failed:", err)
	}

	orch := orchestrator.New(q, workerPool, sched, jobRecordRepo)
	for _, s := range jobs.DefaultSchedules() {
		if err := orch.ScheduleJob(ctx, s.Type, s.Cron, ""); err != nil {
			log.Fatalf("Schedule %s failed: %v", s.Type, err)
		}
	}

	orch.Start()
	log.Println("Orchestrator active. Press Ctrl+C to stop.")

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: admin.NewRouter(admin.NewAdminHandler(orch)),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("HTTP shutdown:", err)
	}

	orch.Stop()
	log.Println("Shutdown complete.")
}
