package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/rs/cors"
	_ "modernc.org/sqlite"

	emailPkg "traindesk/internal/adapters/email"
	web "traindesk/internal/adapters/http"
	"traindesk/internal/adapters/http/perf"
	"traindesk/internal/adapters/storage"
	courseStore "traindesk/internal/adapters/storage/course"
	enrollmentStore "traindesk/internal/adapters/storage/enrollment"
	mentorStore "traindesk/internal/adapters/storage/mentor"
	studentStore "traindesk/internal/adapters/storage/student"
	"traindesk/internal/application/orchestrators"
	"traindesk/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := config.Load()

	// WAL mode, foreign keys and a busy timeout. Foreign key enforcement is
	// per connection in SQLite, so it has to ride on the DSN.
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	stores := &web.Stores{
		CourseStore:     courseStore.NewSQLiteStore(timedDB),
		EnrollmentStore: enrollmentStore.NewSQLiteStore(timedDB),
		StudentStore:    studentStore.NewSQLiteStore(timedDB),
		MentorStore:     mentorStore.NewSQLiteStore(timedDB),
	}

	// Demo data for development only; a populated database makes this a no-op.
	if !cfg.IsProduction() {
		seedDeps := orchestrators.SeedDemoDeps{
			CourseStore:     stores.CourseStore,
			StudentStore:    stores.StudentStore,
			MentorStore:     stores.MentorStore,
			EnrollmentStore: stores.EnrollmentStore,
		}
		if err := orchestrators.ExecuteSeedDemo(context.Background(), seedDeps); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
		log.Println("Demo seed data loaded (dev mode)")
	}

	// Configure email sender
	if cfg.ResendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom), cfg.EmailFrom, cfg.EmailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), cfg.EmailFrom, cfg.EmailReply)
		if cfg.IsProduction() {
			log.Println("WARNING: TRAINDESK_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set TRAINDESK_RESEND_KEY for real delivery)")
		}
	}

	mux := web.NewMux(stores, collector)

	// The API serves a separate frontend origin, so CORS is part of the
	// surface. Only the configured origin is allowed.
	c := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.CORSOrigin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-Actor"},
	})

	log.Printf("TrainDesk %s starting on %s (env=%s, schema=%d)", version, cfg.Addr, cfg.Env, storage.LatestSchemaVersion())

	if err := http.ListenAndServe(cfg.Addr, c.Handler(mux)); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
