package database

import (
	"database/sql"
	"time"

	"inkwell/pkg/logger"

	_ "github.com/lib/pq"
)

const (
	pingAttempts = 5
	pingBackoff  = 2 * time.Second
)

// Connect opens the Postgres pool and waits for it to answer a ping.
func Connect(dsn string) *sql.DB {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Sugar.Fatalf("Failed to open database connection: %v", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(20)

	if err := ping(db, pingAttempts, pingBackoff); err != nil {
		logger.Sugar.Fatal("Could not connect to database after retries. Check your network or Supabase status.")
	}
	return db
}

// ping retries a few times in case of temporary DNS/network blips.
func ping(db *sql.DB, attempts int, backoff time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = db.Ping(); err == nil {
			logger.Sugar.Info("Successfully connected to the database")
			return nil
		}
		logger.Sugar.Infof("Database connection failed, retrying in %s... (%v)", backoff, err)
		time.Sleep(backoff)
	}
	return err
}
