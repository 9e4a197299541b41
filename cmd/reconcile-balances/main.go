package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/coopfin/coophub/db"
	"github.com/coopfin/coophub/lib"
	"github.com/coopfin/coophub/lib/audit"
	"github.com/coopfin/coophub/lib/service"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// script to verify that every cached account balance matches the sum of its
// ledger entries. A mismatch is a bug, so the script exits non-zero when it
// finds one.
func main() {

	c := &service.Config{}

	// Load configuration from environment variables
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("Failed to load .env file")
	}
	err = envconfig.Process("", c)
	if err != nil {
		log.Fatalf("Error loading environment variables: %v", err)
	}

	// Setup logging to STDOUT or a configured log file
	logger := lib.Logger(c.LogFilePath)

	// Open a DB connection based on the configured DATABASE_URI
	dbConn, err := db.Open(c)
	if err != nil {
		logger.Fatalf("Error initializing db connection: %v", err)
	}

	svc := &service.CoophubService{
		Config:    c,
		DB:        dbConn,
		Logger:    logger,
		AuditSink: audit.NopSink{},
	}

	ctx := context.Background()
	accounts, err := svc.BankAccounts(ctx)
	if err != nil {
		logger.Fatalf("Error listing accounts: %v", err)
	}

	mismatches := 0
	for _, account := range accounts {
		result, err := svc.ReconcileBalance(ctx, account.ID)
		if err != nil {
			logger.Fatalf("Error reconciling account %d: %v", account.ID, err)
		}
		if result.Matches {
			logger.Infof("Account %d (%s) OK balance:%s", account.ID, account.Name, result.Cached)
			continue
		}
		mismatches++
		logger.Errorf("Account %d (%s) MISMATCH cached:%s computed:%s",
			account.ID, account.Name, result.Cached, result.Computed)
	}

	if mismatches > 0 {
		logger.Errorf("%d account(s) out of balance", mismatches)
		os.Exit(1)
	}
	logger.Infof("All %d account(s) reconciled", len(accounts))
}
