package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/coopfin/coophub/db"
	"github.com/coopfin/coophub/lib"
	"github.com/coopfin/coophub/lib/audit"
	"github.com/coopfin/coophub/lib/service"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// script to generate the monthly quota obligations for all active members
func main() {

	period := flag.String("period", time.Now().Format("2006-01"), "period to generate quotas for (YYYY-MM)")
	amount := flag.String("amount", "", "quota amount (required)")
	dueDay := flag.Int("due-day", 10, "day of the month the quota is due")
	flag.Parse()

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

	if *amount == "" {
		logger.Fatalf("-amount is required")
	}
	quotaAmount, err := decimal.NewFromString(*amount)
	if err != nil {
		logger.Fatalf("Invalid amount %q: %v", *amount, err)
	}
	periodStart, err := time.Parse("2006-01", *period)
	if err != nil {
		logger.Fatalf("Invalid period %q: %v", *period, err)
	}

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

	dueDate := periodStart.AddDate(0, 0, *dueDay-1)
	created, err := svc.GenerateMonthlyQuotas(context.Background(), service.GenerateQuotasParams{
		Period:  *period,
		Amount:  quotaAmount,
		DueDate: dueDate,
	})
	if err != nil {
		logger.Fatalf("Error generating quotas for %s: %v", *period, err)
	}
	logger.Infof("Generated %d quota obligations for period %s (due %s)", created, *period, dueDate.Format("2006-01-02"))
}
