package integration_tests

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun/migrate"

	"github.com/coopfin/coophub/db"
	"github.com/coopfin/coophub/db/migrations"
	"github.com/coopfin/coophub/db/models"
	"github.com/coopfin/coophub/lib"
	"github.com/coopfin/coophub/lib/audit"
	"github.com/coopfin/coophub/lib/service"
)

// These tests need a real Postgres instance because the interesting
// behavior lives in row locks, constraints and the balance trigger.
// Set DATABASE_URI to run them; they are skipped otherwise.

func coophubTestServiceInit() (*service.CoophubService, error) {
	dbUri, ok := os.LookupEnv("DATABASE_URI")
	if !ok {
		return nil, fmt.Errorf("DATABASE_URI not set")
	}
	c := &service.Config{
		DatabaseUri:             dbUri,
		DatabaseMaxConns:        2,
		DatabaseMaxIdleConns:    2,
		DatabaseConnMaxLifetime: 10,
		DatabaseTimeout:         60,
		JWTSecret:               []byte("SECRET"),
		JWTAccessTokenExpiry:    3600,
	}

	dbConn, err := db.Open(c)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	ctx := context.Background()
	migrator := migrate.NewMigrator(dbConn, migrations.Migrations)
	err = migrator.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init migrations: %w", err)
	}
	_, err = migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &service.CoophubService{
		Config:    c,
		DB:        dbConn,
		Logger:    lib.Logger(c.LogFilePath),
		AuditSink: audit.NopSink{},
	}, nil
}

func clearTable(svc *service.CoophubService, tableName string) error {
	_, err := svc.DB.Exec(fmt.Sprintf("DELETE FROM %s", tableName))
	return err
}

// clearAllTables removes test data in dependency order.
func clearAllTables(svc *service.CoophubService) error {
	for _, table := range []string{"payments", "ledger_entries", "transfers", "obligations", "bank_accounts", "members", "users"} {
		if err := clearTable(svc, table); err != nil {
			return err
		}
	}
	return nil
}

func createTestMember(svc *service.CoophubService, firstName, lastName string) (*models.Member, error) {
	return svc.CreateMember(context.Background(), service.MemberParams{
		FirstName: firstName,
		LastName:  lastName,
		Document:  fmt.Sprintf("doc-%s-%s", firstName, lastName),
	})
}

func createTestAccount(svc *service.CoophubService, name string, openingBalance decimal.Decimal) (*models.BankAccount, error) {
	return svc.CreateBankAccount(context.Background(), service.BankAccountParams{
		Name:           name,
		OpeningBalance: openingBalance,
	})
}

func createTestObligation(svc *service.CoophubService, memberId int64, amountDue decimal.Decimal, dueDate time.Time) (*models.Obligation, error) {
	return svc.CreateObligation(context.Background(), service.ObligationParams{
		MemberID:  memberId,
		Kind:      "quota",
		Period:    dueDate.Format("2006-01"),
		AmountDue: amountDue,
		DueDate:   dueDate,
	})
}
