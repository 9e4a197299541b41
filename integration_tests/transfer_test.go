package integration_tests

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/coopfin/coophub/common"
	"github.com/coopfin/coophub/lib/service"
)

type TransferTestSuite struct {
	suite.Suite
	service *service.CoophubService
}

func (suite *TransferTestSuite) SetupSuite() {
	svc, err := coophubTestServiceInit()
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	suite.service = svc
}

func (suite *TransferTestSuite) TearDownTest() {
	err := clearAllTables(suite.service)
	assert.NoError(suite.T(), err)
}

func (suite *TransferTestSuite) TestTransferMovesFunds() {
	ctx := context.Background()
	cash, err := createTestAccount(suite.service, "caja", decimal.RequireFromString("200.00"))
	assert.NoError(suite.T(), err)
	bank, err := createTestAccount(suite.service, "banco", decimal.Zero)
	assert.NoError(suite.T(), err)

	transfer, err := suite.service.Transfer(ctx, service.TransferParams{
		FromAccountID: cash.ID,
		ToAccountID:   bank.ID,
		Amount:        decimal.RequireFromString("75.00"),
		TransferDate:  time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Description:   "weekly cash deposit",
	})
	assert.NoError(suite.T(), err)

	cash, err = suite.service.FindBankAccount(ctx, cash.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), cash.CurrentBalance.Equal(decimal.RequireFromString("125.00")))

	bank, err = suite.service.FindBankAccount(ctx, bank.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), bank.CurrentBalance.Equal(decimal.RequireFromString("75.00")))

	// one entry on each side, both pointing at the transfer
	cashEntries, err := suite.service.LedgerEntriesForAccount(ctx, cash.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), cashEntries, 2)
	assert.Equal(suite.T(), common.EntryKindInternalTransferOut, cashEntries[0].Kind)
	assert.Equal(suite.T(), common.RelatedTypeTransfer, cashEntries[0].RelatedType)
	assert.Equal(suite.T(), transfer.ID, cashEntries[0].RelatedID)

	bankEntries, err := suite.service.LedgerEntriesForAccount(ctx, bank.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), bankEntries, 1)
	assert.Equal(suite.T(), common.EntryKindInternalTransferIn, bankEntries[0].Kind)
	assert.Equal(suite.T(), transfer.ID, bankEntries[0].RelatedID)

	for _, id := range []int64{cash.ID, bank.ID} {
		reconciled, err := suite.service.ReconcileBalance(ctx, id)
		assert.NoError(suite.T(), err)
		assert.True(suite.T(), reconciled.Matches)
	}
}

func (suite *TransferTestSuite) TestTransferInsufficientFunds() {
	ctx := context.Background()
	cash, err := createTestAccount(suite.service, "caja", decimal.RequireFromString("10.00"))
	assert.NoError(suite.T(), err)
	bank, err := createTestAccount(suite.service, "banco", decimal.Zero)
	assert.NoError(suite.T(), err)

	_, err = suite.service.Transfer(ctx, service.TransferParams{
		FromAccountID: cash.ID,
		ToAccountID:   bank.ID,
		Amount:        decimal.RequireFromString("10.01"),
		TransferDate:  time.Now(),
	})
	var fundsErr service.InsufficientFundsError
	assert.ErrorAs(suite.T(), err, &fundsErr)
	assert.Equal(suite.T(), cash.ID, fundsErr.BankAccountID)

	// balances untouched
	cash, err = suite.service.FindBankAccount(ctx, cash.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), cash.CurrentBalance.Equal(decimal.RequireFromString("10.00")))
	transfers, err := suite.service.Transfers(ctx)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), transfers)
}

func (suite *TransferTestSuite) TestTransferToDeactivatedAccount() {
	ctx := context.Background()
	cash, err := createTestAccount(suite.service, "caja", decimal.RequireFromString("50.00"))
	assert.NoError(suite.T(), err)
	bank, err := createTestAccount(suite.service, "banco", decimal.Zero)
	assert.NoError(suite.T(), err)
	_, err = suite.service.SetBankAccountActive(ctx, bank.ID, false, 0)
	assert.NoError(suite.T(), err)

	_, err = suite.service.Transfer(ctx, service.TransferParams{
		FromAccountID: cash.ID,
		ToAccountID:   bank.ID,
		Amount:        decimal.RequireFromString("5.00"),
		TransferDate:  time.Now(),
	})
	var validationErr service.ValidationError
	assert.ErrorAs(suite.T(), err, &validationErr)
}

func (suite *TransferTestSuite) TestAdjustmentAndReconcile() {
	ctx := context.Background()
	account, err := createTestAccount(suite.service, "caja", decimal.RequireFromString("40.00"))
	assert.NoError(suite.T(), err)

	_, err = suite.service.AppendAdjustment(ctx, service.AdjustmentParams{
		BankAccountID: account.ID,
		Amount:        decimal.RequireFromString("-12.50"),
		Date:          time.Now(),
		Description:   "count correction",
	})
	assert.NoError(suite.T(), err)

	account, err = suite.service.FindBankAccount(ctx, account.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), account.CurrentBalance.Equal(decimal.RequireFromString("27.50")))

	reconciled, err := suite.service.ReconcileBalance(ctx, account.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), reconciled.Matches)
}

func TestTransferTestSuite(t *testing.T) {
	if _, ok := os.LookupEnv("DATABASE_URI"); !ok {
		t.Skip("DATABASE_URI not set, skipping integration tests")
	}
	suite.Run(t, new(TransferTestSuite))
}
