package integration_tests

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/coopfin/coophub/common"
	"github.com/coopfin/coophub/lib/service"
)

type AllocationTestSuite struct {
	suite.Suite
	service *service.CoophubService
}

func (suite *AllocationTestSuite) SetupSuite() {
	svc, err := coophubTestServiceInit()
	if err != nil {
		log.Fatalf("Error initializing test service: %v", err)
	}
	suite.service = svc
}

func (suite *AllocationTestSuite) TearDownTest() {
	err := clearAllTables(suite.service)
	assert.NoError(suite.T(), err)
}

func (suite *AllocationTestSuite) TestAllocationAcrossObligations() {
	ctx := context.Background()
	member, err := createTestMember(suite.service, "Ana", "Silva")
	assert.NoError(suite.T(), err)
	account, err := createTestAccount(suite.service, "caja", decimal.Zero)
	assert.NoError(suite.T(), err)

	january, err := createTestObligation(suite.service, member.ID, decimal.RequireFromString("100.00"), time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(suite.T(), err)
	february, err := createTestObligation(suite.service, member.ID, decimal.RequireFromString("100.00"), time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(suite.T(), err)

	result, err := suite.service.Allocate(ctx, service.AllocateParams{
		Amount:        decimal.RequireFromString("150.00"),
		BankAccountID: account.ID,
		MemberID:      member.ID,
		ObligationIDs: []int64{february.ID, january.ID},
		PaymentDate:   time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		Method:        common.PaymentMethodCash,
	})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result.PaymentIDs, 2)
	// oldest due date first, regardless of request order
	assert.Equal(suite.T(), []int64{january.ID, february.ID}, result.AppliedTo)
	assert.True(suite.T(), result.Remaining.IsZero())

	january, err = suite.service.FindObligation(ctx, january.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.ObligationStatusPaid, january.Status)
	assert.True(suite.T(), january.PaidAt.Time.After(time.Time{}))

	february, err = suite.service.FindObligation(ctx, february.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.ObligationStatusPartial, february.Status)
	assert.True(suite.T(), february.AmountPaid.Equal(decimal.RequireFromString("50.00")))

	account, err = suite.service.FindBankAccount(ctx, account.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), account.CurrentBalance.Equal(decimal.RequireFromString("150.00")))

	entries, err := suite.service.LedgerEntriesForAccount(ctx, account.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), entries, 2)
	for _, entry := range entries {
		assert.Equal(suite.T(), common.EntryKindContributionReceived, entry.Kind)
		assert.Equal(suite.T(), common.RelatedTypePayment, entry.RelatedType)
	}
}

func (suite *AllocationTestSuite) TestAllocationExcessReturned() {
	ctx := context.Background()
	member, err := createTestMember(suite.service, "Bruno", "Costa")
	assert.NoError(suite.T(), err)
	account, err := createTestAccount(suite.service, "caja", decimal.Zero)
	assert.NoError(suite.T(), err)
	obligation, err := createTestObligation(suite.service, member.ID, decimal.RequireFromString("80.00"), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(suite.T(), err)

	result, err := suite.service.Allocate(ctx, service.AllocateParams{
		Amount:        decimal.RequireFromString("100.00"),
		BankAccountID: account.ID,
		MemberID:      member.ID,
		ObligationIDs: []int64{obligation.ID},
		PaymentDate:   time.Now(),
		Method:        common.PaymentMethodBankDeposit,
	})
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), result.Remaining.Equal(decimal.RequireFromString("20.00")))

	// only the applied part reaches the ledger
	account, err = suite.service.FindBankAccount(ctx, account.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), account.CurrentBalance.Equal(decimal.RequireFromString("80.00")))

	payments, err := suite.service.ListPaymentsForObligation(ctx, obligation.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), payments, 1)
	assert.True(suite.T(), payments[0].Amount.Equal(decimal.RequireFromString("80.00")))
}

func (suite *AllocationTestSuite) TestAllocationSkipsSettledObligation() {
	ctx := context.Background()
	member, err := createTestMember(suite.service, "Clara", "Dias")
	assert.NoError(suite.T(), err)
	account, err := createTestAccount(suite.service, "caja", decimal.Zero)
	assert.NoError(suite.T(), err)
	settled, err := createTestObligation(suite.service, member.ID, decimal.RequireFromString("30.00"), time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(suite.T(), err)
	open, err := createTestObligation(suite.service, member.ID, decimal.RequireFromString("30.00"), time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(suite.T(), err)

	_, err = suite.service.Allocate(ctx, service.AllocateParams{
		Amount:        decimal.RequireFromString("30.00"),
		BankAccountID: account.ID,
		MemberID:      member.ID,
		ObligationIDs: []int64{settled.ID},
		PaymentDate:   time.Now(),
		Method:        common.PaymentMethodCash,
	})
	assert.NoError(suite.T(), err)

	// paying the same selection again rolls on to the next open obligation
	result, err := suite.service.Allocate(ctx, service.AllocateParams{
		Amount:        decimal.RequireFromString("30.00"),
		BankAccountID: account.ID,
		MemberID:      member.ID,
		ObligationIDs: []int64{settled.ID, open.ID},
		PaymentDate:   time.Now(),
		Method:        common.PaymentMethodCash,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []int64{open.ID}, result.AppliedTo)
}

func (suite *AllocationTestSuite) TestAllocationRejectsForeignObligation() {
	ctx := context.Background()
	owner, err := createTestMember(suite.service, "Duarte", "Faria")
	assert.NoError(suite.T(), err)
	other, err := createTestMember(suite.service, "Elisa", "Gomes")
	assert.NoError(suite.T(), err)
	account, err := createTestAccount(suite.service, "caja", decimal.Zero)
	assert.NoError(suite.T(), err)
	obligation, err := createTestObligation(suite.service, owner.ID, decimal.RequireFromString("10.00"), time.Now())
	assert.NoError(suite.T(), err)

	_, err = suite.service.Allocate(ctx, service.AllocateParams{
		Amount:        decimal.RequireFromString("10.00"),
		BankAccountID: account.ID,
		MemberID:      other.ID,
		ObligationIDs: []int64{obligation.ID},
		PaymentDate:   time.Now(),
		Method:        common.PaymentMethodCash,
	})
	assert.Error(suite.T(), err)

	// nothing persisted
	payments, err := suite.service.ListPaymentsForObligation(ctx, obligation.ID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), payments)
}

func (suite *AllocationTestSuite) TestConcurrentAllocationsSettleOnce() {
	ctx := context.Background()
	member, err := createTestMember(suite.service, "Ines", "Lopes")
	assert.NoError(suite.T(), err)
	account, err := createTestAccount(suite.service, "caja", decimal.Zero)
	assert.NoError(suite.T(), err)
	obligation, err := createTestObligation(suite.service, member.ID, decimal.RequireFromString("100.00"), time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(suite.T(), err)

	// Two simultaneous payments of 60 against the same obligation. Row
	// locking must serialize them: the second observes the reduced
	// outstanding and its excess surfaces in the result, never as an
	// over-paid obligation.
	results := make([]*service.AllocationResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = suite.service.Allocate(ctx, service.AllocateParams{
				Amount:        decimal.RequireFromString("60.00"),
				BankAccountID: account.ID,
				MemberID:      member.ID,
				ObligationIDs: []int64{obligation.ID},
				PaymentDate:   time.Now(),
				Method:        common.PaymentMethodCash,
			})
		}(i)
	}
	wg.Wait()
	assert.NoError(suite.T(), errs[0])
	assert.NoError(suite.T(), errs[1])

	obligation, err = suite.service.FindObligation(ctx, obligation.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), common.ObligationStatusPaid, obligation.Status)
	assert.True(suite.T(), obligation.AmountPaid.Equal(obligation.AmountDue))
	assert.True(suite.T(), obligation.PaidAt.Time.After(time.Time{}))

	// conservation across both calls: 120 in total, 100 absorbed, 20 back
	combinedRemaining := results[0].Remaining.Add(results[1].Remaining)
	assert.True(suite.T(), combinedRemaining.Equal(decimal.RequireFromString("20.00")))

	payments, err := suite.service.ListPaymentsForObligation(ctx, obligation.ID)
	assert.NoError(suite.T(), err)
	applied := decimal.Zero
	for _, payment := range payments {
		applied = applied.Add(payment.Amount)
	}
	assert.True(suite.T(), applied.Equal(decimal.RequireFromString("100.00")))

	account, err = suite.service.FindBankAccount(ctx, account.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), account.CurrentBalance.Equal(decimal.RequireFromString("100.00")))
	reconciled, err := suite.service.ReconcileBalance(ctx, account.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), reconciled.Matches)
}

func (suite *AllocationTestSuite) TestAttachReceiptRefOnlyOnce() {
	ctx := context.Background()
	member, err := createTestMember(suite.service, "Joana", "Melo")
	assert.NoError(suite.T(), err)
	account, err := createTestAccount(suite.service, "caja", decimal.Zero)
	assert.NoError(suite.T(), err)
	obligation, err := createTestObligation(suite.service, member.ID, decimal.RequireFromString("40.00"), time.Now())
	assert.NoError(suite.T(), err)

	result, err := suite.service.Allocate(ctx, service.AllocateParams{
		Amount:        decimal.RequireFromString("40.00"),
		BankAccountID: account.ID,
		MemberID:      member.ID,
		ObligationIDs: []int64{obligation.ID},
		PaymentDate:   time.Now(),
		Method:        common.PaymentMethodCash,
	})
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result.PaymentIDs, 1)
	paymentId := result.PaymentIDs[0]

	payment, err := suite.service.AttachReceiptRef(ctx, paymentId, "REC-001", 0)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "REC-001", payment.ReceiptRef)

	_, err = suite.service.AttachReceiptRef(ctx, paymentId, "REC-002", 0)
	var policyErr service.PolicyError
	assert.ErrorAs(suite.T(), err, &policyErr)

	// the first reference survives
	payment, err = suite.service.FindPayment(ctx, paymentId)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "REC-001", payment.ReceiptRef)
}

func (suite *AllocationTestSuite) TestGenerateMonthlyQuotasIdempotent() {
	ctx := context.Background()
	_, err := createTestMember(suite.service, "Filipa", "Horta")
	assert.NoError(suite.T(), err)
	_, err = createTestMember(suite.service, "Gustavo", "Iria")
	assert.NoError(suite.T(), err)

	params := service.GenerateQuotasParams{
		Period:  "2024-04",
		Amount:  decimal.RequireFromString("25.00"),
		DueDate: time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
	}
	created, err := suite.service.GenerateMonthlyQuotas(ctx, params)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, created)

	created, err = suite.service.GenerateMonthlyQuotas(ctx, params)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, created)
}

func (suite *AllocationTestSuite) TestCancelPaidObligationRejected() {
	ctx := context.Background()
	member, err := createTestMember(suite.service, "Hugo", "Jorge")
	assert.NoError(suite.T(), err)
	account, err := createTestAccount(suite.service, "caja", decimal.Zero)
	assert.NoError(suite.T(), err)
	obligation, err := createTestObligation(suite.service, member.ID, decimal.RequireFromString("15.00"), time.Now())
	assert.NoError(suite.T(), err)

	_, err = suite.service.Allocate(ctx, service.AllocateParams{
		Amount:        decimal.RequireFromString("15.00"),
		BankAccountID: account.ID,
		MemberID:      member.ID,
		ObligationIDs: []int64{obligation.ID},
		PaymentDate:   time.Now(),
		Method:        common.PaymentMethodCash,
	})
	assert.NoError(suite.T(), err)

	_, err = suite.service.CancelObligation(ctx, obligation.ID, 0)
	assert.Error(suite.T(), err)
	var policyErr service.PolicyError
	assert.ErrorAs(suite.T(), err, &policyErr)
}

func (suite *AllocationTestSuite) TestOpeningBalanceEntry() {
	ctx := context.Background()
	account, err := createTestAccount(suite.service, "banco", decimal.RequireFromString("500.00"))
	assert.NoError(suite.T(), err)

	entries, err := suite.service.LedgerEntriesForAccount(ctx, account.ID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), entries, 1)
	assert.Equal(suite.T(), common.EntryKindOpeningBalance, entries[0].Kind)

	reconciled, err := suite.service.ReconcileBalance(ctx, account.ID)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), reconciled.Matches)
}

func TestAllocationTestSuite(t *testing.T) {
	if _, ok := os.LookupEnv("DATABASE_URI"); !ok {
		t.Skip("DATABASE_URI not set, skipping integration tests")
	}
	suite.Run(t, new(AllocationTestSuite))
}
