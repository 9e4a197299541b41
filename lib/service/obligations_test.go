package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateObligationRejectsUnknownKind(t *testing.T) {
	svc := &CoophubService{}

	_, err := svc.CreateObligation(context.Background(), ObligationParams{
		MemberID:  1,
		Kind:      "donation",
		AmountDue: dec("10.00"),
		DueDate:   time.Now(),
	})
	assert.ErrorAs(t, err, &ValidationError{})
}

func TestCreateObligationRejectsNonPositiveAmount(t *testing.T) {
	svc := &CoophubService{}

	_, err := svc.CreateObligation(context.Background(), ObligationParams{
		MemberID:  1,
		Kind:      "quota",
		AmountDue: dec("0"),
		DueDate:   time.Now(),
	})
	assert.ErrorAs(t, err, &ValidationError{})
}

func TestGenerateMonthlyQuotasRejectsBadPeriod(t *testing.T) {
	svc := &CoophubService{}

	for _, period := range []string{"", "2024", "march", "2024-13", "01-2024"} {
		_, err := svc.GenerateMonthlyQuotas(context.Background(), GenerateQuotasParams{
			Period:  period,
			Amount:  dec("25.00"),
			DueDate: time.Now(),
		})
		assert.ErrorAs(t, err, &ValidationError{}, "period %q should be rejected", period)
	}
}

func TestGenerateMonthlyQuotasRejectsNonPositiveAmount(t *testing.T) {
	svc := &CoophubService{}

	_, err := svc.GenerateMonthlyQuotas(context.Background(), GenerateQuotasParams{
		Period:  "2024-03",
		Amount:  dec("-25.00"),
		DueDate: time.Now(),
	})
	assert.ErrorAs(t, err, &ValidationError{})
}
