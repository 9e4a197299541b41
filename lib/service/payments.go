package service

import (
	"context"

	"github.com/coopfin/coophub/db/models"
	"github.com/google/uuid"
)

// ListPaymentsForObligation returns every payment slice applied to an
// obligation, oldest first. The sum of their amounts always equals the
// obligation's amount_paid.
func (svc *CoophubService) ListPaymentsForObligation(ctx context.Context, obligationId int64) ([]models.Payment, error) {
	if _, err := svc.FindObligation(ctx, obligationId); err != nil {
		return nil, err
	}
	payments := []models.Payment{}
	err := svc.DB.NewSelect().
		Model(&payments).
		Where("obligation_id = ?", obligationId).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	return payments, nil
}

func (svc *CoophubService) FindPayment(ctx context.Context, paymentId int64) (*models.Payment, error) {
	payment := &models.Payment{}
	err := svc.DB.NewSelect().Model(payment).Where("payment.id = ?", paymentId).Limit(1).Scan(ctx)
	if err != nil {
		return nil, asCoreError(notFoundOr(err, "payment", paymentId))
	}
	return payment, nil
}

// AttachReceiptRef stores the receipt reference on a payment. This is the
// only field of a payment that may change after creation, and only once.
// An empty ref gets a generated one. The attach-once rule is enforced in
// the update's WHERE clause, so two concurrent attaches cannot both win.
func (svc *CoophubService) AttachReceiptRef(ctx context.Context, paymentId int64, receiptRef string, actor int64) (*models.Payment, error) {
	payment, err := svc.FindPayment(ctx, paymentId)
	if err != nil {
		return nil, err
	}
	if receiptRef == "" {
		receiptRef = uuid.NewString()
	}
	res, err := svc.DB.NewUpdate().
		Model((*models.Payment)(nil)).
		Set("receipt_ref = ?", receiptRef).
		Where("id = ?", paymentId).
		Where("(receipt_ref IS NULL OR receipt_ref = '')").
		Exec(ctx)
	if err != nil {
		return nil, asCoreError(err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, PolicyError{Reason: "payment already has a receipt reference"}
	}
	payment.ReceiptRef = receiptRef
	svc.auditLog(ctx, actor, "attach_receipt", "payment", payment.ID, map[string]interface{}{
		"receipt_ref": receiptRef,
	})
	return payment, nil
}
