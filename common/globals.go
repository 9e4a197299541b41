package common

const (
	ObligationKindQuota = "quota"
	ObligationKindFee   = "fee"

	ObligationStatusUnpaid    = "unpaid"
	ObligationStatusPartial   = "partial"
	ObligationStatusPaid      = "paid"
	ObligationStatusCancelled = "cancelled"

	EntryKindContributionReceived = "contribution_received"
	EntryKindOpeningBalance       = "opening_balance"
	EntryKindInternalTransferIn   = "internal_transfer_in"
	EntryKindInternalTransferOut  = "internal_transfer_out"
	EntryKindAdjustment           = "adjustment"

	RelatedTypePayment  = "payment"
	RelatedTypeTransfer = "transfer"
	RelatedTypeManual   = "manual"

	PaymentMethodCash         = "cash"
	PaymentMethodBankDeposit  = "bank_deposit"
	PaymentMethodBankTransfer = "bank_transfer"
)
