package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {

		if db.Dialect().Name().String() != "pg" {
			fmt.Printf("\033[1;31m%s\033[0m", "You are not using PostgreSQL. DB level checks can not be enabled!\n")
			return nil
		}
		sql := `
			-- obligations can never be over-paid and amounts are always positive
				ALTER TABLE obligations
				ADD CONSTRAINT check_amount_due_positive
				CHECK (amount_due > 0);

				ALTER TABLE obligations
				ADD CONSTRAINT check_amount_paid_bounded
				CHECK (amount_paid >= 0 AND amount_paid <= amount_due);

			-- payment slices are always positive
				ALTER TABLE payments
				ADD CONSTRAINT check_payment_amount_positive
				CHECK (amount > 0);

			-- transfers are always positive and never move money within one account
				ALTER TABLE transfers
				ADD CONSTRAINT check_transfer_amount_positive
				CHECK (amount > 0);

				ALTER TABLE transfers
				ADD CONSTRAINT check_not_same_account
				CHECK (from_account_id != to_account_id);

			-- the cached balance must never go negative once all entries of a
			-- transaction are in. The trigger is deferrable so the outgoing leg
			-- of a transfer can be inserted before the incoming one.
				CREATE OR REPLACE FUNCTION check_account_balance()
					RETURNS TRIGGER AS $$
				DECLARE
					sum NUMERIC(12,2);
				BEGIN
					SELECT INTO sum SUM(amount)
					FROM ledger_entries
					WHERE ledger_entries.bank_account_id = NEW.bank_account_id;

					IF sum < 0
					THEN
						RAISE EXCEPTION 'invalid balance [bank_account_id:%] balance [%]',
						NEW.bank_account_id,
						sum;
					END IF;
					RETURN NEW;
				END;
				$$ LANGUAGE plpgsql;

				CREATE CONSTRAINT TRIGGER check_account_balance
				AFTER INSERT OR UPDATE ON ledger_entries
				DEFERRABLE
				FOR EACH ROW EXECUTE PROCEDURE check_account_balance();
		`
		if _, err := db.Exec(sql); err != nil {
			return err
		}
		return nil
	}, nil)
}
