package catalog

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DecrementStock takes qty units of stock inside the caller's transaction.
// The condition and the write are one statement, so two concurrent orders
// cannot both take the last unit; a false return means the stock is gone
// and the caller must roll back.
func DecrementStock(ctx context.Context, tx pgx.Tx, productID int64, qty int) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1 AND stock >= $2`,
		productID, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
