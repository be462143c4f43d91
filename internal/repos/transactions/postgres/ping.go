package transactions

import (
	"context"
	"fmt"
	"time"
)

func (r *transactionsRepo) Ping(ctx context.Context) (time.Duration, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()

	_, err := r.db.ExecContext(ctx, `SELECT 1`)
	if err != nil {
		return 0, fmt.Errorf("ping: %w", err)
	}

	return time.Since(start), nil
}
