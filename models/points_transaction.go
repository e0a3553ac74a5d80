package models

import (
	"time"
)

// TransactionType classifies a balance change.
type TransactionType string

const (
	TransactionTypeCheckin     TransactionType = "checkin"
	TransactionTypeMessage     TransactionType = "message"
	TransactionTypeAdminAdjust TransactionType = "admin_adjust"
	TransactionTypeExpire      TransactionType = "expire"
	TransactionTypeSpend       TransactionType = "spend"
)

// PointsTransaction is an append-only ledger entry. Entries are never
// updated or deleted; the log is the durable source of truth for
// auditing and expiration.
type PointsTransaction struct {
	ID              int64           `db:"id"`
	UserID          int64           `db:"user_id"`
	PointsChange    int64           `db:"points_change"`
	TransactionType TransactionType `db:"transaction_type"`
	Description     string          `db:"description"`
	CreatedAt       time.Time       `db:"created_at"`
}
