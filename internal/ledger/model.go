package ledger

import (
	"time"

	"github.com/blockrepublic/subledger/internal/asset"
)

// BalanceRecord is the persisted custodial holding for one owner. Funds are
// always non-negative and always in the ledger's configured currency; the
// payer is the principal billed for the record's storage.
type BalanceRecord struct {
	Owner     string
	Funds     asset.Asset
	Payer     string
	CreatedAt time.Time
}
