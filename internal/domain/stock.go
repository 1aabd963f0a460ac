package domain

import "time"

type MovementKind string

const (
	MovementEntry      MovementKind = "ENTRY"
	MovementExit       MovementKind = "EXIT"
	MovementAdjustment MovementKind = "ADJUSTMENT"
)

func (k MovementKind) Valid() bool {
	switch k {
	case MovementEntry, MovementExit, MovementAdjustment:
		return true
	}
	return false
}

// Delta converts a movement quantity into the signed effect on stock on hand.
// ENTRY adds, EXIT subtracts; ADJUSTMENT quantities already carry their sign.
func (k MovementKind) Delta(quantity int) int {
	if k == MovementExit {
		return -quantity
	}
	return quantity
}

// StockMovement is an immutable ledger entry. StockBefore and StockAfter
// capture the counter around the movement for audit reconstruction.
type StockMovement struct {
	ID          string
	ProductID   int
	Kind        MovementKind
	Quantity    int
	StockBefore int
	StockAfter  int
	Reference   string
	Notes       string
	Actor       string
	CreatedAt   time.Time
}

// StockBatch records a discrete receipt of stock for traceability. The stock
// effect itself is carried by the companion ENTRY movement.
type StockBatch struct {
	ID             string
	ProductID      int
	BatchNumber    string
	Quantity       int
	UnitCost       *float64
	ExpirationDate *time.Time
	Notes          string
	CreatedAt      time.Time
}

// ProductionRecord records an in-house production run. Distinct from a batch
// receipt for cost provenance, identical in its stock effect.
type ProductionRecord struct {
	ID        string
	ProductID int
	Quantity  int
	UnitCost  *float64
	Notes     string
	Actor     string
	CreatedAt time.Time
}
