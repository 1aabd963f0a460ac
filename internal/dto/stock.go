package dto

import (
	"time"

	"fogon/internal/domain"
)

type RecordMovementRequest struct {
	ProductID int    `json:"productId"`
	Kind      string `json:"kind"`
	Quantity  int    `json:"quantity"`
	Reference string `json:"reference,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Actor     string `json:"actor"`
}

type RecordBatchRequest struct {
	ProductID      int        `json:"productId"`
	BatchNumber    string     `json:"batchNumber"`
	Quantity       int        `json:"quantity"`
	UnitCost       *float64   `json:"unitCost,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Actor          string     `json:"actor"`
}

type RecordProductionRequest struct {
	ProductID int      `json:"productId"`
	Quantity  int      `json:"quantity"`
	UnitCost  *float64 `json:"unitCost,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	Actor     string   `json:"actor"`
}

type MovementDTO struct {
	ID          string    `json:"id"`
	ProductID   int       `json:"productId"`
	Kind        string    `json:"kind"`
	Quantity    int       `json:"quantity"`
	StockBefore int       `json:"stockBefore"`
	StockAfter  int       `json:"stockAfter"`
	Reference   string    `json:"reference,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	Actor       string    `json:"actor"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewMovementDTO(m domain.StockMovement) MovementDTO {
	return MovementDTO{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Kind:        string(m.Kind),
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Reference:   m.Reference,
		Notes:       m.Notes,
		Actor:       m.Actor,
		CreatedAt:   m.CreatedAt,
	}
}

type BatchDTO struct {
	ID             string     `json:"id"`
	ProductID      int        `json:"productId"`
	BatchNumber    string     `json:"batchNumber"`
	Quantity       int        `json:"quantity"`
	UnitCost       *float64   `json:"unitCost,omitempty"`
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func NewBatchDTO(b domain.StockBatch) BatchDTO {
	return BatchDTO{
		ID:             b.ID,
		ProductID:      b.ProductID,
		BatchNumber:    b.BatchNumber,
		Quantity:       b.Quantity,
		UnitCost:       b.UnitCost,
		ExpirationDate: b.ExpirationDate,
		Notes:          b.Notes,
		CreatedAt:      b.CreatedAt,
	}
}

type ProductionDTO struct {
	ID        string    `json:"id"`
	ProductID int       `json:"productId"`
	Quantity  int       `json:"quantity"`
	UnitCost  *float64  `json:"unitCost,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewProductionDTO(r domain.ProductionRecord) ProductionDTO {
	return ProductionDTO{
		ID:        r.ID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		UnitCost:  r.UnitCost,
		Notes:     r.Notes,
		Actor:     r.Actor,
		CreatedAt: r.CreatedAt,
	}
}

// MovementFilters bounds and restarts the movement listing. Movements are
// returned newest first; Before restarts the listing past an earlier page.
type MovementFilters struct {
	Kind   *domain.MovementKind
	Before *time.Time
	Limit  int
}

type ListMovementsResponse struct {
	ProductID int           `json:"productId"`
	Movements []MovementDTO `json:"movements"`
}
