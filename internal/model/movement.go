package model

import (
	"fmt"
	"time"
)

// Movement directions.
const (
	DirectionIn  = "entrada"
	DirectionOut = "salida"
)

// ValidDirection reports whether d is a known movement direction.
func ValidDirection(d string) bool {
	return d == DirectionIn || d == DirectionOut
}

// Movement is an append-only audit record of a quantity change on an
// inventory item.
type Movement struct {
	ID        int64     `json:"id"`
	Category  string    `json:"tipo_inventario"`
	ItemID    int64     `json:"item_id"`
	Direction string    `json:"movimiento"`
	Quantity  int       `json:"cantidad"`
	UserID    *int64    `json:"usuario_id"`
	UserName  *string   `json:"usuario_nombre"`
	Notes     *string   `json:"observaciones"`
	CreatedAt time.Time `json:"fecha_movimiento"`
}

// Adjustment is a request to move stock in or out of an item.
type Adjustment struct {
	Direction string
	Quantity  int
	Notes     string
}

// ParseAdjustment validates a raw movement request body.
func ParseAdjustment(direction string, quantity any, notes string) (Adjustment, error) {
	if direction == "" || quantity == nil {
		return Adjustment{}, &ValidationError{Message: "Movimiento y cantidad son obligatorios"}
	}
	if !ValidDirection(direction) {
		return Adjustment{}, &ValidationError{Message: fmt.Sprintf("Movimiento inválido: %s", direction)}
	}
	qty, err := ParseQuantity(quantity)
	if err != nil {
		return Adjustment{}, err
	}
	if qty < 1 {
		return Adjustment{}, &ValidationError{Message: "La cantidad debe ser mayor a cero"}
	}
	if notes == "" {
		notes = "Movimiento: " + direction
	}
	return Adjustment{Direction: direction, Quantity: qty, Notes: notes}, nil
}

// Products tracked by the jug ledger.
const (
	ProductJugs  = "garrafones"
	ProductCaps  = "tapones"
	ProductSeals = "sellos"
)

// Products lists the jug ledger products in display order.
var Products = []string{ProductJugs, ProductCaps, ProductSeals}

// ValidProduct reports whether p is a jug ledger product.
func ValidProduct(p string) bool {
	for _, v := range Products {
		if v == p {
			return true
		}
	}
	return false
}

// AltMovement is a record in the jug ledger, kept apart from item movements.
type AltMovement struct {
	ID          int64     `json:"id"`
	Direction   string    `json:"tipo"`
	Product     string    `json:"producto"`
	Quantity    int       `json:"cantidad"`
	Description *string   `json:"descripcion"`
	UserID      *int64    `json:"usuario_id"`
	CreatedAt   time.Time `json:"fecha"`
}

// Stock sources.
const (
	StockFromLedger    = "movimientos"
	StockFromInventory = "inventario"
)

// Stock is the derived on-hand quantity of jugs, caps and seals.
type Stock struct {
	Jugs   int64  `json:"garrafones"`
	Caps   int64  `json:"tapones"`
	Seals  int64  `json:"sellos"`
	Source string `json:"fuente"`
}

// Set stores qty under the given product.
func (s *Stock) Set(product string, qty int64) {
	switch product {
	case ProductJugs:
		s.Jugs = qty
	case ProductCaps:
		s.Caps = qty
	case ProductSeals:
		s.Seals = qty
	}
}

// Get returns the quantity of the given product.
func (s Stock) Get(product string) int64 {
	switch product {
	case ProductJugs:
		return s.Jugs
	case ProductCaps:
		return s.Caps
	case ProductSeals:
		return s.Seals
	}
	return 0
}
