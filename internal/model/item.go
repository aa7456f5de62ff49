package model

import (
	"encoding/json"
	"time"
)

// Item is a stock-keeping row of one inventory category.
type Item struct {
	ID               int64
	Category         *Category
	Attrs            map[string]*string
	Quantity         int
	RegisteredBy     *int64
	RegisteredByName *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Name returns the value of the category's name field.
func (it *Item) Name() string {
	if v := it.Attrs[it.Category.NameField]; v != nil {
		return *v
	}
	return ""
}

// MarshalJSON renders the item flat, with its category's column names.
func (it *Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(it.Attrs)+7)
	out["id"] = it.ID
	for _, col := range it.Category.Columns() {
		out[col] = it.Attrs[col]
	}
	out["cantidad"] = it.Quantity
	out["usuario_registro"] = it.RegisteredBy
	out["usuario_nombre"] = it.RegisteredByName
	out[it.Category.DateColumn] = it.CreatedAt
	out["fecha_actualizacion"] = it.UpdatedAt
	return json.Marshal(out)
}
