package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field describes a descriptive column of an inventory category.
type Field struct {
	Name     string
	Required bool
	Enum     []string
	Default  string
}

func (f Field) allows(v string) bool {
	if len(f.Enum) == 0 {
		return true
	}
	for _, e := range f.Enum {
		if e == v {
			return true
		}
	}
	return false
}

// Category describes one inventory kind. The ledger and its handlers are
// parameterized by it, so every kind shares the same behaviour.
type Category struct {
	Name       string
	Table      string
	NameField  string
	DateColumn string
	Fields     []Field
	// Noun is used in user-facing messages ("Item", "Producto").
	Noun string
}

// Inventory categories.
var (
	Office = &Category{
		Name:       "oficina",
		Table:      "inventario_oficina",
		NameField:  "nombre",
		DateColumn: "fecha_ingreso",
		Noun:       "Item",
		Fields: []Field{
			{Name: "nombre", Required: true},
			{Name: "descripcion"},
			{Name: "ubicacion"},
		},
	}
	Cleaning = &Category{
		Name:       "limpieza",
		Table:      "inventario_limpieza",
		NameField:  "producto",
		DateColumn: "fecha_ingreso",
		Noun:       "Producto",
		Fields: []Field{
			{Name: "producto", Required: true},
			{Name: "tipo"},
			{Name: "proveedor"},
		},
	}
	Jugs = &Category{
		Name:       "garrafones",
		Table:      "inventario_garrafones",
		NameField:  "tipo",
		DateColumn: "fecha_registro",
		Noun:       "Item",
		Fields: []Field{
			{Name: "tipo", Required: true, Enum: []string{"garrafon", "sello", "tapon"}},
			{Name: "estado", Enum: []string{"nuevo", "usado", "danado"}, Default: "nuevo"},
			{Name: "ubicacion"},
			{Name: "observaciones"},
		},
	}
)

// Categories lists every inventory category.
var Categories = []*Category{Office, Cleaning, Jugs}

// CategoryByName returns the category with the given name, or nil.
func CategoryByName(name string) *Category {
	for _, c := range Categories {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Columns returns the descriptive column names in declaration order.
func (c *Category) Columns() []string {
	cols := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		cols[i] = f.Name
	}
	return cols
}

// ItemInput is a validated create or update request.
type ItemInput struct {
	Attrs    map[string]string
	Quantity int
}

// Name returns the value of the category's name field.
func (in ItemInput) Name(c *Category) string {
	return in.Attrs[c.NameField]
}

// ParseInput validates a decoded JSON body against the category. minQuantity
// is the smallest accepted quantity.
func (c *Category) ParseInput(body map[string]any, minQuantity int) (ItemInput, error) {
	in := ItemInput{Attrs: make(map[string]string, len(c.Fields))}

	for _, f := range c.Fields {
		v, err := stringValue(body[f.Name])
		if err != nil {
			return ItemInput{}, &ValidationError{Message: fmt.Sprintf("El campo %s no es válido", f.Name)}
		}
		if v == "" {
			v = f.Default
		}
		if v == "" && f.Required {
			return ItemInput{}, c.missingFields()
		}
		if v != "" && !f.allows(v) {
			return ItemInput{}, &ValidationError{
				Message: fmt.Sprintf("El campo %s debe ser uno de: %s", f.Name, strings.Join(f.Enum, ", ")),
			}
		}
		in.Attrs[f.Name] = v
	}

	raw, ok := body["cantidad"]
	if !ok || raw == nil || raw == "" {
		return ItemInput{}, c.missingFields()
	}
	qty, err := ParseQuantity(raw)
	if err != nil {
		return ItemInput{}, err
	}
	if qty < minQuantity {
		return ItemInput{}, &ValidationError{Message: fmt.Sprintf("La cantidad debe ser al menos %d", minQuantity)}
	}
	in.Quantity = qty

	return in, nil
}

func (c *Category) missingFields() error {
	field := c.NameField
	return &ValidationError{Message: fmt.Sprintf("%s y cantidad son obligatorios", strings.ToUpper(field[:1])+field[1:])}
}

// ParseQuantity accepts a JSON number or a numeric string holding a
// non-negative integer.
func ParseQuantity(v any) (int, error) {
	invalid := &ValidationError{Message: "La cantidad debe ser un número entero no negativo"}

	var n int
	switch q := v.(type) {
	case float64:
		if q != math.Trunc(q) || q < 0 || q > math.MaxInt32 {
			return 0, invalid
		}
		n = int(q)
	case int:
		n = q
	case int64:
		n = int(q)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(q))
		if err != nil {
			return 0, invalid
		}
		n = parsed
	default:
		return 0, invalid
	}
	if n < 0 || n > math.MaxInt32 {
		return 0, invalid
	}
	return n, nil
}

func stringValue(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(s), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// JugProduct maps a jug-category item type to the jug ledger product it counts as.
func JugProduct(itemType string) string {
	switch itemType {
	case "garrafon":
		return ProductJugs
	case "tapon":
		return ProductCaps
	case "sello":
		return ProductSeals
	}
	return ""
}
