package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role     string
		perm     Permission
		expected bool
	}{
		{RoleMaster, PermView, true},
		{RoleMaster, PermManageUsers, true},
		{RoleMaster, PermMaintenance, true},
		{RoleAdmin, PermEditInventory, true},
		{RoleAdmin, PermManageFiles, true},
		{RoleAdmin, PermManageUsers, false},
		{RoleAdmin, PermMaintenance, false},
		{RoleGuest, PermView, true},
		{RoleGuest, PermEditInventory, false},
		{RoleGuest, PermManageFiles, false},
		// Unknown roles fail closed.
		{"", PermView, false},
		{"maestro", PermView, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Can(tt.role, tt.perm), "Can(%q, %s)", tt.role, tt.perm)
	}
}

func TestRegistration(t *testing.T) {
	r := Registration{Name: " Ana ", Email: " Ana@Example.COM ", Password: "x", AdminCode: " 0509 "}
	r.Normalize()
	require.NoError(t, r.Validate())
	assert.Equal(t, "ana@example.com", r.Email)
	assert.Equal(t, RoleAdmin, r.RoleFor("0509"))
	assert.Equal(t, RoleGuest, r.RoleFor("1234"))
	assert.Equal(t, RoleGuest, Registration{}.RoleFor(""))

	var verr *ValidationError
	assert.ErrorAs(t, Registration{Email: "a@b.c", Password: "x"}.Validate(), &verr)
	assert.ErrorAs(t, Registration{Name: "a", Email: "not-an-email", Password: "x"}.Validate(), &verr)
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      any
		want    int
		wantErr bool
	}{
		{float64(10), 10, false},
		{"25", 25, false},
		{" 3 ", 3, false},
		{float64(0), 0, false},
		{float64(-1), 0, true},
		{float64(1.5), 0, true},
		{"-4", 0, true},
		{"abc", 0, true},
		{true, 0, true},
		{"2147483647", 2147483647, false},
		{"3000000000", 0, true},
		{"9223372036854775800", 0, true},
		{int64(1) << 40, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseQuantity(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseQuantity(%v)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseQuantity(%v)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestCategoryParseInput(t *testing.T) {
	in, err := Office.ParseInput(map[string]any{"nombre": "Papel", "cantidad": float64(10)}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Papel", in.Name(Office))
	assert.Equal(t, 10, in.Quantity)
	assert.Equal(t, "", in.Attrs["ubicacion"])

	_, err = Office.ParseInput(map[string]any{"cantidad": float64(10)}, 1)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Nombre y cantidad son obligatorios", verr.Message)

	_, err = Cleaning.ParseInput(map[string]any{"producto": "Cloro"}, 1)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Producto y cantidad son obligatorios", verr.Message)

	_, err = Office.ParseInput(map[string]any{"nombre": "Papel", "cantidad": float64(0)}, 1)
	assert.Error(t, err, "zero initial quantity is rejected on create")

	in, err = Office.ParseInput(map[string]any{"nombre": "Papel", "cantidad": float64(0)}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, in.Quantity)
}

func TestJugCategoryEnums(t *testing.T) {
	in, err := Jugs.ParseInput(map[string]any{"tipo": "garrafon", "cantidad": "5"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "nuevo", in.Attrs["estado"], "estado defaults to nuevo")

	_, err = Jugs.ParseInput(map[string]any{"tipo": "botella", "cantidad": "5"}, 1)
	assert.Error(t, err)

	_, err = Jugs.ParseInput(map[string]any{"tipo": "sello", "estado": "roto", "cantidad": "5"}, 1)
	assert.Error(t, err)
}

func TestParseAdjustment(t *testing.T) {
	adj, err := ParseAdjustment(DirectionOut, float64(4), "")
	require.NoError(t, err)
	assert.Equal(t, "Movimiento: salida", adj.Notes)
	assert.Equal(t, 4, adj.Quantity)

	_, err = ParseAdjustment("", float64(4), "")
	assert.Error(t, err)
	_, err = ParseAdjustment("transferencia", float64(4), "")
	assert.Error(t, err)
	_, err = ParseAdjustment(DirectionIn, float64(0), "")
	assert.Error(t, err)
	_, err = ParseAdjustment(DirectionIn, nil, "")
	assert.Error(t, err)

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestItemMarshalJSON(t *testing.T) {
	name := "Cloro"
	it := &Item{
		ID:        7,
		Category:  Cleaning,
		Attrs:     map[string]*string{"producto": &name},
		Quantity:  3,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(it)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Cloro", out["producto"])
	assert.Equal(t, float64(3), out["cantidad"])
	assert.Nil(t, out["proveedor"])
	assert.Contains(t, out, "fecha_ingreso")
	assert.Equal(t, "Cloro", it.Name())
}

func TestStockAccessors(t *testing.T) {
	var s Stock
	s.Set(ProductCaps, 350)
	assert.Equal(t, int64(350), s.Get(ProductCaps))
	assert.Equal(t, int64(0), s.Get(ProductJugs))
	assert.Equal(t, ProductSeals, JugProduct("sello"))
	assert.Equal(t, "", JugProduct("otro"))
	assert.Same(t, Jugs, CategoryByName("garrafones"))
	assert.Nil(t, CategoryByName("bodega"))
}
