package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/purificadora/inventario/internal/model"
	"github.com/purificadora/inventario/internal/store"
)

// categoryHandler serves the item routes of one inventory category.
type categoryHandler struct {
	*Handler
	category *model.Category
}

func (ch *categoryHandler) routes(r chi.Router) {
	view := RequirePermission(model.PermView)
	edit := RequirePermission(model.PermEditInventory)

	r.With(view).Get("/", ch.list)
	r.With(edit).Post("/", ch.create)

	// Static segments win over {id}, so the jug ledger routes live here.
	if ch.category == model.Jugs {
		r.With(view).Get("/stock", ch.Stock)
		r.With(view).Get("/stock/movimientos", ch.ListStockMovements)
		r.With(edit).Post("/stock", ch.RecordStockMovement)
	}

	r.Route("/{id}", func(r chi.Router) {
		r.With(view).Get("/", ch.get)
		r.With(edit).Put("/", ch.update)
		r.With(edit).Delete("/", ch.delete)
		r.With(edit).Put("/movimiento", ch.adjust)
		r.With(view).Get("/movimientos", ch.history)
	})
}

func (ch *categoryHandler) list(w http.ResponseWriter, r *http.Request) {
	items, err := ch.store.ListItems(r.Context(), ch.category)
	if err != nil {
		ch.serverError(w, r, err, "Error al obtener inventario")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

func (ch *categoryHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	item, err := ch.store.GetItem(r.Context(), ch.category, id)
	if err != nil {
		ch.serverError(w, r, err, "Error al obtener item")
		return
	}
	if item == nil {
		ch.notFound(w)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

func (ch *categoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}

	in, err := ch.category.ParseInput(body, 1)
	if validationError(w, err) {
		return
	}

	user := GetUser(r.Context())
	id, err := ch.store.CreateItem(r.Context(), ch.category, in, user.ID)
	if err != nil {
		ch.serverError(w, r, err, "Error al agregar item")
		return
	}

	ch.log.Infow("item created",
		"category", ch.category.Name, "item_id", id, "quantity", in.Quantity, "user_id", user.ID)
	success(w, http.StatusCreated, ch.category.Noun+" agregado exitosamente", map[string]any{
		"item": map[string]any{"id": id, ch.category.NameField: in.Name(ch.category)},
	})
}

func (ch *categoryHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}

	in, err := ch.category.ParseInput(body, 0)
	if validationError(w, err) {
		return
	}

	err = ch.store.UpdateItem(r.Context(), ch.category, id, in)
	if errors.Is(err, store.ErrNotFound) {
		ch.notFound(w)
		return
	}
	if err != nil {
		ch.serverError(w, r, err, "Error al actualizar item")
		return
	}

	success(w, http.StatusOK, ch.category.Noun+" actualizado exitosamente", nil)
}

func (ch *categoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	err := ch.store.DeleteItem(r.Context(), ch.category, id)
	if errors.Is(err, store.ErrNotFound) {
		ch.notFound(w)
		return
	}
	if err != nil {
		ch.serverError(w, r, err, "Error al eliminar item")
		return
	}

	ch.log.Infow("item deleted", "category", ch.category.Name, "item_id", id, "user_id", GetUser(r.Context()).ID)
	success(w, http.StatusOK, ch.category.Noun+" eliminado exitosamente", nil)
}

type adjustRequest struct {
	Direction string `json:"movimiento"`
	Quantity  any    `json:"cantidad"`
	Notes     string `json:"observaciones"`
}

func (ch *categoryHandler) adjust(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}

	adj, err := model.ParseAdjustment(req.Direction, req.Quantity, req.Notes)
	if validationError(w, err) {
		return
	}

	user := GetUser(r.Context())
	qty, err := ch.store.AdjustQuantity(r.Context(), ch.category, id, adj, user.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		ch.notFound(w)
		return
	case errors.Is(err, store.ErrInsufficientStock):
		jsonError(w, http.StatusBadRequest, "No hay suficiente stock")
		return
	case err != nil:
		ch.serverError(w, r, err, "Error al registrar movimiento")
		return
	}

	ch.log.Infow("stock adjusted",
		"category", ch.category.Name, "item_id", id, "direction", adj.Direction,
		"quantity", adj.Quantity, "new_quantity", qty, "user_id", user.ID)
	success(w, http.StatusOK,
		fmt.Sprintf("Inventario actualizado - %s de %d unidades", adj.Direction, adj.Quantity),
		map[string]any{"nuevaCantidad": qty},
	)
}

func (ch *categoryHandler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "ID inválido")
		return
	}

	item, err := ch.store.GetItem(r.Context(), ch.category, id)
	if err != nil {
		ch.serverError(w, r, err, "Error al obtener item")
		return
	}
	if item == nil {
		ch.notFound(w)
		return
	}

	movements, err := ch.store.ListMovements(r.Context(), store.MovementFilter{
		Category: ch.category.Name,
		ItemID:   id,
		Limit:    queryLimit(r),
	})
	if err != nil {
		ch.serverError(w, r, err, "Error al obtener movimientos")
		return
	}
	jsonResponse(w, http.StatusOK, movements)
}

func (ch *categoryHandler) notFound(w http.ResponseWriter) {
	jsonError(w, http.StatusNotFound, ch.category.Noun+" no encontrado")
}

// ListMovements handles GET /api/inventario/movimientos.
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	filter := store.MovementFilter{Limit: queryLimit(r)}
	if name := r.URL.Query().Get("categoria"); name != "" {
		if model.CategoryByName(name) == nil {
			jsonError(w, http.StatusBadRequest, "Categoría inválida: "+name)
			return
		}
		filter.Category = name
	}

	movements, err := h.store.ListMovements(r.Context(), filter)
	if err != nil {
		h.serverError(w, r, err, "Error al obtener movimientos")
		return
	}
	jsonResponse(w, http.StatusOK, movements)
}

// Stock handles GET /api/inventario/garrafones/stock. By default the jug
// ledger is summed; ?fuente=inventario sums the garrafones items instead.
func (h *Handler) Stock(w http.ResponseWriter, r *http.Request) {
	var (
		stock model.Stock
		err   error
	)
	switch source := r.URL.Query().Get("fuente"); source {
	case "", model.StockFromLedger:
		stock, err = h.store.AltStock(r.Context())
	case model.StockFromInventory:
		stock, err = h.store.InventoryStock(r.Context())
	default:
		jsonError(w, http.StatusBadRequest, "Fuente inválida: "+source)
		return
	}
	if err != nil {
		h.serverError(w, r, err, "Error al obtener stock")
		return
	}
	jsonResponse(w, http.StatusOK, stock)
}

// ListStockMovements handles GET /api/inventario/garrafones/stock/movimientos.
func (h *Handler) ListStockMovements(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListAltMovements(r.Context(), queryLimit(r))
	if err != nil {
		h.serverError(w, r, err, "Error al obtener movimientos")
		return
	}
	jsonResponse(w, http.StatusOK, records)
}

type stockMovementRequest struct {
	Direction   string `json:"tipo"`
	Product     string `json:"producto"`
	Quantity    any    `json:"cantidad"`
	Description string `json:"descripcion"`
}

// RecordStockMovement handles POST /api/inventario/garrafones/stock.
func (h *Handler) RecordStockMovement(w http.ResponseWriter, r *http.Request) {
	var req stockMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Cuerpo de solicitud inválido")
		return
	}

	if !model.ValidDirection(req.Direction) {
		jsonError(w, http.StatusBadRequest, "Tipo de movimiento inválido")
		return
	}
	if !model.ValidProduct(req.Product) {
		jsonError(w, http.StatusBadRequest, "Producto inválido")
		return
	}
	if req.Quantity == nil {
		jsonError(w, http.StatusBadRequest, "La cantidad es obligatoria")
		return
	}
	qty, err := model.ParseQuantity(req.Quantity)
	if validationError(w, err) {
		return
	}
	if qty < 1 {
		jsonError(w, http.StatusBadRequest, "La cantidad debe ser mayor a cero")
		return
	}

	user := GetUser(r.Context())
	id, err := h.store.RecordAltMovement(r.Context(), req.Direction, req.Product, qty, req.Description, user.ID)
	if errors.Is(err, store.ErrInsufficientStock) {
		jsonError(w, http.StatusBadRequest, "No hay suficiente stock")
		return
	}
	if err != nil {
		h.serverError(w, r, err, "Error al registrar movimiento")
		return
	}

	success(w, http.StatusCreated, "Movimiento registrado exitosamente", map[string]any{"id": id})
}
