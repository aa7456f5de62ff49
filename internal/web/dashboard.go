package web

import (
	"net/http"

	"github.com/purificadora/inventario/internal/model"
	"github.com/purificadora/inventario/internal/store"
)

// recentMovements is how many movements the dashboard shows.
const recentMovements = 10

type categoryView struct {
	Category *model.Category
	Items    []*model.Item
}

// Dashboard handles GET /dashboard.html.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetWebUser(r.Context())
	pd := newPageData("Inventario", user)

	categories := make([]categoryView, 0, len(model.Categories))
	for _, c := range model.Categories {
		items, err := s.Store.ListItems(r.Context(), c)
		if err != nil {
			s.Log.Errorw("failed to list items for dashboard", "category", c.Name, "error", err)
			pd.Error = "No se pudo cargar el inventario."
		}
		categories = append(categories, categoryView{Category: c, Items: items})
	}

	stock, err := s.Store.AltStock(r.Context())
	if err != nil {
		s.Log.Errorw("failed to load jug stock for dashboard", "error", err)
	}
	movements, err := s.Store.ListMovements(r.Context(), store.MovementFilter{Limit: recentMovements})
	if err != nil {
		s.Log.Errorw("failed to list movements for dashboard", "error", err)
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Categories []categoryView
		Stock      model.Stock
		Movements  []model.Movement
	}{
		PageData:   pd,
		Categories: categories,
		Stock:      stock,
		Movements:  movements,
	})
}
