package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	"github.com/purificadora/inventario/internal/model"
	"github.com/purificadora/inventario/internal/storage"
	"github.com/purificadora/inventario/internal/store"
	webembed "github.com/purificadora/inventario/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
	log       *zap.SugaredLogger
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"roleName": func(role string) string {
			switch role {
			case model.RoleMaster:
				return "Maestro"
			case model.RoleAdmin:
				return "Administrador"
			case model.RoleGuest:
				return "Invitado"
			default:
				return role
			}
		},
		"categoryTitle": func(c *model.Category) string {
			switch c {
			case model.Office:
				return "Oficina"
			case model.Cleaning:
				return "Limpieza"
			case model.Jugs:
				return "Garrafones"
			default:
				return c.Name
			}
		},
		"attr": func(it *model.Item, name string) string {
			if v := it.Attrs[name]; v != nil {
				return *v
			}
			return ""
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
}

// pages lists every page template; each is parsed together with the layout.
var pages = []string{
	"home.html",
	"login.html",
	"register.html",
	"dashboard.html",
	"archivos.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates(log *zap.SugaredLogger) (*Templates, error) {
	tfs, err := webembed.TemplatesFS()
	if err != nil {
		return nil, err
	}

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template), log: log}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render executes the named page inside the layout.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		ts.log.Errorw("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title          string
	User           *model.User
	Error          string
	CanEdit        bool
	CanManageFiles bool
}

func newPageData(title string, user *model.User) PageData {
	pd := PageData{Title: title, User: user}
	if user != nil {
		pd.CanEdit = model.Can(user.Role, model.PermEditInventory)
		pd.CanManageFiles = model.Can(user.Role, model.PermManageFiles)
	}
	return pd
}

// Server holds all dependencies for page handlers.
type Server struct {
	Store     *store.Store
	Uploads   *storage.Disk
	Templates *Templates
	Secret    string
	Log       *zap.SugaredLogger
}
