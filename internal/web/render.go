package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mkrupp/skillsphere/internal/domain"
)

const (
	layoutFile   = "layout.html"
	partialsFile = "partials.html"
)

var (
	//go:embed templates/*.html
	templateFS embed.FS

	//go:embed static
	staticFS embed.FS
)

// navItem is a link in the top navigation. Items with children render as a menu.
type navItem struct {
	Name     string
	To       string
	Children []navItem
}

//nolint:gochecknoglobals
var navItems = []navItem{
	{Name: "Dashboard", To: "/dashboard"},
	{Name: "Jobs", To: "/jobs"},
	{Name: "Applications", To: "/applications"},
	{Name: "Other", Children: []navItem{
		{Name: "Status", To: "/status"},
		{Name: "About", To: "/about"},
	}},
}

// layout is the data every page template receives.
type layout struct {
	Title   string
	Path    string
	Nav     []navItem
	User    *domain.User
	Role    domain.Role
	Flashes []domain.Flash
	Data    any
}

//nolint:gochecknoglobals
var templateFuncs = template.FuncMap{
	"bytes": func(n int64) string {
		return humanize.Bytes(uint64(max(n, 0)))
	},
	"contains": func(list []string, s string) bool {
		return slices.Contains(list, s)
	},
	"plural": func(n int, singular, plural string) string {
		if n == 1 {
			return singular
		}

		return plural
	},
	// imageURL lets generated data:image URLs through the URL sanitizer.
	"imageURL": func(s string) template.URL {
		if !strings.HasPrefix(s, "data:image/") {
			return ""
		}

		return template.URL(s) //nolint:gosec
	},
	"active": func(current, to string) bool {
		return current == to || strings.HasPrefix(current, to+"/")
	},
}

// parsePages builds one template set per page, each sharing the layout and partials.
func parsePages() (map[string]*template.Template, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))

	for _, name := range names {
		base := path.Base(name)
		if base == layoutFile || base == partialsFile {
			continue
		}

		tmpl, err := template.New(base).Funcs(templateFuncs).ParseFS(templateFS,
			path.Join("templates", layoutFile), path.Join("templates", partialsFile), name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}

		pages[base] = tmpl
	}

	return pages, nil
}

// render writes a page inside the layout. Queued flashes of the session are
// shown after any passed in flashes.
func (h *Handler) render(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	name, title string,
	data any,
	flashes ...domain.Flash,
) {
	ctx := r.Context()

	tmpl, ok := h.pages[name]
	if !ok {
		h.log.ErrorContext(ctx, "unknown page", "page", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	page := layout{
		Title:   title,
		Path:    r.URL.Path,
		Nav:     navItems,
		Flashes: flashes,
		Data:    data,
	}

	if view, err := h.viewer(r); err == nil {
		user := view.Account()
		page.User = &user
		page.Role = view.Role()
	}

	queued, err := h.svc.Flashes.PopFlashes(ctx, sessionID(r))
	if err != nil {
		h.log.WarnContext(ctx, "pop flashes failed", "error", err)
	}

	page.Flashes = append(page.Flashes, queued...)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutFile, page); err != nil {
		h.log.ErrorContext(ctx, "render page failed", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
