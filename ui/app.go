// Package ui is the dashboard: a thin rendering layer over the flat-file
// artifacts written by the prepare run.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App represents the dashboard application
type App struct {
	router     *chi.Mux
	store      *Store
	templates  *template.Template
	notesFile  string
	instanceID string
}

// Config holds dashboard application configuration
type Config struct {
	ArtifactDir string
	NotesFile   string
}

// NewApp creates the dashboard over an artifact directory.
func NewApp(config Config) (*App, error) {
	funcMap := template.FuncMap{
		"pct": func(value, max int) int {
			if max <= 0 {
				return 0
			}
			return value * 100 / max
		},
		"comma": formatThousands,
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:     chi.NewRouter(),
		store:      NewStore(config.ArtifactDir),
		templates:  templates,
		notesFile:  config.NotesFile,
		instanceID: uuid.NewString(),
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	staticFS := http.FileServer(http.FS(embeddedFiles))
	a.router.Handle("/static/*", staticFS)
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/notes", a.handleNotes)
	a.router.Get("/healthz", a.handleHealth)
	a.router.Get("/example.svg", a.handleExampleSVG)

	a.router.Get("/api/metrics", a.handleAPIMetrics)
	a.router.Get("/api/topcodes", a.handleAPITopCodes)
	a.router.Get("/api/categories", a.handleAPICategories)
}

// Start starts the HTTP server
func (a *App) Start(addr string) error {
	log.Printf("[UI] Dashboard %s listening on %s (artifacts: %s)", a.instanceID, addr, a.store.Dir())
	return http.ListenAndServe(addr, a.router)
}

// Router exposes the handler for tests.
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// formatThousands renders 45152 as "45,152".
func formatThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + formatThousands(-n)
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
