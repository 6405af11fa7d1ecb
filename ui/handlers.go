package ui

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"ecgdash/adapters/artifacts"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// indexView is the data model of the overview page.
type indexView struct {
	Snap *Snapshot
	// Degraded is set when no prepare run has produced artifacts yet.
	Degraded bool
	// MaxTopCount scales the top-codes bar chart.
	MaxTopCount int
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := a.store.Snapshot()

	view := indexView{Snap: snap, Degraded: snap.Summary == nil}
	for _, tc := range snap.TopCodes {
		if tc.Count > view.MaxTopCount {
			view.MaxTopCount = tc.Count
		}
	}

	a.renderTemplate(w, "index.html", view)
}

// notesView is the data model of the notes page.
type notesView struct {
	Body template.HTML
}

func (a *App) handleNotes(w http.ResponseWriter, r *http.Request) {
	body := defaultNotes
	if a.notesFile != "" {
		if data, err := os.ReadFile(a.notesFile); err == nil {
			body = string(data)
		} else if !os.IsNotExist(err) {
			log.Printf("[UI] Failed to read notes file %s: %v", a.notesFile, err)
		}
	}

	a.renderTemplate(w, "notes.html", notesView{Body: renderMarkdown(body)})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := a.store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "ok",
		"instance":         a.instanceID,
		"artifact_dir":     a.store.Dir(),
		"artifacts_loaded": snap.Summary != nil,
		"loaded_at":        snap.LoadedAt.Format(time.RFC3339),
	})
}

func (a *App) handleExampleSVG(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(a.store.Dir(), artifacts.ExampleSVGFile)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	http.ServeFile(w, r, path)
}

func (a *App) handleAPIMetrics(w http.ResponseWriter, r *http.Request) {
	snap := a.store.Snapshot()
	if snap.Summary == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "metrics artifact not available"})
		return
	}
	writeJSON(w, http.StatusOK, snap.Summary)
}

func (a *App) handleAPITopCodes(w http.ResponseWriter, r *http.Request) {
	snap := a.store.Snapshot()
	if snap.TopCodes == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "top codes artifact not available"})
		return
	}
	writeJSON(w, http.StatusOK, snap.TopCodes)
}

func (a *App) handleAPICategories(w http.ResponseWriter, r *http.Request) {
	snap := a.store.Snapshot()
	if snap.Split == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category split artifact not available"})
		return
	}
	writeJSON(w, http.StatusOK, snap.Split)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[UI] JSON encode error: %v", err)
	}
}

// renderMarkdown converts markdown to sanitized-enough HTML for the
// notes page (the notes file is operator-provided, not user input).
func renderMarkdown(src string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return template.HTML(markdown.ToHTML([]byte(src), p, renderer))
}

const defaultNotes = `# Dataset notes

Exploratory data summary for the PhysioNet ECG Arrhythmia dataset:
12-lead ECG recordings with per-record SNOMED-CT diagnostic codes in the
WFDB header comments.

Run ` + "`ecgdash-cli prepare --root <dataset>`" + ` to refresh the artifacts
this dashboard renders.
`
