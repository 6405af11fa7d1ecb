package artifacts

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ecgdash/adapters/wfdb"
	"ecgdash/internal/errors"
)

// PrerenderedSVGName is the optional pre-rendered example visualization
// looked up under the dataset root.
const PrerenderedSVGName = "example.svg"

// WriteExample writes the example-record card assets: example.svg plus a
// label table of the record's codes. A pre-rendered SVG under the
// dataset root wins; when it is absent the SVG is regenerated from the
// example header's metadata, and when that input is also absent an empty
// placeholder is written. Only missing-file failures trigger the
// fallback chain; anything else aborts.
func (w *Writer) WriteExample(datasetRoot string, example *wfdb.ExampleHeader, nameOf func(string) string) error {
	svg, err := os.ReadFile(filepath.Join(datasetRoot, PrerenderedSVGName))
	switch {
	case err == nil:
		log.Printf("[Writer] Using pre-rendered %s", PrerenderedSVGName)
	case os.IsNotExist(err):
		if example != nil {
			svg = []byte(renderLeadSVG(example))
		} else {
			log.Printf("[Writer] No example record available, writing placeholder")
			svg = []byte(placeholderSVG)
		}
	default:
		return errors.ArtifactWrite(ExampleSVGFile, err)
	}

	if err := os.WriteFile(filepath.Join(w.outDir, ExampleSVGFile), svg, 0o644); err != nil {
		return errors.ArtifactWrite(ExampleSVGFile, err)
	}

	var rows [][]string
	if example != nil {
		for _, code := range example.Codes {
			rows = append(rows, []string{code, nameOf(code)})
		}
	}
	return w.WriteCSV(ExampleLabelsFile, []string{"Snomed_CT", "name"}, rows)
}

// placeholderSVG keeps the dashboard card renderable when no example
// record exists at all.
const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="640" height="120" viewBox="0 0 640 120">
  <rect width="640" height="120" fill="#f8f9fa"/>
  <text x="320" y="64" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#6c757d">example record not available</text>
</svg>
`

// renderLeadSVG draws a metadata-only lead layout: one labeled baseline
// per lead. No signal samples are read, so the traces are flat.
func renderLeadSVG(example *wfdb.ExampleHeader) string {
	const (
		width      = 640
		rowHeight  = 28
		topMargin  = 40
		leftMargin = 56
	)
	height := topMargin + rowHeight*len(example.LeadNames) + 16
	if len(example.LeadNames) == 0 {
		return placeholderSVG
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&b, `  <rect width="%d" height="%d" fill="#ffffff"/>`+"\n", width, height)
	fmt.Fprintf(&b, `  <text x="%d" y="24" font-family="sans-serif" font-size="15" fill="#212529">Record %s (%d leads)</text>`+"\n",
		leftMargin, example.ID, len(example.LeadNames))
	for i, lead := range example.LeadNames {
		y := topMargin + rowHeight*i + rowHeight/2
		fmt.Fprintf(&b, `  <text x="%d" y="%d" text-anchor="end" font-family="sans-serif" font-size="12" fill="#495057">%s</text>`+"\n",
			leftMargin-10, y+4, lead)
		fmt.Fprintf(&b, `  <line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#0d6efd" stroke-width="1"/>`+"\n",
			leftMargin, y, width-24, y)
	}
	b.WriteString("</svg>\n")
	return b.String()
}
