package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"

	"climate-server/internal/modules/climate/types"
)

var indexTmpl *template.Template

// loadTemplatesFromFS parses the page templates under dir. Tests use it to
// simulate missing or broken templates.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	indexTmpl, err = template.ParseFS(sub, "*.html")
	return err
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

type IndexData struct {
	Routes []types.Route
	// LatestDate is the most recent measurement date, empty when unknown.
	LatestDate string
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if indexTmpl == nil {
		return errors.New("index template not loaded: call views.LoadTemplates during startup")
	}
	return indexTmpl.ExecuteTemplate(w, "index.html", data)
}
