// Package web embeds the HTML pages served by the MediaID server.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/celerix-dev/mediaid/pkg/schema"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded pages. Each page is named after its file, e.g. "history.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"value": schema.Value,
		"yesno": func(b bool) string {
			if b {
				return "Yes"
			}
			return "No"
		},
		"datetime": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04:05 UTC")
		},
	}).ParseFS(templateFS, "templates/*.html")
}
