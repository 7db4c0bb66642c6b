// Package web provides the embedded page templates and static assets.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static/*
var staticFiles embed.FS

// Templates parses the page templates with the view helper functions
func Templates() (*template.Template, error) {
	return template.New("page").Funcs(FuncMap()).ParseFS(templateFiles, "templates/*.html")
}

// StaticHandler serves the embedded static assets; mount it under /static/
func StaticHandler() (http.Handler, error) {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, err
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub))), nil
}

// FuncMap returns the helpers used by the templates
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"megabytes": FormatMegabytes,
		"clock": func(t time.Time) string {
			return t.Format("15:04:05")
		},
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return fmt.Sprintf("%d %s", n, one)
			}
			return fmt.Sprintf("%d %s", n, many)
		},
	}
}

// FormatMegabytes prints a size the way the service reported it, without
// padding or rounding: 1.4 stays "1.4", 2 stays "2".
func FormatMegabytes(mb float64) string {
	return strconv.FormatFloat(mb, 'f', -1, 64)
}
