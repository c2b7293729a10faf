package main

import (
	"embed"
	"html/template"
	"log"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.gohtml
var tplFS embed.FS

//go:embed all:static
var staticFS embed.FS

type App struct {
	API string
	WS  string
}

func main() {
	api := getenv("API_URL", "http://localhost:8080")
	ws := getenv("WS_URL", "ws://localhost:8080/realtime/ws")
	port := getenv("PORT", "5175")

	app := &App{API: api, WS: ws}

	r := chi.NewRouter()
	r.Get("/", app.page("map.gohtml"))
	r.Get("/declare", app.page("declare.gohtml"))
	r.Get("/auth", app.page("auth.gohtml"))

	r.Get("/static/*", func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(r.URL.Path, "/static/")
		b, err := staticFS.ReadFile(path.Join("static", p))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(p, ".js") {
			w.Header().Set("content-type", "application/javascript")
		}
		if strings.HasSuffix(p, ".css") {
			w.Header().Set("content-type", "text/css")
		}
		w.Write(b)
	})

	log.Printf("declare frontend on :%s (API=%s, WS=%s)", port, api, ws)
	log.Fatal(http.ListenAndServe(":"+port, r))
}

func (a *App) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tpl, err := template.ParseFS(tplFS, "templates/base.gohtml", "templates/"+name)
		if err != nil {
			http.Error(w, "template error", 500)
			return
		}

		data := map[string]any{
			"API":  a.API,
			"WS":   a.WS,
			"Path": r.URL.Path,
		}
		if err := tpl.ExecuteTemplate(w, "base", data); err != nil {
			http.Error(w, err.Error(), 500)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
