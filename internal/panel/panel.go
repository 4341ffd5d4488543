package panel

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

//go:embed web/*
var content embed.FS

// indexFile is served for "/" and for extensionless paths with no asset.
const indexFile = "index.html"

// Assets returns the embedded web client.
// Panics if the embedded assets cannot be loaded (build error).
func Assets() fs.FS {
	webFS, err := fs.Sub(content, "web")
	if err != nil {
		panic(fmt.Sprintf("panel: failed to load embedded web assets: %v", err))
	}
	return webFS
}

// Handler returns an http.Handler that serves the web client.
//
// When dir is non-empty and names an existing directory, assets come from
// disk (dev mode). Otherwise the embedded assets are used.
func Handler(dir string) http.Handler {
	assets := Assets()
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			assets = os.DirFS(dir)
		}
	}

	fileServer := http.FileServer(http.FS(assets))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The client is small and unhashed; always revalidate.
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")

		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" || name == indexFile {
			serveIndex(w, r, assets)
			return
		}

		if _, err := fs.Stat(assets, name); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}

		if path.Ext(name) != "" {
			http.NotFound(w, r)
			return
		}
		serveIndex(w, r, assets)
	})
}

// serveIndex writes index.html directly. FileServer would redirect
// "/index.html" to "/".
func serveIndex(w http.ResponseWriter, r *http.Request, assets fs.FS) {
	data, err := fs.ReadFile(assets, indexFile)
	if err != nil {
		http.Error(w, "index.html missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.Method == http.MethodHead {
		return
	}
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write(data)
}
