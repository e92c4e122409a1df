package demoserver

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// DemoServer serves fixture pages for manual end-to-end runs of the
// classifier. Every page has a clean version 1; higher versions carry the
// markers the content features look for.
type DemoServer struct {
	cfg      Config
	pages    map[string]PageDefinition
	versions map[string]int // path -> current version
	mu       sync.RWMutex
	router   chi.Router
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config) *DemoServer {
	if cfg.InitialVersion < 1 {
		cfg.InitialVersion = 1
	}
	pages := GetAllPages()
	pageMap := make(map[string]PageDefinition)
	versions := make(map[string]int)

	for _, p := range pages {
		pageMap[p.Path] = p
		versions[p.Path] = cfg.InitialVersion
	}

	s := &DemoServer{
		cfg:      cfg,
		pages:    pageMap,
		versions: versions,
	}
	s.routes()
	return s
}

func (s *DemoServer) routes() {
	r := chi.NewRouter()

	for path := range s.pages {
		r.Get(path, s.pageHandler(path))
	}

	// Control panel for version switching
	r.Get("/demo/control", s.controlPanelHandler)
	r.Post("/demo/set-version", s.setVersionHandler)
	r.Get("/demo/get-versions", s.getVersionsHandler)
	r.Post("/demo/bump-all", s.bumpAllVersionsHandler)
	r.Post("/demo/reset", s.resetVersionsHandler)

	r.Get("/static/*", s.staticHandler)

	s.router = r
}

// Handler exposes the router, mainly for httptest.
func (s *DemoServer) Handler() http.Handler { return s.router }

// Start listens on the configured port until the server fails.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Demo server starting on http://localhost%s\n", addr)
	fmt.Printf("Control panel at http://localhost%s/demo/control\n", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// currentVersion returns the page version in effect, falling back to the
// closest lower version that exists.
func (s *DemoServer) currentVersion(path string) (PageVersion, bool) {
	s.mu.RLock()
	pageDef, ok := s.pages[path]
	version := s.versions[path]
	s.mu.RUnlock()
	if !ok {
		return PageVersion{}, false
	}

	if pv, ok := pageDef.Versions[version]; ok {
		return pv, true
	}
	for v := version; v >= 1; v-- {
		if pv, ok := pageDef.Versions[v]; ok {
			return pv, true
		}
	}
	return PageVersion{}, false
}

// pageHandler returns a handler for a specific page path.
func (s *DemoServer) pageHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageVersion, ok := s.currentVersion(path)
		if !ok {
			http.NotFound(w, r)
			return
		}

		for k, v := range pageVersion.Headers {
			w.Header().Set(k, v)
		}

		if pageVersion.Redirect != "" {
			status := pageVersion.Status
			if status == 0 {
				status = http.StatusFound
			}
			http.Redirect(w, r, pageVersion.Redirect, status)
			return
		}

		contentType := pageVersion.ContentType
		if contentType == "" {
			contentType = "text/html; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)

		status := pageVersion.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(pageVersion.HTML))
	}
}

// staticHandler serves placeholder static files.
func (s *DemoServer) staticHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("/* fixture asset: " + r.URL.Path + " */\n"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// maxVersion is the highest version defined for path. Callers hold s.mu.
func (s *DemoServer) maxVersion(path string) int {
	maxV := 1
	for v := range s.pages[path].Versions {
		maxV = max(maxV, v)
	}
	return maxV
}

// controlPanelHandler serves the control panel for version management.
func (s *DemoServer) controlPanelHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := struct {
		Pages    map[string]PageDefinition
		Versions map[string]int
	}{
		Pages:    s.pages,
		Versions: s.versions,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = controlPanelTmpl.Execute(w, data)
}

// setVersionHandler sets the version for a specific page.
func (s *DemoServer) setVersionHandler(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue("path")
	version, err := strconv.Atoi(r.FormValue("version"))
	if err != nil || version < 1 {
		http.Error(w, "Invalid version number", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	_, known := s.pages[path]
	if known {
		s.versions[path] = min(version, s.maxVersion(path))
		version = s.versions[path]
	}
	s.mu.Unlock()

	if !known {
		http.Error(w, "Unknown page", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"success": true,
		"path":    path,
		"version": version,
	})
}

// PageInfo describes one page in the get-versions listing.
type PageInfo struct {
	Path              string `json:"path"`
	Description       string `json:"description"`
	CurrentVersion    int    `json:"current_version"`
	AvailableVersions []int  `json:"available_versions"`
}

// getVersionsHandler returns the current versions of all pages, sorted by path.
func (s *DemoServer) getVersionsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	pages := make([]PageInfo, 0, len(s.pages))
	for path, pageDef := range s.pages {
		versions := make([]int, 0, len(pageDef.Versions))
		for v := range pageDef.Versions {
			versions = append(versions, v)
		}
		sort.Ints(versions)
		pages = append(pages, PageInfo{
			Path:              path,
			Description:       pageDef.Description,
			CurrentVersion:    s.versions[path],
			AvailableVersions: versions,
		})
	}
	s.mu.RUnlock()

	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	writeJSON(w, pages)
}

// bumpAllVersionsHandler moves every page to its next version, capped at the
// highest one defined.
func (s *DemoServer) bumpAllVersionsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	for path := range s.versions {
		s.versions[path] = min(s.versions[path]+1, s.maxVersion(path))
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"success": true,
		"message": "All versions bumped",
	})
}

// resetVersionsHandler resets all pages to version 1.
func (s *DemoServer) resetVersionsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	for path := range s.versions {
		s.versions[path] = 1
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"success": true,
		"message": "All versions reset to 1",
	})
}

var controlPanelTmpl = template.Must(template.New("control").Parse(controlPanelHTML))

const controlPanelHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Fixture Site Control Panel</title>
    <style>
        body { font: 15px/1.4 sans-serif; margin: 2em auto; max-width: 900px; color: #222; }
        table { border-collapse: collapse; width: 100%; }
        th, td { text-align: left; padding: .5em; border-bottom: 1px solid #ddd; vertical-align: top; }
        td.desc { color: #666; }
        button { margin-right: .3em; }
        button.on { font-weight: bold; background: #c0392b; color: #fff; }
    </style>
</head>
<body>
    <h1>Fixture Site Control Panel</h1>
    <p>Version 1 of every page is clean. Switch a page to a higher version to serve its phishing variant, then classify the URL again.</p>
    <p>
        <button onclick="post('/demo/bump-all')">Bump all</button>
        <button onclick="post('/demo/reset')">Reset all to v1</button>
    </p>
    <table>
        <tr><th>Page</th><th>Description</th><th>Version</th></tr>
        {{range $path, $page := .Pages}}
        <tr>
            <td><a href="{{$path}}" target="_blank">{{$path}}</a></td>
            <td class="desc">{{$page.Description}}</td>
            <td>
                {{range $v, $_ := $page.Versions}}
                <button class="{{if eq (index $.Versions $path) $v}}on{{end}}" onclick="setVersion('{{$path}}', {{$v}})">v{{$v}}</button>
                {{end}}
            </td>
        </tr>
        {{end}}
    </table>
    <script>
        function setVersion(path, version) {
            var body = new URLSearchParams({path: path, version: version});
            fetch('/demo/set-version', {method: 'POST', body: body}).then(function () { location.reload(); });
        }
        function post(url) {
            fetch(url, {method: 'POST'}).then(function () { location.reload(); });
        }
    </script>
</body>
</html>`
