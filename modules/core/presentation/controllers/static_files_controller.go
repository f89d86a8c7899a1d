package controllers

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/benbjohnson/hashfs"
	"github.com/gorilla/mux"

	"github.com/iota-uz/org-console/pkg/application"
)

type StaticFilesController struct {
	fsInstances []*hashfs.FS
	production  bool
}

func (s *StaticFilesController) Key() string {
	return "/assets"
}

func (s *StaticFilesController) Register(r *mux.Router) {
	r.PathPrefix("/assets/").Handler(http.StripPrefix("/assets", http.HandlerFunc(s.serve)))
}

// serve hands the request to the first asset filesystem holding the file.
// Hashed names are cached forever by hashfs; plain names are revalidated
// outside production.
func (s *StaticFilesController) serve(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/")
	for _, fsys := range s.fsInstances {
		if _, err := fs.Stat(fsys, name); err != nil {
			continue
		}
		if !s.production {
			if _, hash := fsys.ParseName(name); hash == "" {
				w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			}
		}
		hashfs.FileServer(fsys).ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func NewStaticFilesController(fsInstances []*hashfs.FS, production bool) application.Controller {
	return &StaticFilesController{
		fsInstances: fsInstances,
		production:  production,
	}
}
