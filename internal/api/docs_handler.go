package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-api/internal/api/shared"
)

// DocsHandler lists the routes registered on a chi router.
type DocsHandler struct {
	routes chi.Routes
}

// NewDocsHandler creates a DocsHandler over routes. The router is walked on
// every request, so routes mounted after construction are listed too.
func NewDocsHandler(routes chi.Routes) *DocsHandler {
	return &DocsHandler{routes: routes}
}

// Docs handles GET /docs.
func (h *DocsHandler) Docs(w http.ResponseWriter, r *http.Request) {
	var routes []RouteInfo
	err := chi.Walk(h.routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, RouteInfo{Method: method, Path: route})
		return nil
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	shared.RespondWithJSON(w, r, http.StatusOK, DocsResponse{Routes: routes})
}
