package handlers

import "net/http"

// ListTemplates serves the full template registry in file order.
func (a *App) ListTemplates(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Templates.All())
}
