package webhook

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the webhook endpoint on the router.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/callback", h.Callback)
}
