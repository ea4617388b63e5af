package admin

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the admin endpoints on the router.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/conversations/{userId}", h.GetConversation)
		r.Delete("/conversations/{userId}", h.DeleteConversation)
		r.Get("/conversations/{userId}/export", h.ExportConversation)
		r.Post("/push", h.PushMessage)
		r.Get("/quota", h.GetQuota)
	})
}
