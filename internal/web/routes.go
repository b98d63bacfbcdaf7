package web

import "github.com/tomas/iqdb/internal/web/handlers"

func (s *Server) setupRoutes(h *handlers.Handler) {
	s.router.Post("/images/{post_id}", h.AddImage)
	s.router.Delete("/images/{post_id}", h.DeleteImage)
	s.router.Get("/images/{post_id}", h.GetImage)
	s.router.Post("/query", h.Query)
	s.router.Get("/status", h.Status)
}
