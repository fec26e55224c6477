package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init builds the router. Everything under /api/rop needs a bearer token;
// the ROP call itself is also checked against the body HMAC when a hash
// key is configured.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, h.withLogging, withGZip)
	router.MethodNotAllowed(hideMethodNotAllowed)

	router.Route("/api", func(api chi.Router) {
		api.Post("/user/register", h.register)
		api.Post("/user/login", h.login)
		api.Get("/version/", h.getServerVersion)
		api.Get("/info", h.getServerInfo)

		api.Route("/rop", func(rop chi.Router) {
			rop.Use(h.auth)
			rop.Post("/session", h.openSession)
			rop.Delete("/session/{session}", h.closeSession)
			rop.With(h.withBodyHMAC).Post("/{session}/{rop}", h.rop)
		})
	})

	return router
}
