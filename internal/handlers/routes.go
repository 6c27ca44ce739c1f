package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the public, client and admin surfaces.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/availability", h.GetAvailability)

	r.Route("/appointments", func(r chi.Router) {
		r.With(h.OptionalSession).Post("/", h.ClaimAppointment)
		r.With(h.RequireSession).Get("/", h.ListMyAppointments)
		r.With(h.OptionalSession).Delete("/{id}", h.CancelAppointment)
		r.With(h.OptionalSession).Post("/{id}/checkout", h.CreateCheckout)
	})

	r.Post("/webhooks/mercadopago", h.MercadoPagoWebhook)

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.RequireAdmin)
		r.Get("/agenda", h.GetAgenda)
		r.Route("/availability", func(r chi.Router) {
			r.Get("/", h.ListRules)
			r.Post("/", h.AddRule)
			r.Delete("/{id}", h.DeleteRule)
			r.Patch("/{id}/visibility", h.SetRuleVisibility)
		})
	})

	return r
}

// Mount attaches the API under /v1 on a parent router.
func (h *Handlers) Mount(parent chi.Router) {
	parent.Mount("/v1", h.Routes())
}
