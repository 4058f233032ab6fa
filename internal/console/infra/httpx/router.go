package httpx

import (
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/koi-console/internal/console/infra/httpx/middlewares"
)

func NewRouter(handler *Handler, enforcer *casbin.Enforcer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Health)

	r.Post("/session", handler.Login)
	r.Get("/session", handler.GetSession)
	r.Delete("/session", handler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middlewares.Session(handler.store))
		r.Use(middlewares.Authorize(enforcer))

		r.Get("/screens", handler.ListScreens)
		r.Route("/screens/{name}", func(r chi.Router) {
			r.Get("/", handler.GetScreen)
			r.Patch("/query", handler.PatchQuery)
			r.Post("/reset", handler.ResetScreen)
			r.Post("/sort/{field}", handler.ToggleSort)
			r.Post("/page/{nav}", handler.Navigate)
			r.Delete("/error", handler.DismissError)
			r.Post("/orders/{id}/advance", handler.AdvanceOrder)
			r.Post("/orders/{id}/cancel", handler.CancelOrder)
			r.Post("/posts", handler.AddPost)
		})

		r.Post("/orders/estimate", handler.Estimate)
		r.Post("/orders", handler.PlaceOrder)
		r.Get("/orders/{id}/audit", handler.OrderAudit)

		r.Post("/prices", handler.CreatePrice)
		r.Put("/prices/{id}", handler.UpdatePrice)
		r.Delete("/prices/{id}", handler.DeletePrice)
	})

	return otelhttp.NewHandler(r, "koi-console")
}
