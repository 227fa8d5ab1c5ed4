package api

import (
	"net/http"
	"time"

	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/storage"
	"github.com/athebyme/gomarket-platform/admin-console/internal/api/handlers"
	"github.com/athebyme/gomarket-platform/admin-console/internal/api/middleware"
	"github.com/athebyme/gomarket-platform/admin-console/internal/apiclient"
	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/services"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterDeps - зависимости маршрутизатора консоли
type RouterDeps struct {
	Client          *apiclient.Client
	SyncService     *services.SyncService
	VariantService  *services.VariantService
	ActivityService *services.ActivityService
	Storage         *storage.PostgresStorage // может быть nil
	Logger          interfaces.LoggerPort
	CORSOrigins     []string
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.CORS(deps.CORSOrigins))

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	authHandler := handlers.NewAuthHandler(deps.Client, deps.Logger)
	resourceHandler := handlers.NewResourceHandler(deps.Client, deps.Logger)
	aggregatorHandler := handlers.NewAggregatorHandler(deps.SyncService, deps.Storage, deps.Logger)
	variantHandler := handlers.NewVariantHandler(deps.VariantService, deps.Logger)
	uploadHandler := handlers.NewUploadHandler(deps.Client, deps.Logger)
	activityHandler := handlers.NewActivityHandler(deps.ActivityService, deps.Storage, deps.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Аутентификация
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Session)
		})

		// Консоль агрегатора
		r.Route("/aggregator", func(r chi.Router) {
			r.Post("/advertisers/sync", aggregatorHandler.SyncAdvertisers)
			r.Post("/offers/sync", aggregatorHandler.SyncOffers)
			r.Post("/advertisers/{id}/sync-products", aggregatorHandler.SyncProducts)
			r.Delete("/dummy-data", aggregatorHandler.CleanupDummy)

			r.Get("/advertisers", aggregatorHandler.Advertisers)
			r.Get("/jobs", aggregatorHandler.Statuses)
			r.Get("/jobs/status/{key}", aggregatorHandler.JobStatus)
			r.Get("/jobs/history/{kind}", aggregatorHandler.JobHistory)
		})

		// Генерация вариантов товара
		r.Post("/variants/generate", variantHandler.Generate)

		// Загрузка изображений
		r.Post("/uploads/product-image", uploadHandler.ProductImage)

		// Лента последних действий
		r.Route("/activity", func(r chi.Router) {
			r.Get("/", activityHandler.Recent)
			r.Get("/archive", activityHandler.Archive)
		})

		// CRUD над ресурсами внутреннего API
		r.Route("/resources/{resource}", func(r chi.Router) {
			r.Get("/", resourceHandler.List)
			r.Post("/", resourceHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", resourceHandler.Get)
				r.Put("/", resourceHandler.Update)
				r.Delete("/", resourceHandler.Delete)
			})
		})
	})

	return r
}
