package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ramonehamilton/carddex/internal/api/handlers"
	"github.com/ramonehamilton/carddex/internal/api/response"
	"github.com/ramonehamilton/carddex/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Unversioned endpoints
	s.router.Get("/health", s.healthCheck)
	s.router.Get("/ws", s.wsHub.ServeWs)
	if s.services.Gatherer != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metricsHandler())
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))

		r.Get("/health", s.healthCheck)

		if s.services.Catalog != nil {
			catalogHandler := handlers.NewCatalogHandler(s.services.Catalog)
			r.Route("/catalog", func(r chi.Router) {
				r.Get("/search", catalogHandler.Search)
				r.Get("/cards/{cardID}", catalogHandler.GetCard)
				r.Get("/sets", catalogHandler.GetSets)
				r.Get("/sets/{setID}", catalogHandler.GetSet)
				r.Delete("/cache", catalogHandler.ClearCache)
			})
		}

		if s.services.Collection != nil {
			collectionHandler := handlers.NewCollectionHandler(s.services.Collection)
			r.Route("/collection", func(r chi.Router) {
				r.Get("/cards", collectionHandler.GetCards)
				r.Post("/cards", collectionHandler.Acquire)
				r.Get("/cards/{cardID}", collectionHandler.GetCard)
				r.Put("/cards/{cardID}/quantity", collectionHandler.UpdateQuantity)
				r.Post("/cards/{cardID}/increment", collectionHandler.Increment)
				r.Post("/cards/{cardID}/decrement", collectionHandler.Decrement)
				r.Delete("/cards/{cardID}", collectionHandler.DeleteCard)
				r.Post("/bulk", collectionHandler.BulkAdd)
				r.Get("/stats", collectionHandler.GetStats)
				r.Get("/sets", collectionHandler.GetSets)
			})
		}

		if s.services.Energy != nil {
			energyHandler := handlers.NewEnergyHandler(s.services.Energy)
			r.Route("/energy", func(r chi.Router) {
				r.Get("/", energyHandler.GetPool)
				r.Delete("/", energyHandler.ResetAll)
				r.Put("/{energyType}", energyHandler.SetCount)
				r.Delete("/{energyType}", energyHandler.Reset)
				r.Get("/{energyType}/availability", energyHandler.GetAvailability)
				r.Post("/{energyType}/increment", energyHandler.Increment)
				r.Post("/{energyType}/decrement", energyHandler.Decrement)
			})
		}

		if s.services.Decks != nil {
			deckHandler := handlers.NewDeckHandler(s.services.Decks)
			r.Route("/decks", func(r chi.Router) {
				r.Get("/", deckHandler.GetDecks)
				r.Post("/", deckHandler.CreateDeck)
				r.Get("/stats", deckHandler.GetStats)
				r.Route("/{deckID}", func(r chi.Router) {
					r.Get("/", deckHandler.GetDeck)
					r.Put("/", deckHandler.UpdateDeck)
					r.Delete("/", deckHandler.DeleteDeck)
					r.Post("/duplicate", deckHandler.DuplicateDeck)
					r.Post("/favorite", deckHandler.ToggleFavorite)
					r.Get("/validation", deckHandler.GetValidation)
					r.Get("/candidates", deckHandler.GetCandidates)
					r.Get("/export", deckHandler.ExportDeck)
					r.Post("/cards", deckHandler.AddCard)
					r.Put("/cards/{cardID}", deckHandler.SetCardQuantity)
					r.Delete("/cards/{cardID}", deckHandler.RemoveCard)
					r.Get("/energy", deckHandler.GetEnergy)
					r.Post("/energy/{energyType}", deckHandler.AddEnergy)
					r.Put("/energy/{energyType}", deckHandler.SetEnergy)
					r.Delete("/energy/{energyType}", deckHandler.RemoveEnergy)
				})
			})
		}

		if s.services.Backups != nil {
			systemHandler := handlers.NewSystemHandler(s.services.Backups)
			r.Route("/system", func(r chi.Router) {
				r.Get("/backups", systemHandler.GetBackups)
				r.Post("/backups", systemHandler.CreateBackup)
			})
		}
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "carddex-api",
		"version": version.Get(),
	})
}
