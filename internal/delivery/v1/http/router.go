package http

import (
	_ "github.com/storeline-tech/go-backend/docs" // Импорт сгенерированных файлов
	"github.com/storeline-tech/go-backend/internal/usecase"
	"github.com/storeline-tech/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(generator usecase.Generator, searcher usecase.Searcher, health *HealthHandler) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/health", health.check)

		embHandler := NewEmbeddingHandler(generator, r.logger)
		registerEmbeddingRoutes(v1, embHandler)

		searchHandler := NewSearchHandler(searcher, r.logger)
		registerSearchRoutes(v1, searchHandler)
	})
}

func registerEmbeddingRoutes(router chi.Router, h *EmbeddingHandler) {
	router.Route("/embeddings", func(emb chi.Router) {
		emb.Post("/text", h.generateTextEmbeddings)
		emb.Post("/images", h.generateImageEmbeddings)
	})
}

func registerSearchRoutes(router chi.Router, h *SearchHandler) {
	router.Route("/search", func(s chi.Router) {
		s.Post("/text", h.searchByText)
		s.Post("/image", h.searchByImage)
	})
}
