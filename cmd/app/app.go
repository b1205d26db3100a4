package main

import (
	"os"

	"github.com/storeline-tech/go-backend/internal/app"
	config "github.com/storeline-tech/go-backend/internal/cfg"
	"github.com/storeline-tech/go-backend/pkg/logger"
)

//	@title			Product Similarity Search API
//	@version		1.0
//	@description	Генерация эмбеддингов каталога и поиск похожих товаров по тексту и изображению

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
