package usecase

import "time"

// Типы прогонов генерации эмбеддингов
const (
	RunKindText  = "text"
	RunKindImage = "image"
)

// GENERATION

// GenerateTextReq — запрос на генерацию текстовых эмбеддингов каталога.
// ProductID задаёт одиночный скоуп; без него пайплайн идёт по страницам
// активных товаров владельца.
type GenerateTextReq struct {
	CallerID  int64
	OwnerID   int64
	ProductID *int64
	Offset    int
	PageSize  int
	Reset     bool
}

// GenerateTextRes — результат одной страницы генерации.
// Вызывающая сторона продолжает цикл, передавая NextOffset, пока HasMore не станет false.
type GenerateTextRes struct {
	ProcessedCount int
	TotalProducts  int64
	HasMore        bool
	NextOffset     int
}

// GenerateImagesReq — запрос на генерацию визуальных эмбеддингов одного товара.
type GenerateImagesReq struct {
	CallerID  int64
	OwnerID   int64
	ProductID int64
}

// GenerateImagesRes — результат генерации по изображениям товара.
type GenerateImagesRes struct {
	ProcessedImages int
	TotalImages     int
}

// SEARCH

// SearchTextReq — запрос текстового поиска похожих товаров.
type SearchTextReq struct {
	OwnerID   int64
	Query     string
	Limit     int
	Threshold float64
}

// SearchImageReq — запрос поиска по изображению: ровно один из
// ImageURL и ImageData должен быть задан.
type SearchImageReq struct {
	OwnerID   int64
	ImageURL  string
	ImageData []byte
	Limit     int
	Threshold float64
}

// SearchRes — ранжированный список совпадений.
// Fallback показывает, что результат получен ручным перебором.
type SearchRes struct {
	Results  []SearchResult
	Fallback bool
}

// SearchResult — одно совпадение с денормализованными полями для отображения.
type SearchResult struct {
	ProductID       int64
	Name            string
	Description     string
	Category        string
	PriceCents      int64
	Stock           int32
	Images          []string
	Score           float64
	MatchedImageURL string
}

// ProductInfo — DTO с отображаемыми полями товара для гидрации результатов.
type ProductInfo struct {
	ID          int64
	Name        string
	Description string
	Category    string
	PriceCents  int64
	Stock       int32
	Images      []string
}

// INFRASTRUCTURE

// VectorizeRes — результат векторизации одного изображения.
type VectorizeRes struct {
	Vector       []float32
	ModelVersion string
}

// EmbeddingRun — запись журнала об одном прогоне пайплайна.
type EmbeddingRun struct {
	ID         int64
	OwnerID    int64
	ProductID  *int64
	Kind       string
	Processed  int
	Total      int
	StartedAt  time.Time
	FinishedAt time.Time
}

// MAPPERS

func NewVectorizeRes(vector []float32, modelVersion string) *VectorizeRes {
	return &VectorizeRes{
		Vector:       vector,
		ModelVersion: modelVersion,
	}
}

func NewEmbeddingRun(ownerID int64, productID *int64, kind string, processed, total int, startedAt time.Time) *EmbeddingRun {
	return &EmbeddingRun{
		OwnerID:    ownerID,
		ProductID:  productID,
		Kind:       kind,
		Processed:  processed,
		Total:      total,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
	}
}
