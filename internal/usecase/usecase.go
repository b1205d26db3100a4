package usecase

import "context"

// Generator — пайплайны генерации эмбеддингов каталога.
type Generator interface {
	GenerateTextEmbeddings(ctx context.Context, req *GenerateTextReq) (*GenerateTextRes, error)
	GenerateImageEmbeddings(ctx context.Context, req *GenerateImagesReq) (*GenerateImagesRes, error)
}

// Searcher — поиск похожих товаров по тексту и по изображению.
type Searcher interface {
	SearchByText(ctx context.Context, req *SearchTextReq) (*SearchRes, error)
	SearchByImage(ctx context.Context, req *SearchImageReq) (*SearchRes, error)
}

// generator объединяет оба пайплайна под одним интерфейсом доставки.
type generator struct {
	*EmbeddingUC
	*ImageEmbeddingUC
}

func NewGenerator(text *EmbeddingUC, images *ImageEmbeddingUC) Generator {
	return &generator{EmbeddingUC: text, ImageEmbeddingUC: images}
}
