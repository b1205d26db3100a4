package usecase

import "context"

// TextEmbedder — клиент текстового эмбеддера.
// Результат выровнен по входам; nil-элемент означает, что провайдер не
// вернул вектор для этого входа (остальные входы при этом валидны).
type TextEmbedder interface {
	EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error)
}

// ImageEmbedder — клиент сервиса извлечения визуальных признаков.
type ImageEmbedder interface {
	VectorizeImage(ctx context.Context, data []byte) (*VectorizeRes, error)
}

// ImageFetcher загружает байты изображения по ссылке
// (HTTP(S) URL или ключ объекта в S3-хранилище).
type ImageFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// EventProducer публикует событие о завершённом прогоне пайплайна.
type EventProducer interface {
	PublishRun(ctx context.Context, run *EmbeddingRun) error
}
