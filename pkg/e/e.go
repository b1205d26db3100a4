package e

import "fmt"

var (
	// Ошибки авторизации
	ErrUnauthorized = fmt.Errorf("caller is not allowed to act for this owner")

	// Ошибки конфигурации провайдеров эмбеддингов
	ErrEmbedderNotConfigured   = fmt.Errorf("text embedder is not configured")
	ErrImageModelNotConfigured = fmt.Errorf("image model is not configured")

	// Внутренние ошибки с векторами
	ErrEmptyVector        = fmt.Errorf("embedding vector is empty")
	ErrVectorSizeMismatch = fmt.Errorf("vector size mismatch")

	// 400 Bad Request
	ErrStatusBadRequest = fmt.Errorf("bad request")
	ErrEmptyQuery       = fmt.Errorf("query must not be empty")
	ErrOwnerRequired    = fmt.Errorf("owner id is required")
	ErrProductNotFound  = fmt.Errorf("product not found")
	ErrMissingImage     = fmt.Errorf("image url or image bytes required")
	ErrAmbiguousImage   = fmt.Errorf("provide either image url or image bytes, not both")
	ErrFileTooLarge     = fmt.Errorf("file too large")

	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
