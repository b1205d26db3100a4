package http

import (
	"net/http"

	"github.com/storeline-tech/go-backend/internal/usecase"
	"github.com/storeline-tech/go-backend/pkg/logger"
)

type EmbeddingHandler struct {
	generator usecase.Generator
	logger    logger.Logger
}

func NewEmbeddingHandler(generator usecase.Generator, logger logger.Logger) *EmbeddingHandler {
	return &EmbeddingHandler{generator: generator, logger: logger}
}

type generateTextRequest struct {
	OwnerID   int64  `json:"owner_id"`
	ProductID *int64 `json:"product_id,omitempty"`
	Offset    int    `json:"offset"`
	PageSize  int    `json:"page_size"`
	Reset     bool   `json:"reset"`
}

type generateTextResponse struct {
	ProcessedCount int   `json:"processed_count"`
	TotalProducts  int64 `json:"total_products"`
	HasMore        bool  `json:"has_more"`
	NextOffset     int   `json:"next_offset"`
}

// generateTextEmbeddings
//
//	@Summary		Генерация текстовых эмбеддингов каталога
//	@Description	Строит текстовые эмбеддинги активных товаров владельца постранично либо для одного товара
//	@Tags			embeddings
//	@Accept			json
//	@Produce		json
//	@Param			X-Account-ID	header		string				true	"ID аккаунта вызывающего"
//	@Param			request			body		generateTextRequest	true	"Параметры генерации"
//	@Success		200				{object}	generateTextResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		403				{object}	ErrorResponse
//	@Router			/embeddings/text [post]
func (h *EmbeddingHandler) generateTextEmbeddings(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req generateTextRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.generator.GenerateTextEmbeddings(r.Context(), &usecase.GenerateTextReq{
		CallerID:  caller,
		OwnerID:   req.OwnerID,
		ProductID: req.ProductID,
		Offset:    req.Offset,
		PageSize:  req.PageSize,
		Reset:     req.Reset,
	})
	if err != nil {
		h.logger.Warnf("text embeddings generation failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, generateTextResponse{
		ProcessedCount: res.ProcessedCount,
		TotalProducts:  res.TotalProducts,
		HasMore:        res.HasMore,
		NextOffset:     res.NextOffset,
	})
}

type generateImagesRequest struct {
	OwnerID   int64 `json:"owner_id"`
	ProductID int64 `json:"product_id"`
}

type generateImagesResponse struct {
	ProcessedImages int `json:"processed_images"`
	TotalImages     int `json:"total_images"`
}

// generateImageEmbeddings
//
//	@Summary		Генерация визуальных эмбеддингов товара
//	@Description	Строит эмбеддинги всех изображений одного товара
//	@Tags			embeddings
//	@Accept			json
//	@Produce		json
//	@Param			X-Account-ID	header		string					true	"ID аккаунта вызывающего"
//	@Param			request			body		generateImagesRequest	true	"Параметры генерации"
//	@Success		200				{object}	generateImagesResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		403				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Router			/embeddings/images [post]
func (h *EmbeddingHandler) generateImageEmbeddings(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req generateImagesRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.generator.GenerateImageEmbeddings(r.Context(), &usecase.GenerateImagesReq{
		CallerID:  caller,
		OwnerID:   req.OwnerID,
		ProductID: req.ProductID,
	})
	if err != nil {
		h.logger.Warnf("image embeddings generation failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, generateImagesResponse{
		ProcessedImages: res.ProcessedImages,
		TotalImages:     res.TotalImages,
	})
}
