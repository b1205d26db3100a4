package http

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/storeline-tech/go-backend/internal/domain"
	"github.com/storeline-tech/go-backend/internal/infrastructure"
	"github.com/storeline-tech/go-backend/internal/usecase"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/storeline-tech/go-backend/pkg/logger"
)

type SearchHandler struct {
	searcher usecase.Searcher
	logger   logger.Logger
}

func NewSearchHandler(searcher usecase.Searcher, logger logger.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, logger: logger}
}

type searchTextRequest struct {
	OwnerID   int64   `json:"owner_id"`
	Query     string  `json:"query"`
	Limit     int     `json:"limit"`
	Threshold float64 `json:"threshold"`
}

type searchResultItem struct {
	ProductID       int64    `json:"product_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Price           string   `json:"price"`
	Stock           int32    `json:"stock"`
	Images          []string `json:"images"`
	Score           float64  `json:"score"`
	MatchedImageURL string   `json:"matched_image_url,omitempty"`
}

type searchResponse struct {
	Success  bool               `json:"success"`
	Message  string             `json:"message,omitempty"`
	Results  []searchResultItem `json:"results"`
	Fallback bool               `json:"fallback,omitempty"`
}

// searchByText
//
//	@Summary		Поиск похожих товаров по тексту
//	@Description	Ищет товары владельца, семантически близкие к запросу
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			request	body		searchTextRequest	true	"Параметры поиска"
//	@Success		200		{object}	searchResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/search/text [post]
func (h *SearchHandler) searchByText(w http.ResponseWriter, r *http.Request) {
	var req searchTextRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.searcher.SearchByText(r.Context(), &usecase.SearchTextReq{
		OwnerID:   req.OwnerID,
		Query:     req.Query,
		Limit:     req.Limit,
		Threshold: req.Threshold,
	})
	if err != nil {
		h.logger.Warnf("text search failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSearchResponse(res))
}

type searchImageRequest struct {
	OwnerID   int64   `json:"owner_id"`
	ImageURL  string  `json:"image_url"`
	Limit     int     `json:"limit"`
	Threshold float64 `json:"threshold"`
}

// searchByImage
//
//	@Summary		Поиск похожих товаров по изображению
//	@Description	Принимает multipart с файлом image либо JSON с image_url. Ошибки поиска отдаются конвертом success=false
//	@Tags			search
//	@Accept			multipart/form-data
//	@Accept			json
//	@Produce		json
//	@Param			owner_id	formData	integer	false	"ID владельца каталога"
//	@Param			image		formData	file	false	"Изображение-запрос"
//	@Param			limit		formData	integer	false	"Максимум результатов"
//	@Param			threshold	formData	number	false	"Порог похожести"
//	@Success		200			{object}	searchResponse
//	@Router			/search/image [post]
func (h *SearchHandler) searchByImage(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseImageSearchRequest(w, r)
	if err != nil {
		h.logger.Warnf("image search rejected: %s", err.Error())
		writeSearchFailure(w, err)
		return
	}

	res, err := h.searcher.SearchByImage(r.Context(), req)
	if err != nil {
		h.logger.Warnf("image search failed: %s", err.Error())
		writeSearchFailure(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSearchResponse(res))
}

// parseImageSearchRequest принимает обе формы запроса: multipart с файлом
// изображения либо JSON с image_url.
func (h *SearchHandler) parseImageSearchRequest(w http.ResponseWriter, r *http.Request) (*usecase.SearchImageReq, error) {
	const (
		maxTotalRequestSize = 20 << 20
		maxMemory           = 16 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, e.ErrStatusBadRequest
		}

		req := &usecase.SearchImageReq{
			OwnerID:   parseFormInt64(r, "owner_id"),
			ImageURL:  r.FormValue("image_url"),
			Limit:     int(parseFormInt64(r, "limit")),
			Threshold: parseFormFloat(r, "threshold"),
		}

		files := r.MultipartForm.File["image"]
		if len(files) > 0 {
			data, mime, err := readImageFile(files[0])
			if err != nil {
				return nil, err
			}
			if !infrastructure.IsSupportedImageMIME(mime) {
				return nil, e.ErrUnsupportedMediaType
			}
			req.ImageData = data
		}

		return req, nil
	}

	var body searchImageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, e.ErrStatusBadRequest
	}

	return &usecase.SearchImageReq{
		OwnerID:   body.OwnerID,
		ImageURL:  body.ImageURL,
		Limit:     body.Limit,
		Threshold: body.Threshold,
	}, nil
}

// writeSearchFailure отдаёт отказ поиска конвертом success=false со статусом 200:
// витрина показывает сообщение пользователю, не различая классы ошибок.
func writeSearchFailure(w http.ResponseWriter, err error) {
	_, msg := ToHTTPResponse(err)
	WriteSuccess(w, http.StatusOK, searchResponse{
		Success: false,
		Message: msg,
		Results: []searchResultItem{},
	})
}

func toSearchResponse(res *usecase.SearchRes) searchResponse {
	items := make([]searchResultItem, 0, len(res.Results))
	for _, result := range res.Results {
		items = append(items, searchResultItem{
			ProductID:       result.ProductID,
			Name:            result.Name,
			Description:     result.Description,
			Category:        result.Category,
			Price:           domain.FormatPrice(result.PriceCents),
			Stock:           result.Stock,
			Images:          result.Images,
			Score:           result.Score,
			MatchedImageURL: result.MatchedImageURL,
		})
	}

	return searchResponse{
		Success:  true,
		Results:  items,
		Fallback: res.Fallback,
	}
}

func parseFormInt64(r *http.Request, field string) int64 {
	v, err := strconv.ParseInt(r.FormValue(field), 10, 64)
	if err != nil {
		return 0
	}

	return v
}

func parseFormFloat(r *http.Request, field string) float64 {
	v, err := strconv.ParseFloat(r.FormValue(field), 64)
	if err != nil {
		return 0
	}

	return v
}

func readImageFile(fh *multipart.FileHeader) ([]byte, string, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if len(data) == 0 {
		return nil, "", e.ErrMissingImage
	}

	mime := http.DetectContentType(data[:min(len(data), 512)])
	return data, mime, nil
}
