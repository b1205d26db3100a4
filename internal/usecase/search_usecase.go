package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/storeline-tech/go-backend/internal/domain"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/storeline-tech/go-backend/pkg/logger"
)

const (
	defaultTextLimit      = 10
	defaultTextThreshold  = 0.7
	defaultImageLimit     = 5
	defaultImageThreshold = 0.5
)

// SearchUC реализует поиск похожих товаров по тексту и по изображению.
// Текстовое и визуальное пространства разделены структурно: каждый метод
// читает только свой репозиторий и никогда не сравнивает вектора между
// пространствами.
type SearchUC struct {
	textRepo      TextEmbeddingRepository
	imageRepo     ImageEmbeddingRepository
	cacheRepo     CacheRepository
	catalogRepo   CatalogRepository
	textEmbedder  TextEmbedder
	imageEmbedder ImageEmbedder
	fetcher       ImageFetcher
	logger        logger.Logger
}

func NewSearchUC(
	textRepo TextEmbeddingRepository,
	imageRepo ImageEmbeddingRepository,
	cacheRepo CacheRepository,
	catalogRepo CatalogRepository,
	textEmbedder TextEmbedder,
	imageEmbedder ImageEmbedder,
	fetcher ImageFetcher,
	logger logger.Logger,
) *SearchUC {
	return &SearchUC{
		textRepo:      textRepo,
		imageRepo:     imageRepo,
		cacheRepo:     cacheRepo,
		catalogRepo:   catalogRepo,
		textEmbedder:  textEmbedder,
		imageEmbedder: imageEmbedder,
		fetcher:       fetcher,
		logger:        logger,
	}
}

// SearchByText возвращает до limit товаров с косинусной близостью не ниже
// порога, по убыванию близости. Пустой результат — валидный исход, не ошибка.
func (u *SearchUC) SearchByText(ctx context.Context, req *SearchTextReq) (*SearchRes, error) {
	const op = "SearchUC.SearchByText"

	if req.OwnerID <= 0 {
		return nil, e.Wrap(op, e.ErrOwnerRequired)
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, e.Wrap(op, e.ErrEmptyQuery)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultTextLimit
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = defaultTextThreshold
	}

	vectors, err := u.textEmbedder.EmbedTexts(ctx, []string{req.Query})
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyVector)
	}

	matches, err := u.textRepo.Query(ctx, req.OwnerID, vectors[0], limit, threshold)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, textResultFromMatch(m))
	}
	sortResults(results)

	return &SearchRes{Results: results}, nil
}

// SearchByImage ищет похожие товары по изображению (URL или сырые байты).
// Основной путь — нативный запрос похожести хранилища; при его сбое
// запускается ручной перебор всех строк владельца с тем же порогом и
// той же формулой близости.
func (u *SearchUC) SearchByImage(ctx context.Context, req *SearchImageReq) (*SearchRes, error) {
	const op = "SearchUC.SearchByImage"

	if req.OwnerID <= 0 {
		return nil, e.Wrap(op, e.ErrOwnerRequired)
	}

	hasURL := strings.TrimSpace(req.ImageURL) != ""
	hasData := len(req.ImageData) > 0
	if !hasURL && !hasData {
		return nil, e.Wrap(op, e.ErrMissingImage)
	}
	if hasURL && hasData {
		return nil, e.Wrap(op, e.ErrAmbiguousImage)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultImageLimit
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = defaultImageThreshold
	}

	data := req.ImageData
	if hasURL {
		var err error
		data, err = u.fetcher.Fetch(ctx, req.ImageURL)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	vec, err := u.imageEmbedder.VectorizeImage(ctx, data)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(vec.Vector) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyVector)
	}

	fallback := false
	matches, err := u.imageRepo.Query(ctx, req.OwnerID, vec.Vector, limit, threshold)
	if err != nil {
		u.logger.Warnf("native similarity query failed, falling back to manual scan: %v", err)

		matches, err = u.manualScan(ctx, req.OwnerID, vec.Vector, limit, threshold)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		fallback = true
	}

	results, err := u.hydrateImageMatches(ctx, req.OwnerID, matches)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &SearchRes{Results: results, Fallback: fallback}, nil
}

// manualScan перебирает все строки визуальных эмбеддингов владельца и считает
// близость вручную. Результат логически эквивалентен нативному запросу:
// тот же порог, та же формула, тот же порядок.
func (u *SearchUC) manualScan(ctx context.Context, ownerID int64, query []float32, limit int, threshold float64) ([]domain.Match, error) {
	rows, err := u.imageRepo.FetchByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	matches := make([]domain.Match, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if len(row.Vector) == 0 {
			continue
		}

		// Перечитанная на границе страницы точка не должна занимать
		// слот лимита дважды
		if _, ok := seen[row.ID]; ok {
			continue
		}
		seen[row.ID] = struct{}{}

		if len(row.Vector) != len(query) {
			// Несовпадение размерностей — признак смены модели; строка
			// сравнивается по усечённой длине, но сигнал не глотается
			u.logger.Warnf("%v for embedding %s: stored %d, query %d", e.ErrVectorSizeMismatch, row.ID, len(row.Vector), len(query))
		}

		score := domain.CosineSimilarity(query, row.Vector)
		if score < threshold {
			continue
		}

		matches = append(matches, domain.Match{Score: score, Payload: row.Payload})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}

		pi, pj := payloadInt64(matches[i].Payload, "product_id"), payloadInt64(matches[j].Payload, "product_id")
		if pi != pj {
			return pi < pj
		}

		return payloadString(matches[i].Payload, "image_url") < payloadString(matches[j].Payload, "image_url")
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

// hydrateImageMatches дополняет совпадения отображаемыми полями товара:
// сначала из кэша, промахи — из каталога с фоновым дозаполнением кэша.
// Строки без живого товара в каталоге отбрасываются как осиротевшие.
func (u *SearchUC) hydrateImageMatches(ctx context.Context, ownerID int64, matches []domain.Match) ([]SearchResult, error) {
	if len(matches) == 0 {
		return []SearchResult{}, nil
	}

	ids := make([]int64, 0, len(matches))
	seen := make(map[int64]struct{}, len(matches))
	for _, m := range matches {
		id := payloadInt64(m.Payload, "product_id")
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	infoMap, err := u.cacheRepo.GetProducts(ctx, ownerID, ids)
	if err != nil {
		u.logger.Warnf("product cache read failed: %v", err)
		infoMap = map[int64]ProductInfo{}
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := infoMap[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		fromDB, err := u.catalogRepo.GetProductsInfo(ctx, ownerID, missing)
		if err != nil {
			return nil, err
		}

		for _, info := range fromDB {
			infoMap[info.ID] = info
		}

		// Фоновое дозаполнение кэша
		go func(products []ProductInfo) {
			bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := u.cacheRepo.SetProducts(bgCtx, ownerID, products); err != nil {
				u.logger.Warnf("failed to cache products in background: %v", err)
			}
		}(fromDB)
	}

	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		id := payloadInt64(m.Payload, "product_id")
		info, ok := infoMap[id]
		if !ok {
			u.logger.Debugf("orphaned image embedding for product %d, dropping from results", id)
			continue
		}

		results = append(results, SearchResult{
			ProductID:       id,
			Name:            info.Name,
			Description:     info.Description,
			Category:        info.Category,
			PriceCents:      info.PriceCents,
			Stock:           info.Stock,
			Images:          info.Images,
			Score:           m.Score,
			MatchedImageURL: payloadString(m.Payload, "image_url"),
		})
	}
	sortResults(results)

	return results, nil
}

// sortResults упорядочивает результаты по убыванию близости с детерминированным
// разрешением ничьих по идентификатору товара и совпавшему изображению.
func sortResults(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].ProductID != results[j].ProductID {
			return results[i].ProductID < results[j].ProductID
		}
		return results[i].MatchedImageURL < results[j].MatchedImageURL
	})
}
