package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/storeline-tech/go-backend/internal/domain"
	"github.com/storeline-tech/go-backend/pkg/e"
)

// nopLogger глушит логи в тестах.
type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)           {}
func (nopLogger) Infof(format string, args ...any)            {}
func (nopLogger) Warnf(format string, args ...any)            {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

type fakeCatalog struct {
	products []domain.Product // активные товары владельца в каноническом порядке
	infos    []ProductInfo
	infosErr error
}

func (f *fakeCatalog) CountActiveProducts(ctx context.Context, ownerID int64) (int64, error) {
	return int64(len(f.products)), nil
}

func (f *fakeCatalog) GetActiveProducts(ctx context.Context, ownerID int64, offset, limit int) ([]domain.Product, error) {
	if offset >= len(f.products) {
		return nil, nil
	}

	end := offset + limit
	if end > len(f.products) {
		end = len(f.products)
	}

	return f.products[offset:end], nil
}

func (f *fakeCatalog) GetProduct(ctx context.Context, ownerID, productID int64) (*domain.Product, error) {
	for i := range f.products {
		if f.products[i].ID == productID && f.products[i].OwnerID == ownerID {
			return &f.products[i], nil
		}
	}

	return nil, e.ErrProductNotFound
}

func (f *fakeCatalog) GetProductsInfo(ctx context.Context, ownerID int64, ids []int64) ([]ProductInfo, error) {
	if f.infosErr != nil {
		return nil, f.infosErr
	}

	var out []ProductInfo
	for _, id := range ids {
		for _, info := range f.infos {
			if info.ID == id {
				out = append(out, info)
			}
		}
	}

	return out, nil
}

type fakeAccounts struct {
	canManage bool
	err       error
}

func (f *fakeAccounts) CanManage(ctx context.Context, callerID, ownerID int64) (bool, error) {
	return f.canManage, f.err
}

type fakeTextRepo struct {
	mu sync.Mutex

	upserted       []domain.Embedding
	deleteOwner    int
	deleteProduct  int
	upsertErr      error
	queryMatches   []domain.Match
	queryErr       error
	queryLimit     int
	queryThreshold float64
}

func (f *fakeTextRepo) Upsert(ctx context.Context, embeddings []domain.Embedding) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, embeddings...)

	return nil
}

func (f *fakeTextRepo) DeleteByOwner(ctx context.Context, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteOwner++

	return nil
}

func (f *fakeTextRepo) DeleteByProduct(ctx context.Context, ownerID, productID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteProduct++

	return nil
}

func (f *fakeTextRepo) Query(ctx context.Context, ownerID int64, vector []float32, limit int, threshold float64) ([]domain.Match, error) {
	f.queryLimit = limit
	f.queryThreshold = threshold

	return f.queryMatches, f.queryErr
}

type fakeImageRepo struct {
	mu sync.Mutex

	upserted       []domain.Embedding
	deleteProduct  int
	upsertErr      error
	upsertFailOn   string // image_url, на котором Upsert падает
	queryMatches   []domain.Match
	queryErr       error
	queryLimit     int
	queryThreshold float64
	queryFromRows  bool // Query ранжирует rows как нативный движок похожести
	rows           []domain.Embedding
	fetchErr       error
}

func (f *fakeImageRepo) Upsert(ctx context.Context, embeddings []domain.Embedding) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return f.upsertErr
	}
	for _, emb := range embeddings {
		if url, ok := emb.Payload["image_url"].(string); ok && url == f.upsertFailOn {
			return errors.New("upsert failed")
		}
	}
	f.upserted = append(f.upserted, embeddings...)

	return nil
}

func (f *fakeImageRepo) DeleteByProduct(ctx context.Context, ownerID, productID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteProduct++

	return nil
}

func (f *fakeImageRepo) Query(ctx context.Context, ownerID int64, vector []float32, limit int, threshold float64) ([]domain.Match, error) {
	f.queryLimit = limit
	f.queryThreshold = threshold

	if f.queryErr != nil {
		return nil, f.queryErr
	}

	if !f.queryFromRows {
		return f.queryMatches, nil
	}

	matches := make([]domain.Match, 0, len(f.rows))
	for _, row := range f.rows {
		score := domain.CosineSimilarity(vector, row.Vector)
		if score < threshold {
			continue
		}
		matches = append(matches, domain.Match{Score: score, Payload: row.Payload})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}

func (f *fakeImageRepo) FetchByOwner(ctx context.Context, ownerID int64) ([]domain.Embedding, error) {
	return f.rows, f.fetchErr
}

type fakeCache struct {
	mu sync.Mutex

	hits   map[int64]ProductInfo
	getErr error
	stored []ProductInfo
}

func (f *fakeCache) GetProducts(ctx context.Context, ownerID int64, ids []int64) (map[int64]ProductInfo, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}

	out := make(map[int64]ProductInfo)
	for _, id := range ids {
		if info, ok := f.hits[id]; ok {
			out[id] = info
		}
	}

	return out, nil
}

func (f *fakeCache) SetProducts(ctx context.Context, ownerID int64, products []ProductInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, products...)

	return nil
}

type fakeRunLog struct {
	mu   sync.Mutex
	runs []*EmbeddingRun
	err  error
}

func (f *fakeRunLog) Create(ctx context.Context, run *EmbeddingRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.runs = append(f.runs, run)

	return nil
}

type fakeProducer struct {
	mu     sync.Mutex
	events []*EmbeddingRun
	err    error
}

func (f *fakeProducer) PublishRun(ctx context.Context, run *EmbeddingRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, run)

	return nil
}

// fakeTextEmbedder отдаёт управление хуку; по умолчанию — вектор на каждый вход.
type fakeTextEmbedder struct {
	fn func(inputs []string) ([][]float32, error)
}

func (f *fakeTextEmbedder) EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error) {
	if f.fn != nil {
		return f.fn(inputs)
	}

	out := make([][]float32, len(inputs))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}

	return out, nil
}

type fakeImageEmbedder struct {
	fn func(data []byte) (*VectorizeRes, error)
}

func (f *fakeImageEmbedder) VectorizeImage(ctx context.Context, data []byte) (*VectorizeRes, error) {
	if f.fn != nil {
		return f.fn(data)
	}

	return NewVectorizeRes([]float32{1, 0}, "v1"), nil
}

type fakeFetcher struct {
	fn func(ref string) ([]byte, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if f.fn != nil {
		return f.fn(ref)
	}

	return []byte("image-bytes"), nil
}
