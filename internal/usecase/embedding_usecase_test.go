package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/storeline-tech/go-backend/internal/domain"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeProducts(ownerID int64, n int) []domain.Product {
	products := make([]domain.Product, 0, n)
	for i := 1; i <= n; i++ {
		products = append(products, domain.Product{
			ID:      int64(i),
			OwnerID: ownerID,
			Name:    fmt.Sprintf("product %d", i),
			Status:  domain.ProductStatusActive,
		})
	}

	return products
}

func newTextUC(catalog *fakeCatalog, accounts *fakeAccounts, repo *fakeTextRepo, embedder *fakeTextEmbedder) (*EmbeddingUC, *fakeRunLog, *fakeProducer) {
	runLog := &fakeRunLog{}
	producer := &fakeProducer{}
	uc := NewEmbeddingUC(catalog, accounts, repo, embedder, runLog, producer, nopLogger{}, 0)

	return uc, runLog, producer
}

func TestGenerateTextEmbeddingsOwnerRequired(t *testing.T) {
	uc, _, _ := newTextUC(&fakeCatalog{}, &fakeAccounts{}, &fakeTextRepo{}, &fakeTextEmbedder{})

	_, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 0})

	require.ErrorIs(t, err, e.ErrOwnerRequired)
}

func TestGenerateTextEmbeddingsUnauthorized(t *testing.T) {
	uc, _, _ := newTextUC(&fakeCatalog{}, &fakeAccounts{canManage: false}, &fakeTextRepo{}, &fakeTextEmbedder{})

	_, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 2})

	require.ErrorIs(t, err, e.ErrUnauthorized)
}

func TestGenerateTextEmbeddingsDelegatedManager(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(2, 3)}
	repo := &fakeTextRepo{}
	uc, _, _ := newTextUC(catalog, &fakeAccounts{canManage: true}, repo, &fakeTextEmbedder{})

	res, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 2})

	require.NoError(t, err)
	assert.Equal(t, 3, res.ProcessedCount)
}

func TestGenerateTextEmbeddingsFirstPageClearsOwner(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(1, 7)}
	repo := &fakeTextRepo{}
	uc, _, _ := newTextUC(catalog, &fakeAccounts{}, repo, &fakeTextEmbedder{})

	res, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, repo.deleteOwner, "first page must clear all owner rows")
	assert.Equal(t, 7, res.ProcessedCount)
	assert.Equal(t, int64(7), res.TotalProducts)
	assert.False(t, res.HasMore)
	assert.Equal(t, 7, res.NextOffset)
	assert.Len(t, repo.upserted, 7)
}

func TestGenerateTextEmbeddingsContinuationDoesNotClear(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(1, 120)}
	repo := &fakeTextRepo{}
	uc, _, _ := newTextUC(catalog, &fakeAccounts{}, repo, &fakeTextEmbedder{})

	res, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1, Offset: 50})

	require.NoError(t, err)
	assert.Zero(t, repo.deleteOwner, "continuation page must append without clearing")
	assert.Equal(t, 50, res.ProcessedCount)
	assert.True(t, res.HasMore)
	assert.Equal(t, 100, res.NextOffset)
}

func TestGenerateTextEmbeddingsResetClearsMidway(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(1, 120)}
	repo := &fakeTextRepo{}
	uc, _, _ := newTextUC(catalog, &fakeAccounts{}, repo, &fakeTextEmbedder{})

	_, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1, Offset: 50, Reset: true})

	require.NoError(t, err)
	assert.Equal(t, 1, repo.deleteOwner, "reset must clear even on a non-zero offset")
}

func TestGenerateTextEmbeddingsLastPageMath(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(1, 120)}
	repo := &fakeTextRepo{}
	uc, _, _ := newTextUC(catalog, &fakeAccounts{}, repo, &fakeTextEmbedder{})

	res, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1, Offset: 100})

	require.NoError(t, err)
	assert.Equal(t, 20, res.ProcessedCount)
	assert.Equal(t, int64(120), res.TotalProducts)
	assert.False(t, res.HasMore)
	assert.Equal(t, 120, res.NextOffset)
}

func TestGenerateTextEmbeddingsPartialBatchFailure(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(1, 5)}
	repo := &fakeTextRepo{}
	embedder := &fakeTextEmbedder{fn: func(inputs []string) ([][]float32, error) {
		out := make([][]float32, len(inputs))
		for i := range out {
			out[i] = []float32{1, 0}
		}
		out[2] = nil // провайдер не вернул вектор для третьего входа

		return out, nil
	}}
	uc, _, _ := newTextUC(catalog, &fakeAccounts{}, repo, embedder)

	res, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1})

	require.NoError(t, err, "a failed item must not fail the page")
	assert.Equal(t, 4, res.ProcessedCount)
	assert.Len(t, repo.upserted, 4)
}

func TestGenerateTextEmbeddingsBatchErrorSkipsBatch(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(1, 3)}
	repo := &fakeTextRepo{}
	embedder := &fakeTextEmbedder{fn: func(inputs []string) ([][]float32, error) {
		return nil, errors.New("rate limited")
	}}
	uc, _, _ := newTextUC(catalog, &fakeAccounts{}, repo, embedder)

	res, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1})

	require.NoError(t, err, "provider hiccup must degrade to a skip")
	assert.Zero(t, res.ProcessedCount)
}

func TestGenerateTextEmbeddingsMissingKeyFatal(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(1, 3)}
	embedder := &fakeTextEmbedder{fn: func(inputs []string) ([][]float32, error) {
		return nil, e.ErrEmbedderNotConfigured
	}}
	uc, _, _ := newTextUC(catalog, &fakeAccounts{}, &fakeTextRepo{}, embedder)

	_, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1})

	require.ErrorIs(t, err, e.ErrEmbedderNotConfigured)
}

func TestGenerateTextEmbeddingsUpsertErrorFatal(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(1, 3)}
	repo := &fakeTextRepo{upsertErr: errors.New("storage down")}
	uc, _, _ := newTextUC(catalog, &fakeAccounts{}, repo, &fakeTextEmbedder{})

	_, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1})

	require.Error(t, err)
}

func TestGenerateTextEmbeddingsSingleProduct(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(1, 10)}
	repo := &fakeTextRepo{}
	uc, _, _ := newTextUC(catalog, &fakeAccounts{}, repo, &fakeTextEmbedder{})

	pid := int64(4)
	res, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1, ProductID: &pid})

	require.NoError(t, err)
	assert.Equal(t, 1, repo.deleteProduct, "product scope must clear only that product")
	assert.Zero(t, repo.deleteOwner)
	assert.Equal(t, 1, res.ProcessedCount)
	assert.Equal(t, int64(1), res.TotalProducts)
	assert.False(t, res.HasMore)
	assert.Len(t, repo.upserted, 1)
}

func TestGenerateTextEmbeddingsSingleProductNotFound(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(1, 2)}
	uc, _, _ := newTextUC(catalog, &fakeAccounts{}, &fakeTextRepo{}, &fakeTextEmbedder{})

	pid := int64(99)
	_, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1, ProductID: &pid})

	require.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestGenerateTextEmbeddingsRecordsRun(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(1, 2)}
	uc, runLog, producer := newTextUC(catalog, &fakeAccounts{}, &fakeTextRepo{}, &fakeTextEmbedder{})

	_, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1})

	require.NoError(t, err)
	require.Len(t, runLog.runs, 1)
	require.Len(t, producer.events, 1)
	assert.Equal(t, RunKindText, runLog.runs[0].Kind)
	assert.Equal(t, 2, runLog.runs[0].Processed)
}

func TestGenerateTextEmbeddingsRunLogFailureIsSoft(t *testing.T) {
	catalog := &fakeCatalog{products: activeProducts(1, 1)}
	runLog := &fakeRunLog{err: errors.New("pg down")}
	producer := &fakeProducer{err: errors.New("broker down")}
	uc := NewEmbeddingUC(catalog, &fakeAccounts{}, &fakeTextRepo{}, &fakeTextEmbedder{}, runLog, producer, nopLogger{}, 0)

	res, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1})

	require.NoError(t, err, "bookkeeping failures must not fail the pipeline")
	assert.Equal(t, 1, res.ProcessedCount)
}

func TestGenerateTextEmbeddingsPayloadDenormalized(t *testing.T) {
	catalog := &fakeCatalog{products: []domain.Product{{
		ID:          7,
		OwnerID:     1,
		Name:        "Стул",
		Category:    "Мебель",
		PriceCents:  250000,
		Stock:       4,
		Status:      domain.ProductStatusActive,
		Images:      []string{"chair.jpg"},
	}}}
	repo := &fakeTextRepo{}
	uc, _, _ := newTextUC(catalog, &fakeAccounts{}, repo, &fakeTextEmbedder{})

	_, err := uc.GenerateTextEmbeddings(context.Background(), &GenerateTextReq{CallerID: 1, OwnerID: 1})

	require.NoError(t, err)
	require.Len(t, repo.upserted, 1)

	payload := repo.upserted[0].Payload
	assert.Equal(t, int64(1), payload["owner_id"])
	assert.Equal(t, int64(7), payload["product_id"])
	assert.Equal(t, "Стул", payload["name"])
	assert.Equal(t, int64(250000), payload["price_cents"])
	assert.Equal(t, int64(4), payload["stock"])
	assert.Equal(t, int64(1), payload["image_count"])
	assert.NotEmpty(t, repo.upserted[0].ID, "point ID must be assigned")
	assert.NotEmpty(t, repo.upserted[0].Vector)
}

func TestClampPageSize(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 50},
		{-1, 50},
		{49, 50},
		{50, 50},
		{200, 200},
		{500, 500},
		{501, 500},
	}

	for _, tc := range cases {
		if got := clampPageSize(tc.in); got != tc.want {
			t.Errorf("clampPageSize(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
