// Package qdrant хранит embedding-векторы товаров. Текстовое и визуальное
// пространства живут в разных коллекциях и никогда не пересекаются в запросах.
package qdrant

import (
	"context"

	"github.com/storeline-tech/go-backend/internal/domain"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

// scrollBatchSize — размер страницы при полном переборе коллекции
const scrollBatchSize = 256

// pointsRepo — общая механика работы с одной коллекцией точек.
type pointsRepo struct {
	client *qdrant.Client
	name   string
}

// upsert сохраняет или обновляет embedding-векторы в коллекции.
func (p *pointsRepo) upsert(ctx context.Context, embeddings []domain.Embedding) error {
	points := make([]*qdrant.PointStruct, 0, len(embeddings))
	for _, emb := range embeddings {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(emb.ID),
			Vectors: qdrant.NewVectors(emb.Vector...),
			Payload: qdrant.NewValueMap(emb.Payload),
		})
	}

	_, err := p.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: p.name,
		Points:         points,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// deleteByFilter удаляет все точки, подходящие под фильтр.
func (p *pointsRepo) deleteByFilter(ctx context.Context, filter *qdrant.Filter) error {
	_, err := p.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: p.name,
		Points:         qdrant.NewPointsSelectorFilter(filter),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// query выполняет поиск ближайших точек владельца с отсечкой по score.
func (p *pointsRepo) query(ctx context.Context, ownerID int64, vector []float32, limit int, threshold float64) ([]domain.Match, error) {
	points, err := p.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: p.name,
		Query:          qdrant.NewQuery(vector...),
		Filter:         ownerFilter(ownerID),
		Limit:          qdrant.PtrOf(uint64(limit)),
		ScoreThreshold: qdrant.PtrOf(float32(threshold)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	matches := make([]domain.Match, 0, len(points))
	for _, point := range points {
		matches = append(matches, domain.Match{
			Score:   float64(point.GetScore()),
			Payload: payloadToMap(point.GetPayload()),
		})
	}

	return matches, nil
}

// scrollByOwner постранично вычитывает все точки владельца вместе
// с векторами и payload.
func (p *pointsRepo) scrollByOwner(ctx context.Context, ownerID int64) ([]domain.Embedding, error) {
	var result []domain.Embedding
	var offset *qdrant.PointId

	// Курсор строится из ID последней точки страницы, а offset у scroll
	// инклюзивный: первая точка каждой следующей страницы уже прочитана
	// и отсеивается по seen
	seen := make(map[string]struct{})

	for {
		points, err := p.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: p.name,
			Filter:         ownerFilter(ownerID),
			Limit:          qdrant.PtrOf(uint32(scrollBatchSize)),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		if len(points) == 0 {
			break
		}

		for _, point := range points {
			id := point.GetId().GetUuid()
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			result = append(result, domain.Embedding{
				ID:      id,
				Vector:  point.GetVectors().GetVector().GetData(),
				Payload: payloadToMap(point.GetPayload()),
			})
		}

		if len(points) < scrollBatchSize {
			break
		}
		offset = points[len(points)-1].GetId()
	}

	return result, nil
}

func ownerFilter(ownerID int64) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchInt("owner_id", ownerID),
		},
	}
}

func ownerProductFilter(ownerID, productID int64) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatchInt("owner_id", ownerID),
			qdrant.NewMatchInt("product_id", productID),
		},
	}
}

// payloadToMap разворачивает protobuf-представление payload в обычную map.
func payloadToMap(payload map[string]*qdrant.Value) domain.Payload {
	out := make(domain.Payload, len(payload))
	for key, value := range payload {
		out[key] = valueToAny(value)
	}

	return out
}

func valueToAny(value *qdrant.Value) any {
	switch kind := value.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		list := make([]any, 0, len(items))
		for _, item := range items {
			list = append(list, valueToAny(item))
		}
		return list
	case *qdrant.Value_StructValue:
		fields := kind.StructValue.GetFields()
		m := make(map[string]any, len(fields))
		for k, v := range fields {
			m[k] = valueToAny(v)
		}
		return m
	default:
		return nil
	}
}
