package domain

import "time"

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding представляет один вектор с привязанным payload
type Embedding struct {
	ID      string
	Vector  []float32
	Payload Payload
}

func NewEmbedding(id string, vector []float32, payload Payload) *Embedding {
	return &Embedding{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

// Match — результат запроса похожести к хранилищу векторов
type Match struct {
	Score   float64
	Payload Payload
}

// NewTextPayload собирает payload текстового эмбеддинга товара.
// Payload денормализует отображаемые поля, чтобы результаты текстового
// поиска не требовали обращения к каталогу.
func NewTextPayload(p *Product, inputLen int) Payload {
	variants := make([]any, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, map[string]any{
			"id":           v.ID,
			"title":        v.Title,
			"price_cents":  v.PriceCents,
			"stock":        int64(v.Stock),
			"is_available": v.IsAvailable,
		})
	}

	images := make([]any, 0, len(p.Images))
	for _, url := range p.Images {
		images = append(images, url)
	}

	return Payload{
		"owner_id":     p.OwnerID,
		"product_id":   p.ID,
		"name":         p.Name,
		"description":  p.Description,
		"category":     p.Category,
		"price_cents":  p.PriceCents,
		"stock":        int64(p.TotalStock()),
		"images":       images,
		"variants":     variants,
		"input_len":    int64(inputLen),
		"image_count":  int64(len(p.Images)),
		"generated_at": time.Now().UTC().UnixNano(),
	}
}

// NewImagePayload собирает payload визуального эмбеддинга одного изображения.
func NewImagePayload(ownerID, productID int64, imageURL, modelVersion string) Payload {
	return Payload{
		"owner_id":      ownerID,
		"product_id":    productID,
		"image_url":     imageURL,
		"model_version": modelVersion,
		"generated_at":  time.Now().UTC().UnixNano(),
	}
}
