package usecase

import "github.com/storeline-tech/go-backend/internal/domain"

// Хелперы извлечения типизированных значений из payload вектора.
// Числа приходят из хранилища как int64 или float64 в зависимости от клиента.

func payloadInt64(p domain.Payload, key string) int64 {
	switch v := p[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func payloadString(p domain.Payload, key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

func payloadStringSlice(p domain.Payload, key string) []string {
	raw, ok := p[key].([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	return out
}

// textResultFromMatch собирает результат текстового поиска из
// денормализованного payload, без обращения к каталогу.
func textResultFromMatch(m domain.Match) SearchResult {
	return SearchResult{
		ProductID:   payloadInt64(m.Payload, "product_id"),
		Name:        payloadString(m.Payload, "name"),
		Description: payloadString(m.Payload, "description"),
		Category:    payloadString(m.Payload, "category"),
		PriceCents:  payloadInt64(m.Payload, "price_cents"),
		Stock:       int32(payloadInt64(m.Payload, "stock")),
		Images:      payloadStringSlice(m.Payload, "images"),
		Score:       m.Score,
	}
}
