package domain

import "math"

// CosineSimilarity вычисляет косинусную близость двух векторов:
// скалярное произведение, делённое на произведение L2-норм. Диапазон [-1, 1].
// При разной длине векторы усекаются до короткой; несовпадение длин —
// признак дрейфа пространства эмбеддингов, вызывающая сторона обязана его
// залогировать. Нулевая норма даёт близость 0.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
