package domain

import (
	"strings"
	"testing"
)

func TestBuildProductSnapshotWithVariants(t *testing.T) {
	p := &Product{
		Name:        "Кроссовки городские",
		Description: "Лёгкие кроссовки для города",
		Category:    "Обувь",
		PriceCents:  999900,
		Stock:       3,
		Variants: []Variant{
			{Title: "42", PriceCents: 599900, Stock: 5},
			{Title: "43", PriceCents: 609900, Stock: 0},
		},
		Images: []string{"a.jpg", "b.jpg"},
	}

	got := BuildProductSnapshot(p)

	want := "Product: Кроссовки городские\n" +
		"Description: Лёгкие кроссовки для города\n" +
		"Category: Обувь\n" +
		"Variants:\n" +
		"- 42: 5999.00 (stock: 5)\n" +
		"- 43: 6099.00 (stock: 0)\n" +
		"2 image(s) available"

	if got != want {
		t.Fatalf("snapshot mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}

	// С вариантами базовая цена в снапшот не попадает
	if strings.Contains(got, "9999.00") {
		t.Fatalf("base price leaked into variant snapshot: %s", got)
	}
}

func TestBuildProductSnapshotWithoutVariants(t *testing.T) {
	p := &Product{
		Name:       "Чайник",
		PriceCents: 159990,
		Stock:      7,
	}

	got := BuildProductSnapshot(p)

	want := "Product: Чайник\n" +
		"Description: \n" +
		"Category: \n" +
		"Price: 1599.90 (stock: 7)\n" +
		"no images available"

	if got != want {
		t.Fatalf("snapshot mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildProductSnapshotDeterministic(t *testing.T) {
	p := &Product{
		Name:     "Лампа",
		Category: "Свет",
		Variants: []Variant{{Title: "тёплый", PriceCents: 45000, Stock: 2}},
		Images:   []string{"lamp.png"},
	}

	first := BuildProductSnapshot(p)
	for i := 0; i < 10; i++ {
		if got := BuildProductSnapshot(p); got != first {
			t.Fatalf("snapshot is not deterministic: run %d differs", i)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{100, "1.00"},
		{59999, "599.99"},
		{60000, "600.00"},
	}

	for _, tc := range cases {
		if got := FormatPrice(tc.cents); got != tc.want {
			t.Errorf("FormatPrice(%d) = %s, want %s", tc.cents, got, tc.want)
		}
	}
}

func TestTotalStock(t *testing.T) {
	noVariants := &Product{Stock: 4}
	if got := noVariants.TotalStock(); got != 4 {
		t.Fatalf("TotalStock without variants = %d, want 4", got)
	}

	withVariants := &Product{
		Stock: 99,
		Variants: []Variant{
			{Stock: 2},
			{Stock: 3},
		},
	}
	if got := withVariants.TotalStock(); got != 5 {
		t.Fatalf("TotalStock with variants = %d, want 5", got)
	}
}
