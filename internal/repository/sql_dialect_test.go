package repository

import "testing"

func TestLikeOperatorByDialect(t *testing.T) {
	if got := likeOperatorByDialect("sqlite"); got != "LIKE" {
		t.Fatalf("sqlite operator want LIKE got %s", got)
	}
	if got := likeOperatorByDialect("postgres"); got != "ILIKE" {
		t.Fatalf("postgres operator want ILIKE got %s", got)
	}
}

func TestBuildLikeConditionByDialect(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("postgres", []string{"slug", " ", "title"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	want := "slug ILIKE ? OR title ILIKE ?"
	if condition != want {
		t.Fatalf("condition want %s got %s", want, condition)
	}
}

func TestProductListKeywordSearch(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	createTestProduct(t, repo, "linen-shirt", 1, true)
	createTestProduct(t, repo, "canvas-tote", 2, true)

	products, total, err := repo.List(ProductListFilter{OnlyActive: true, Search: "LINEN"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(products) != 1 || products[0].Slug != "linen-shirt" {
		t.Fatalf("search want [linen-shirt] got total=%d %+v", total, products)
	}
}
