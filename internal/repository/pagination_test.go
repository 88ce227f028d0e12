package repository

import (
	"math"
	"testing"
)

func TestPageRequestNormalize(t *testing.T) {
	cases := []struct {
		in   PageRequest
		want PageRequest
	}{
		{PageRequest{}, PageRequest{Page: DefaultPage, PageSize: DefaultPageSize}},
		{PageRequest{Page: 3, PageSize: 500}, PageRequest{Page: 3, PageSize: MaxPageSize}},
		{PageRequest{Page: -1, PageSize: 5}, PageRequest{Page: 1, PageSize: 5}},
	}
	for _, tc := range cases {
		if got := tc.in.Normalize(); got != tc.want {
			t.Fatalf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
	if off := (PageRequest{Page: 3, PageSize: 10}).Offset(); off != 20 {
		t.Fatalf("expected offset 20, got %d", off)
	}
}

func TestPageRequestOffsetSaturates(t *testing.T) {
	cases := []struct {
		in   PageRequest
		want int
	}{
		{PageRequest{Page: math.MaxInt / MaxPageSize, PageSize: MaxPageSize}, (math.MaxInt/MaxPageSize - 1) * MaxPageSize},
		{PageRequest{Page: math.MaxInt/MaxPageSize + 2, PageSize: MaxPageSize}, math.MaxInt},
		{PageRequest{Page: math.MaxInt, PageSize: 2}, math.MaxInt},
		{PageRequest{Page: 0, PageSize: 0}, 0},
	}
	for _, tc := range cases {
		if got := tc.in.Offset(); got != tc.want {
			t.Fatalf("Offset(%+v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestPaginateHugePageReturnsEmptyItems(t *testing.T) {
	db := newRepositoryDBForTest(t)
	users := NewUserRepository(db)
	mustCreateUser(t, users, "h-1", "h1@example.com")

	page, err := users.ListPaged(t.Context(), UserListQuery{PageRequest: PageRequest{Page: math.MaxInt, PageSize: MaxPageSize}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 0 || page.Total != 1 || page.Page != math.MaxInt {
		t.Fatalf("expected empty page, got %+v", page)
	}
}

func TestPaginatePastLastPageReturnsEmptyItems(t *testing.T) {
	db := newRepositoryDBForTest(t)
	users := NewUserRepository(db)
	mustCreateUser(t, users, "p-1", "p1@example.com")
	mustCreateUser(t, users, "p-2", "p2@example.com")
	mustCreateUser(t, users, "p-3", "p3@example.com")

	page, err := users.ListPaged(t.Context(), UserListQuery{PageRequest: PageRequest{Page: 2, PageSize: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Items) != 1 || page.Items[0].ExternalID != "p-3" {
		t.Fatalf("unexpected second page %+v", page)
	}

	page, err = users.ListPaged(t.Context(), UserListQuery{PageRequest: PageRequest{Page: 9, PageSize: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 || page.Total != 3 {
		t.Fatalf("expected empty non-nil items past the last page, got %+v", page)
	}
}
