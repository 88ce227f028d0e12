package repository

import (
	"math"

	"gorm.io/gorm"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize fills defaults and clamps the page size to MaxPageSize.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset saturates at math.MaxInt instead of overflowing for huge pages.
func (p PageRequest) Offset() int {
	p = p.Normalize()
	if p.Page-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PageSize
}

type PageResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// paginate counts the rows matched by query, then loads one ordered page.
// Items is never nil so an empty page encodes as [].
func paginate[T any](query *gorm.DB, req PageRequest, order string) (PageResult[T], error) {
	req = req.Normalize()
	out := PageResult[T]{Items: []T{}, Page: req.Page, PageSize: req.PageSize}
	if err := query.Session(&gorm.Session{}).Count(&out.Total).Error; err != nil {
		return PageResult[T]{}, err
	}
	if out.Total > 0 {
		out.TotalPages = int((out.Total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	if int64(req.Offset()) >= out.Total {
		return out, nil
	}
	if err := query.Order(order).Offset(req.Offset()).Limit(req.PageSize).Find(&out.Items).Error; err != nil {
		return PageResult[T]{}, err
	}
	return out, nil
}
