package domain

import "math"

// Page is one slice of an ordered result set with offset pagination metadata.
// Page numbers are zero-based.
type Page[T any] struct {
	Content       []T
	PageNumber    int
	PageSize      int
	TotalElements int64
	TotalPages    int
	First         bool
	Last          bool
}

// NewPage builds the metadata for content taken at pageNumber/pageSize out of
// totalElements. pageSize must be positive.
func NewPage[T any](content []T, pageNumber, pageSize int, totalElements int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalElements + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page[T]{
		Content:       content,
		PageNumber:    pageNumber,
		PageSize:      pageSize,
		TotalElements: totalElements,
		TotalPages:    totalPages,
		First:         pageNumber == 0,
		Last:          pageNumber >= totalPages-1,
	}
}

// Offset returns the row offset of a zero-based page. It saturates at
// math.MaxInt instead of wrapping, so an absurd page reads as past the end.
func Offset(pageNumber, pageSize int) int {
	if pageNumber <= 0 || pageSize <= 0 {
		return 0
	}
	if pageNumber > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return pageNumber * pageSize
}
