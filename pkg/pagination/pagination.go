package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultSize = 10
	MaxSize     = 100
)

// Page is a 1-based page request
type Page struct {
	Number int
	Size   int
}

// New normalizes a page request: number defaults to 1, size to DefaultSize and is capped at MaxSize
func New(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Page{Number: number, Size: size}
}

// FromQuery reads the page and size query parameters
func FromQuery(c *gin.Context) Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	return New(number, size)
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Result is one page of items with the total count of matches
type Result[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

func NewResult[T any](items []T, total int64, p Page) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items, Total: total, Page: p.Number, Size: p.Size}
}
