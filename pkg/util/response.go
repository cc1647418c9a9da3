package util

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
}

func HandleSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Status:  statusCode,
		Message: message,
		Data:    data,
		Meta:    nil,
	})
}

func HandleSuccessMeta(c *gin.Context, statusCode int, message string, data, meta interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Status:  statusCode,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

type ErrorResponse struct {
	Error  string `json:"error,omitempty"`
	Status int    `json:"status"`
}

func HandleError(c *gin.Context, statusCode int, err error) {
	log.Printf("error: %v", err)
	c.JSON(statusCode, ErrorResponse{
		Error:  err.Error(),
		Status: statusCode,
	})
}

// PaginationArgs carries page-based pagination extracted from the request.
type PaginationArgs struct {
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Skip returns the document offset for the current page.
func (p PaginationArgs) Skip() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the list envelope clients page with.
type Pagination struct {
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	TotalResources int64 `json:"totalResources"`
	Limit          int   `json:"limit"`
}

// PaginatedResponse wraps list results as {data, pagination}.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// GetPaginationArgs extracts pagination parameters from the HTTP request.
func GetPaginationArgs(c *gin.Context) PaginationArgs {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return PaginationArgs{
		Page:      page,
		Limit:     limit,
		SortBy:    c.DefaultQuery("sortBy", ""),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}
}

// NewPagination computes the envelope for a total count and the request args.
func NewPagination(total int64, args PaginationArgs) Pagination {
	totalPages := int(total) / args.Limit
	if int(total)%args.Limit != 0 {
		totalPages++
	}

	return Pagination{
		CurrentPage:    args.Page,
		TotalPages:     totalPages,
		TotalResources: total,
		Limit:          args.Limit,
	}
}

func HandlePaginated(c *gin.Context, statusCode int, data interface{}, total int64, args PaginationArgs) {
	c.JSON(statusCode, PaginatedResponse{
		Data:       data,
		Pagination: NewPagination(total, args),
	})
}
