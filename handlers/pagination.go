package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

type PaginationParams struct {
	Limit  int
	Offset int
}

type ListResponse struct {
	Data interface{} `json:"data"`
}

func ParsePagination(c *gin.Context) PaginationParams {
	p := PaginationParams{Limit: DefaultLimit}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			p.Limit = l
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o > 0 {
			p.Offset = o
		}
	}

	return p
}
