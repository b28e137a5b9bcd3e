package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// GetPaginationParams reads ?page= and ?per_page=, falling back to page 1 and
// DefaultPerPage. per_page above MaxPerPage is capped rather than reset.
func GetPaginationParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(DefaultPerPage)))
	if err != nil || pageSize < 1 {
		pageSize = DefaultPerPage
	}
	if pageSize > MaxPerPage {
		pageSize = MaxPerPage
	}

	return page, pageSize
}
