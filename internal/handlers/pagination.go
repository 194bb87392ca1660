package handlers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
)

const maxPageLimit = 100

var errInvalidPagination = errors.New("invalid pagination params")

// pageWindow is a validated page/limit pair. The zero value means unpaged.
type pageWindow struct {
	Page  int64
	Limit int64
}

// pageFromQuery reads page and limit from the query string. Paging applies
// only when both are supplied.
func pageFromQuery(c *gin.Context) (pageWindow, error) {
	pageStr := strings.TrimSpace(c.Query("page"))
	limitStr := strings.TrimSpace(c.Query("limit"))
	if pageStr == "" || limitStr == "" {
		return pageWindow{}, nil
	}

	page, err := boundedInt("page", pageStr, 1, math.MaxInt32)
	if err != nil {
		return pageWindow{}, err
	}
	limit, err := boundedInt("limit", limitStr, 1, maxPageLimit)
	if err != nil {
		return pageWindow{}, err
	}
	return pageWindow{Page: page, Limit: limit}, nil
}

func boundedInt(name, raw string, lo, hi int64) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < lo || v > hi {
		return 0, errors.Wrap(errInvalidPagination, name)
	}
	return v, nil
}

func (w pageWindow) paged() bool { return w.Limit > 0 }

func (w pageWindow) totalPages(total int64) int64 {
	if !w.paged() || total <= 0 {
		return 0
	}
	return (total + w.Limit - 1) / w.Limit
}

// decorate adds the paging envelope to resp when the window is paged.
func (w pageWindow) decorate(resp gin.H, total int64) gin.H {
	if w.paged() {
		resp["page"] = w.Page
		resp["limit"] = w.Limit
		resp["totalPages"] = w.totalPages(total)
	}
	return resp
}
