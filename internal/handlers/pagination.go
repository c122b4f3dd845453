package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// pageParams хранит нормализованные параметры пагинации
type pageParams struct {
	Page  int
	Limit int
}

// parsePagination читает page/limit из query и приводит их к допустимым значениям
func parsePagination(c echo.Context) pageParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return pageParams{Page: page, Limit: limit}
}

func (p pageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// totalPages считает число страниц для total записей при размере страницы limit
func totalPages(total, limit int) int {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// paginationPayload собирает блок пагинации для ответа.
// total всегда отражает отфильтрованную выборку, а не всю таблицу.
func paginationPayload(total int, p pageParams) map[string]interface{} {
	return map[string]interface{}{
		"page":        p.Page,
		"limit":       p.Limit,
		"total":       total,
		"total_pages": totalPages(total, p.Limit),
	}
}

// parseID читает целочисленный параметр пути
func parseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
