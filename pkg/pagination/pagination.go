// Package pagination provides the offset based paging primitives shared by
// every listing endpoint. Handlers parse raw query values into Params and
// repositories apply them through Apply.
package pagination

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// MaxLimit caps an explicit page size; an absent limit leaves the result
// set unbounded.
const MaxLimit = 100

// Params is a normalized page request. Zero value means every row, sorted
// by the entity's default column descending.
type Params struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// Parse builds Params from raw query values. Invalid values fall back to
// defaults instead of failing the request; a missing limit means no limit.
func Parse(rawLimit, rawOffset, rawSortBy, rawSortOrder string) Params {
	var p Params

	if v, err := strconv.Atoi(rawLimit); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if v, err := strconv.Atoi(rawOffset); err == nil && v > 0 {
		p.Offset = v
	}

	p.SortBy = strings.TrimSpace(rawSortBy)
	switch strings.ToLower(strings.TrimSpace(rawSortOrder)) {
	case "asc":
		p.SortOrder = "asc"
	default:
		p.SortOrder = "desc"
	}
	return p
}

// Apply adds ORDER BY plus optional LIMIT/OFFSET to the query. The sort
// column is checked against the caller's allow list so user input never
// reaches the ORDER BY clause directly; unknown columns fall back to
// defaultSort. A non-positive limit means the whole result set.
func Apply(tx *gorm.DB, p Params, defaultSort string, allowed map[string]string) *gorm.DB {
	column := defaultSort
	if mapped, ok := allowed[p.SortBy]; ok {
		column = mapped
	}
	direction := p.SortOrder
	if direction != "asc" {
		direction = "desc"
	}
	tx = tx.Order(column + " " + direction)

	if p.Limit > 0 {
		tx = tx.Limit(p.Limit)
	}
	if p.Offset > 0 {
		tx = tx.Offset(p.Offset)
	}
	return tx
}
