package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_Defaults(t *testing.T) {
	p := Parse("", "", "", "")

	assert.Equal(t, 0, p.Limit)
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, "", p.SortBy)
	assert.Equal(t, "desc", p.SortOrder)
}

func TestParse_ClampsAndNormalizes(t *testing.T) {
	p := Parse("500", "30", "nome", "ASC")

	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 30, p.Offset)
	assert.Equal(t, "nome", p.SortBy)
	assert.Equal(t, "asc", p.SortOrder)
}

func TestParse_IgnoresGarbage(t *testing.T) {
	p := Parse("abc", "-5", "", "sideways")

	assert.Equal(t, 0, p.Limit)
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, "desc", p.SortOrder)
}
