package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAppliesDefaultsAndCaps(t *testing.T) {
	n := Normalize(Params{})
	assert.Equal(t, 1, n.Page)
	assert.Equal(t, DefaultPageSize, n.PageSize)

	n = Normalize(Params{Page: -2, PageSize: 500})
	assert.Equal(t, 1, n.Page)
	assert.Equal(t, MaxPageSize, n.PageSize)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, Params{Page: 3, PageSize: 20}.Offset())
	assert.Equal(t, 0, Params{}.Offset())
}

func TestBuildRoundsTotalPagesUp(t *testing.T) {
	p := Build(Params{Page: 2, PageSize: 10}, 41)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, int64(41), p.TotalItems)
	assert.Equal(t, 5, p.TotalPages)

	p = Build(Params{Page: 1, PageSize: 10}, 40)
	assert.Equal(t, 4, p.TotalPages)

	p = Build(Params{Page: 1, PageSize: 10}, 0)
	assert.Equal(t, 0, p.TotalPages)
}
