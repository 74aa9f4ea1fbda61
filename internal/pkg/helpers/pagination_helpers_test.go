package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page.Items)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 5, page.Pagination.TotalItems)

	last := Paginate(items, 3, 2)
	assert.Equal(t, []int{5}, last.Items)

	beyond := Paginate(items, 9, 2)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 3, beyond.Pagination.CurrentPage)

	empty := Paginate([]int{}, 1, 10)
	assert.Equal(t, 1, empty.Pagination.TotalPages)
}

func TestParseOptionalDate(t *testing.T) {
	d, err := ParseOptionalDate("")
	assert.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseOptionalDate("2025-02-28")
	assert.NoError(t, err)
	assert.Equal(t, 28, d.Day())

	_, err = ParseOptionalDate("28/02/2025")
	assert.Error(t, err)
}
