package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", VersionOf("migrations/001_init.sql"))
	assert.Equal(t, "002", VersionOf("002_add_indexes_for_reviews.sql"))
	assert.Equal(t, "003.sql", VersionOf("003.sql"))
}
