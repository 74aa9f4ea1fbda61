package filestorage

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "")
	require.NoError(t, err)

	url, err := ls.Save(context.Background(), "certificates/s1", "award.PDF", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "uploads/certificates/s1/"))
	assert.True(t, strings.HasSuffix(url, ".pdf"))

	data, err := os.ReadFile(ls.GetFullPath(url))
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))

	require.NoError(t, ls.Delete(url))
	_, err = os.Stat(ls.GetFullPath(url))
	assert.True(t, os.IsNotExist(err))

	// second delete is a no-op
	assert.NoError(t, ls.Delete(url))
}

func TestLocalStorageRejectsUnknownExtension(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "https://files.example.com/")
	require.NoError(t, err)

	_, err = ls.Save(context.Background(), "", "script.sh", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestLocalStorageBaseURL(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "https://files.example.com/")
	require.NoError(t, err)

	url, err := ls.Save(context.Background(), "c", "a.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://files.example.com/c/"))
	assert.True(t, strings.HasPrefix(ls.GetFullPath(url), dir))
}
