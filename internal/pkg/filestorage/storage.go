package filestorage

import (
	"context"
	"io"
)

// FileStorage stores uploaded achievement certificates.
type FileStorage interface {
	// Save writes the content under subPath and returns the accessible
	// path or URL. filename is only used for its extension.
	Save(ctx context.Context, subPath, filename string, content io.Reader) (string, error)

	// Delete removes a stored file. Deleting a missing file is not an error.
	Delete(fileURL string) error

	// GetFullPath returns the filesystem path for a stored file URL.
	GetFullPath(fileURL string) string
}

// AllowedCertificateExtensions are the accepted certificate upload types.
var AllowedCertificateExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}
