// storage/storage.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// MaxObjectSize mirrors the wizard's per-photo cap.
const MaxObjectSize = 10 << 20

var (
	ErrTooLarge      = errors.New("object exceeds the 10 MB limit")
	ErrNotConfigured = errors.New("blob store not configured")
)

// Store is the blob object store the submission orchestration uploads photo
// evidence to. Upload returns the publicly resolvable URL of the object.
type Store interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
}

// CheckinPhotoPath builds the storage key for a check-in photo:
// {protocolId}/{photoType}.{ext}
func CheckinPhotoPath(protocolID, photoType, filename string) string {
	return fmt.Sprintf("%s/%s%s", protocolID, photoType, ext(filename))
}

// CheckoutPhotoPath builds the storage key for a check-out photo:
// devolucao/{devolucaoId}/{photoType}.{ext}
func CheckoutPhotoPath(devolucaoID, photoType, filename string) string {
	return fmt.Sprintf("devolucao/%s/%s%s", devolucaoID, photoType, ext(filename))
}

func ext(filename string) string {
	e := strings.ToLower(path.Ext(filename))
	if e == "" {
		return ".jpg"
	}
	return e
}
