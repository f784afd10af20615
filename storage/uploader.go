package storage

import (
	"context"
	"io"
	"time"
)

type UploadResult struct {
	Key  string
	ETag string
}

// FileUploader хранит бинарные вложения (чеки об оплате, логотипы команд).
// Ключи приватные: доступ наружу выдаётся только через presigned URL с
// ограниченным сроком жизни.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
