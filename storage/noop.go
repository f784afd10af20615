package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// ErrStorageDisabled возвращается, когда хранилище файлов не сконфигурировано.
var ErrStorageDisabled = errors.New("file storage is not configured")

type noopUploader struct {
	logger *slog.Logger
}

// NewNoopUploader отклоняет загрузки вместо отправки в R2. Используется,
// когда ключи R2 не сконфигурированы (локальная разработка без хранилища).
func NewNoopUploader(logger *slog.Logger) FileUploader {
	return &noopUploader{logger: logger}
}

func (n *noopUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	n.logger.Warn("file upload rejected (no storage configured)", slog.String("key", key))
	return nil, ErrStorageDisabled
}

func (n *noopUploader) Delete(ctx context.Context, key string) error {
	return nil
}

func (n *noopUploader) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "", ErrStorageDisabled
}
