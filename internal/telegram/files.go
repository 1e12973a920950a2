package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/go-telegram/bot"

	"github.com/set-night/jewelbot/internal/domain"
)

// DownloadFile downloads a file from Telegram by file ID, refusing anything
// larger than maxBytes.
func DownloadFile(ctx context.Context, b *bot.Bot, fileID string, maxBytes int64) ([]byte, string, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}
	if maxBytes > 0 && int64(file.FileSize) > maxBytes {
		return nil, "", fmt.Errorf("file %s is %d bytes, limit %d", fileID, file.FileSize, maxBytes)
	}

	fileURL := b.FileDownloadLink(file)

	req, err := http.NewRequestWithContext(ctx, "GET", fileURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", fmt.Errorf("read file data: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("file %s exceeds %d bytes", fileID, maxBytes)
	}

	return data, file.FilePath, nil
}

// DownloadAttachment fetches a Telegram file into an in-memory handle ready
// for staging. An empty name is taken from the Telegram file path.
func DownloadAttachment(ctx context.Context, b *bot.Bot, fileID, name, mimeType string, maxBytes int64) (*domain.MemoryFile, error) {
	data, filePath, err := DownloadFile(ctx, b, fileID, maxBytes)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = path.Base(filePath)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return domain.NewMemoryFile(name, mimeType, data), nil
}
