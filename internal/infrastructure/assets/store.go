// Package assets 提供生成产物的本地文件存储
package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"canvas-ai-api/pkg/metrics"
)

// mimeExtensions 产物支持的 MIME 类型与扩展名
var mimeExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Store 本地文件存储
// 文件以随机 ID 命名，通过 /api/file/{id} 对外暴露
type Store struct {
	dir string
}

// NewStore 创建文件存储，目录不存在时创建
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create file store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save 写入产物内容，返回生成的文件 ID
func (s *Store) Save(data []byte, mimeType string) (string, error) {
	ext, ok := mimeExtensions[mimeType]
	if !ok {
		return "", fmt.Errorf("unsupported mime type: %s", mimeType)
	}

	fileID := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	path := filepath.Join(s.dir, fileID)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", fileID, err)
	}

	metrics.ArtifactBytesWritten.WithLabelValues(mimeType).Add(float64(len(data)))
	return fileID, nil
}

// Open 打开文件读取流
func (s *Store) Open(fileID string) (io.ReadCloser, error) {
	path, err := s.resolve(fileID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", fileID, err)
	}
	return f, nil
}

// Path 返回文件的磁盘路径
func (s *Store) Path(fileID string) (string, error) {
	return s.resolve(fileID)
}

// Exists 检查文件是否存在
func (s *Store) Exists(fileID string) bool {
	path, err := s.resolve(fileID)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// resolve 校验文件 ID 并拼接路径，拒绝目录穿越
func (s *Store) resolve(fileID string) (string, error) {
	if fileID == "" || strings.ContainsAny(fileID, "/\\") || strings.Contains(fileID, "..") {
		return "", fmt.Errorf("invalid file id: %q", fileID)
	}
	return filepath.Join(s.dir, fileID), nil
}

// MimeTypeByExt 根据文件 ID 的扩展名推断 MIME 类型
func MimeTypeByExt(fileID string) string {
	ext := strings.ToLower(filepath.Ext(fileID))
	for mime, e := range mimeExtensions {
		if e == ext {
			return mime
		}
	}
	if ext == ".jpeg" {
		return "image/jpeg"
	}
	return "application/octet-stream"
}
