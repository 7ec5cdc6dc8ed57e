package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// BucketStats 存储桶统计信息
type BucketStats struct {
	Bucket       string
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
	ByKind       map[string]int64 // object count per media kind
}

// List 列出存储桶中的对象
func (s *MinioStore) List(ctx context.Context, prefix string, recursive bool) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	}) {
		if object.Err != nil {
			return nil, classify(object.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
		})
	}
	return objects, nil
}

// Stats 获取存储桶的统计信息
func (s *MinioStore) Stats(ctx context.Context, prefix string) (*BucketStats, error) {
	objects, err := s.List(ctx, prefix, true)
	if err != nil {
		return nil, err
	}
	return Summarize(s.bucket, objects), nil
}

// Summarize folds a listing into bucket statistics.
func Summarize(bucket string, objects []ObjectInfo) *BucketStats {
	stats := &BucketStats{Bucket: bucket, ByKind: make(map[string]int64)}
	for _, obj := range objects {
		stats.TotalObjects++
		stats.TotalSize += obj.Size
		if obj.LastModified.After(stats.LastModified) {
			stats.LastModified = obj.LastModified
		}
		stats.ByKind[KindOf(obj.Key)]++
	}
	return stats
}

// KindOf 从文件名推断内容类型
func KindOf(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".mp3", ".wav", ".flac", ".m4a", ".ogg":
		return "audio"
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "image"
	case ".mp4", ".avi", ".mov", ".mkv":
		return "video"
	default:
		return "other"
	}
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
