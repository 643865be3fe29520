package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"dropship_admin_v1/internal/config"
)

// ==================== 接口定义 ====================

// StorageProvider 导出文件存储
type StorageProvider interface {
	// Upload 上传文件，返回访问 URL
	Upload(ctx context.Context, data []byte, filename string, contentType string) (url string, err error)

	// Delete 删除文件
	Delete(ctx context.Context, url string) error

	// GetSignedURL 获取签名 URL (私有桶下载)
	GetSignedURL(ctx context.Context, url string, expires time.Duration) (signedURL string, err error)
}

// LocalPublicPrefix 本地存储对外暴露的 URL 前缀，由 router 挂载静态目录
const LocalPublicPrefix = "/exports"

// NewStorageProvider 按配置创建存储
func NewStorageProvider(cfg config.StorageConfig) (StorageProvider, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Storage(cfg)
	case "local", "":
		return NewLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== S3 实现 ====================

// S3Storage AWS S3 / 兼容 S3 协议的对象存储 (Endpoint 非空时使用 path style)
type S3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	endpoint  string
	cdnDomain string
	basePath  string
}

func NewS3Storage(cfg config.StorageConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage.bucket 不能为空")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		cdnDomain: cfg.CDNDomain,
		basePath:  strings.Trim(cfg.BasePath, "./"),
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	key := generateKey(s.basePath, filename)

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", filepath.Base(filename))),
	})
	if err != nil {
		return "", fmt.Errorf("上传S3失败: %w", err)
	}

	return s.publicURL(key), nil
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {
	key := s.extractKey(url)
	if key == "" {
		return fmt.Errorf("无法解析文件路径")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Storage) GetSignedURL(ctx context.Context, url string, expires time.Duration) (string, error) {
	key := s.extractKey(url)
	if key == "" {
		return "", fmt.Errorf("无法解析文件路径")
	}

	presignClient := s3.NewPresignClient(s.client)
	presigned, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}

func (s *S3Storage) baseURL() string {
	switch {
	case s.cdnDomain != "":
		return "https://" + s.cdnDomain
	case s.endpoint != "":
		return s.endpoint + "/" + s.bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s.bucket, s.region)
	}
}

func (s *S3Storage) publicURL(key string) string {
	return s.baseURL() + "/" + key
}

func (s *S3Storage) extractKey(url string) string {
	prefix := s.baseURL() + "/"
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

// ==================== 本地存储 ====================

// LocalStorage 写入本地目录，URL 形如 /exports/2025/01/02/<uuid>_products.csv
type LocalStorage struct {
	basePath  string
	urlPrefix string
}

func NewLocalStorage(cfg config.StorageConfig) (*LocalStorage, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "./exports"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}

	urlPrefix := strings.TrimRight(cfg.Endpoint, "/")
	if urlPrefix == "" {
		urlPrefix = LocalPublicPrefix
	}

	return &LocalStorage{basePath: basePath, urlPrefix: urlPrefix}, nil
}

// BasePath 本地根目录
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

func (s *LocalStorage) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := generateKey("", filename)
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("创建目录失败: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("写入文件失败: %w", err)
	}

	return s.urlPrefix + "/" + key, nil
}

func (s *LocalStorage) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.urlPrefix+"/")
	if !ok || key == "" || strings.Contains(key, "..") {
		return fmt.Errorf("无法解析文件路径")
	}
	err := os.Remove(filepath.Join(s.basePath, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalStorage) GetSignedURL(ctx context.Context, url string, expires time.Duration) (string, error) {
	return url, nil // 本地存储无需签名
}

// ==================== 工具函数 ====================

// generateKey 生成 <base>/<yyyy/mm/dd>/<uuid>_<filename>
func generateKey(basePath, filename string) string {
	name := fmt.Sprintf("%s_%s", uuid.New().String(), path.Base(filepath.ToSlash(filename)))
	datePath := time.Now().Format("2006/01/02")
	if basePath != "" {
		return path.Join(basePath, datePath, name)
	}
	return path.Join(datePath, name)
}
