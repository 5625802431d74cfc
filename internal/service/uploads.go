package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"jobflow-dashboard/internal/apiclient"
	"jobflow-dashboard/internal/constants"
	"jobflow-dashboard/internal/models"
	"jobflow-dashboard/internal/tracing"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var uploadTracer = otel.Tracer("jobflow-dashboard/service/uploads")

// File 待上传的简历
type File struct {
	Name    string
	Content []byte
	// Type 为空时按内容识别
	Type string
}

// Size 文件字节数
func (f File) Size() int64 {
	return int64(len(f.Content))
}

// ReadFile 从磁盘读取简历，超过 maxBytes 时不读入内容
func ReadFile(path string, maxBytes int64) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("读取文件失败: %w", err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return File{}, ErrFileTooLarge
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("读取文件失败: %w", err)
	}
	return File{Name: filepath.Base(path), Content: content}, nil
}

// storageError 直传对象存储失败
type storageError struct {
	status int
	err    error
}

func (e *storageError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("Direct upload failed: %v", e.err)
	}
	return fmt.Sprintf("Direct upload failed: %d", e.status)
}

func (e *storageError) Unwrap() error { return e.err }

// Uploads 简历上传
type Uploads struct {
	*base
	maxBytes     int64
	allowedTypes []string
	storageHTTP  *http.Client
}

// Upload 先在本地检查大小和类型，再上传
// 优先使用预签名地址直传，直传失败时改用后端代理上传
func (u *Uploads) Upload(ctx context.Context, f File) (models.UploadResult, error) {
	fileType, err := u.check(f)
	if err != nil {
		return models.UploadResult{}, err
	}
	if err := u.requireToken(ctx); err != nil {
		return models.UploadResult{}, err
	}

	result, err := u.presigned(ctx, f, fileType)
	if err == nil {
		return result, nil
	}
	// 4xx 说明请求本身有问题，换一种上传方式也不会成功
	if apiclient.IsClientError(err) || errors.Is(err, context.Canceled) {
		return models.UploadResult{}, err
	}
	u.logger.Warn().Err(err).Str("file", f.Name).Msg("直传失败，改用代理上传")

	return u.proxy(ctx, f, fileType)
}

// check 返回识别出的 MIME 类型
func (u *Uploads) check(f File) (string, error) {
	if u.maxBytes > 0 && f.Size() > u.maxBytes {
		return "", ErrFileTooLarge
	}

	detected := mimetype.Detect(f.Content)
	for _, allowed := range u.allowedTypes {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}
	// 老的 .doc 文件有时只能识别为 OLE 容器，此时参考声明的类型
	if detected.Is("application/x-ole-storage") && f.Type == "application/msword" {
		return f.Type, nil
	}
	return "", ErrUnsupportedFileType
}

func (u *Uploads) presigned(ctx context.Context, f File, fileType string) (models.UploadResult, error) {
	var presign models.PresignResponse
	req := models.PresignRequest{FileName: f.Name, FileType: fileType, FileSize: f.Size()}
	if err := u.client.Do(ctx, http.MethodPost, constants.PathUploadPresign, req, &presign); err != nil {
		return models.UploadResult{}, err
	}

	if err := u.put(ctx, presign.UploadURL, f, fileType); err != nil {
		return models.UploadResult{}, err
	}

	confirm := models.ConfirmRequest{FileID: presign.FileID, FileName: f.Name}
	if err := u.client.Do(ctx, http.MethodPost, constants.PathUploadConfirm, confirm, nil); err != nil {
		return models.UploadResult{}, fmt.Errorf("确认上传失败: %w", err)
	}

	u.logger.Info().Str("file_id", presign.FileID).Msg("直传完成")
	return models.UploadResult{FileURL: presign.FileURL, FileID: presign.FileID, FileName: f.Name}, nil
}

// put 把文件直接 PUT 到对象存储，不携带 bearer token
func (u *Uploads) put(ctx context.Context, uploadURL string, f File, fileType string) error {
	ctx, span := uploadTracer.Start(ctx, "storage.PUT")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.url", tracing.SafeURL(uploadURL)),
		attribute.Int64("file.size", f.Size()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(f.Content))
	if err != nil {
		return &storageError{err: err}
	}
	req.Header.Set("Content-Type", fileType)

	resp, err := u.storageHTTP.Do(req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeStorage)
		return &storageError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serr := &storageError{status: resp.StatusCode}
		tracing.RecordHTTPError(span, serr, resp.StatusCode)
		return serr
	}
	return nil
}

// proxy 通过后端以 multipart 表单上传
func (u *Uploads) proxy(ctx context.Context, f File, fileType string) (models.UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", f.Name)
	if err != nil {
		return models.UploadResult{}, err
	}
	if _, err := part.Write(f.Content); err != nil {
		return models.UploadResult{}, err
	}
	if err := w.WriteField("fileName", f.Name); err != nil {
		return models.UploadResult{}, err
	}
	if err := w.WriteField("fileType", fileType); err != nil {
		return models.UploadResult{}, err
	}
	if err := w.Close(); err != nil {
		return models.UploadResult{}, err
	}

	resp, err := u.client.RequestRaw(ctx, http.MethodPost, constants.PathUploadProxy, &buf, w.FormDataContentType())
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("代理上传失败: %w", err)
	}
	var result models.UploadResult
	if err := apiclient.DecodeJSON(resp, &result); err != nil {
		return models.UploadResult{}, err
	}
	u.logger.Info().Str("file_id", result.FileID).Msg("代理上传完成")
	return result, nil
}
