package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

const uploadProductImagePath = "/admin/uploads/product-image"

// UploadProductImage загружает изображение продукта через multipart-форму
// (поле file, опционально productId) и возвращает URL загруженного файла
func (c *Client) UploadProductImage(ctx context.Context, filename string, file io.Reader, productID string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy file payload: %w", err)
	}

	if productID != "" {
		if err := writer.WriteField("productId", productID); err != nil {
			return "", fmt.Errorf("write productId field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	var result struct {
		URL string `json:"url"`
	}
	err = c.DoJSON(ctx, &Request{
		Method:      http.MethodPost,
		Path:        uploadProductImagePath,
		Body:        buf.Bytes(),
		ContentType: writer.FormDataContentType(),
	}, &result)
	if err != nil {
		return "", err
	}

	return result.URL, nil
}
