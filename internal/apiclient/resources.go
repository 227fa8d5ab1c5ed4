package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/athebyme/gomarket-platform/admin-console/pkg/utils"
)

// ListParams описывает параметры листинга ресурса внутреннего API
type ListParams struct {
	Pagination *utils.Pagination
	Filters    map[string]string
}

// ListResult представляет нормализованный результат листинга.
// Эндпоинты внутреннего API исторически возвращают список в одной из трех
// форм: {content: [...]}, {collections: [...]} или просто массив; итог
// хранится либо в page.totalElements, либо в count, либо выводится из длины.
type ListResult struct {
	Items []json.RawMessage `json:"items"`
	Total int64             `json:"total"`
}

// listEnvelope покрывает объединение форм ответов листинга
type listEnvelope struct {
	Content     []json.RawMessage `json:"content"`
	Collections []json.RawMessage `json:"collections"`
	Count       int64             `json:"count"`
	Page        *struct {
		TotalElements int64 `json:"totalElements"`
	} `json:"page"`
}

// normalizeList приводит любой из вариантов ответа листинга к ListResult
func normalizeList(body []byte) (*ListResult, error) {
	trimmed := bytes.TrimSpace(body)

	// Голый массив
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode list body: %w", err)
		}
		return &ListResult{Items: items, Total: int64(len(items))}, nil
	}

	var envelope listEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode list body: %w", err)
	}

	items := envelope.Content
	if items == nil {
		items = envelope.Collections
	}
	if items == nil {
		items = []json.RawMessage{}
	}

	total := int64(0)
	switch {
	case envelope.Page != nil:
		total = envelope.Page.TotalElements
	case envelope.Count > 0:
		total = envelope.Count
	default:
		total = int64(len(items))
	}

	return &ListResult{Items: items, Total: total}, nil
}

// List получает страницу ресурса /admin/<resource> с фильтрами и сортировкой
func (c *Client) List(ctx context.Context, resource string, params ListParams) (*ListResult, error) {
	query := url.Values{}

	if params.Pagination != nil {
		query.Set("page", strconv.Itoa(params.Pagination.Page))
		query.Set("size", strconv.Itoa(params.Pagination.Size))
		if sort := params.Pagination.SortParam(); sort != "" {
			query.Set("sort", sort)
		}
	}

	for field, value := range params.Filters {
		query.Set(field, value)
	}

	resp, err := c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/admin/" + resource,
		Query:  query,
	})
	if err != nil {
		return nil, err
	}

	result, err := normalizeList(resp.Body)
	if err != nil {
		return nil, err
	}

	if params.Pagination != nil {
		params.Pagination.SetTotal(result.Total)
	}

	return result, nil
}

// GetOne получает один объект ресурса по ID
func (c *Client) GetOne(ctx context.Context, resource, id string) (json.RawMessage, error) {
	resp, err := c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   "/admin/" + resource + "/" + id,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Create создает объект ресурса
func (c *Client) Create(ctx context.Context, resource string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/admin/" + resource,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Update обновляет объект ресурса по ID
func (c *Client) Update(ctx context.Context, resource, id string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   "/admin/" + resource + "/" + id,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Delete удаляет объект ресурса по ID
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	_, err := c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   "/admin/" + resource + "/" + id,
	})
	return err
}
