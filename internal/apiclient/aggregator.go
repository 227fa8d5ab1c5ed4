package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/models"
)

// Пути консоли агрегатора на внутреннем API (точное соответствие обязательно)
const (
	advertiserSyncPath   = "/admin/aggregator/rakuten/advertisers/sync"
	offerSyncPath        = "/admin/aggregator/rakuten/offers/sync"
	advertisersPath      = "/admin/aggregator/rakuten/advertisers"
	advertiserSearchPath = "/admin/aggregator/rakuten/advertisers/search"
	dummyCleanupPath     = "/admin/dev/seed/dummyjson"
)

// SyncAdvertisers запускает синхронизацию каталога рекламодателей
func (c *Client) SyncAdvertisers(ctx context.Context) (*models.AdvertiserSyncResult, error) {
	var result models.AdvertiserSyncResult
	err := c.DoJSON(ctx, &Request{
		Method: http.MethodPost,
		Path:   advertiserSyncPath,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SyncOffers запускает синхронизацию метаданных офферов
func (c *Client) SyncOffers(ctx context.Context) (*models.OfferSyncResult, error) {
	var result models.OfferSyncResult
	err := c.DoJSON(ctx, &Request{
		Method: http.MethodPost,
		Path:   offerSyncPath,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SyncAdvertiserProducts запускает синхронизацию товаров одного рекламодателя
func (c *Client) SyncAdvertiserProducts(ctx context.Context, advertiserID string) (*models.ProductSyncResult, error) {
	var result models.ProductSyncResult
	err := c.DoJSON(ctx, &Request{
		Method: http.MethodPost,
		Path:   advertisersPath + "/" + advertiserID + "/sync-products",
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CleanupDummyData удаляет тестовые данные dummyjson
func (c *Client) CleanupDummyData(ctx context.Context) (*models.CleanupResult, error) {
	var result models.CleanupResult
	err := c.DoJSON(ctx, &Request{
		Method: http.MethodDelete,
		Path:   dummyCleanupPath,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListAdvertisers получает страницу рекламодателей; непустой query
// переключает запрос на эндпоинт поиска
func (c *Client) ListAdvertisers(ctx context.Context, query string, page, size int) (*models.AdvertiserPage, error) {
	path := advertisersPath
	values := url.Values{}

	if query != "" {
		path = advertiserSearchPath
		values.Set("query", query)
	}

	values.Set("page", strconv.Itoa(page))
	values.Set("size", strconv.Itoa(size))

	var result models.AdvertiserPage
	err := c.DoJSON(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  values,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
