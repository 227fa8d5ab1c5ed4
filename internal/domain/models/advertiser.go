package models

import "time"

// AdvertiserSummary представляет рекламодателя партнерской сети
type AdvertiserSummary struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	WebsiteURL   string     `json:"websiteUrl,omitempty"`
	ProgramID    int64      `json:"programId"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
}

// AdvertiserPage представляет страницу списка рекламодателей внутреннего API
type AdvertiserPage struct {
	Content       []AdvertiserSummary `json:"content"`
	TotalElements int64               `json:"totalElements"`
	TotalPages    int                 `json:"totalPages"`
	Number        int                 `json:"number"`
}

// AdvertiserSyncResult - итог синхронизации каталога рекламодателей
type AdvertiserSyncResult struct {
	TotalAdvertisers int `json:"totalAdvertisers"`
	Created          int `json:"created"`
	Updated          int `json:"updated"`
}

// OfferSyncResult - итог синхронизации метаданных офферов
type OfferSyncResult struct {
	TotalOffers      int `json:"totalOffers"`
	MerchantsUpdated int `json:"merchantsUpdated"`
}

// ProductSyncResult - итог синхронизации товаров одного рекламодателя
type ProductSyncResult struct {
	TotalItems        int `json:"totalItems"`
	TotalPages        int `json:"totalPages"`
	CreatedProducts   int `json:"createdProducts"`
	UpdatedProducts   int `json:"updatedProducts"`
	CreatedOffers     int `json:"createdOffers"`
	UpdatedOffers     int `json:"updatedOffers"`
	DeactivatedOffers int `json:"deactivatedOffers"`
}

// CleanupResult - итог удаления тестовых данных dummyjson
type CleanupResult struct {
	DeletedMerchants int `json:"deletedMerchants"`
	DeletedOffers    int `json:"deletedOffers"`
	DeletedProducts  int `json:"deletedProducts"`
	DeletedBrands    int `json:"deletedBrands"`
}
