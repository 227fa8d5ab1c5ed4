package models

// Option представляет опцию продукта (например, "Размер" или "Цвет")
// Значения упорядочены и уникальны внутри опции
type Option struct {
	Title  string   `json:"title"`
	Values []string `json:"values"`
}

// VariantPrice представляет одну цену варианта
type VariantPrice struct {
	Amount       int64   `json:"amount"`
	CurrencyCode string  `json:"currencyCode"`
	RegionID     *string `json:"regionId"`
}

// Variant представляет вариант продукта
// При генерации из опций Title - это значения, соединенные " / " в порядке опций
type Variant struct {
	Title             string            `json:"title"`
	SKU               string            `json:"sku"`
	InventoryQuantity int               `json:"inventoryQuantity"`
	ManageInventory   bool              `json:"manageInventory"`
	AllowBackorder    bool              `json:"allowBackorder"`
	Prices            []VariantPrice    `json:"prices"`
	Options           map[string]string `json:"options"`
}
