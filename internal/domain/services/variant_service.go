package services

import (
	"fmt"
	"strings"

	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/models"
)

// VariantService детерминированно разворачивает набор опций продукта
// в полное декартово произведение вариантов
type VariantService struct{}

// NewVariantService создает новый сервис вариантов
func NewVariantService() *VariantService {
	return &VariantService{}
}

// AddOptionValue добавляет значение в опцию, сохраняя порядок.
// Дубликаты отбрасываются на вставке; возвращает false, если значение
// уже присутствует или пустое.
func (s *VariantService) AddOptionValue(option *models.Option, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}

	for _, existing := range option.Values {
		if existing == value {
			return false
		}
	}

	option.Values = append(option.Values, value)
	return true
}

// Generate возвращает полное декартово произведение вариантов для набора опций.
//
// Пустой набор опций или опция без значений дают пустой результат:
// частичная конфигурация не порождает частичного произведения.
// Порядок результата определяется левой сверткой: накопитель пересекается
// со значениями каждой опции в порядке их следования, поэтому заголовок
// каждого варианта - значения, соединенные " / " в порядке опций.
//
// Повторная генерация после правки опций полностью заменяет прежний список;
// ручные правки полей отдельных вариантов при этом теряются - это
// осознанное поведение консоли, а не ошибка.
func (s *VariantService) Generate(options []models.Option) []models.Variant {
	if len(options) == 0 {
		return []models.Variant{}
	}
	for _, option := range options {
		if len(option.Values) == 0 {
			return []models.Variant{}
		}
	}

	combos := [][]string{{}}
	for _, option := range options {
		next := make([][]string, 0, len(combos)*len(option.Values))
		for _, combo := range combos {
			for _, value := range option.Values {
				extended := make([]string, len(combo), len(combo)+1)
				copy(extended, combo)
				next = append(next, append(extended, value))
			}
		}
		combos = next
	}

	variants := make([]models.Variant, 0, len(combos))
	for _, combo := range combos {
		selected := make(map[string]string, len(options))
		for i, option := range options {
			selected[option.Title] = combo[i]
		}

		variants = append(variants, models.Variant{
			Title:             strings.Join(combo, " / "),
			SKU:               "",
			InventoryQuantity: 0,
			ManageInventory:   true,
			AllowBackorder:    false,
			Prices: []models.VariantPrice{
				{Amount: 0, CurrencyCode: "USD", RegionID: nil},
			},
			Options: selected,
		})
	}

	return variants
}

// NewManualVariant создает вариант, добавленный вручную (не из опций)
// position - порядковый номер в текущем списке, считая с единицы
func (s *VariantService) NewManualVariant(position int) models.Variant {
	return models.Variant{
		Title:             fmt.Sprintf("Variant %d", position),
		SKU:               "",
		InventoryQuantity: 0,
		ManageInventory:   true,
		AllowBackorder:    false,
		Prices: []models.VariantPrice{
			{Amount: 0, CurrencyCode: "USD", RegionID: nil},
		},
		Options: map[string]string{},
	}
}
