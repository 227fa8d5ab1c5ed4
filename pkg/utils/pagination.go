package utils

// Pagination представляет модель пагинации внутреннего API
// Нумерация страниц начинается с нуля, как на стороне сервера
type Pagination struct {
	Page       int    `json:"page"`        // Номер страницы (начиная с 0)
	Size       int    `json:"size"`        // Размер страницы
	TotalItems int64  `json:"total_items"` // Общее количество элементов
	TotalPages int    `json:"total_pages"` // Общее количество страниц
	SortBy     string `json:"sort_by"`     // Поле для сортировки
	SortDesc   bool   `json:"sort_desc"`   // Сортировка по убыванию
	HasNext    bool   `json:"has_next"`    // Есть ли следующая страница
	HasPrev    bool   `json:"has_prev"`    // Есть ли предыдущая страница
}

// NewPagination создает новый экземпляр Pagination с заданными параметрами
func NewPagination(page, size int, sortBy string, sortDesc bool) *Pagination {
	if page < 0 {
		page = 0
	}

	if size < 1 {
		size = 10
	}

	return &Pagination{
		Page:     page,
		Size:     size,
		SortBy:   sortBy,
		SortDesc: sortDesc,
	}
}

// SetTotal устанавливает общее количество элементов и пересчитывает зависимые поля
func (p *Pagination) SetTotal(totalItems int64) {
	p.TotalItems = totalItems
	p.TotalPages = int((totalItems + int64(p.Size) - 1) / int64(p.Size))
	p.HasNext = p.Page+1 < p.TotalPages
	p.HasPrev = p.Page > 0
}

// SortParam возвращает значение параметра sort в формате внутреннего API ("field,asc")
func (p *Pagination) SortParam() string {
	if p.SortBy == "" {
		return ""
	}

	direction := "asc"
	if p.SortDesc {
		direction = "desc"
	}

	return p.SortBy + "," + direction
}

// PagedResult представляет результат запроса с пагинацией
type PagedResult struct {
	Items      interface{} `json:"items"`      // Элементы текущей страницы
	Pagination *Pagination `json:"pagination"` // Информация о пагинации
}

// NewPagedResult создает новый результат с пагинацией
func NewPagedResult(items interface{}, pagination *Pagination) *PagedResult {
	return &PagedResult{
		Items:      items,
		Pagination: pagination,
	}
}
