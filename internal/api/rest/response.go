package rest

// CountData итог анализа в ответе API.
type CountData struct {
	Count       int    `json:"count"`
	TotalPixels int    `json:"total_pixels"`
	UnionPixels int    `json:"union_pixels"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Format      string `json:"format"`
	Image       string `json:"image"` // base64 итогового изображения
}

// CountResponse успешный ответ.
type CountResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    *CountData `json:"data,omitempty"`
}

// ErrorResponse ответ с ошибкой.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
