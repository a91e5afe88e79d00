package models

// ErrorResponse is the JSON body for every non-2xx API response
type ErrorResponse struct {
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// NormalizePage clamps page/size the same way for every paginated endpoint
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}

// AllModels lists every persisted entity in dependency order for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&Class{},
		&Subject{},
		&Chapter{},
		&Content{},
		&Quiz{},
		&QuizQuestion{},
		&QuizAttempt{},
		&Notice{},
		&StudentProgress{},
		&StudentClass{},
		&ParentChild{},
	}
}
