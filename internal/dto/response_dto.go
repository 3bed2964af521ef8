package dto

// APIResponse is the envelope of the lawyer and chat endpoints.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

func OK(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

func List(data any, count int) APIResponse {
	return APIResponse{Success: true, Data: data, Count: &count}
}

func Fail(msg string) APIResponse {
	return APIResponse{Success: false, Error: msg}
}

type ErrorResponse struct {
	Error   bool         `json:"error"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Cache     string `json:"cache"`
}
