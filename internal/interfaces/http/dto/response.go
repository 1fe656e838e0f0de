package dto

import "github.com/erp/marketsync/internal/domain/shared"

// Response is the envelope every endpoint answers with. Exactly one of Data
// and Error is set.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo carries a stable code, a readable message and, for rejected
// parameters, one detail per field.
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one rejected parameter
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta locates a page within a listing
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewPageResponse answers with data, the already converted items of page
func NewPageResponse[T any](data any, page shared.Paginated[T]) Response {
	return Response{
		Success: true,
		Data:    data,
		Meta:    &Meta{Total: page.Total, Page: page.Page, PageSize: page.PageSize, TotalPages: page.TotalPages},
	}
}

func NewErrorResponse(code, message, requestID string, details ...ValidationDetail) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message, RequestID: requestID, Details: details}}
}
