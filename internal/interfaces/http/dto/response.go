package dto

// Response is the JSON envelope of every API answer. Data is set on
// success, Error on failure and Meta on paged listings.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo carries one of the ErrCode* codes
type ErrorInfo struct {
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	RequestID string        `json:"request_id,omitempty"`
	Details   []FieldDetail `json:"details,omitempty"`
}

// FieldDetail names a rejected field and why
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta describes the page a listing answer holds
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// PageMeta computes paging metadata; a non-positive pageSize counts as one
func PageMeta(total int64, page, pageSize int) *Meta {
	size := int64(max(pageSize, 1))
	return &Meta{
		Total:      total,
		Page:       page,
		PageSize:   int(size),
		TotalPages: int((total + size - 1) / size),
	}
}

// NewSuccessResponse wraps data in a success envelope
func NewSuccessResponse(data any) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta wraps one page of a listing
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	return Response{Success: true, Data: data, Meta: PageMeta(total, page, pageSize)}
}

// NewErrorResponseWithRequestID builds a failure envelope tagged with the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message, RequestID: requestID}}
}

// NewValidationErrorResponse builds a 400 envelope listing the rejected fields
func NewValidationErrorResponse(message, requestID string, details []FieldDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}
