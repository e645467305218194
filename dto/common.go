package dto

import "attend/response"

// PaginatedResponse is the generic shape for paged replies.
type PaginatedResponse[T any] struct {
	Data       T                   `json:"data"`
	Pagination response.Pagination `json:"pagination"`
}
