package common

import (
	"math"
	"net/http"
)

type SuccessResponse struct {
	Status  int         `json:"status"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type ErrorResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}, message string) SuccessResponse {
	return SuccessResponse{
		Status:  http.StatusOK,
		Success: true,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(message string, data interface{}, status int) ErrorResponse {
	return ErrorResponse{
		Status:  status,
		Message: message,
		Success: false,
		Data:    data,
	}
}

type PaginationResult struct {
	Status      int         `json:"status"`
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	Data        interface{} `json:"data"`
	Count       int64       `json:"count"`
	CurrentPage int         `json:"currentPage"`
	LastPage    int         `json:"lastPage"`
	NextPage    int         `json:"nextPage"`
	PrevPage    int         `json:"prevPage"`
}

func PaginateResponse(data interface{}, total int64, page, limit int, message string) PaginationResult {
	lastPage := int(math.Ceil(float64(total) / float64(limit)))

	nextPage := page + 1
	if nextPage > lastPage {
		nextPage = 0
	}
	prevPage := page - 1
	if prevPage < 1 {
		prevPage = 0
	}

	return PaginationResult{
		Status:      http.StatusOK,
		Success:     true,
		Message:     message,
		Data:        data,
		Count:       total,
		CurrentPage: page,
		LastPage:    lastPage,
		NextPage:    nextPage,
		PrevPage:    prevPage,
	}
}
