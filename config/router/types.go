package router

import (
	"github.com/gin-gonic/gin"
)

type RequestContext = gin.Context

type MiddlewareFunc = gin.HandlerFunc

type ServiceResult struct {
	StatusCode int    `json:"code"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	// Count is rendered only for collection responses.
	Count *int `json:"count,omitempty"`
	// ErrorDetail carries the raw cause and is rendered only when set.
	ErrorDetail string `json:"error,omitempty"`
}

// PageResult is what a page handler returns: a named template and its data.
type PageResult struct {
	StatusCode int
	Template   string
	Data       any
}

type RateLimitResponse struct {
	Limit      int    `json:"limit"`
	Window     string `json:"window"`
	RetryAfter string `json:"retry_after"`
}

type HandlerFunction func(*RequestContext) *ServiceResult

type PageFunction func(*RequestContext) *PageResult

type RESTController struct {
	name         string
	mountPoint   string
	handlerCount int
	prepare      func(*RouterService, *RESTController)
}

func (result *ServiceResult) ToJSON() gin.H {
	body := gin.H{
		"code":    result.StatusCode,
		"success": result.IsSuccess(),
		"data":    result.Data,
		"message": result.Message,
	}
	if result.Count != nil {
		body["count"] = *result.Count
	}
	if result.ErrorDetail != "" {
		body["error"] = result.ErrorDetail
	}
	return body
}

func (result *ServiceResult) IsSuccess() bool {
	return result.StatusCode >= 200 && result.StatusCode < 300
}

func (result *ServiceResult) IsError() bool {
	return result.StatusCode >= 400
}
