// Package imagegen 实现图像生成编排
package imagegen

import (
	"context"
	"errors"
	"fmt"
)

// ProviderResult 提供商生成结果，文件已落盘
type ProviderResult struct {
	MimeType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	// FileID 文件存储中的标识
	FileID string `json:"file_id"`
}

// Provider 图像生成提供商接口
type Provider interface {
	// Name 返回提供商标识
	Name() string

	// Generate 调用提供商生成一张图像并落盘
	// inputImages 为归一化后的 base64 data URL 列表
	Generate(ctx context.Context, prompt, model, aspectRatio string, inputImages []string, metadata map[string]any) (*ProviderResult, error)
}

// ErrorClass 提供商错误分类
type ErrorClass string

const (
	// ErrorClassTransient 瞬时失败：限流、服务端错误、网络错误，可重试
	ErrorClassTransient ErrorClass = "transient"
	// ErrorClassPermanent 永久失败：请求被拒绝，重试无意义
	ErrorClassPermanent ErrorClass = "permanent"
)

// ProviderError 提供商调用失败
type ProviderError struct {
	Provider string
	Class    ErrorClass
	Message  string
	Err      error
}

// Error 实现 error 接口
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

// Unwrap 返回底层错误
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewTransientError 创建瞬时失败错误
func NewTransientError(provider, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Class: ErrorClassTransient, Message: message, Err: err}
}

// NewPermanentError 创建永久失败错误
func NewPermanentError(provider, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Class: ErrorClassPermanent, Message: message, Err: err}
}

// AsProviderError 提取 ProviderError
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
