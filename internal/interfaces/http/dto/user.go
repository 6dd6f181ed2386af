// Package dto 提供 HTTP 层数据传输对象
package dto

// UserResponse 当前技师信息
type UserResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
}
