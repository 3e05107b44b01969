package dto

import "github.com/yigit/scholarlink/internal/app/models"

// NotificationListResponse is one page of a recipient's notifications
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Pagination    PaginationInfo        `json:"pagination"`
}

// UnreadCountResponse reports how many notifications are still unread
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// MarkAllReadResponse reports how many notifications were flipped to read
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
