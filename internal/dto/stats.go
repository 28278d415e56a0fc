package dto

import "github.com/SscSPs/chat_backend/internal/core/domain"

// UserStatsResponse is returned by GET /api/v1/admin/stats/users.
type UserStatsResponse struct {
	TotalUsers    int64 `json:"totalUsers"`
	ActiveUsers   int64 `json:"activeUsers"`
	ExternalUsers int64 `json:"externalUsers"`
	PendingResets int64 `json:"pendingResets"`
}

// ToUserStatsResponse converts domain stats to the wire format.
func ToUserStatsResponse(s domain.UserStats) UserStatsResponse {
	return UserStatsResponse{
		TotalUsers:    s.TotalUsers,
		ActiveUsers:   s.ActiveUsers,
		ExternalUsers: s.ExternalUsers,
		PendingResets: s.PendingResets,
	}
}
