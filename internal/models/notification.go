package models

import "time"

// Notification — запись уведомления о деградации статуса участника.
// Создаётся ежедневной сверкой и дублируется в очередь для рассылки.
type Notification struct {
	ID          int       `json:"id,omitempty"`
	MemberID    string    `json:"member_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
