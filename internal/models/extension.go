package models

import (
	"fmt"
	"time"

	"github.com/yonasmekonnen/gym-membership/internal/apperr"
)

// ExtensionStatus — статус заявки на продление абонемента.
type ExtensionStatus string

const (
	// ExtensionPending — заявка ожидает решения персонала.
	ExtensionPending ExtensionStatus = "pending"
	// ExtensionApproved — заявка одобрена, абонемент продлён.
	ExtensionApproved ExtensionStatus = "approved"
	// ExtensionRejected — заявка отклонена, участник не изменён.
	ExtensionRejected ExtensionStatus = "rejected"
)

// ParseExtensionResolution проверяет строку решения по заявке.
// Допустимы только терминальные статусы approved и rejected.
func ParseExtensionResolution(s string) (ExtensionStatus, error) {
	switch ExtensionStatus(s) {
	case ExtensionApproved, ExtensionRejected:
		return ExtensionStatus(s), nil
	default:
		return "", fmt.Errorf("unknown extension resolution %q: %w", s, apperr.ErrInvalidArgument)
	}
}

// ExtensionRequest — заявка участника на продление тарифного плана.
// У пары участник+план может существовать не больше одной pending-заявки.
type ExtensionRequest struct {
	ID          string          `json:"id"`           // Уникальный идентификатор заявки
	MemberID    string          `json:"member_id"`    // Участник, запросивший продление
	PlanID      string          `json:"plan_id"`      // Запрошенный тарифный план
	Status      ExtensionStatus `json:"status"`       // Статус заявки
	RequestDate time.Time       `json:"request_date"` // Момент создания заявки
}

// ExtensionRequestInfo — заявка, развёрнутая данными участника и плана
// для списка заявок в интерфейсе персонала.
type ExtensionRequestInfo struct {
	ID          string          `json:"id"`
	MemberID    string          `json:"member_id"`
	MemberName  string          `json:"member_name"`
	PlanName    string          `json:"plan_name"`
	PlanFee     int             `json:"plan_fee"`
	Status      ExtensionStatus `json:"status"`
	RequestDate time.Time       `json:"request_date"`
}

// ExtensionCreateRequest используется для приёма JSON-запроса на продление.
type ExtensionCreateRequest struct {
	PlanID string `json:"plan_id" validate:"required,uuid"` // Тарифный план для продления
}

// ExtensionResolveRequest используется для приёма решения персонала по заявке.
type ExtensionResolveRequest struct {
	Status    string `json:"status" validate:"required"` // approved или rejected
	StartDate string `json:"start_date,omitempty"`       // Явная дата начала нового периода, 02-01-2006
}
