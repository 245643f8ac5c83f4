// Package models содержит доменные структуры участников зала, тарифных
// планов, посещений и заявок на продление, а также вспомогательные типы
// для приёма данных из JSON-запросов.
package models

import (
	"fmt"
	"time"

	"github.com/yonasmekonnen/gym-membership/internal/apperr"
)

// MemberStatus — замкнутое перечисление статусов абонемента.
// Хранится в базе текстом, но в коде существует только как типизированное значение.
type MemberStatus string

const (
	// StatusPending — участник ожидает подтверждения персоналом.
	StatusPending MemberStatus = "pending"
	// StatusActive — абонемент действует.
	StatusActive MemberStatus = "active"
	// StatusExpired — срок или лимит посещений исчерпан недавно (до 3 дней просрочки).
	StatusExpired MemberStatus = "expired"
	// StatusInactive — просрочка больше 3 дней, посещения запрещены.
	StatusInactive MemberStatus = "inactive"
	// StatusFrozen — абонемент приостановлен, замороженные дни не сгорают.
	StatusFrozen MemberStatus = "frozen"
	// StatusDormant — участник давно не появлялся, требуется возобновление.
	StatusDormant MemberStatus = "dormant"
)

// ParseMemberStatus проверяет строку статуса и возвращает типизированное значение.
// Неизвестная строка даёт apperr.ErrInvalidArgument.
func ParseMemberStatus(s string) (MemberStatus, error) {
	switch MemberStatus(s) {
	case StatusPending, StatusActive, StatusExpired, StatusInactive, StatusFrozen, StatusDormant:
		return MemberStatus(s), nil
	default:
		return "", fmt.Errorf("unknown member status %q: %w", s, apperr.ErrInvalidArgument)
	}
}

// Member представляет участника зала с временными якорями абонемента.
// DaysLeft — кэш последнего расчёта обратного отсчёта; отрицательные
// значения означают степень просрочки. Инвариант: статус frozen
// эквивалентен ненулевому FreezeDate.
type Member struct {
	ID                  string       `json:"id"`                    // Уникальный идентификатор участника
	FullName            string       `json:"full_name"`             // Полное имя
	Status              MemberStatus `json:"status"`                // Текущий статус абонемента
	StartDate           time.Time    `json:"start_date"`            // Якорная дата начала текущего периода
	DaysLeft            int          `json:"days_left"`             // Кэш обратного отсчёта, может быть отрицательным
	FreezeDate          *time.Time   `json:"freeze_date,omitempty"` // Момент начала заморозки, nil если не заморожен
	FreezeDuration      int          `json:"freeze_duration"`       // Запланированная длительность заморозки в днях
	PreFreezeAttendance int          `json:"-"`                     // Снимок числа посещений на момент заморозки
	PreFreezeDaysCount  int          `json:"-"`                     // Прошедшие дни периода на момент заморозки
	TotalAttendance     int          `json:"total_attendance"`      // Счётчик посещений за все время
	PlanID              *string      `json:"plan_id,omitempty"`     // Ссылка на тарифный план, nil если план не назначен
}

// StatusUpdateRequest используется для приёма запроса смены статуса участника.
// Дата приходит строкой в формате 02-01-2006 и парсится вручную.
type StatusUpdateRequest struct {
	Status         string `json:"status" validate:"required"`  // Целевой статус или действие unfreeze
	StartDate      string `json:"start_date,omitempty"`        // Явная дата начала для активации
	FreezeDuration int    `json:"freeze_duration,omitempty"`   // Длительность заморозки в днях
}
