package models

import "time"

// Attendance — отметка посещения: не больше одной записи на участника
// за календарный день. Day всегда нормализован к началу суток UTC.
type Attendance struct {
	ID       int       // Идентификатор записи
	MemberID string    // Участник
	Day      time.Time // Календарный день посещения, UTC-полночь
}

// AttendanceResult — результат успешной отметки посещения.
type AttendanceResult struct {
	Message         string `json:"message"`          // Человекочитаемое сообщение для стойки регистрации
	MemberName      string `json:"member_name"`      // Имя участника
	TotalAttendance int    `json:"total_attendance"` // Счётчик посещений после отметки
	DaysLeft        int    `json:"days_left"`        // Обратный отсчёт после отметки
	Expired         bool   `json:"expired"`          // Абонемент истёк в результате этого посещения
}
