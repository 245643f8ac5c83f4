// Package dateutil содержит чистые функции дневной арифметики для
// расчёта обратного отсчёта абонемента. Разница дат считается в полных
// днях с округлением вверх, как и в остальных частях системы.
package dateutil

import "time"

const day = 24 * time.Hour

// DaysBetween возвращает количество дней между a и b с округлением вверх.
// Результат положительный, если b позже a. Неполный день считается целым.
func DaysBetween(a, b time.Time) int {
	diff := b.Sub(a)
	n := int(diff / day)
	if diff%day > 0 {
		n++
	}
	return n
}

// ClampCountdown возвращает меньшее из двух ограничений абонемента:
// дней до даты истечения и остатка лимита посещений. Побеждает более
// жёсткое ограничение, поэтому результат может быть отрицательным.
func ClampCountdown(today, expirationDate time.Time, remainingAllowance int) int {
	untilExpiration := DaysBetween(today, expirationDate)
	if untilExpiration < remainingAllowance {
		return untilExpiration
	}
	return remainingAllowance
}

// DayUTC нормализует момент времени к началу суток в UTC.
// Посещения привязываются к календарному дню независимо от часового пояса сервера.
func DayUTC(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}
