// Package apperr определяет классификацию ошибок доменной логики.
// Обработчики HTTP сопоставляют эти ошибки с кодами ответа,
// а сервисы оборачивают их через fmt.Errorf с %w.
package apperr

import "errors"

var (
	// ErrNotFound — участник, тарифный план или заявка не найдены.
	ErrNotFound = errors.New("not found")
	// ErrConflict — дубликат посещения за день или повторная заявка на продление.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState — действие недопустимо из текущего статуса участника.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidArgument — некорректная дата, неизвестный статус или пропущенное поле.
	ErrInvalidArgument = errors.New("invalid argument")
)
