package models

// Staff — сотрудник зала с учётной записью для входа в панель управления.
type Staff struct {
	UID          string // Уникальный идентификатор сотрудника
	Username     string // Логин (уникальный)
	Email        string // Электронная почта
	PasswordHash string // bcrypt-хэш пароля
	Role         string // Роль сотрудника, admin или staff
}

// LoginRequest используется для приёма данных входа сотрудника.
type LoginRequest struct {
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required"`
}
