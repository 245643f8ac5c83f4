package models

// ServicePlan — тарифный план абонемента. Для движка обратного отсчёта
// план является неизменяемым входом: Period задаёт срок действия в днях
// от StartDate, MaxDays — лимит посещений за период.
type ServicePlan struct {
	ID      string // Уникальный идентификатор плана
	Name    string // Название плана
	Price   int    // Стоимость
	Period  int    // Срок действия абонемента в днях
	MaxDays int    // Максимум посещений за период
}
