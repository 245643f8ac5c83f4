package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации для exchange уведомлений.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди уведомлений о статусах участников.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "notification.member-status", RoutingKey: "member.status"},
	}
}
