// pkg/constants/constants.go
package constants

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Сводка для дашборда по области видимости.
	// Формат: dashboard_stats:<scope> -> JSON
	CacheKeyDashboardStats = "dashboard_stats:%s"

	// Отозванная сессия (logout).
	// Формат: session_revoked:<tokenID> -> "revoked"
	CacheKeySessionRevoked = "session_revoked:%s"

	// Ключ, указывающий, что аккаунт заблокирован из-за неудачных попыток входа.
	// Формат: lockout:<username> -> "locked"
	CacheKeyLockout = "lockout:%s"

	// Ключ для подсчета неудачных попыток входа.
	// Формат: login_attempts:<username> -> count
	CacheKeyLoginAttempts = "login_attempts:%s"

	// Хэш зарегистрированных учётных записей: username -> JSON.
	CacheKeyCredentials = "civiq_users"
)

//============== WEBSOCKET ==============

const (
	MessageTypeRequestUpdated = "request.updated"
	MessageTypeRequestCreated = "request.created"
)

//============== MAPS ==============

// MapsBaseURL - внешний картографический сервис для ссылок на место заявки.
const MapsBaseURL = "https://maps.google.com/"
