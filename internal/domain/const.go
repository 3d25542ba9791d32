package domain

const (
	RequestIDHeader       = "X-Request-Id"
	ForwardedForHeader    = "X-Forwarded-For"
	ProxyClientIPHeader   = "Proxy-Client-IP"
	WLProxyClientIPHeader = "WL-Proxy-Client-IP"
)

// request scoped log fields
const (
	LogRequestID = "requestId"
	LogUserID    = "userId"
	LogClientIP  = "clientIp"
	LogAPIPath   = "api_path"
)

const AnonymousUser = "anonymous"

const (
	UserClientStub = "stub"
	UserClientRest = "rest"
)

const (
	UserStoreMemory   = "memory"
	UserStorePostgres = "postgres"
	UserStoreRedis    = "redis"
)

const UserEventsChannel = "orderdemo:user-events"
