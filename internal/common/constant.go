package common

const (
	// AuthorizationHeaderName carries the bearer access token on API requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the access token in the Authorization header.
	BearerPrefix = "Bearer "

	// ReflectionFileName is the object name used by the blob store.
	ReflectionFileName = "daily_reflections.json"
)
