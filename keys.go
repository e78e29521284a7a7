package gate

type Key string

const (
	// CurrentUserKey stashes the *User a verification granted access to.
	CurrentUserKey Key = "CurrentUserKey"

	// IpAddrKey stashes the IP address of an HTTP request being handled by gate.
	IpAddrKey Key = "IpAddrKey"

	// RequestIDKey stashes a unique UUID for each HTTP request.
	RequestIDKey Key = "RequestIDKey"

	// SessionKey stashes the session associated with an HTTP request.
	SessionKey Key = "SessionKey"

	// TokenStoreKey stashes the token.Store bound to an HTTP request.
	TokenStoreKey Key = "TokenStoreKey"
)

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "gate context key: " + string(k)
}
