/*
Package ranger initializes and manages a gate app with sane defaults.

# Ranger

The main entrypoint to package ranger is the [Ranger] type, constructed with [New].
A [Ranger] carries the [auth.Client] verifying tokens, the [guard.Guard] protecting views,
and the router and responder handlers are registered and written with.

[*Ranger.Guide] begins a gate app's web server.
By default, [*Ranger.Guide] listens on [DefaultPort] (:3000).
Stop that web server with [*Ranger.Shutdown] or send a signal [*Ranger.Guide] listens for.
Requests in flight when it stops see their context cancelled
and abandon any verification still waiting on the auth server.

# Configuration

A developer configures a gate app through environment variables.
Required values can be discovered by inspecting the errors [New] returns.

Environment variables ought to be set in a file called ".env"
found at the same directory the application is executed from.

Here are the available environment variables.
  - AUTH_SERVER_URL: the base URL of the auth server tokens are verified against; default: http://localhost:5002
  - BASE_URL: the base URL the application runs on; default: http://localhost:3000
  - CONTACT_US_EMAIL: the email address end users can contact support at
  - CORS_ORIGINS: a comma-separated list of origins allowed to call JSON routes
  - DATABASE_HOST: the host the database is running on; default: localhost
  - DATABASE_NAME: the name of the database
  - DATABASE_PASSWORD: the password for authenticating a connection to the database
  - DATABASE_PORT: the port the database is listening on; default: 5432
  - DATABASE_SSLMODE: default: prefer
  - DATABASE_URL: the fully-qualified connection string for connecting to the database; replaces all other DATABASE_* env vars
  - DATABASE_USER: the user for authenticating a connection to the database
  - ENVIRONMENT: the environment the application is running in; cf. [gate.Environment]
  - HOME_PATH: where a verified viewer visiting the login view is sent; default: /dashboard
  - LOG_JSON: whether to log JSON in DEVELOPMENT; default: false
  - LOG_LEVEL: the level at which to begin logging; default: INFO
  - LOGIN_PATH: where denied viewers are sent; default: /login
  - PORT: the port the application should listen on; default: :3000
  - RATE_LIMIT: whether to rate limit requests per IP address; default: true
  - REDIS_PASSWORD: the password for the Redis server sessions are stored in
  - REDIS_URL: the Redis server sessions are stored in, as host:port or redis://; default: sessions live in cookies
  - SENTRY_DSN: where errors are reported
  - SERVER_IDLE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for idiling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout for writing HTTP responses; default: 15s
  - SESSION_AUTH_KEY: a hex-encoded key for authenticating sessions; cf. [encoding/hex]
  - SESSION_ENCRYPTION_KEY: a hex-encoded key for encrypting sessions; optional in TESTING
  - VERIFY_COALESCE: whether concurrent verifications of one token share a round trip; default: false
  - VERIFY_TIMEOUT: how long to wait on the auth server; default: 10s
*/
package ranger
