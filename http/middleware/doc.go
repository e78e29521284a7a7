/*
The middleware package defines what a middleware is in gate and a set of basic middlewares.

The available middlewares are:
  - CORS
  - ForceHTTPS
  - IngestToken
  - InjectIPAddress
  - InjectSession
  - InjectTokenStore
  - LogRequest
  - RateLimit
  - ReportPanic
  - RequestID

The ranger package assembles these into a default chain.
The order matters for tokens: InjectSession, then InjectTokenStore, then IngestToken.

	vs := middleware.NewVisitors()
	adpts := []middleware.Adapter{
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(slogger),
		middleware.ForceHTTPS(env),
		middleware.RateLimit(vs),
		middleware.InjectSession(sessionStore),
		middleware.InjectTokenStore(),
		middleware.IngestToken(log),
	}
*/
package middleware
