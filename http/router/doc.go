/*
Package router routes requests to handlers through a thin wrapper around [mux.Router].

A [Router] leverages a standardized data model, a [Route], when registering how requests should be routed.
A path and an HTTP method comprise a [Route].
Before a request gets to a handler,
any middlewares added to the Route are called in the order they appear.

Many routes share identical middleware stacks,
and a small mistake registering one can expose a view that should sit behind the route guard.
GuardedRoutes registers a group of Routes in one call, each protected by a [guard.Guard].
*/
package router
