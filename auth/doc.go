/*
Package auth asks the auth server whether the token a viewer carries is still good.

A Client never holds a token itself.
Every call reads one from the token.Store it is handed,
and only a definitive rejection from the auth server, a 401 or 403, removes it from that Store.
Anything else that goes wrong, a timeout, a 5xx, an unreachable host, denies the viewer
for now and leaves the token in place for the next attempt.

Coalescing

With WithCoalescing, concurrent verifications of the same token share one round trip.
Each caller still waits on its own context and applies its own side effects to its own Store.
*/
package auth
