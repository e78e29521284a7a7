/*
Package guard decides, per request, whether a protected view renders.

Every request reaching a protected view is one mount of that view.
The Guard verifies the viewer's token exactly once for it;
while that verification is in flight the view is pending and nothing is written.
A granted viewer gets the view with the verified user in the request context.
A denied viewer is sent to the login page with the address they were after,
so that signing in returns them to it.

A request whose context ends before verification returns has unmounted;
the Guard drops the result and writes nothing.
*/
package guard
