/*
Package token holds the single bearer token a viewer carries.

A Store is the only place a token lives.
It is injected into the auth client and the route guard;
neither reaches into storage on their own.

Ingest

A login service hands a token back by redirecting to any page with a "token" query parameter.
Ingest moves that value into a Store and strips the query from the URL
so the token never remains visible in the address bar or in history.
*/
package token
