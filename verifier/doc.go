// Package verifier implements the auth server endpoints gate verifies tokens against.
//
// Tokens are HS256 JWTs carrying a Telegram user's ID.
// A token verifies only while that user exists and is premium.
package verifier
