/*
Package postgres manages the verification server's database connection.
As part of the connection process, we also ensure that all migrations have been run.

UserStore looks up the users the verification server vouches for.
*/
package postgres
