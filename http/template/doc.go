/*
Package template parses HTML templates from an fs.FS.

Files are looked up in the application's filesystem first
and fall back to the defaults embedded in this package, such as ErrorTmpl.
*/
package template
