// Package routes declares HTTP routes as data so domain handlers can describe
// their surface and the API module can register it on a ServeMux.
package routes

import "net/http"

// Route binds an HTTP method and pattern to a handler.
// Pattern is relative to the enclosing Group prefix and uses ServeMux wildcards.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
