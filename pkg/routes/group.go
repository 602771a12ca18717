package routes

import "net/http"

// Group organizes routes under a common prefix. Children inherit the
// parent prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		walk("", group, func(pattern string, h http.HandlerFunc) {
			mux.HandleFunc(pattern, h)
		})
	}
}

// Patterns lists the "METHOD /path" patterns the groups would register.
func Patterns(groups ...Group) []string {
	var patterns []string
	for _, group := range groups {
		walk("", group, func(pattern string, _ http.HandlerFunc) {
			patterns = append(patterns, pattern)
		})
	}
	return patterns
}

func walk(parentPrefix string, group Group, fn func(pattern string, h http.HandlerFunc)) {
	prefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		fn(route.Method+" "+prefix+route.Pattern, route.Handler)
	}
	for _, child := range group.Children {
		walk(prefix, child, fn)
	}
}
