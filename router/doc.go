// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes for the BLESS API server.

NewRouter wires all handlers onto a standard http.ServeMux using Go 1.22+
method/path routing. API handlers are wrapped with request logging; static
exercise assets are served from the configured directory under
/experimental/.
*/
package router
