// Package web carries the embedded single-page chat UI.
package web

import _ "embed"

// IndexHTML is the chat page served at the root route.
//
//go:embed index.html
var IndexHTML string
