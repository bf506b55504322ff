// Package web carries the browser assets compiled into the server binary.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
