// Package web carries the storefront's templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var files embed.FS

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return f
}

func Templates() fs.FS { return sub("templates") }

func Static() fs.FS { return sub("static") }
