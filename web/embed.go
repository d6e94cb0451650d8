// Package web ships the console templates and static assets inside the binary.
package web

import "embed"

// Templates holds the layout, partial and page templates.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds stylesheets served under /static/.
//
//go:embed static/**/*
var Static embed.FS
