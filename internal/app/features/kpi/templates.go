// internal/app/features/kpi/templates.go
package kpi

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "kpi",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
