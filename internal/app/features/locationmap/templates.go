// internal/app/features/locationmap/templates.go
package locationmap

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "locationmap",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
