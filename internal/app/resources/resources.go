// internal/app/resources/resources.go
package resources

import (
	"embed"
	"sync"

	"github.com/dalemusser/waffle/pantry/templates"
)

// SetName is the template set holding the page chrome every feature
// renders inside (layout_start / layout_end).
const SetName = "shared"

//go:embed templates/*.gohtml
var FS embed.FS

var registerOnce sync.Once

// LoadSharedTemplates registers the shared set. Safe to call repeatedly;
// bootstrap calls it from Startup before the engine boots.
func LoadSharedTemplates() {
	registerOnce.Do(func() {
		templates.Register(templates.Set{
			Name:     SetName,
			FS:       FS,
			Patterns: []string{"templates/*.gohtml"},
		})
	})
}
