// Package template provides the canonical layout template and loads
// user templates.
//
// A template is a layout document whose panel groups carry explicit ranks
// ("panel" in the tabset config) and whose tabs carry one preference per
// panel budget ("panelPreferences"). The stash consolidates it to the
// budget the viewport allows.
//
// Templates are injected into a session, never read from global state:
//
//	tmpl, err := template.Load("layout.toml")
//	s, err := session.New(session.Config{Template: tmpl})
//
// Files are decoded by extension: .json, .toml, .yaml or .yml. All three
// use the same field names as the JSON document format of package layout.
package template
