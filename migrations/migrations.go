// Package migrations embeds the schema files so tests and tooling can apply
// them without a checkout-relative path.
package migrations

import (
	"embed"
	"sort"
)

//go:embed *.sql
var files embed.FS

// All returns every migration's SQL in filename order.
func All() ([]string, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out = append(out, string(data))
	}
	return out, nil
}
