// Package fonts resolves badge font names to TTF/OTF files on disk.
package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Builtin maps config names to the filenames expected under the fonts
// directory.
var Builtin = map[string]string{
	"dejavu-sans": "DejaVuSans.ttf",
	"vera":        "Vera.ttf",
	"vera-mono":   "VeraMono.ttf",
	"monofur":     "Monofur.ttf",
}

// DefaultFont is the config name of the default font.
const DefaultFont = "dejavu-sans"

// Names returns the sorted list of known font names.
func Names() []string {
	names := make([]string, 0, len(Builtin))
	for k := range Builtin {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Read resolves a known font name against dir and returns the raw font
// bytes.
func Read(dir, name string) ([]byte, error) {
	filename, ok := Builtin[name]
	if !ok {
		return nil, fmt.Errorf("unknown font %q (available: %v)", name, Names())
	}
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return nil, fmt.Errorf("reading font %s: %w", name, err)
	}
	return data, nil
}
