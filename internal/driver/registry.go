package driver

import (
	"strings"
	"sync"
)

// Registry maps file paths to language drivers. It is built once from the
// closed set of drivers (spec §9 "plugin drivers -> tagged set") and is
// read-only thereafter; the zero value is not usable, use NewRegistry.
type Registry struct {
	byExt     map[string]Driver
	overrides []Driver // drivers registered in order, scanned for Handles()
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry built from every built-in
// driver. It is the grammar registry singleton named in spec §3/§9.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry(builtins()...)
	})
	return defaultReg
}

// NewRegistry builds a registry from an explicit driver set, letting build
// configurations include/exclude variants (spec §9).
func NewRegistry(drivers ...Driver) *Registry {
	r := &Registry{byExt: make(map[string]Driver), overrides: drivers}
	for _, d := range drivers {
		for _, ext := range d.Extensions() {
			r.byExt[strings.ToLower(ext)] = d
		}
	}
	return r
}

// DriverFor resolves path to exactly one driver, or nil if none matches.
//
// Filename overrides win over the extension table: if some driver's
// Handles(path) is true it is returned first, in registration order,
// otherwise the extension map decides.
func (r *Registry) DriverFor(path string) Driver {
	for _, d := range r.overrides {
		if d.Handles(path) {
			return d
		}
	}
	ext := strings.ToLower(extOf(path))
	return r.byExt[ext]
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	// Handle double extensions like .d.ts by checking known compounds first.
	if strings.HasSuffix(strings.ToLower(path), ".d.ts") {
		return ".d.ts"
	}
	return path[i:]
}
