package capture

import "strings"

// detector decides whether an enter call observed while a session is idle
// should start a new capture. It is only consulted while idle; once a
// session is active, nested entries of the trigger class are recorded as
// ordinary frames.
type detector struct {
	trigger   string
	fullNames bool
}

// normalize applies the configured naming mode to a class name. In short
// name mode the package qualifier is stripped; in full-name mode the name
// is preserved verbatim.
func (d detector) normalize(className string) string {
	if d.fullNames {
		return className
	}
	if i := strings.LastIndexByte(className, '.'); i >= 0 {
		return className[i+1:]
	}
	return className
}

// shouldStart reports whether the given class name matches the configured
// trigger under case-insensitive comparison.
func (d detector) shouldStart(className string) bool {
	return strings.EqualFold(d.normalize(className), d.trigger)
}
