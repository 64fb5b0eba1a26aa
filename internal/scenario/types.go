// internal/scenario/types.go
package scenario

// RouteTarget pairs a routing hostname with the body its backend echoes.
// Immutable for the process lifetime.
type RouteTarget struct {
	Hostname string
	Expected string
}

// DefaultTargets returns the two fixed routes of the ingress under test.
// A fresh slice is returned on every call.
func DefaultTargets() []RouteTarget {
	return []RouteTarget{
		{Hostname: "foo.localhost", Expected: "foo"},
		{Hostname: "bar.localhost", Expected: "bar"},
	}
}

// Outcome is what one request produced.
// Status is 0 and Body is empty when the request never got a response.
type Outcome struct {
	Status int
	Body   string
}

// Recorder receives named check results.
// Aggregation belongs to the implementation, not to the scenario.
type Recorder interface {
	Record(name string, passed bool)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(name string, passed bool)

func (f RecorderFunc) Record(name string, passed bool) { f(name, passed) }
