package airquality

import "fmt"

// ReadingID is the stable key of a named reading.
type ReadingID string

const (
	ReadingStation ReadingID = "stationname"
	ReadingIndex   ReadingID = "lki"
	ReadingStatus  ReadingID = "lki_text"
)

// DefaultNamePrefix prefixes reading display names when none is configured.
const DefaultNamePrefix = "LuchtmeetNet"

// Descriptor describes one named reading and how it is projected from a Snapshot.
type Descriptor struct {
	ID          ReadingID
	Label       string
	DeviceClass string
	StateClass  string
	Icon        string

	project func(Snapshot) any
}

var descriptors = [...]Descriptor{
	{
		ID:      ReadingStation,
		Label:   "Air Quality Stationname",
		project: func(s Snapshot) any { return s.Station },
	},
	{
		ID:          ReadingIndex,
		Label:       "Air Quality Index",
		DeviceClass: "aqi",
		StateClass:  "measurement",
		Icon:        "mdi:gauge",
		project:     func(s Snapshot) any { return s.Index },
	},
	{
		ID:      ReadingStatus,
		Label:   "Air Quality Status",
		project: func(s Snapshot) any { return s.Category },
	},
}

// Descriptors returns the fixed reading table in declaration order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	copy(out, descriptors[:])
	return out
}

func lookupDescriptor(id ReadingID) (Descriptor, bool) {
	for _, d := range descriptors {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}

// SnapshotSource supplies the latest snapshot held by a coordinator.
type SnapshotSource interface {
	Latest() (Snapshot, bool)
}

// SnapshotSourceFunc adapts a function to SnapshotSource.
type SnapshotSourceFunc func() (Snapshot, bool)

func (f SnapshotSourceFunc) Latest() (Snapshot, bool) { return f() }

// Reading is a named value as presented to consumers.
type Reading struct {
	ID          ReadingID `json:"id"`
	Name        string    `json:"name"`
	DeviceClass string    `json:"deviceClass,omitempty"`
	StateClass  string    `json:"stateClass,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Value       any       `json:"value"`
	Available   bool      `json:"available"`
}

// Exposer projects the latest snapshot into named readings. It keeps no state of its own.
type Exposer struct {
	prefix string
	source SnapshotSource
}

// NewExposer creates an Exposer. An empty prefix falls back to DefaultNamePrefix.
func NewExposer(prefix string, source SnapshotSource) *Exposer {
	if prefix == "" {
		prefix = DefaultNamePrefix
	}
	return &Exposer{prefix: prefix, source: source}
}

// DisplayName returns "<prefix> <label>" for a descriptor.
func (e *Exposer) DisplayName(d Descriptor) string {
	return e.prefix + " " + d.Label
}

// Value returns the current value of a reading.
func (e *Exposer) Value(id ReadingID) (any, error) {
	d, ok := lookupDescriptor(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReading, id)
	}
	snap, ok := e.source.Latest()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, id)
	}
	return d.project(snap), nil
}

// Reading returns a reading with its hints. Before the first snapshot it is
// reported with Available false and a nil value.
func (e *Exposer) Reading(id ReadingID) (Reading, error) {
	d, ok := lookupDescriptor(id)
	if !ok {
		return Reading{}, fmt.Errorf("%w: %q", ErrUnknownReading, id)
	}
	snap, ok := e.source.Latest()
	return e.build(d, snap, ok), nil
}

// Readings returns all readings projected from one snapshot.
func (e *Exposer) Readings() []Reading {
	snap, ok := e.source.Latest()
	out := make([]Reading, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, e.build(d, snap, ok))
	}
	return out
}

func (e *Exposer) build(d Descriptor, snap Snapshot, available bool) Reading {
	r := Reading{
		ID:          d.ID,
		Name:        e.DisplayName(d),
		DeviceClass: d.DeviceClass,
		StateClass:  d.StateClass,
		Icon:        d.Icon,
		Available:   available,
	}
	if available {
		r.Value = d.project(snap)
	}
	return r
}
