package conflict

import "encoding/json"

// Domain names the kind of booking a conflict collides with.
type Domain string

const (
	DomainCrew      Domain = "crew"
	DomainTransport Domain = "transport"
)

// Descriptor is one domain's share of a collision.
type Descriptor struct {
	Domain  Domain
	Count   int
	Details []json.RawMessage
}

// Summary is the decoded collision payload. It is one of None, CrewOnly,
// TransportOnly or Both.
type Summary interface {
	summary()
}

// None is a conflict without per-domain detail.
type None struct{}

// CrewOnly collides with crew bookings only.
type CrewOnly struct {
	Crew []json.RawMessage
}

// TransportOnly collides with transport bookings only.
type TransportOnly struct {
	Transport []json.RawMessage
}

// Both collides with crew and transport bookings.
type Both struct {
	Crew      []json.RawMessage
	Transport []json.RawMessage
}

func (None) summary()          {}
func (CrewOnly) summary()      {}
func (TransportOnly) summary() {}
func (Both) summary()          {}

// Decode builds a Summary from the two conflict arrays. Nil and empty arrays
// are treated alike.
func Decode(crew, transport []json.RawMessage) Summary {
	switch {
	case len(crew) > 0 && len(transport) > 0:
		return Both{Crew: crew, Transport: transport}
	case len(crew) > 0:
		return CrewOnly{Crew: crew}
	case len(transport) > 0:
		return TransportOnly{Transport: transport}
	default:
		return None{}
	}
}

// Descriptors lists the non-empty domains of s, crew first.
func Descriptors(s Summary) []Descriptor {
	switch v := s.(type) {
	case CrewOnly:
		return []Descriptor{crewDescriptor(v.Crew)}
	case TransportOnly:
		return []Descriptor{transportDescriptor(v.Transport)}
	case Both:
		return []Descriptor{crewDescriptor(v.Crew), transportDescriptor(v.Transport)}
	default:
		return nil
	}
}

func crewDescriptor(details []json.RawMessage) Descriptor {
	return Descriptor{Domain: DomainCrew, Count: len(details), Details: details}
}

func transportDescriptor(details []json.RawMessage) Descriptor {
	return Descriptor{Domain: DomainTransport, Count: len(details), Details: details}
}
