package strictmodel

// Presence records how a field appeared in the input.
type Presence uint8

const (
	PresenceSeen    Presence = 1 << iota // Field key appeared in the input.
	PresenceWasNull                      // Field value was an explicit null.
	PresenceAssigned                     // Field was changed by Set after construction.
)

// Has reports whether all bits of f are set.
func (p Presence) Has(f Presence) bool { return p&f == f }

func (p Presence) String() string {
	if p == 0 {
		return "absent"
	}
	s := ""
	add := func(name string) {
		if s != "" {
			s += "|"
		}
		s += name
	}
	if p.Has(PresenceSeen) {
		add("seen")
	}
	if p.Has(PresenceWasNull) {
		add("null")
	}
	if p.Has(PresenceAssigned) {
		add("assigned")
	}
	return s
}
