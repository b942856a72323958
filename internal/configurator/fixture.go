package configurator

import "strings"

type FixtureType string

const (
	FixtureUnknown FixtureType = ""
	FixtureBathtub FixtureType = "bathtub"
	FixtureSink    FixtureType = "sink"
	FixtureFloor   FixtureType = "floor"
)

var fixtureAliases = map[string]FixtureType{
	"bathtub":   FixtureBathtub,
	"bath":      FixtureBathtub,
	"tub":       FixtureBathtub,
	"bathtubs":  FixtureBathtub,
	"sink":      FixtureSink,
	"sinks":     FixtureSink,
	"basin":     FixtureSink,
	"washbasin": FixtureSink,
	"vanity":    FixtureSink,
	"floor":     FixtureFloor,
	"floors":    FixtureFloor,
	"flooring":  FixtureFloor,
	"tiles":     FixtureFloor,
}

// ParseFixtureType maps a key or one of its aliases to a fixture type.
// Unknown keys return FixtureUnknown and false.
func ParseFixtureType(raw string) (FixtureType, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	ft, ok := fixtureAliases[key]
	if !ok {
		return FixtureUnknown, false
	}
	return ft, true
}

func (ft FixtureType) Valid() bool {
	switch ft {
	case FixtureBathtub, FixtureSink, FixtureFloor:
		return true
	}
	return false
}

// UnmarshalText accepts aliases, for values and map keys alike. Unknown names
// are kept verbatim so catalog validation can report them.
func (ft *FixtureType) UnmarshalText(text []byte) error {
	s := string(text)
	if parsed, ok := ParseFixtureType(s); ok {
		*ft = parsed
		return nil
	}
	*ft = FixtureType(strings.TrimSpace(s))
	return nil
}
