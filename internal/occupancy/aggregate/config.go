package aggregate

import "github.com/farxc/fleet_occupancy/internal/occupancy/types"

// Set is a string membership set.
type Set map[string]struct{}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Config holds the group-class lookup sets and the statuses that count
// toward occupancy.
type Config struct {
	Classes       map[string]Set
	ValidStatuses Set
}

func DefaultConfig() Config {
	return Config{
		Classes: map[string]Set{
			types.ClassBasico:   NewSet("A", "B", "BT", "B+", "C+", "CT", "D", "D+"),
			types.ClassEspecial: NewSet("E+", "F+", "G+", "H", "H+", "J+", "O+", "P", "P+", "N+", "HD"),
		},
		ValidStatuses: NewSet(types.StatusRented, types.StatusAvailable),
	}
}

// ClassOf returns the class of a group code, or "" when it belongs to none.
func (c Config) ClassOf(group string) string {
	for _, class := range types.Classes {
		if c.Classes[class].Has(group) {
			return class
		}
	}
	return ""
}
