// Package cpuset parses the cgroup cpuset.cpus range-list format
// ("0-3,7") and answers membership/cardinality questions about it.
package cpuset

import (
	"fmt"
	"strconv"
	"strings"
)

// Set is a parsed cpuset range-list. The zero value is an empty set.
type Set struct {
	members map[int]struct{}
	max     int
}

// Parse parses a range-list such as "0-3,7" or "0,2,4-6".
// An empty string parses to an empty, valid Set (no restriction known).
func Parse(list string) (Set, error) {
	s := Set{members: make(map[int]struct{})}
	list = strings.TrimSpace(list)
	if list == "" {
		return s, nil
	}
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if dash := strings.IndexByte(part, '-'); dash >= 0 {
			lo, err := strconv.Atoi(strings.TrimSpace(part[:dash]))
			if err != nil {
				return Set{}, fmt.Errorf("cpuset: bad range start %q: %w", part, err)
			}
			hi, err := strconv.Atoi(strings.TrimSpace(part[dash+1:]))
			if err != nil {
				return Set{}, fmt.Errorf("cpuset: bad range end %q: %w", part, err)
			}
			if hi < lo {
				return Set{}, fmt.Errorf("cpuset: inverted range %q", part)
			}
			for n := lo; n <= hi; n++ {
				s.members[n] = struct{}{}
				if n > s.max {
					s.max = n
				}
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Set{}, fmt.Errorf("cpuset: bad cpu index %q: %w", part, err)
		}
		s.members[n] = struct{}{}
		if n > s.max {
			s.max = n
		}
	}
	return s, nil
}

// Contains reports whether physical CPU n is in the set. An empty set
// (no cpuset restriction configured) contains everything.
func (s Set) Contains(n int) bool {
	if len(s.members) == 0 {
		return true
	}
	_, ok := s.members[n]
	return ok
}

// Count returns the number of CPUs named by the set, or 0 if unrestricted.
func (s Set) Count() int {
	return len(s.members)
}

// Empty reports whether the set carries no restriction.
func (s Set) Empty() bool {
	return len(s.members) == 0
}
