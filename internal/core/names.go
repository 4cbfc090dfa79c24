package core

import "fmt"

// AllocateName returns base if no member uses it, otherwise the first free
// "base (n)" form counting up from 2. Members are not modified.
func AllocateName(members map[string]struct{}, base string) string {
	if _, taken := members[base]; !taken {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", base, n)
		if _, taken := members[candidate]; !taken {
			return candidate
		}
	}
}
