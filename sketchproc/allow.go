// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sketchproc

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// An AllowList is a named set of data structures whose results are
// kept. A nil *AllowList allows everything.
type AllowList struct {
	Name    string
	Members map[string]bool
}

// NewAllowList returns an AllowList named name with the given members.
func NewAllowList(name string, members ...string) *AllowList {
	a := &AllowList{Name: name, Members: make(map[string]bool, len(members))}
	for _, m := range members {
		a.Members[m] = true
	}
	return a
}

// Allows reports whether ds passes the allow list.
func (a *AllowList) Allows(ds string) bool {
	if a == nil {
		return true
	}
	return a.Members[ds]
}

// Names returns the members of a, sorted.
func (a *AllowList) Names() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.Members))
	for m := range a.Members {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}

// DefaultRestrict is the name of the allow list used when none is
// selected.
const DefaultRestrict = "BASIC"

// A Restricts maps selector names to allow lists.
type Restricts map[string]*AllowList

// BuiltinRestricts returns the standard allow lists.
func BuiltinRestricts() Restricts {
	r := make(Restricts)
	r.add(NewAllowList("BASIC", "SpaceSaving", "SpaceSaving-RAP", "CMS", "NitroCMS", "HASH", "NitroHash", "Cuckoo", "NitroCuckoo"))
	r.add(NewAllowList("OPTS-FULL", "CMS", "NitroCMS", "CMS-NOMI", "Cuckoo", "NitroCuckoo", "NitroCuckoo-SMALL"))
	r.add(NewAllowList("OPTS", "CMS", "CMS-NOMI", "NitroCuckoo", "NitroCuckoo-SMALL"))
	r.add(NewAllowList("NOMI", "CMS", "CMS-NOMI"))
	r.add(NewAllowList("NITRO", "Cuckoo", "NitroCuckoo", "NitroCuckoo-SMALL"))
	return r
}

func (r Restricts) add(a *AllowList) {
	r[a.Name] = a
}

// Lookup returns the allow list named by selector. If there is none,
// it returns nil, which allows every data structure, and false.
func (r Restricts) Lookup(selector string) (*AllowList, bool) {
	a, ok := r[selector]
	return a, ok
}

// Load reads additional allow lists from YAML and adds them to r,
// replacing any list of the same name. The document is a mapping from
// list name to a sequence of data structure names:
//
//	SMALL: [CMS, NitroCuckoo-SMALL]
//	HASHES:
//	  - HASH
//	  - NitroHash
func (r Restricts) Load(rd io.Reader) error {
	var doc map[string][]string
	if err := yaml.NewDecoder(rd).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("parsing allow lists: %w", err)
	}
	for name, members := range doc {
		if len(members) == 0 {
			return fmt.Errorf("allow list %s is empty", name)
		}
		r.add(NewAllowList(name, members...))
	}
	return nil
}

// FilePrefix returns the prefix for output files produced under
// selector. The default selector has no prefix.
func FilePrefix(selector string) string {
	if selector == DefaultRestrict || selector == "" {
		return ""
	}
	return selector + "-"
}
