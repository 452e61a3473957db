package blocktype

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DefaultDeprecatedEntryKeys are the keys a processed deprecation entry may keep.
var DefaultDeprecatedEntryKeys = []string{
	KeyAttributes, KeySupports, KeySave, KeyMigrate, KeyIsEligible, KeyAPIVersion,
}

// Deprecation is one historical variant of a block type, consulted when
// migrating content saved by an older version.
//
// Before processing it may carry any override in Extra. After processing only
// allowlisted keys survive.
type Deprecation struct {
	Attributes map[string]any
	Supports   map[string]any
	Save       any
	Migrate    any
	IsEligible any
	APIVersion int

	Extra map[string]any
}

// Get returns the value stored under a wire key and whether it is present.
func (d *Deprecation) Get(key string) (any, bool) {
	switch key {
	case KeyAttributes:
		return d.Attributes, d.Attributes != nil
	case KeySupports:
		return d.Supports, d.Supports != nil
	case KeySave:
		return d.Save, d.Save != nil
	case KeyMigrate:
		return d.Migrate, d.Migrate != nil
	case KeyIsEligible:
		return d.IsEligible, d.IsEligible != nil
	case KeyAPIVersion:
		return d.APIVersion, d.APIVersion != 0
	}
	v, ok := d.Extra[key]
	return v, ok
}

// Set stores value under a wire key.
func (d *Deprecation) Set(key string, value any) error {
	var err error
	switch key {
	case KeyAttributes:
		d.Attributes, err = toMap(value)
	case KeySupports:
		d.Supports, err = toMap(value)
	case KeySave:
		d.Save = value
	case KeyMigrate:
		d.Migrate = value
	case KeyIsEligible:
		d.IsEligible = value
	case KeyAPIVersion:
		d.APIVersion, err = toInt(value)
	default:
		if d.Extra == nil {
			d.Extra = make(map[string]any)
		}
		d.Extra[key] = value
	}
	if err != nil {
		return fmt.Errorf("deprecation field %q: %w", key, err)
	}
	return nil
}

// Keys returns the present keys in a stable order.
func (d *Deprecation) Keys() []string {
	var keys []string
	for _, k := range DefaultDeprecatedEntryKeys {
		if _, ok := d.Get(k); ok {
			keys = append(keys, k)
		}
	}
	extra := make([]string, 0, len(d.Extra))
	for k := range d.Extra {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// Clone returns a copy that shares no maps with d.
func (d Deprecation) Clone() Deprecation {
	c := d
	c.Attributes = cloneMap(d.Attributes)
	c.Supports = cloneMap(d.Supports)
	c.Extra = cloneMap(d.Extra)
	return c
}

// Overlay returns a clone of base with every key present in d written over it.
func (d *Deprecation) Overlay(base *Settings) (*Settings, error) {
	merged := base.Clone()
	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		if err := merged.Set(k, cloneValue(v)); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// PickDeprecation keeps only the allowlisted keys of s.
func PickDeprecation(s *Settings, allowed []string) (Deprecation, error) {
	var d Deprecation
	for _, k := range allowed {
		v, ok := s.Get(k)
		if !ok {
			continue
		}
		if err := d.Set(k, v); err != nil {
			return Deprecation{}, err
		}
	}
	return d, nil
}

// DeprecationFromMap builds a Deprecation from a decoded document.
func DeprecationFromMap(m map[string]any) (Deprecation, error) {
	var d Deprecation
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if m[k] == nil {
			continue
		}
		if err := d.Set(k, m[k]); err != nil {
			return Deprecation{}, err
		}
	}
	return d, nil
}

// MarshalJSON renders the entry the same way Settings does.
func (d Deprecation) MarshalJSON() ([]byte, error) {
	out := make(map[string]any)
	for _, k := range d.Keys() {
		v, _ := d.Get(k)
		out[k] = ExportValue(v)
	}
	return json.Marshal(out)
}
