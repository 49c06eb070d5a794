package core

import "strings"

// FallbackCategory is offered when no category is registered for a type.
const FallbackCategory = "Lainnya"

// CategoryEntry maps a category label to its permitted transaction type.
type CategoryEntry struct {
	Name string
	Type TxType
}

// Registry is the ordered set of known categories. The zero value is empty.
type Registry struct {
	entries []CategoryEntry
}

// DefaultRegistry returns the seed categories.
func DefaultRegistry() Registry {
	return NewRegistry([]CategoryEntry{
		{"Penjualan", Inflow},
		{"Proyek", Inflow},
		{"Part-time", Inflow},
		{"Operasional", Outflow},
		{"Transport", Outflow},
		{"Bahan baku", Outflow},
		{"Lainnya", Outflow},
	})
}

// NewRegistry builds a registry, skipping invalid entries. Later duplicates
// overwrite the type of earlier ones.
func NewRegistry(entries []CategoryEntry) Registry {
	var r Registry
	for _, e := range entries {
		_ = r.Add(e.Name, e.Type)
	}
	return r
}

// Add registers name for typ, or updates the type if name already exists.
func (r *Registry) Add(name string, typ TxType) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategory
	}
	if !typ.IsValid() {
		return ErrInvalidType
	}
	for i := range r.entries {
		if r.entries[i].Name == name {
			r.entries[i].Type = typ
			return nil
		}
	}
	r.entries = append(r.entries, CategoryEntry{Name: name, Type: typ})
	return nil
}

// Remove deletes name. Unknown names are ignored.
func (r *Registry) Remove(name string) bool {
	for i := range r.entries {
		if r.entries[i].Name == name {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// TypeOf returns the type registered for name.
func (r Registry) TypeOf(name string) (TxType, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e.Type, true
		}
	}
	return "", false
}

// ForType lists the categories permitted for typ, in registration order.
func (r Registry) ForType(typ TxType) []string {
	var out []string
	for _, e := range r.entries {
		if e.Type == typ {
			out = append(out, e.Name)
		}
	}
	if len(out) == 0 {
		return []string{FallbackCategory}
	}
	return out
}

// Entries returns a copy of the registered categories.
func (r Registry) Entries() []CategoryEntry {
	return append([]CategoryEntry(nil), r.entries...)
}

func (r Registry) Len() int {
	return len(r.entries)
}
