package manifest

// LocationIndex records where every name, hash and source URL was declared.
// Any key with more than one location is a conflict.
type LocationIndex struct {
	Names  map[string][]Location
	Hashes map[string][]Location
	URLs   map[string][]Location
}

// NewLocationIndex returns an empty index.
func NewLocationIndex() *LocationIndex {
	return &LocationIndex{
		Names:  make(map[string][]Location),
		Hashes: make(map[string][]Location),
		URLs:   make(map[string][]Location),
	}
}

// Add records the location of e. Legacy entries marked skip-validation are left
// out of the name and hash maps.
func (idx *LocationIndex) Add(e Entry) {
	switch o := e.Origin.(type) {
	case LegacyOrigin:
		if o.SkipValidation {
			return
		}
	case URLOrigin:
		key := o.URL.String()
		idx.URLs[key] = append(idx.URLs[key], e.Location)
	}
	idx.Names[e.Name] = append(idx.Names[e.Name], e.Location)
	idx.Hashes[e.SHA256] = append(idx.Hashes[e.SHA256], e.Location)
}
