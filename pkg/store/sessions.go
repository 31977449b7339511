package store

// GetSession returns the record for name.
func (s *Store) GetSession(name string) (SessionMeta, bool, error) {
	doc, err := s.Load()
	if err != nil {
		return SessionMeta{}, false, err
	}
	meta, ok := doc.Sessions[name]
	if !ok {
		return SessionMeta{}, false, nil
	}
	return meta.Clone(), true, nil
}

// SetSession replaces the record for name.
func (s *Store) SetSession(name string, meta SessionMeta) error {
	return s.modify(func(doc *Document) (bool, error) {
		doc.Sessions[name] = meta.Clone()
		return true, nil
	})
}

// UpdateSession shallow-merges patch into the record for name, creating it
// when absent. Applying the same patch twice leaves the same record.
func (s *Store) UpdateSession(name string, patch SessionPatch) error {
	return s.modify(func(doc *Document) (bool, error) {
		meta := doc.Sessions[name]
		if err := meta.Apply(patch); err != nil {
			return false, err
		}
		doc.Sessions[name] = meta
		return true, nil
	})
}

// DeleteSession removes the record for name. Removing an absent record is a
// no-op and leaves the file untouched.
func (s *Store) DeleteSession(name string) error {
	return s.modify(func(doc *Document) (bool, error) {
		if _, ok := doc.Sessions[name]; !ok {
			return false, nil
		}
		delete(doc.Sessions, name)
		return true, nil
	})
}

// RenameSession moves the record from oldName to newName, replacing whatever
// newName held. It reports false when oldName had no record.
func (s *Store) RenameSession(oldName, newName string) (bool, error) {
	moved := false
	err := s.modify(func(doc *Document) (bool, error) {
		meta, ok := doc.Sessions[oldName]
		if !ok {
			return false, nil
		}
		delete(doc.Sessions, oldName)
		doc.Sessions[newName] = meta
		moved = true
		return true, nil
	})
	return moved, err
}

// Sessions returns a copy of every session record.
func (s *Store) Sessions() (map[string]SessionMeta, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]SessionMeta, len(doc.Sessions))
	for name, meta := range doc.Sessions {
		out[name] = meta.Clone()
	}
	return out, nil
}

// Cleanup drops records whose session is not in active and returns the
// names removed.
func (s *Store) Cleanup(active []string) ([]string, error) {
	keep := make(map[string]bool, len(active))
	for _, name := range active {
		keep[name] = true
	}

	var removed []string
	err := s.modify(func(doc *Document) (bool, error) {
		for name := range doc.Sessions {
			if !keep[name] {
				delete(doc.Sessions, name)
				removed = append(removed, name)
			}
		}
		return len(removed) > 0, nil
	})
	return removed, err
}
