package customer

// MergeAddress merges entry into the address list: replaced in place when
// an address with the same key exists, appended otherwise. When the entry
// is default, every other address is forced non-default in the same pass,
// so the single-default invariant holds after any merge.
//
// Pure function; the returned slice is freshly allocated.
func MergeAddress(addresses []Address, entry Address) []Address {
	merged := make([]Address, 0, len(addresses)+1)
	replaced := false

	for _, a := range addresses {
		if a.Key == entry.Key {
			merged = append(merged, entry)
			replaced = true
			continue
		}
		if entry.IsDefault {
			a.IsDefault = false
		}
		merged = append(merged, a)
	}

	if !replaced {
		merged = append(merged, entry)
	}
	return merged
}

// HasDefault reports whether any address in the list is marked default.
func HasDefault(addresses []Address) bool {
	for _, a := range addresses {
		if a.IsDefault {
			return true
		}
	}
	return false
}

// FindByKey returns the address with the given key, or nil. An empty key
// never matches.
func FindByKey(addresses []Address, key string) *Address {
	if key == "" {
		return nil
	}
	for i := range addresses {
		if addresses[i].Key == key {
			return &addresses[i]
		}
	}
	return nil
}
