package repository

// toggleID adds id to the set when absent and removes it when present,
// preserving the insertion order of the remaining elements.
func toggleID(ids []string, id string) []string {
	if containsID(ids, id) {
		return removeID(ids, id)
	}
	return append(ids, id)
}

// setID forces the presence of id in the set when present is true and its
// absence otherwise. The set never gains duplicates.
func setID(ids []string, id string, present bool) []string {
	if present {
		if containsID(ids, id) {
			return ids
		}
		return append(ids, id)
	}
	return removeID(ids, id)
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	filtered := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate != id {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}
