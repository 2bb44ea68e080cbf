package logic

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return -1
}

func without(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

// addToSet appends value unless it is already present.
func addToSet(set []string, value string) []string {
	if indexOf(set, value) >= 0 {
		return set
	}
	out := make([]string, len(set), len(set)+1)
	copy(out, set)
	return append(out, value)
}

// pushFront moves value to the head of list, dropping any earlier copy,
// and keeps at most limit entries.
func pushFront(list []string, value string, limit int) []string {
	out := make([]string, 0, limit)
	out = append(out, value)
	for _, v := range list {
		if len(out) == limit {
			break
		}
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

// Bounded de-duplicates list keeping first occurrences and truncates it
// to limit entries. Blank entries are dropped.
func Bounded(list []string, limit int) []string {
	out := make([]string, 0, limit)
	for _, v := range list {
		if len(out) == limit {
			break
		}
		if v != "" && indexOf(out, v) < 0 {
			out = append(out, v)
		}
	}
	return out
}
