package analysis

// maxDuplicatesListed caps the duplicate list; DuplicateValues keeps the full count.
const maxDuplicatesListed = 50

func analyzeIdentifier(in columnInput) *IdentifierStats {
	counts, n, missing := countValues(in.values)
	s := &IdentifierStats{Count: n, Missing: missing, Distinct: len(counts)}
	if n == 0 {
		in.warn("uniqueness_ratio", "no non-null values")
		return s
	}
	s.UniquenessRatio = defined(float64(len(counts)) / float64(n))
	dups := map[string]int{}
	for k, c := range counts {
		if c > 1 {
			dups[k] = c
		}
	}
	s.DuplicateValues = len(dups)
	s.Unique = len(dups) == 0
	if !s.Unique {
		s.Duplicates = sortedFrequencies(dups, n)
		if len(s.Duplicates) > maxDuplicatesListed {
			s.Duplicates = s.Duplicates[:maxDuplicatesListed]
		}
	}
	return s
}
