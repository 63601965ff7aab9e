package sanitizer

func NormalizeStringSlice(items []string, normalizer Strategy) []string {
	if len(items) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, normalized)
	}

	return result
}

func NormalizeEmails(emails []string) []string {
	return NormalizeStringSlice(emails, Email)
}

// NormalizeDates trims and deduplicates ISO date strings, keeping order.
func NormalizeDates(dates []string) []string {
	return NormalizeStringSlice(dates, trim)
}
