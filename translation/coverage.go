package translation

import "sort"

type Coverage struct {
	Locale     string  `json:"locale"`
	Translated int     `json:"translated"`
	Total      int     `json:"total"`
	Stale      int     `json:"stale"`
	Percent    float64 `json:"percent"`
}

// Measure computes per-locale coverage of the source keys.
func Measure(source map[string]string, all []*Translation, locales []string) []*Coverage {
	byLocale := make(map[string]map[string]*Translation)
	for _, t := range all {
		m, ok := byLocale[t.Locale]
		if !ok {
			m = make(map[string]*Translation)
			byLocale[t.Locale] = m
		}
		m[t.Key] = t
	}

	results := make([]*Coverage, 0, len(locales))
	for _, locale := range locales {
		c := &Coverage{
			Locale: locale,
			Total:  len(source),
		}

		current := byLocale[locale]
		for key, text := range source {
			t, ok := current[key]
			if !ok || t.Value == "" {
				continue
			}

			c.Translated++
			if t.Checksum != "" && t.Checksum != Checksum(text) {
				c.Stale++
			}
		}

		if c.Total > 0 {
			c.Percent = float64(c.Translated) * 100 / float64(c.Total)
		}

		results = append(results, c)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Locale < results[j].Locale
	})

	return results
}

// Lookup indexes translations of a locale by key.
func Lookup(ts []*Translation) map[string]string {
	m := make(map[string]string, len(ts))
	for _, t := range ts {
		m[t.Key] = t.Value
	}
	return m
}
