package providers

import "sort"

// identityTable maps lowercase service names to canonical TMDB provider
// identifiers. Some services carry more than one id where offerings
// merged or rebranded (Max absorbed HBO Max, Paramount+ has regional
// variants).
var identityTable = map[string][]int{
	"netflix":            {8},
	"hulu":               {15},
	"amazon prime video": {9},
	"prime video":        {9},
	"disney plus":        {337},
	"disney+":            {337},
	"max":                {384, 312},
	"hbo max":            {384, 312},
	"peacock":            {386},
	"apple tv plus":      {350},
	"apple tv+":          {350},
	"paramount plus":     {83, 531},
	"paramount+":         {83, 531},
	"crunchyroll":        {283},
	"hotstar":            {122},
	"disney+ hotstar":    {122},
	"jiocinema":          {220},
	"jiohotstar":         {122, 220},
}

// tableKeys holds the identity table keys in sorted order so substring
// lookups resolve the same way on every call.
var tableKeys = func() []string {
	keys := make([]string, 0, len(identityTable))
	for key := range identityTable {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}()

// KnownServices returns the canonical service names in the identity table.
func KnownServices() []string {
	names := make([]string, len(tableKeys))
	copy(names, tableKeys)
	return names
}
