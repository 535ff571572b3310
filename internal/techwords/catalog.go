// Package techwords posts two random tech words every morning.
package techwords

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"

	"communitybot/internal/models"
)

// Catalog maps a category name to its words
type Catalog map[string][]models.TechWord

// LoadCatalog reads the catalog JSON file
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tech words: %w", err)
	}
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode tech words: %w", err)
	}
	return catalog, nil
}

// Pick returns up to n words, each from a different category. Categories and
// words are drawn uniformly.
func (c Catalog) Pick(rng *rand.Rand, n int) []models.TechWord {
	categories := make([]string, 0, len(c))
	for name, words := range c {
		if len(words) > 0 {
			categories = append(categories, name)
		}
	}
	// map order is random; sort so rng alone decides
	sort.Strings(categories)
	rng.Shuffle(len(categories), func(i, j int) {
		categories[i], categories[j] = categories[j], categories[i]
	})

	if n > len(categories) {
		n = len(categories)
	}
	picked := make([]models.TechWord, 0, n)
	for _, name := range categories[:n] {
		words := c[name]
		word := words[rng.IntN(len(words))]
		word.Category = name
		picked = append(picked, word)
	}
	return picked
}
