package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
)

// A compact english stopword list; enough to keep boilerplate words from
// dominating subject similarity.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "our": true, "per": true, "please": true, "that": true,
	"the": true, "this": true, "to": true, "was": true, "will": true,
	"with": true, "you": true, "your": true,
}

var wordPattern = regexp.MustCompile(`[a-z0-9']+`)

// PreprocessSubject lowercases, strips reply prefixes, and removes stopwords.
func PreprocessSubject(subject string) string {
	words := wordPattern.FindAllString(strings.ToLower(CleanSubject(subject)), -1)
	kept := words[:0]
	for _, w := range words {
		if !stopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// Vectorizer is a TF-IDF vectorizer over preprocessed subjects, persisted
// between runs as JSON so clustering stays stable across batches.
type Vectorizer struct {
	DocFreq map[string]int `json:"docFreq"`
	Docs    int            `json:"docs"`
}

// NewVectorizer returns an unfitted vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{DocFreq: map[string]int{}}
}

// LoadVectorizer reads a persisted vectorizer. A missing or malformed file
// is "no data yet": a fresh vectorizer is returned, never an error.
func LoadVectorizer(path string) *Vectorizer {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("⚠️  Could not read vectorizer %s, creating a new one: %v", path, err)
		}
		return NewVectorizer()
	}
	var v Vectorizer
	if err := json.Unmarshal(data, &v); err != nil || v.DocFreq == nil {
		log.Printf("⚠️  Could not load vectorizer %s, creating a new one", path)
		return NewVectorizer()
	}
	return &v
}

// Save persists the vectorizer to path.
func (v *Vectorizer) Save(path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize vectorizer: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write vectorizer %s: %w", path, err)
	}
	return nil
}

// Fit folds a batch of preprocessed subjects into the document frequencies.
func (v *Vectorizer) Fit(subjects []string) {
	for _, subject := range subjects {
		v.Docs++
		seen := map[string]bool{}
		for _, w := range strings.Fields(subject) {
			if !seen[w] {
				seen[w] = true
				v.DocFreq[w]++
			}
		}
	}
}

// Transform produces an L2-normalized TF-IDF vector for one preprocessed
// subject.
func (v *Vectorizer) Transform(subject string) map[string]float64 {
	counts := map[string]int{}
	for _, w := range strings.Fields(subject) {
		counts[w]++
	}

	vector := map[string]float64{}
	var norm float64
	for w, tf := range counts {
		df := v.DocFreq[w]
		idf := math.Log(float64(1+v.Docs)/float64(1+df)) + 1
		weight := float64(tf) * idf
		vector[w] = weight
		norm += weight * weight
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for w := range vector {
			vector[w] /= norm
		}
	}
	return vector
}

func cosineDistance(a, b map[string]float64) float64 {
	var dot float64
	for w, x := range a {
		dot += x * b[w]
	}
	// Vectors are unit-normalized, so cosine distance is 1 - dot.
	return 1 - dot
}

// ClusterSubjects groups subject indices by single-linkage agglomerative
// clustering: any pair closer than threshold ends up in the same cluster.
// Returned clusters are ordered by their lowest member index.
func ClusterSubjects(vectors []map[string]float64, threshold float64) [][]int {
	parent := make([]int, len(vectors))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			if cosineDistance(vectors[i], vectors[j]) < threshold {
				parent[find(j)] = find(i)
			}
		}
	}

	members := map[int][]int{}
	var roots []int
	for i := range vectors {
		root := find(i)
		if len(members[root]) == 0 {
			roots = append(roots, root)
		}
		members[root] = append(members[root], i)
	}
	sort.Ints(roots)

	clusters := make([][]int, 0, len(roots))
	for _, root := range roots {
		clusters = append(clusters, members[root])
	}
	return clusters
}
