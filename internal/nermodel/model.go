// Package nermodel implements a small trainable sequence labeler used by the
// local extraction strategy. It tags tokens with BIO labels for the three bid
// entities and learns incrementally from user-confirmed spans, so it can keep
// improving between runs without any external service.
package nermodel

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Entity labels the model can assign.
const (
	LabelProjectName = "PROJECT_NAME"
	LabelContractor  = "CONTRACTOR"
	LabelBidDueDate  = "BID_DUE_DATE"
)

const outsideTag = "O"

// Span is one labeled substring of the input text.
type Span struct {
	Label      string  `json:"label"`
	Text       string  `json:"text"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Entity is a training annotation: a half-open [Start,End) byte range.
type Entity struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

// Example is one training item.
type Example struct {
	Text     string   `json:"text"`
	Entities []Entity `json:"entities"`
}

// Model is a perceptron tagger over hand-rolled token features. Weights are
// serialized to JSON so the artifact stays inspectable.
type Model struct {
	Weights    map[string]map[string]float64 `json:"weights"`
	Iterations int                           `json:"iterations"`

	tags []string
}

// New returns a blank model.
func New() *Model {
	return &Model{Weights: make(map[string]map[string]float64)}
}

// Load reads a model artifact from path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model %s: %w", path, err)
	}
	if m.Weights == nil {
		m.Weights = make(map[string]map[string]float64)
	}
	return &m, nil
}

// Save writes the model artifact to path.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", " ")
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model %s: %w", path, err)
	}
	return nil
}

var tokenPattern = regexp.MustCompile(`[A-Za-z0-9']+|[^\sA-Za-z0-9']`)

type token struct {
	text  string
	start int
	end   int
}

func tokenize(text string) []token {
	matches := tokenPattern.FindAllStringIndex(text, -1)
	tokens := make([]token, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, token{text: text[m[0]:m[1]], start: m[0], end: m[1]})
	}
	return tokens
}

func shape(word string) string {
	var b strings.Builder
	for _, r := range word {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteByte('X')
		case r >= 'a' && r <= 'z':
			b.WriteByte('x')
		case r >= '0' && r <= '9':
			b.WriteByte('d')
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > 4 {
		s = s[:2] + ".." + s[len(s)-1:]
	}
	return s
}

func features(tokens []token, i int, prevTag string) []string {
	word := tokens[i].text
	lower := strings.ToLower(word)

	feats := []string{
		"w=" + lower,
		"shape=" + shape(word),
		"prevtag=" + prevTag,
		"bias",
	}
	if n := len(lower); n >= 3 {
		feats = append(feats, "suf3="+lower[n-3:])
	}
	if i > 0 {
		feats = append(feats, "w-1="+strings.ToLower(tokens[i-1].text))
	} else {
		feats = append(feats, "w-1=<s>")
	}
	if i+1 < len(tokens) {
		feats = append(feats, "w+1="+strings.ToLower(tokens[i+1].text))
	} else {
		feats = append(feats, "w+1=</s>")
	}
	return feats
}

func allTags() []string {
	tags := []string{outsideTag}
	for _, label := range []string{LabelProjectName, LabelContractor, LabelBidDueDate} {
		tags = append(tags, "B-"+label, "I-"+label)
	}
	return tags
}

func (m *Model) score(feats []string) map[string]float64 {
	scores := make(map[string]float64)
	for _, f := range feats {
		for tag, w := range m.Weights[f] {
			scores[tag] += w
		}
	}
	return scores
}

func (m *Model) bestTag(feats []string) (string, float64) {
	scores := m.score(feats)
	if m.tags == nil {
		m.tags = allTags()
	}

	best, bestScore := outsideTag, math.Inf(-1)
	var total float64
	for _, tag := range m.tags {
		s := scores[tag]
		total += math.Exp(s)
		if s > bestScore || (s == bestScore && tag == outsideTag) {
			best, bestScore = tag, s
		}
	}
	confidence := math.Exp(bestScore) / total
	return best, confidence
}

// Predict tags text and returns the labeled spans with per-span confidence
// (mean softmax probability of the span's tokens).
func (m *Model) Predict(text string) []Span {
	tokens := tokenize(text)
	var spans []Span

	prevTag := outsideTag
	var current *Span
	var confSum float64
	var confCount int

	flush := func() {
		if current != nil {
			current.Confidence = confSum / float64(confCount)
			current.Text = text[current.Start:current.End]
			spans = append(spans, *current)
			current = nil
		}
	}

	for i := range tokens {
		tag, conf := m.bestTag(features(tokens, i, prevTag))
		prevTag = tag

		label := strings.TrimPrefix(strings.TrimPrefix(tag, "B-"), "I-")
		switch {
		case tag == outsideTag:
			flush()
		case strings.HasPrefix(tag, "B-") || current == nil || current.Label != label:
			flush()
			current = &Span{Label: label, Start: tokens[i].start, End: tokens[i].end}
			confSum, confCount = conf, 1
		default:
			current.End = tokens[i].end
			confSum += conf
			confCount++
		}
	}
	flush()
	return spans
}

// goldTags converts an example's entity ranges to per-token BIO tags.
func goldTags(tokens []token, entities []Entity) []string {
	tags := make([]string, len(tokens))
	for i := range tags {
		tags[i] = outsideTag
	}
	for _, ent := range entities {
		inside := false
		for i, tok := range tokens {
			if tok.start >= ent.Start && tok.end <= ent.End {
				if inside {
					tags[i] = "I-" + ent.Label
				} else {
					tags[i] = "B-" + ent.Label
					inside = true
				}
			} else if inside && tok.start >= ent.End {
				break
			}
		}
	}
	return tags
}

func (m *Model) update(feats []string, gold, predicted string) {
	if gold == predicted {
		return
	}
	for _, f := range feats {
		row := m.Weights[f]
		if row == nil {
			row = make(map[string]float64)
			m.Weights[f] = row
		}
		row[gold]++
		row[predicted]--
	}
}

// Train runs a fixed number of shuffled minibatch iterations over examples,
// updating weights on every mispredicted token. logf, when non-nil, receives
// one progress line per iteration.
func (m *Model) Train(examples []Example, iterations, batchSize int, logf func(format string, args ...any)) {
	if len(examples) == 0 {
		return
	}
	if m.tags == nil {
		m.tags = allTags()
	}

	shuffled := make([]Example, len(examples))
	copy(shuffled, examples)

	for iter := 0; iter < iterations; iter++ {
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		var losses float64
		for start := 0; start < len(shuffled); start += batchSize {
			end := start + batchSize
			if end > len(shuffled) {
				end = len(shuffled)
			}
			for _, ex := range shuffled[start:end] {
				losses += m.trainExample(ex)
			}
		}
		m.Iterations++
		if logf != nil {
			logf("Iteration %d, losses: %.0f", iter, losses)
		}
	}
}

func (m *Model) trainExample(ex Example) float64 {
	tokens := tokenize(ex.Text)
	gold := goldTags(tokens, ex.Entities)

	var losses float64
	prevTag := outsideTag
	for i := range tokens {
		feats := features(tokens, i, prevTag)
		predicted, _ := m.bestTag(feats)
		m.update(feats, gold[i], predicted)
		if predicted != gold[i] {
			losses++
		}
		// Condition on the gold history while training.
		prevTag = gold[i]
	}
	return losses
}

// FeatureCount returns the number of distinct features with weights, mostly
// for diagnostics.
func (m *Model) FeatureCount() int {
	return len(m.Weights)
}

// TopFeatures returns up to n feature names sorted by absolute total weight,
// for the check-store diagnostic listing.
func (m *Model) TopFeatures(n int) []string {
	type weighted struct {
		name  string
		total float64
	}
	all := make([]weighted, 0, len(m.Weights))
	for name, row := range m.Weights {
		var total float64
		for _, w := range row {
			total += math.Abs(w)
		}
		all = append(all, weighted{name, total})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].total > all[j].total })
	if n > len(all) {
		n = len(all)
	}
	names := make([]string, n)
	for i := 0; i < n; i++ {
		names[i] = all[i].name
	}
	return names
}
