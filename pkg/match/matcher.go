package match

import (
	"cmp"
	"slices"
	"strings"

	"github.com/macropower/gitprof/pkg/profile"
)

// Config controls which fields are compared and which results are kept.
type Config struct {
	// MinScore is the minimum weighted score for a profile to be included.
	MinScore float64
	// BestMatchThreshold is the minimum score for [Matcher.FindBestMatch].
	// It is expected to be at least MinScore.
	BestMatchThreshold float64
	// MaxResults limits the number of results. Zero or less is unlimited.
	MaxResults int

	MatchName        bool
	MatchEmail       bool
	MatchUserName    bool
	MatchVaultName   bool
	MatchSSHKeyTitle bool
}

// DefaultConfig returns the default [Config].
func DefaultConfig() Config {
	return Config{
		MinScore:           0.3,
		BestMatchThreshold: 0.6,
		MaxResults:         10,
		MatchName:          true,
		MatchEmail:         true,
		MatchUserName:      true,
		MatchVaultName:     true,
		MatchSSHKeyTitle:   true,
	}
}

// FieldMatch records how well one profile field matched the query.
type FieldMatch struct {
	// MatchedText is the query when the field contains it verbatim
	// (ignoring case), and empty otherwise.
	MatchedText string  `json:"matchedText,omitempty"`
	Field       Field   `json:"field"`
	Score       float64 `json:"score"`
}

// Result is a profile scored against a query.
type Result struct {
	Profile *profile.Profile `json:"profile"`
	// Algorithm is the name of the primary algorithm.
	Algorithm    string       `json:"algorithm"`
	FieldMatches []FieldMatch `json:"fieldMatches"`
	Score        float64      `json:"score"`
}

// Matcher scores profiles against free-text queries.
type Matcher struct {
	primary   Algorithm
	fallbacks []Algorithm
	config    Config
}

// MatcherOpt is a functional option for configuring a [Matcher].
type MatcherOpt func(*Matcher)

// WithPrimary sets the primary algorithm. The default is [Fuzzy].
func WithPrimary(a Algorithm) MatcherOpt {
	return func(m *Matcher) {
		m.primary = a
	}
}

// WithFallbacks sets the fallback algorithms. The default is [Substring]
// followed by [Levenshtein].
func WithFallbacks(as ...Algorithm) MatcherOpt {
	return func(m *Matcher) {
		m.fallbacks = as
	}
}

// NewMatcher creates a new [Matcher].
func NewMatcher(cfg Config, opts ...MatcherOpt) *Matcher {
	m := &Matcher{
		config:    cfg,
		primary:   Fuzzy{},
		fallbacks: []Algorithm{Substring{}, Levenshtein{}},
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Config returns the matcher's configuration.
func (m *Matcher) Config() Config {
	return m.config
}

// ScoreField scores a single field value. It returns false when no algorithm
// produced a positive score.
func (m *Matcher) ScoreField(query, value string, field Field) (FieldMatch, bool) {
	score := m.primary.Score(query, value)
	for _, a := range m.fallbacks {
		score = max(score, a.Score(query, value))
	}

	if score <= 0 {
		return FieldMatch{}, false
	}

	fm := FieldMatch{
		Field: field,
		Score: score,
	}
	if containsFold(value, query) {
		fm.MatchedText = query
	}

	return fm, true
}

// ScoreProfile scores p against query. It returns false when no enabled field
// matched or the weighted score is below [Config.MinScore].
func (m *Matcher) ScoreProfile(query string, p *profile.Profile) (Result, bool) {
	var (
		matches     []FieldMatch
		weighted    float64
		totalWeight float64
	)

	for _, fv := range m.fieldValues(p) {
		fm, ok := m.ScoreField(query, fv.value, fv.field)
		if !ok {
			continue
		}

		matches = append(matches, fm)
		weighted += fm.Score * fm.Field.Weight()
		totalWeight += fm.Field.Weight()
	}

	if len(matches) == 0 || totalWeight == 0 {
		return Result{}, false
	}

	score := weighted / totalWeight
	if score < m.config.MinScore {
		return Result{}, false
	}

	return Result{
		Profile:      p,
		Score:        score,
		Algorithm:    m.primary.Name(),
		FieldMatches: matches,
	}, true
}

// FindMatches returns the profiles matching query, best first. Equal scores
// are ordered by profile name.
func (m *Matcher) FindMatches(query string, profiles []*profile.Profile) []Result {
	if strings.TrimSpace(query) == "" || len(profiles) == 0 {
		return nil
	}

	results := []Result{}
	for _, p := range profiles {
		r, ok := m.ScoreProfile(query, p)
		if ok {
			results = append(results, r)
		}
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}

		return strings.Compare(a.Profile.Name, b.Profile.Name)
	})

	if m.config.MaxResults > 0 && len(results) > m.config.MaxResults {
		results = results[:m.config.MaxResults]
	}

	return results
}

// FindBestMatch returns the top match if it reaches
// [Config.BestMatchThreshold].
func (m *Matcher) FindBestMatch(query string, profiles []*profile.Profile) (Result, bool) {
	results := m.FindMatches(query, profiles)
	if len(results) == 0 || results[0].Score < m.config.BestMatchThreshold {
		return Result{}, false
	}

	return results[0], true
}

type fieldValue struct {
	value string
	field Field
}

func (m *Matcher) fieldValues(p *profile.Profile) []fieldValue {
	candidates := []struct {
		value   string
		field   Field
		enabled bool
	}{
		{p.Name, FieldName, m.config.MatchName},
		{p.GitUserEmail, FieldEmail, m.config.MatchEmail},
		{p.GitUserName, FieldUserName, m.config.MatchUserName},
		{p.VaultName, FieldVaultName, m.config.MatchVaultName},
		{p.SSHKeyTitle, FieldSSHKeyTitle, m.config.MatchSSHKeyTitle},
	}

	values := make([]fieldValue, 0, len(candidates))
	for _, c := range candidates {
		if c.enabled && c.value != "" {
			values = append(values, fieldValue{value: c.value, field: c.field})
		}
	}

	return values
}
