// Package mlscore wraps the optional learned transparency regressor. The
// model is an on-disk artifact (a linear regressor over a hashed bag-of-words
// text encoding plus a few handcrafted features) that is loaded lazily at
// most once per process. A missing or corrupt artifact makes the scorer
// permanently unavailable for the process lifetime; callers treat that as a
// soft condition and fall back to rule-based scoring.
package mlscore

import (
	"encoding/json"
	"hash/fnv"
	"math"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// encoderHashedBOW is the only encoder scheme this build understands.
const encoderHashedBOW = "hashed-bow/v1"

// encodeBatchSize bounds memory while encoding: texts are embedded in small
// fixed-size groups, not all at once. This is not a concurrency mechanism.
const encodeBatchSize = 4

// artifact is the serialized regressor bundle. The file is treated as an
// opaque, versioned, swappable dependency.
type artifact struct {
	Version   string    `json:"version"`
	Encoder   string    `json:"encoder"`
	Dim       int       `json:"dim"`
	Intercept float64   `json:"intercept"`
	Weights   []float64 `json:"weights"`
}

// handPatterns are the regex category flags appended to the embedding,
// conceptually parallel to the rule scorer's keyword tables but computed
// independently. Order is fixed: it must match the trained weight layout.
var handPatterns = [][]*regexp.Regexp{
	compileAll( // third-party review
		`second[- ]party opinion`,
		`external review`,
		`third[- ]party verification`,
		`assurance`,
		`spo by`,
		`sustainalytics`,
		`cicero`,
		`vigeo`,
	),
	compileAll( // annual reporting
		`annual report`,
		`annual reporting`,
	),
	compileAll( // semi-annual reporting
		`semi[- ]annual`,
		`semiannual`,
	),
	compileAll( // CO2 KPIs
		`\bco2\b`,
		`carbon emissions`,
		`greenhouse gas`,
		`\bghg\b`,
	),
	compileAll( // energy KPIs
		`mwh`,
		`kwh`,
		`kw\b`,
		`energy efficiency`,
		`renewable energy`,
	),
}

// handFeatureCount = category flags + numeric-token count.
var handFeatureCount = len(handPatterns) + 1

var (
	tokenPattern   = regexp.MustCompile(`\w+`)
	numericPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Scorer scores disclosures with the trained regressor. Safe for concurrent
// use: the artifact loads under sync.Once and is read-only afterwards.
type Scorer struct {
	path string

	once sync.Once
	art  *artifact
	err  error
}

// New creates a Scorer for the artifact at path. Nothing is loaded until the
// first Available or Score call.
func New(path string) *Scorer {
	return &Scorer{path: path}
}

func (s *Scorer) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Warn("mlscore: model artifact not found, learned scoring disabled",
				zap.String("path", s.path))
			s.err = eris.Wrapf(err, "mlscore: artifact %s", s.path)
			return
		}
		zap.L().Warn("mlscore: failed to read model artifact",
			zap.String("path", s.path), zap.Error(err))
		s.err = eris.Wrapf(err, "mlscore: read artifact %s", s.path)
		return
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		zap.L().Warn("mlscore: model artifact is not valid JSON",
			zap.String("path", s.path), zap.Error(err))
		s.err = eris.Wrapf(err, "mlscore: decode artifact %s", s.path)
		return
	}

	if art.Encoder != encoderHashedBOW || art.Dim <= 0 || len(art.Weights) != art.Dim+handFeatureCount {
		zap.L().Warn("mlscore: model artifact has unsupported shape",
			zap.String("path", s.path),
			zap.String("encoder", art.Encoder),
			zap.Int("dim", art.Dim),
			zap.Int("weights", len(art.Weights)),
		)
		s.err = eris.Errorf("mlscore: unsupported artifact shape in %s", s.path)
		return
	}

	s.art = &art
	zap.L().Info("mlscore: model artifact loaded",
		zap.String("path", s.path),
		zap.String("version", art.Version),
		zap.Int("dim", art.Dim),
	)
}

// Available reports whether the learned model can score. The first call
// triggers the artifact load.
func (s *Scorer) Available() bool {
	s.once.Do(s.load)
	return s.art != nil
}

// Score returns a learned transparency score in [0,100] for normalized text.
// The second return is false when the model is unavailable.
func (s *Scorer) Score(text string) (float64, bool) {
	s.once.Do(s.load)
	if s.art == nil {
		return 0, false
	}

	emb := s.encodeBatch([]string{text})[0]
	feats := append(emb, handcrafted(text)...)

	score := s.art.Intercept
	for i, w := range s.art.Weights {
		score += w * feats[i]
	}
	return math.Max(0, math.Min(100, score)), true
}

// encodeBatch computes L2-normalized hashed bag-of-words embeddings for a
// batch of texts, processing at most encodeBatchSize texts at a time.
func (s *Scorer) encodeBatch(texts []string) [][]float64 {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += encodeBatchSize {
		end := min(start+encodeBatchSize, len(texts))
		for _, text := range texts[start:end] {
			out = append(out, s.encodeOne(text))
		}
	}
	return out
}

func (s *Scorer) encodeOne(text string) []float64 {
	vec := make([]float64, s.art.Dim)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%s.art.Dim]++
	}

	var sumSq float64
	for _, v := range vec {
		sumSq += v * v
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// handcrafted returns the fixed-order binary category flags plus the
// numeric-token count.
func handcrafted(text string) []float64 {
	lower := strings.ToLower(text)
	feats := make([]float64, 0, handFeatureCount)
	for _, patterns := range handPatterns {
		var flag float64
		for _, p := range patterns {
			if p.MatchString(lower) {
				flag = 1
				break
			}
		}
		feats = append(feats, flag)
	}
	feats = append(feats, float64(len(numericPattern.FindAllStringIndex(lower, -1))))
	return feats
}
