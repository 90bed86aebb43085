// Package keydecode splits composite metric names ("ada0_temperature") back
// into an entity id and an attribute.
//
// Two strategies exist. Positional reproduces the legacy convention exactly:
// disk and replication names split at the last underscore, pool names at the
// first. Multi-word attributes such as "smart_status" or "last_run" therefore
// decode wrongly under Positional ("ada0_smart_status" becomes entity
// "ada0_smart", attribute "status"). Vocabulary matches a known attribute set
// per kind, longest suffix first, and only falls back to the positional rule
// for names it does not recognise.
package keydecode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/darshan-rambhia/fleetwatch/internal/model"
)

// DefaultAttribute is used when a name carries no underscore at all.
const DefaultAttribute = "value"

// Strategy names accepted by New and the decoder config key.
const (
	StrategyPositional = "positional"
	StrategyVocabulary = "vocabulary"
)

// Key is a decoded composite metric name.
type Key struct {
	EntityID  string `json:"entity_id"`
	Attribute string `json:"attribute"`
}

// Decoder maps (resource kind, raw name) to a Key. Implementations are pure
// and never fail.
type Decoder interface {
	Decode(kind, rawName string) Key
	Name() string
}

// New returns the decoder for the given strategy name.
func New(strategy string) (Decoder, error) {
	switch strategy {
	case StrategyPositional, "":
		return Positional{}, nil
	case StrategyVocabulary:
		return NewVocabulary(DefaultVocabulary()), nil
	default:
		return nil, fmt.Errorf("unknown decoder strategy %q (expected %s or %s)", strategy, StrategyPositional, StrategyVocabulary)
	}
}

// Positional is the legacy decoder.
type Positional struct{}

func (Positional) Name() string { return StrategyPositional }

// Decode splits pool names at the first underscore and everything else at
// the last one.
func (Positional) Decode(kind, rawName string) Key {
	if leftmost(kind) {
		return splitFirst(rawName)
	}
	return splitLast(rawName)
}

// leftmost reports whether entity ids of the kind are underscore-free, so the
// name must be split at its first underscore.
func leftmost(kind string) bool {
	return kind == model.KindPool || kind == model.KindPoolHealth
}

func splitFirst(name string) Key {
	entity, attr, ok := strings.Cut(name, "_")
	if !ok {
		return Key{EntityID: name, Attribute: DefaultAttribute}
	}
	return Key{EntityID: entity, Attribute: attr}
}

func splitLast(name string) Key {
	i := strings.LastIndexByte(name, '_')
	if i < 0 {
		return Key{EntityID: name, Attribute: DefaultAttribute}
	}
	return Key{EntityID: name[:i], Attribute: name[i+1:]}
}

// Vocabulary decodes names by matching known attribute suffixes.
type Vocabulary struct {
	// suffixes per kind, longest first
	suffixes map[string][]string
}

// NewVocabulary builds a decoder from a kind → attribute names table.
func NewVocabulary(vocab map[string][]string) *Vocabulary {
	v := &Vocabulary{suffixes: make(map[string][]string, len(vocab))}
	for kind, attrs := range vocab {
		sorted := make([]string, len(attrs))
		copy(sorted, attrs)
		sort.SliceStable(sorted, func(i, j int) bool {
			return len(sorted[i]) > len(sorted[j])
		})
		v.suffixes[kind] = sorted
	}
	return v
}

func (*Vocabulary) Name() string { return StrategyVocabulary }

// Decode returns the entity and attribute for rawName. An attribute only
// matches when it is preceded by an underscore and leaves a non-empty entity.
func (v *Vocabulary) Decode(kind, rawName string) Key {
	for _, attr := range v.suffixes[kind] {
		entity, ok := strings.CutSuffix(rawName, "_"+attr)
		if ok && entity != "" {
			return Key{EntityID: entity, Attribute: attr}
		}
	}
	return Positional{}.Decode(kind, rawName)
}

// DefaultVocabulary lists the attributes pushed by the TrueNAS collectors.
func DefaultVocabulary() map[string][]string {
	pool := []string{
		"used", "total", "free", "state",
		"scrub_status", "scrub_last", "scrub_duration", "scrub_errors",
		"checksum_errors", "resilver_status", "resilver_progress",
	}
	return map[string][]string{
		model.KindDisk: {
			"temperature", "smart_status", "power_hours",
			"reallocated_sectors", "pending_sectors", "read_errors",
		},
		model.KindReplication: {
			"status", "last_run", "bytes", "duration",
		},
		model.KindPool:       pool,
		model.KindPoolHealth: pool,
	}
}
