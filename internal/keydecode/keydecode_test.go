package keydecode

import (
	"testing"

	"github.com/darshan-rambhia/fleetwatch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionalDecode(t *testing.T) {
	tests := []struct {
		name string
		kind string
		raw  string
		want Key
	}{
		{"disk simple", model.KindDisk, "ada0_temperature", Key{"ada0", "temperature"}},
		{"disk entity with hyphen", model.KindDisk, "nvme-0_temperature", Key{"nvme-0", "temperature"}},
		{"replication simple", model.KindReplication, "tank-backup_status", Key{"tank-backup", "status"}},
		{"pool simple", model.KindPool, "tank_used", Key{"tank", "used"}},
		{"pool multi-word attribute", model.KindPoolHealth, "tank_scrub_last", Key{"tank", "scrub_last"}},
		{"pool health resilver", model.KindPoolHealth, "tank_resilver_status", Key{"tank", "resilver_status"}},
		{"no underscore disk", model.KindDisk, "ada0", Key{"ada0", DefaultAttribute}},
		{"no underscore pool", model.KindPool, "tank", Key{"tank", DefaultAttribute}},
		{"empty name", model.KindDisk, "", Key{"", DefaultAttribute}},
		{"trailing underscore", model.KindDisk, "ada0_", Key{"ada0", ""}},
		{"leading underscore pool", model.KindPool, "_used", Key{"", "used"}},
		{"unknown kind splits rightmost", "cpu", "core0_usage_pct", Key{"core0_usage", "pct"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Positional{}.Decode(tt.kind, tt.raw))
		})
	}
}

// The legacy convention corrupts multi-word disk and replication attributes.
// These cases pin that behaviour so it cannot drift silently.
func TestPositionalDecode_PinnedAmbiguousSplits(t *testing.T) {
	tests := []struct {
		kind string
		raw  string
		want Key
	}{
		{model.KindDisk, "ada0_smart_status", Key{"ada0_smart", "status"}},
		{model.KindDisk, "ada0_reallocated_sectors", Key{"ada0_reallocated", "sectors"}},
		{model.KindDisk, "ada0_pending_sectors", Key{"ada0_pending", "sectors"}},
		{model.KindDisk, "ada0_read_errors", Key{"ada0_read", "errors"}},
		{model.KindDisk, "ada0_power_hours", Key{"ada0_power", "hours"}},
		{model.KindReplication, "task_last_run", Key{"task_last", "run"}},
		{model.KindReplication, "tank-offsite_last_run", Key{"tank-offsite_last", "run"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Positional{}.Decode(tt.kind, tt.raw))
		})
	}
}

func TestVocabularyDecode(t *testing.T) {
	v := NewVocabulary(DefaultVocabulary())

	tests := []struct {
		kind string
		raw  string
		want Key
	}{
		{model.KindDisk, "ada0_temperature", Key{"ada0", "temperature"}},
		{model.KindDisk, "ada0_smart_status", Key{"ada0", "smart_status"}},
		{model.KindDisk, "da_1_reallocated_sectors", Key{"da_1", "reallocated_sectors"}},
		{model.KindDisk, "ada0_power_hours", Key{"ada0", "power_hours"}},
		{model.KindReplication, "task_last_run", Key{"task", "last_run"}},
		{model.KindReplication, "tank_to_offsite_status", Key{"tank_to_offsite", "status"}},
		{model.KindPool, "tank_used", Key{"tank", "used"}},
		{model.KindPoolHealth, "tank_scrub_last", Key{"tank", "scrub_last"}},
		// unknown attribute falls back to the positional rule
		{model.KindDisk, "ada0_wear_level", Key{"ada0_wear", "level"}},
		// a bare attribute name leaves no entity and falls back
		{model.KindDisk, "temperature", Key{"temperature", DefaultAttribute}},
		{model.KindDisk, "_temperature", Key{"", "temperature"}},
		{"cpu", "core0_usage", Key{"core0", "usage"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Decode(tt.kind, tt.raw))
		})
	}
}

func TestVocabulary_LongestSuffixWins(t *testing.T) {
	v := NewVocabulary(map[string][]string{
		"x": {"status", "smart_status"},
	})
	assert.Equal(t, Key{"ada0", "smart_status"}, v.Decode("x", "ada0_smart_status"))
}

func TestDecode_Deterministic(t *testing.T) {
	decoders := []Decoder{Positional{}, NewVocabulary(DefaultVocabulary())}
	for _, d := range decoders {
		for range 3 {
			assert.Equal(t, d.Decode(model.KindDisk, "ada0_smart_status"), d.Decode(model.KindDisk, "ada0_smart_status"))
		}
	}
}

func TestNew(t *testing.T) {
	d, err := New("")
	require.NoError(t, err)
	assert.Equal(t, StrategyPositional, d.Name())

	d, err = New(StrategyVocabulary)
	require.NoError(t, err)
	assert.Equal(t, StrategyVocabulary, d.Name())

	_, err = New("bogus")
	assert.Error(t, err)
}

func FuzzDecode(f *testing.F) {
	f.Add(model.KindDisk, "ada0_smart_status")
	f.Add(model.KindPool, "tank_scrub_last")
	f.Add(model.KindReplication, "_")
	f.Add("", "")

	v := NewVocabulary(DefaultVocabulary())
	f.Fuzz(func(t *testing.T, kind, raw string) {
		for _, d := range []Decoder{Positional{}, v} {
			k := d.Decode(kind, raw)
			if k.Attribute == DefaultAttribute && k.EntityID == raw {
				continue
			}
			// every other split must reassemble to the raw name
			if k.EntityID+"_"+k.Attribute != raw {
				t.Fatalf("%s: %q decoded to %+v", d.Name(), raw, k)
			}
		}
	})
}
