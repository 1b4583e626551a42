package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePitcherHand(t *testing.T) {
	tests := []struct {
		code string
		want PitcherHand
	}{
		{"L", PitcherHandLeft},
		{"r", PitcherHandRight},
		{" R ", PitcherHandRight},
		{"S", PitcherHandUnknown},
		{"", PitcherHandUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePitcherHand(tt.code))
		})
	}
}

func TestGameRecordTagOnce(t *testing.T) {
	g := GameRecord{}
	assert.False(t, g.IsTagged())

	assert.False(t, g.Tag(UnresolvedHand("timeout")))
	assert.Equal(t, PitcherHandUnknown, g.PitcherHand)

	assert.True(t, g.Tag(ResolvedHand(PitcherHandLeft)))
	assert.Equal(t, PitcherHandLeft, g.PitcherHand)

	// Tagged records never change or revert
	assert.False(t, g.Tag(ResolvedHand(PitcherHandRight)))
	assert.False(t, g.Tag(UnresolvedHand("late failure")))
	assert.Equal(t, PitcherHandLeft, g.PitcherHand)
}

func TestCheckpointAccumulator(t *testing.T) {
	runDate := time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC)
	cp := NewCheckpoint(runDate)

	assert.Equal(t, "2025-06-15", cp.DateKey())
	assert.Equal(t, 0, cp.Len())
	assert.False(t, cp.Has("592450"))

	cp.Put(&HitterAggregateRecord{Name: "Aaron Judge", ID: 592450})
	cp.Put(&HitterAggregateRecord{Name: "Juan Soto", ID: 665742})
	cp.Put(nil)

	assert.Equal(t, 2, cp.Len())
	assert.True(t, cp.Has("592450"))
	assert.Equal(t, []string{"592450", "665742"}, cp.IDs())

	rec, ok := cp.Get("665742")
	require.True(t, ok)
	assert.Equal(t, "Juan Soto", rec.Name)
}

func TestCheckpointJSONRoundTripKeepsKeys(t *testing.T) {
	cp := NewCheckpoint(time.Now())
	cp.Put(&HitterAggregateRecord{
		Name: "Aaron Judge",
		ID:   592450,
		Recent: map[string]StatLine{
			"7": {Games: 1, AtBats: 4, Hits: 2, AVG: decimal.RequireFromString("0.5")},
		},
	})

	data, err := json.Marshal(cp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"592450"`)
	assert.Contains(t, string(data), `"AVG":0.5`)

	loaded := NewCheckpoint(time.Now())
	require.NoError(t, json.Unmarshal(data, loaded))
	assert.True(t, loaded.Has("592450"))
	rec, _ := loaded.Get("592450")
	assert.True(t, rec.Recent["7"].AVG.Equal(decimal.RequireFromString("0.500")))
}

func TestCheckpointUnmarshalDropsNullEntries(t *testing.T) {
	cp := NewCheckpoint(time.Now())
	require.NoError(t, json.Unmarshal([]byte(`{"1": null, "2": {"name": "x", "id": 2}}`), cp))
	assert.False(t, cp.Has("1"))
	assert.True(t, cp.Has("2"))
	assert.Equal(t, 1, cp.Len())
}
