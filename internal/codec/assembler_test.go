package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/oddstable/internal/codec"
	"github.com/deppfellow/oddstable/internal/errs"
	"github.com/deppfellow/oddstable/internal/model"
)

func cells(pairs ...string) codec.CellMap {
	m := codec.CellMap{}
	for i := 0; i+1 < len(pairs); i += 2 {
		col, _ := codec.ParseColumn(pairs[i])
		m[col] = pairs[i+1]
	}
	return m
}

func TestAssemble_OneXTwo(t *testing.T) {
	key := "1:213:7654321:1x2:0:pre:betradar:1595906157"
	in := cells(
		"info:s", "2-1",
		"info:per", "1h",
		"info:et", "45",
		"odds:h", "1.5",
		"odds:a", "2.1",
		"odds:d", "3.0",
	)

	rec, err := codec.Assemble(key, in, ":")
	require.NoError(t, err)

	assert.Equal(t, key, rec.Key)
	assert.Equal(t, "1", rec.SportID)
	assert.Equal(t, "1x2", rec.Market)
	assert.Equal(t, int64(1595906157), rec.Timestamp)
	assert.Equal(t, model.Info{Score: "2-1", PeriodState: "1h", ElapsedTime: "45"}, rec.Info)
	assert.Equal(t, model.OneXTwo{Home: "1.5", Away: "2.1", Draw: "3.0"}, rec.Odds)
	assert.Equal(t, model.KindOneXTwo, rec.Odds.Kind())
}

func TestAssemble_Variants(t *testing.T) {
	tests := []struct {
		name string
		key  string
		in   codec.CellMap
		want model.Odds
	}{
		{
			name: "asian handicap",
			key:  "1:213:7654321:ah:0:1h:betradar:1595906157",
			in:   cells("odds:k", "-0.5", "odds:h", "1.9", "odds:a", "1.95"),
			want: model.AsianHandicap{Line: "-0.5", Home: "1.9", Away: "1.95"},
		},
		{
			name: "over under",
			key:  "1:213:7654321:ou:0:pre:betradar:1595906157",
			in:   cells("odds:k", "2.5", "odds:ovr", "1.8", "odds:und", "2.0"),
			want: model.OverUnder{Line: "2.5", Over: "1.8", Under: "2.0"},
		},
		{
			name: "home over under",
			key:  "1:213:7654321:h-ou:1:pre:bet188:1595904940",
			in:   cells("odds:k", "1.5", "odds:ovr", "2.2", "odds:und", "1.6"),
			want: model.OverUnder{Line: "1.5", Over: "2.2", Under: "1.6"},
		},
		{
			name: "stray columns of another market are ignored",
			key:  "1:213:7654321:ah:0:pre:betradar:1595906157",
			in:   cells("odds:k", "0", "odds:h", "1.9", "odds:a", "1.9", "odds:d", "3.3"),
			want: model.AsianHandicap{Line: "0", Home: "1.9", Away: "1.9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := codec.Assemble(tt.key, tt.in, ":")
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Odds)
			assert.Equal(t, codec.KindForMarket(rec.Market), rec.Odds.Kind())
		})
	}
}

func TestAssemble_InfoDefaults(t *testing.T) {
	rec, err := codec.Assemble(
		"1:213:7654321:ou:0:pre:betradar:1595906157",
		cells("odds:k", "2.5", "odds:ovr", "1.8", "odds:und", "2.0"),
		":",
	)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultInfo(), rec.Info)
	assert.Equal(t, model.Info{Score: "-", PeriodState: "", ElapsedTime: "-"}, rec.Info)
}

func TestAssemble_EmptyValueIsNotAbsent(t *testing.T) {
	rec, err := codec.Assemble(
		"1:213:7654321:ou:0:pre:betradar:1595906157",
		cells("info:s", "", "info:et", "", "odds:k", "", "odds:ovr", "1.8", "odds:und", "2.0"),
		":",
	)
	require.NoError(t, err)
	assert.Equal(t, "", rec.Info.Score)
	assert.Equal(t, "", rec.Info.ElapsedTime)
	assert.Equal(t, model.OverUnder{Line: "", Over: "1.8", Under: "2.0"}, rec.Odds)
}

func TestAssemble_MissingColumn(t *testing.T) {
	key := "1:213:7654321:1x2:0:pre:betradar:1595906157"
	_, err := codec.Assemble(key, cells("odds:h", "1.5", "odds:a", "2.1"), ":")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrMissingColumn)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "odds:d", e.Column)
	assert.Equal(t, key, e.Key)
	assert.True(t, errs.IsRecordLocal(err))
}

func TestAssemble_MalformedKey(t *testing.T) {
	_, err := codec.Assemble("1:213:1x2", cells("odds:h", "1"), ":")
	assert.ErrorIs(t, err, errs.ErrMalformedKey)
}
