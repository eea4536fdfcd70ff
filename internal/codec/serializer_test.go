package codec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/oddstable/internal/codec"
	"github.com/deppfellow/oddstable/internal/errs"
)

func newSerializer() *codec.Serializer {
	return &codec.Serializer{
		Batch:     codec.Batch{SportID: "1", LeagueID: "213", MatchID: "7654321"},
		Delimiter: ":",
	}
}

func sourceRow() codec.SourceRow {
	return codec.SourceRow{
		OddSeq:    "",
		CreatedTS: "2020-07-28T03:15:57.123456+00:00",
		Market:    "1x2",
		GameState: "prematch",
		Score:     "0-0",
		GameTime:  "-",
		Vendor:    "betradar",
		K:         "",
		H:         "1.5",
		A:         "2.1",
		D:         "3.0",
		Ov:        "",
		Ud:        "",
	}
}

func TestSerialize_OneXTwo(t *testing.T) {
	w, err := newSerializer().Serialize(sourceRow())
	require.NoError(t, err)

	assert.Equal(t, "1:213:7654321:1x2:0:pre:betradar:1595906157", w.Key)
	assert.Equal(t, []codec.Cell{
		{Column: codec.Column{Family: "info", Qualifier: "s"}, Value: "0-0"},
		{Column: codec.Column{Family: "info", Qualifier: "per"}, Value: "prematch"},
		{Column: codec.Column{Family: "info", Qualifier: "et"}, Value: "-"},
		{Column: codec.Column{Family: "odds", Qualifier: "h"}, Value: "1.5"},
		{Column: codec.Column{Family: "odds", Qualifier: "a"}, Value: "2.1"},
		{Column: codec.Column{Family: "odds", Qualifier: "d"}, Value: "3.0"},
	}, w.Cells)
}

func TestSerialize_OverUnderReadsOvAndUd(t *testing.T) {
	row := sourceRow()
	row.Market = "a-ou"
	row.K, row.Ov, row.Ud = "2.5", "1.8", "2.0"
	row.OddSeq = "2"

	w, err := newSerializer().Serialize(row)
	require.NoError(t, err)
	assert.Equal(t, "1:213:7654321:a-ou:2:pre:betradar:1595906157", w.Key)

	got := map[string]string{}
	for _, c := range w.Cells[3:] {
		got[c.Column.String()] = c.Value
	}
	assert.Equal(t, map[string]string{"odds:k": "2.5", "odds:ovr": "1.8", "odds:und": "2.0"}, got)
}

func TestSerialize_Period(t *testing.T) {
	tests := []struct {
		gameState string
		period    string
	}{
		{gameState: "prematch", period: "pre"},
		{gameState: "1h", period: "1h"},
		{gameState: "ht", period: "ht"},
		{gameState: "Prematch", period: "Prematch"},
		{gameState: "", period: ""},
	}

	for _, tt := range tests {
		t.Run(tt.gameState, func(t *testing.T) {
			row := sourceRow()
			row.GameState = tt.gameState

			s := newSerializer()
			w, err := s.Serialize(row)
			require.NoError(t, err)

			id, err := codec.Decode(w.Key, ":")
			require.NoError(t, err)
			assert.Equal(t, tt.period, id.Period)
			assert.Equal(t, tt.gameState, w.Cells[1].Value, "info:per keeps the raw game state")
		})
	}
}

func TestSerialize_ParseFailure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *codec.SourceRow)
		column string
	}{
		{name: "bad timestamp", mutate: func(r *codec.SourceRow) { r.CreatedTS = "yesterday" }, column: "created_ts"},
		{name: "empty timestamp", mutate: func(r *codec.SourceRow) { r.CreatedTS = "" }, column: "created_ts"},
		{name: "bad sequence", mutate: func(r *codec.SourceRow) { r.OddSeq = "one" }, column: "oddSeq"},
		{name: "delimiter in vendor", mutate: func(r *codec.SourceRow) { r.Vendor = "bet:188" }, column: "vendor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := sourceRow()
			tt.mutate(&row)

			_, err := newSerializer().Serialize(row)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrParseFailure)
			assert.True(t, errs.IsRecordLocal(err))

			var e *errs.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.column, e.Column)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)

	tests := []struct {
		value string
		loc   *time.Location
		want  int64
	}{
		{value: "2020-07-28T03:15:57+00:00", want: 1595906157},
		{value: "2020-07-28T03:15:57Z", want: 1595906157},
		{value: "2020-07-28 03:15:57.999999+00:00", want: 1595906157},
		{value: "2020-07-28T11:15:57+08:00", want: 1595906157},
		{value: "2020-07-28T03:15:57", want: 1595906157},
		{value: "2020-07-28 03:15:57.5", want: 1595906157},
		{value: "2020-07-28 12:15:57", loc: tokyo, want: 1595906157},
		{value: "2020-07-28T03:15", want: 1595906100},
		{value: "2020-07-28T03", want: 1595905200},
		{value: "2020-07-28 03", want: 1595905200},
		{value: "1970-01-02", want: 86400},
		{value: " 2020-07-28T03:15:57Z ", want: 1595906157},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := codec.ParseTimestamp(tt.value, tt.loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
