package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/deppfellow/oddstable/internal/errs"
	"github.com/deppfellow/oddstable/internal/model"
)

// PrematchState is the game_state value that is stored as period "pre".
const PrematchState = "prematch"

// PrematchPeriod is the short period code for PrematchState.
const PrematchPeriod = "pre"

// SourceRow is one ingest record, with fields named after the CSV header.
type SourceRow struct {
	OddSeq    string `csv:"oddSeq"`
	CreatedTS string `csv:"created_ts" validate:"required"`
	Market    string `csv:"market" validate:"required"`
	GameState string `csv:"game_state"`
	Score     string `csv:"score"`
	GameTime  string `csv:"game_time"`
	Vendor    string `csv:"vendor" validate:"required"`
	K         string `csv:"k"`
	H         string `csv:"h"`
	A         string `csv:"a"`
	D         string `csv:"d"`
	Ov        string `csv:"ov"`
	Ud        string `csv:"ud"`
}

// Batch carries the identity fields an ingest run applies to every row.
type Batch struct {
	SportID  string `koanf:"sport_id" validate:"required"`
	LeagueID string `koanf:"league_id" validate:"required"`
	MatchID  string `koanf:"match_id" validate:"required"`
}

// Write is a single-row write: the key plus every cell to set on it.
type Write struct {
	Key   string
	Cells []Cell
}

// Serializer turns source rows into writes.
type Serializer struct {
	Batch     Batch
	Delimiter string

	// Location is applied to timestamps without a UTC offset. Nil means UTC.
	Location *time.Location
}

// NormalizePeriod maps the pre-match game state to its short code and passes
// every other value through.
func NormalizePeriod(gameState string) string {
	if gameState == PrematchState {
		return PrematchPeriod
	}
	return gameState
}

// timestampLayouts are tried in order. Fractional seconds are accepted after
// the seconds field by time.Parse even when the layout omits them.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"2006-01-02 15",
	"2006-01-02",
}

// ParseTimestamp converts an ISO-8601 timestamp to epoch seconds, dropping
// sub-second precision. Values without an offset are read in loc.
func ParseTimestamp(value string, loc *time.Location) (int64, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t.Unix(), nil
		}
	}
	return 0, fmt.Errorf("%q is not an ISO-8601 timestamp", value)
}

func normalizeSeq(seq string) (string, error) {
	seq = strings.TrimSpace(seq)
	if seq == "" {
		return "0", nil
	}
	if _, err := strconv.ParseInt(seq, 10, 64); err != nil {
		return "", fmt.Errorf("%q is not an integer", seq)
	}
	return seq, nil
}

// Identity derives the row identity of a source row.
func (s *Serializer) Identity(row SourceRow) (model.Identity, error) {
	ts, err := ParseTimestamp(row.CreatedTS, s.Location)
	if err != nil {
		return model.Identity{}, errs.NewParseFailure("created_ts", err)
	}

	seq, err := normalizeSeq(row.OddSeq)
	if err != nil {
		return model.Identity{}, errs.NewParseFailure("oddSeq", err)
	}

	id := model.Identity{
		SportID:   s.Batch.SportID,
		LeagueID:  s.Batch.LeagueID,
		MatchID:   s.Batch.MatchID,
		Market:    row.Market,
		Seq:       seq,
		Period:    NormalizePeriod(row.GameState),
		Vendor:    row.Vendor,
		Timestamp: ts,
	}
	if err := id.Validate(delimiterOrDefault(s.Delimiter)); err != nil {
		return model.Identity{}, err
	}
	return id, nil
}

// Serialize builds the write for one source row. Info cells come first, then
// the odds cells of the row's market in ColumnsForMarket order.
func (s *Serializer) Serialize(row SourceRow) (Write, error) {
	id, err := s.Identity(row)
	if err != nil {
		return Write{}, err
	}

	source := map[Column]string{
		colScore:       row.Score,
		colPeriodState: row.GameState,
		colElapsedTime: row.GameTime,
		colLine:        row.K,
		colHome:        row.H,
		colAway:        row.A,
		colDraw:        row.D,
		colOver:        row.Ov,
		colUnder:       row.Ud,
	}

	columns := append(InfoColumns(), ColumnsForMarket(row.Market)...)
	cells := make([]Cell, 0, len(columns))
	for _, col := range columns {
		cells = append(cells, Cell{Column: col, Value: source[col]})
	}

	return Write{
		Key:   Encode(id, s.Delimiter),
		Cells: cells,
	}, nil
}
