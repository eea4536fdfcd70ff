// Package model holds the typed records the query flow hands back to callers.
//
// A stored odds row is flat (a row key plus `info:*` and `odds:*` cells).
// Here it is reassembled into an Identity, an Info block and one of three
// Odds variants chosen by the market encoded in the key.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/deppfellow/oddstable/internal/errs"
)

// OddsKind names the odds variant carried by a record.
type OddsKind string

const (
	KindOneXTwo       OddsKind = "1x2"
	KindAsianHandicap OddsKind = "ah"
	KindOverUnder     OddsKind = "ou"
)

// Identity is the set of fields encoded into a row key, in key order.
type Identity struct {
	SportID   string `json:"sid"`
	LeagueID  string `json:"lid"`
	MatchID   string `json:"mid"`
	Market    string `json:"mkt"`
	Seq       string `json:"seq"`
	Period    string `json:"per"`
	Vendor    string `json:"vendor"`
	Timestamp int64  `json:"ts"`
}

// TimestampString is the decimal form used inside row keys.
func (id Identity) TimestampString() string {
	return strconv.FormatInt(id.Timestamp, 10)
}

// Validate reports the first key field that contains delim. Such a value would
// shift every later field when the key is split again.
func (id Identity) Validate(delim string) error {
	fields := []struct {
		name  string
		value string
	}{
		{"sport_id", id.SportID},
		{"league_id", id.LeagueID},
		{"match_id", id.MatchID},
		{"market", id.Market},
		{"seq", id.Seq},
		{"period", id.Period},
		{"vendor", id.Vendor},
	}
	for _, f := range fields {
		if delim != "" && strings.Contains(f.value, delim) {
			return errs.NewParseFailure(f.name, fmt.Errorf("value %q contains key delimiter %q", f.value, delim))
		}
	}
	return nil
}

// Info is the match state captured alongside a betting line.
type Info struct {
	Score       string `json:"s"`
	PeriodState string `json:"per"`
	ElapsedTime string `json:"et"`
}

// DefaultInfo returns the values used when an info column is absent.
func DefaultInfo() Info {
	return Info{
		Score:       "-",
		PeriodState: "",
		ElapsedTime: "-",
	}
}

// Odds is the closed set of odds payloads. Only the types in this package
// implement it.
type Odds interface {
	Kind() OddsKind
	isOdds()
}

// OneXTwo is a three-way market: home win, away win, draw.
type OneXTwo struct {
	Home string `json:"h"`
	Away string `json:"a"`
	Draw string `json:"d"`
}

// AsianHandicap is a point-spread market. Line is the handicap applied.
type AsianHandicap struct {
	Line string `json:"k"`
	Home string `json:"h"`
	Away string `json:"a"`
}

// OverUnder is a totals market around Line.
type OverUnder struct {
	Line  string `json:"k"`
	Over  string `json:"ovr"`
	Under string `json:"und"`
}

func (OneXTwo) Kind() OddsKind       { return KindOneXTwo }
func (AsianHandicap) Kind() OddsKind { return KindAsianHandicap }
func (OverUnder) Kind() OddsKind     { return KindOverUnder }

func (OneXTwo) isOdds()       {}
func (AsianHandicap) isOdds() {}
func (OverUnder) isOdds()     {}

// Record is one reconstructed odds row.
type Record struct {
	Key string `json:"-"`
	Identity
	Info Info `json:"info"`
	Odds Odds `json:"odds"`
}

// MarshalJSON flattens the identity next to info/odds and adds the odds kind,
// so each printed line is self-describing.
func (r Record) MarshalJSON() ([]byte, error) {
	type identity Identity
	var kind OddsKind
	if r.Odds != nil {
		kind = r.Odds.Kind()
	}
	return json.Marshal(struct {
		RowKey string `json:"rowkey"`
		identity
		Info     Info     `json:"info"`
		OddsKind OddsKind `json:"odds_kind"`
		Odds     Odds     `json:"odds"`
	}{
		RowKey:   r.Key,
		identity: identity(r.Identity),
		Info:     r.Info,
		OddsKind: kind,
		Odds:     r.Odds,
	})
}
