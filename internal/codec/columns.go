package codec

import (
	"strings"

	"github.com/deppfellow/oddstable/internal/model"
)

// Column families.
const (
	FamilyInfo = "info"
	FamilyOdds = "odds"
)

// Column qualifiers.
const (
	QualScore       = "s"
	QualPeriodState = "per"
	QualElapsedTime = "et"

	QualLine  = "k"
	QualHome  = "h"
	QualAway  = "a"
	QualDraw  = "d"
	QualOver  = "ovr"
	QualUnder = "und"
)

// Column is a (family, qualifier) pair.
type Column struct {
	Family    string
	Qualifier string
}

// String returns the "family:qualifier" form Bigtable uses in ReadItem.Column.
func (c Column) String() string {
	return c.Family + ":" + c.Qualifier
}

// ParseColumn is the inverse of Column.String.
func ParseColumn(s string) (Column, bool) {
	fam, qual, ok := strings.Cut(s, ":")
	if !ok || fam == "" {
		return Column{}, false
	}
	return Column{Family: fam, Qualifier: qual}, true
}

// CellMap holds the latest value of each column of one row. A column that is
// not in the map is absent, which is not the same as an empty value.
type CellMap map[Column]string

// Cell is one value to write.
type Cell struct {
	Column Column
	Value  string
}

var (
	colScore       = Column{FamilyInfo, QualScore}
	colPeriodState = Column{FamilyInfo, QualPeriodState}
	colElapsedTime = Column{FamilyInfo, QualElapsedTime}

	colLine  = Column{FamilyOdds, QualLine}
	colHome  = Column{FamilyOdds, QualHome}
	colAway  = Column{FamilyOdds, QualAway}
	colDraw  = Column{FamilyOdds, QualDraw}
	colOver  = Column{FamilyOdds, QualOver}
	colUnder = Column{FamilyOdds, QualUnder}
)

// InfoColumns returns the fixed info columns: score, period state, elapsed time.
func InfoColumns() []Column {
	return []Column{colScore, colPeriodState, colElapsedTime}
}

// KindForMarket applies the market prefix rule: "1x2" first, then "ah",
// everything else is over/under.
func KindForMarket(market string) model.OddsKind {
	switch {
	case strings.HasPrefix(market, "1x2"):
		return model.KindOneXTwo
	case strings.HasPrefix(market, "ah"):
		return model.KindAsianHandicap
	default:
		return model.KindOverUnder
	}
}

// ColumnsForMarket returns the ordered odds columns a row of this market has.
func ColumnsForMarket(market string) []Column {
	switch KindForMarket(market) {
	case model.KindOneXTwo:
		return []Column{colHome, colAway, colDraw}
	case model.KindAsianHandicap:
		return []Column{colLine, colHome, colAway}
	default:
		return []Column{colLine, colOver, colUnder}
	}
}

// Families lists every column family the table needs.
func Families() []string {
	return []string{FamilyInfo, FamilyOdds}
}
