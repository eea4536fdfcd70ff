package codec

import (
	"github.com/deppfellow/oddstable/internal/errs"
	"github.com/deppfellow/oddstable/internal/model"
)

// Assemble rebuilds a record from its row key and the cells read for it.
//
// Info columns fall back to model.DefaultInfo when absent. Every odds column of
// the key's market must be present, otherwise a MISSING_COLUMN error naming
// the qualifier is returned. The odds variant always follows the key's market.
func Assemble(key string, cells CellMap, delim string) (*model.Record, error) {
	id, err := Decode(key, delim)
	if err != nil {
		return nil, err
	}

	info := model.DefaultInfo()
	if v, ok := cells[colScore]; ok {
		info.Score = v
	}
	if v, ok := cells[colPeriodState]; ok {
		info.PeriodState = v
	}
	if v, ok := cells[colElapsedTime]; ok {
		info.ElapsedTime = v
	}

	values := make(map[string]string, 3)
	for _, col := range ColumnsForMarket(id.Market) {
		v, ok := cells[col]
		if !ok {
			return nil, errs.NewMissingColumn(key, col.String())
		}
		values[col.Qualifier] = v
	}

	var odds model.Odds
	switch KindForMarket(id.Market) {
	case model.KindOneXTwo:
		odds = model.OneXTwo{
			Home: values[QualHome],
			Away: values[QualAway],
			Draw: values[QualDraw],
		}
	case model.KindAsianHandicap:
		odds = model.AsianHandicap{
			Line: values[QualLine],
			Home: values[QualHome],
			Away: values[QualAway],
		}
	default:
		odds = model.OverUnder{
			Line:  values[QualLine],
			Over:  values[QualOver],
			Under: values[QualUnder],
		}
	}

	return &model.Record{
		Key:      key,
		Identity: id,
		Info:     info,
		Odds:     odds,
	}, nil
}
