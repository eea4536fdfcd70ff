// Package codec maps odds records to and from their Bigtable representation.
//
// A row key is the eight identity fields joined by a delimiter:
//
//	<sport>:<league>:<match>:<market>:<seq>:<period>:<vendor>:<timestamp>
//
// The market decides which `odds:*` qualifiers a row carries. Both the
// serializer (ingest) and the assembler (query) go through ColumnsForMarket,
// so the two paths cannot drift apart.
package codec

import (
	"strconv"
	"strings"

	"github.com/deppfellow/oddstable/internal/errs"
	"github.com/deppfellow/oddstable/internal/model"
)

// DefaultDelimiter separates identity fields inside a row key.
const DefaultDelimiter = ":"

// keyParts is the number of identity fields in a row key.
const keyParts = 8

func delimiterOrDefault(delim string) string {
	if delim == "" {
		return DefaultDelimiter
	}
	return delim
}

// Encode joins the identity fields in key order. Field values must not contain
// the delimiter; see model.Identity.Validate.
func Encode(id model.Identity, delim string) string {
	return strings.Join([]string{
		id.SportID,
		id.LeagueID,
		id.MatchID,
		id.Market,
		id.Seq,
		id.Period,
		id.Vendor,
		id.TimestampString(),
	}, delimiterOrDefault(delim))
}

// Decode splits key into its identity fields. Anything other than exactly
// eight parts, or a timestamp part that is not a canonical decimal integer, is
// a malformed key.
func Decode(key, delim string) (model.Identity, error) {
	delim = delimiterOrDefault(delim)

	parts := strings.Split(key, delim)
	if len(parts) != keyParts {
		return model.Identity{}, errs.NewMalformedKey(key,
			"expected %d parts separated by %q, got %d", keyParts, delim, len(parts))
	}

	ts, err := strconv.ParseInt(parts[7], 10, 64)
	if err != nil {
		return model.Identity{}, errs.NewMalformedKey(key, "timestamp %q is not an integer", parts[7])
	}
	// Only the form Encode writes is accepted, so a decoded identity always
	// encodes back to the same key.
	if strconv.FormatInt(ts, 10) != parts[7] {
		return model.Identity{}, errs.NewMalformedKey(key, "timestamp %q is not in canonical decimal form", parts[7])
	}

	return model.Identity{
		SportID:   parts[0],
		LeagueID:  parts[1],
		MatchID:   parts[2],
		Market:    parts[3],
		Seq:       parts[4],
		Period:    parts[5],
		Vendor:    parts[6],
		Timestamp: ts,
	}, nil
}

// Prefix builds the leading part of a key from the given fields, ending in the
// delimiter, for prefix scans. Prefix(":", "1", "213") is "1:213:".
func Prefix(delim string, fields ...string) string {
	if len(fields) == 0 {
		return ""
	}
	delim = delimiterOrDefault(delim)
	return strings.Join(fields, delim) + delim
}
