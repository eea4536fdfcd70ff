// Package csvsource reads odds rows from delimited text with a header.
package csvsource

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/oddstable/internal/codec"
	"github.com/deppfellow/oddstable/internal/errs"
)

// RequiredHeader lists the header fields every input must carry.
var RequiredHeader = []string{
	"oddSeq", "created_ts", "market", "game_state", "score", "game_time",
	"vendor", "k", "h", "a", "d", "ov", "ud",
}

// Source yields one codec.SourceRow per data line.
type Source struct {
	reader *csv.Reader
	index  map[string]int
	width  int
	log    *zerolog.Logger

	extraColumns int
}

// NewSource reads and checks the header. A missing required field fails the
// whole input.
func NewSource(r io.Reader, delimiter rune, log *zerolog.Logger) (*Source, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(errs.NewInvalidRequest("input is empty"), "reading header")
		}
		return nil, errors.Wrap(err, "reading header")
	}

	s := &Source{
		reader: reader,
		index:  make(map[string]int, len(header)),
		width:  len(header),
		log:    log,
	}
	if err := s.processHeader(header); err != nil {
		return nil, errors.Wrapf(err, "processing header: %+v", header)
	}
	return s, nil
}

func (s *Source) processHeader(header []string) error {
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.TrimSpace(name)
		if _, dup := s.index[name]; !dup {
			s.index[name] = i
		}
	}

	var missing []string
	for _, name := range RequiredHeader {
		if _, ok := s.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errs.NewInvalidRequest("missing required header field(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// Next returns the next row and its 1-based line number. It returns io.EOF
// once the input is exhausted.
//
// A line that cannot be parsed or has fewer fields than the header yields a
// PARSE_FAILURE error for that line only; the following call moves on.
// Other errors are from the underlying reader and end the input.
func (s *Source) Next() (codec.SourceRow, int, error) {
	record, err := s.reader.Read()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return codec.SourceRow{}, pe.StartLine, errs.NewParseFailure("", pe).WithLine(pe.StartLine)
		}
		if err == io.EOF {
			s.reportExtraColumns()
			return codec.SourceRow{}, 0, io.EOF
		}
		return codec.SourceRow{}, 0, errors.Wrap(err, "reading input")
	}

	line, _ := s.reader.FieldPos(0)

	if len(record) < s.width {
		return codec.SourceRow{}, line, errs.NewParseFailure("",
			errors.Errorf("expected %d fields, got %d", s.width, len(record))).WithLine(line)
	}
	if len(record) > s.width {
		if s.extraColumns == 0 && s.log != nil {
			s.log.Warn().Int("line", line).Msg("ignoring additional column(s) not included in the header")
		}
		s.extraColumns++
	}

	get := func(name string) string {
		return record[s.index[name]]
	}

	return codec.SourceRow{
		OddSeq:    get("oddSeq"),
		CreatedTS: get("created_ts"),
		Market:    get("market"),
		GameState: get("game_state"),
		Score:     get("score"),
		GameTime:  get("game_time"),
		Vendor:    get("vendor"),
		K:         get("k"),
		H:         get("h"),
		A:         get("a"),
		D:         get("d"),
		Ov:        get("ov"),
		Ud:        get("ud"),
	}, line, nil
}

func (s *Source) reportExtraColumns() {
	if s.extraColumns > 0 && s.log != nil {
		s.log.Info().Int("rows", s.extraColumns).Msg("rows had more columns than the header")
		s.extraColumns = 0
	}
}
