package reconcile

import (
	"encoding/csv"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/luandatrans/backoffice/internal/domain"
)

// Done is returned by RowIterator.Next when no rows remain.
var Done = errors.New("no more statement rows")

// Canonical nine-column bank export: movement date, effective date,
// description, value, currency, balance after, currency, operation number,
// document number.
const (
	canonicalDescriptionIndex = 2
	canonicalValueIndex       = 3
)

var dateCellPattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// Header names seen across the two banks' exports. Pre-region rows are
// fuzzy-matched against these to override the canonical column positions
// when a bank reorders its layout.
var (
	descriptionHeaders = []string{"descricao", "description", "historico"}
	valueHeaders       = []string{"valor", "montante", "amount"}
)

// StatementParser parses a raw bank statement CSV blob into a stream of
// transaction rows. It tolerates tab or comma delimiters, quoted fields and
// varying column counts; a malformed line is logged and skipped rather than
// aborting the statement.
type StatementParser struct {
	log zerolog.Logger
}

func NewStatementParser(log zerolog.Logger) *StatementParser {
	return &StatementParser{log: log}
}

// Parse splits the statement into lines and returns a lazy iterator over its
// transaction rows. All rows before the first row containing a DD/MM/YYYY
// cell are treated as header noise; every later row is a data row, since
// continuation rows may lack a date of their own.
func (p *StatementParser) Parse(text string) *RowIterator {
	return &RowIterator{
		lines:   strings.Split(text, "\n"),
		descIdx: canonicalDescriptionIndex,
		valIdx:  canonicalValueIndex,
		log:     p.log,
	}
}

// RowIterator yields statement rows one at a time. It is finite and not
// restartable; re-invoke Parse to read the statement again.
type RowIterator struct {
	lines    []string
	pos      int
	inRegion bool
	descIdx  int
	valIdx   int
	log      zerolog.Logger
}

// Next returns the next transaction row, or Done when the statement is
// exhausted.
func (it *RowIterator) Next() (domain.RawTransactionRow, error) {
	for it.pos < len(it.lines) {
		line := it.lines[it.pos]
		it.pos++
		lineNo := it.pos

		if strings.TrimSpace(line) == "" {
			continue
		}

		cols, err := splitLine(line)
		if err != nil {
			it.log.Warn().Err(err).Int("line", lineNo).Msg("Skipping unparsable statement line")
			continue
		}

		if !it.inRegion {
			if !hasDateCell(cols) {
				it.detectHeaderLayout(cols)
				continue
			}
			it.inRegion = true
		}

		row := domain.RawTransactionRow{
			RawColumns: cols,
			LineNumber: lineNo,
		}
		if len(cols) >= 4 && it.descIdx < len(cols) && it.valIdx < len(cols) {
			row.Description = stripQuotes(cols[it.descIdx])
			row.ValueText = stripQuotes(cols[it.valIdx])
		}
		return row, nil
	}
	return domain.RawTransactionRow{}, Done
}

// detectHeaderLayout fuzzy-matches a discarded pre-region row against known
// header names. When both a description and a value column are recognised,
// their positions replace the canonical indexes for the rest of the
// statement.
func (it *RowIterator) detectHeaderLayout(cols []string) {
	descIdx, valIdx := -1, -1
	for i, col := range cols {
		cell := foldText(stripQuotes(col))
		if cell == "" {
			continue
		}
		if descIdx < 0 && matchesAnyHeader(cell, descriptionHeaders) {
			descIdx = i
		} else if valIdx < 0 && matchesAnyHeader(cell, valueHeaders) {
			valIdx = i
		}
	}
	if descIdx >= 0 && valIdx >= 0 {
		it.descIdx = descIdx
		it.valIdx = valIdx
		it.log.Debug().Int("description_col", descIdx).Int("value_col", valIdx).
			Msg("Statement header row overrides canonical column layout")
	}
}

func matchesAnyHeader(cell string, headers []string) bool {
	for _, h := range headers {
		maxDist := 1
		if len(h) > 6 {
			maxDist = 2
		}
		d := levenshtein.DistanceForStrings([]rune(cell), []rune(h), levenshtein.DefaultOptions)
		if d <= maxDist {
			return true
		}
	}
	return false
}

// splitLine determines a row's columns: tab split first, then a quote-aware
// comma split, else the whole line as a single column.
func splitLine(line string) ([]string, error) {
	if strings.Contains(line, "\t") {
		return strings.Split(line, "\t"), nil
	}
	if strings.Contains(line, ",") {
		r := csv.NewReader(strings.NewReader(line))
		r.LazyQuotes = true
		r.FieldsPerRecord = -1
		cols, err := r.Read()
		if err != nil {
			return nil, err
		}
		return cols, nil
	}
	return []string{line}, nil
}

func hasDateCell(cols []string) bool {
	for _, c := range cols {
		if dateCellPattern.MatchString(strings.TrimSpace(stripQuotes(c))) {
			return true
		}
	}
	return false
}

// stripQuotes removes one pair of wrapping double quotes, if present.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}
