package gff

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrMalformed is matched by every ParseError.
var ErrMalformed = errors.New("malformed GFF3")

// ParseError reports a malformed data line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Is makes errors.Is(err, ErrMalformed) hold for parse errors.
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}

// Loader loads annotation records from a GFF3 file.
type Loader struct {
	path   string
	seqID  string
	logger *zap.Logger
}

// NewLoader creates a new GFF3 loader.
func NewLoader(path string) *Loader {
	return &Loader{path: path, logger: zap.NewNop()}
}

// SetSeqID restricts loading to records on one landmark.
func (l *Loader) SetSeqID(id string) {
	l.seqID = id
}

// SetLogger sets the logger for load progress messages.
func (l *Loader) SetLogger(log *zap.Logger) {
	l.logger = log
}

// Load reads the file and returns its records.
// If bounds is non-nil, only records overlapping it are kept.
func (l *Loader) Load(bounds *Bounds) (*Table, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open GFF file: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var reader io.Reader = br

	// Check for gzip magic number (0x1f, 0x8b)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	t, err := parseGFF(reader, bounds, l.seqID)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.path, err)
	}

	l.logger.Info("loaded annotations",
		zap.String("path", l.path),
		zap.Int("records", t.Len()))
	return t, nil
}

// Read parses GFF3 content from r.
func Read(r io.Reader, bounds *Bounds) (*Table, error) {
	return parseGFF(r, bounds, "")
}

// parseGFF parses GFF3 content. Parsing stops at a ##FASTA section.
func parseGFF(reader io.Reader, bounds *Bounds, filterSeqID string) (*Table, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long attribute columns
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	t := &Table{
		SequenceRegions: make(map[string]SequenceRegion),
		Records:         []Record{},
	}

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "##") {
			if strings.HasPrefix(line, "##FASTA") {
				break
			}
			if err := t.parsePragma(line, lineNum); err != nil {
				return nil, err
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		rec, err := parseLine(line, lineNum)
		if err != nil {
			return nil, err
		}

		if filterSeqID != "" && rec.SeqID != filterSeqID {
			continue
		}
		if bounds != nil && !rec.Overlaps(*bounds) {
			continue
		}

		rec.Left = rec.Start
		rec.Right = rec.End
		t.Records = append(t.Records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GFF: %w", err)
	}

	return t, nil
}

// parsePragma records the directives the track needs and ignores the rest.
func (t *Table) parsePragma(line string, lineNum int) error {
	fields := strings.Fields(strings.TrimPrefix(line, "##"))
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "gff-version":
		if len(fields) < 2 {
			return &ParseError{Line: lineNum, Msg: "gff-version pragma without version"}
		}
		t.Version = fields[1]

	case "sequence-region":
		if len(fields) < 4 {
			return &ParseError{Line: lineNum, Msg: "sequence-region pragma: expected seqid, start and end"}
		}
		start, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return &ParseError{Line: lineNum, Msg: fmt.Sprintf("sequence-region start %q", fields[2])}
		}
		end, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return &ParseError{Line: lineNum, Msg: fmt.Sprintf("sequence-region end %q", fields[3])}
		}
		t.SequenceRegions[fields[1]] = SequenceRegion{SeqID: fields[1], Start: start, End: end}
	}

	return nil
}

// parseLine parses a single GFF3 feature line.
func parseLine(line string, lineNum int) (Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return Record{}, &ParseError{Line: lineNum, Msg: fmt.Sprintf("expected 9 fields, got %d", len(fields))}
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return Record{}, &ParseError{Line: lineNum, Msg: fmt.Sprintf("parse start %q", fields[3])}
	}

	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return Record{}, &ParseError{Line: lineNum, Msg: fmt.Sprintf("parse end %q", fields[4])}
	}

	if start > end {
		return Record{}, &ParseError{Line: lineNum, Msg: fmt.Sprintf("start %d is after end %d", start, end)}
	}

	switch fields[6] {
	case "+", "-", ".", "?":
	default:
		return Record{}, &ParseError{Line: lineNum, Msg: fmt.Sprintf("invalid strand %q", fields[6])}
	}

	return Record{
		SeqID:      fields[0],
		Source:     fields[1],
		Type:       fields[2],
		Start:      start,
		End:        end,
		Score:      fields[5],
		Strand:     fields[6],
		Phase:      fields[7],
		Attributes: fields[8],
	}, nil
}
