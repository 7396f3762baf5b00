package numbering

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentType selects a numbering format.
type DocumentType string

const (
	DocTypeTicket  DocumentType = "ticket"
	DocTypeForm    DocumentType = "form"
	DocTypeInvoice DocumentType = "invoice"
)

type format struct {
	prefix string
	width  int
}

var formats = map[DocumentType]format{
	DocTypeTicket:  {prefix: "TKT", width: 3},
	DocTypeForm:    {prefix: "FRM", width: 3},
	DocTypeInvoice: {prefix: "INV", width: 4},
}

var validators = buildValidators()

func buildValidators() map[DocumentType]*regexp.Regexp {
	out := make(map[DocumentType]*regexp.Regexp, len(formats))
	for dt, f := range formats {
		out[dt] = regexp.MustCompile(fmt.Sprintf(`^%s-\d{8}-\d{%d}$`, f.prefix, f.width))
	}
	return out
}

var documentShape = buildDocumentShape()

func buildDocumentShape() *regexp.Regexp {
	prefixes := make([]string, 0, len(formats))
	for _, f := range formats {
		prefixes = append(prefixes, f.prefix)
	}
	sort.Strings(prefixes)
	return regexp.MustCompile(`^(` + strings.Join(prefixes, "|") + `)-[0-9A-Z]+-[0-9A-Z]+$`)
}

// IsDocumentNumber reports whether the string is shaped like one of
// our document numbers. Looser than Validate: fallback identifiers and
// overflowed sequences pass, everyday words do not.
func IsDocumentNumber(number string) bool {
	return documentShape.MatchString(number)
}

// SequenceStore looks up the highest existing number for a prefix/day.
// Satisfied by repository.OrderRepository.
type SequenceStore interface {
	FindMaxNumber(ctx context.Context, prefix, datePattern string) (string, error)
}

// Parts is a decomposed document number.
type Parts struct {
	Prefix   string
	Date     time.Time
	Sequence int
}

// Service generates human-readable sequential document numbers of the
// form PREFIX-YYYYMMDD-NNN.
type Service struct {
	store  SequenceStore
	logger *zap.Logger
}

// NewService builds the numbering service.
func NewService(store SequenceStore, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Generate returns the next number for the document type and day. It
// never fails: store or parse errors degrade to a fallback identifier,
// which is logged and still unique.
func (s *Service) Generate(ctx context.Context, docType DocumentType, date time.Time) string {
	f, ok := formats[docType]
	if !ok {
		s.logger.Warn("unknown document type, using fallback number", zap.String("type", string(docType)))
		return fallbackNumber("DOC")
	}

	day := date.Format("20060102")
	max, err := s.store.FindMaxNumber(ctx, f.prefix, day)
	if err != nil {
		s.logger.Warn("numbering lookup failed, using fallback number",
			zap.String("prefix", f.prefix), zap.Error(err))
		return fallbackNumber(f.prefix)
	}

	next := 1
	if max != "" {
		seq, err := trailingSequence(max)
		if err != nil {
			s.logger.Warn("could not parse existing number, using fallback",
				zap.String("number", max), zap.Error(err))
			return fallbackNumber(f.prefix)
		}
		next = seq + 1
	}

	return fmt.Sprintf("%s-%s-%0*d", f.prefix, day, f.width, next)
}

// Validate reports whether number matches the format of the given type.
func Validate(number string, docType DocumentType) bool {
	re, ok := validators[docType]
	return ok && re.MatchString(number)
}

// Parse decomposes a generated number into prefix, date and sequence.
// Fallback identifiers do not parse.
func Parse(number string) (Parts, error) {
	segments := strings.Split(number, "-")
	if len(segments) != 3 {
		return Parts{}, fmt.Errorf("malformed document number %q", number)
	}
	date, err := time.Parse("20060102", segments[1])
	if err != nil {
		return Parts{}, fmt.Errorf("invalid date in document number %q: %w", number, err)
	}
	seq, err := strconv.Atoi(segments[2])
	if err != nil {
		return Parts{}, fmt.Errorf("invalid sequence in document number %q: %w", number, err)
	}
	return Parts{Prefix: segments[0], Date: date, Sequence: seq}, nil
}

func trailingSequence(number string) (int, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("no sequence segment in %q", number)
	}
	return strconv.Atoi(number[idx+1:])
}

func fallbackNumber(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return prefix + "-FALLBACK-" + suffix
}
