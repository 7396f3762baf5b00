package numbering

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore returns a canned max number per prefix.
type fakeStore struct {
	max map[string]string
	err error
}

func (f *fakeStore) FindMaxNumber(ctx context.Context, prefix, datePattern string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.max[prefix+"-"+datePattern], nil
}

func (f *fakeStore) record(number string) {
	idx := strings.LastIndex(number, "-")
	f.max[number[:idx]] = number
}

func newFakeStore() *fakeStore {
	return &fakeStore{max: make(map[string]string)}
}

var testDay = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func TestGenerateFirstOfDay(t *testing.T) {
	svc := NewService(newFakeStore(), zap.NewNop())

	assert.Equal(t, "TKT-20260901-001", svc.Generate(context.Background(), DocTypeTicket, testDay))
	assert.Equal(t, "INV-20260901-0001", svc.Generate(context.Background(), DocTypeInvoice, testDay))
}

func TestGenerateSequenceIsStrictlyIncreasing(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())

	want := []string{"TKT-20260901-001", "TKT-20260901-002", "TKT-20260901-003"}
	for _, expected := range want {
		got := svc.Generate(context.Background(), DocTypeTicket, testDay)
		require.Equal(t, expected, got)
		store.record(got)
	}
}

func TestGenerateSequencePastPadWidth(t *testing.T) {
	store := newFakeStore()
	store.max["TKT-20260901"] = "TKT-20260901-999"
	svc := NewService(store, zap.NewNop())

	got := svc.Generate(context.Background(), DocTypeTicket, testDay)
	require.Equal(t, "TKT-20260901-1000", got)
	store.record(got)
	assert.Equal(t, "TKT-20260901-1001", svc.Generate(context.Background(), DocTypeTicket, testDay))
}

func TestGenerateFallsBackOnStoreError(t *testing.T) {
	svc := NewService(&fakeStore{err: errors.New("connection refused")}, zap.NewNop())

	number := svc.Generate(context.Background(), DocTypeTicket, testDay)
	assert.True(t, strings.HasPrefix(number, "TKT-FALLBACK-"), "got %q", number)
	assert.False(t, Validate(number, DocTypeTicket))
}

func TestGenerateFallsBackOnUnparseableMax(t *testing.T) {
	store := newFakeStore()
	store.max["TKT-20260901"] = "TKT-20260901-garbage"
	svc := NewService(store, zap.NewNop())

	number := svc.Generate(context.Background(), DocTypeTicket, testDay)
	assert.True(t, strings.HasPrefix(number, "TKT-FALLBACK-"), "got %q", number)
}

func TestParseRecoversGeneratedParts(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())

	for _, docType := range []DocumentType{DocTypeTicket, DocTypeForm, DocTypeInvoice} {
		number := svc.Generate(context.Background(), docType, testDay)
		parts, err := Parse(number)
		require.NoError(t, err, "number %q", number)
		assert.Equal(t, formats[docType].prefix, parts.Prefix)
		assert.Equal(t, testDay.Format("20060102"), parts.Date.Format("20060102"))
		assert.Equal(t, 1, parts.Sequence)
	}
}

func TestParseRejectsMalformedNumbers(t *testing.T) {
	for _, number := range []string{
		"",
		"TKT",
		"TKT-20260901",
		"TKT-FALLBACK-AB12CD34",
		"TKT-2026090a-001",
	} {
		_, err := Parse(number)
		assert.Error(t, err, "number %q", number)
	}
}

func TestIsDocumentNumber(t *testing.T) {
	for _, number := range []string{
		"TKT-20260901-007",
		"TKT-20260901-1000",
		"TKT-FALLBACK-AB12CD34",
		"INV-20260901-0042",
		"FRM-20260901-003",
	} {
		assert.True(t, IsDocumentNumber(number), "number %q", number)
	}
	// Everyday words that follow a command keyword must not pass.
	for _, word := range []string{"CON", "LA", "EL", "TKT", "TKT-20260901", "FOO-20260901-001", ""} {
		assert.False(t, IsDocumentNumber(word), "word %q", word)
	}
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate("TKT-20260901-007", DocTypeTicket))
	assert.True(t, Validate("INV-20260901-0042", DocTypeInvoice))
	assert.False(t, Validate("TKT-20260901-0007", DocTypeTicket), "wrong width")
	assert.False(t, Validate("INV-20260901-042", DocTypeInvoice), "wrong width")
	assert.False(t, Validate("TKT-20260901-007", DocTypeInvoice), "wrong prefix")
	assert.False(t, Validate("TKT-FALLBACK-AB12CD34", DocTypeTicket))
}
