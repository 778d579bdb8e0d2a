package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docmig/internal/doc"
	"github.com/roach88/docmig/internal/ledger"
	"github.com/roach88/docmig/internal/steps"
	"github.com/roach88/docmig/internal/testutil"
)

func TestSaveAndLoadDomain(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sample := testutil.NewSample()

	saved, err := s.SaveDomain(ctx, "plant", sample.Domain)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Seq)
	assert.Equal(t, "plant", saved.Name)

	got, err := s.GetDocument(ctx, "plant")
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	wantHash, err := doc.Hash(sample.Domain)
	require.NoError(t, err)
	assert.Equal(t, wantHash, got.Hash)

	dom, err := s.LoadDomain(ctx, "plant")
	require.NoError(t, err)
	want, err := doc.Snapshot(sample.Domain)
	require.NoError(t, err)
	have, err := doc.Snapshot(dom)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(have))
}

func TestSaveDomain_KeepsTextUnchanged(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	l := testutil.NewLegacy()

	composed, decomposed := "Caf\u00e9", "Cafe\u0301"
	l.Domain.AddComposition(composed, &doc.Composition{ID: testutil.ID(20), Name: composed})
	l.Domain.AddComposition(decomposed, &doc.Composition{ID: testutil.ID(21), Name: decomposed})

	_, err := s.SaveDomain(ctx, "legacy", l.Domain)
	require.NoError(t, err)

	dom, err := s.LoadDomain(ctx, "legacy")
	require.NoError(t, err)

	assert.Equal(t, " Motor ", dom.Definitions[0].Name)
	assert.Equal(t, "Cafe\u0301 Pump", dom.Definitions[1].Name, "names are repaired by the ledger, not the store")

	require.Len(t, dom.Compositions, 3, "keys differing only in normalization stay distinct")
	require.NotNil(t, dom.Composition(composed))
	require.NotNil(t, dom.Composition(decomposed))
	assert.Equal(t, testutil.ID(20), dom.Composition(composed).ID)
	assert.Equal(t, testutil.ID(21), dom.Composition(decomposed).ID)
	assert.Equal(t, decomposed, dom.Composition(decomposed).Name)
}

func TestSaveDomain_LegacyMigratesAfterReload(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.SaveDomain(ctx, "legacy", testutil.NewLegacy().Domain)
	require.NoError(t, err)
	dom, err := s.LoadDomain(ctx, "legacy")
	require.NoError(t, err)

	rep, err := steps.NewLedger(
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		ledger.WithIDGenerator(testutil.NewSequentialIDs(100)),
	).RunReport(dom)
	require.NoError(t, err)
	assert.Equal(t, 7, rep.Fixes())
	assert.Equal(t, 2, rep.Steps[0].Fixes, "both names still need normalizing")
}

func TestPutDocument_Upserts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sample := testutil.NewSample()

	_, err := s.SaveDomain(ctx, "plant", sample.Domain)
	require.NoError(t, err)

	sample.Domain.SetRevision(2)
	second, err := s.SaveDomain(ctx, "plant", sample.Domain)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Seq)

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 2, docs[0].Revision)
}

func TestPutDocument_RejectsNegativeRevision(t *testing.T) {
	s := createTestStore(t)

	d, err := NewDocument("bad", doc.NewDomain("bad"))
	require.NoError(t, err)
	d.Revision = -1

	_, err = s.PutDocument(context.Background(), d)
	assert.Error(t, err)
}

func TestGetDocument_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListDocuments(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)

	for _, id := range []string{"b", "a", "c"} {
		_, err := s.SaveDomain(ctx, id, doc.NewDomain(id))
		require.NoError(t, err)
	}
	// Rewriting "b" moves it to the end of the clock.
	_, err = s.SaveDomain(ctx, "b", doc.NewDomain("b"))
	require.NoError(t, err)

	docs, err = s.ListDocuments(ctx)
	require.NoError(t, err)
	var ids []string
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"a", "c", "b"}, ids)
}

func TestSaveMigration(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	dom, rep := migrateLegacy(t)

	run, err := s.SaveMigration(ctx, "legacy", dom, rep)
	require.NoError(t, err)
	assert.Equal(t, 0, run.FromRevision)
	assert.Equal(t, 5, run.ToRevision)
	assert.Equal(t, 5, run.Steps)
	assert.Equal(t, 7, run.Fixes)
	assert.Equal(t, int64(2), run.Seq, "document and run share the clock")

	stored, err := s.GetDocument(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Revision)
	assert.Equal(t, int64(1), stored.Seq)

	runs, err := s.Runs(ctx, "legacy")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run, runs[0])

	var report ledger.Report
	require.NoError(t, json.Unmarshal(runs[0].Report, &report))
	assert.Equal(t, rep.To, report.To)
	assert.Len(t, report.Steps, 5)
}

func TestRecordRun_RequiresDocument(t *testing.T) {
	s := createTestStore(t)

	run, err := NewRun("ghost", &ledger.Report{Steps: []ledger.StepResult{}})
	require.NoError(t, err)

	_, err = s.RecordRun(context.Background(), run)
	assert.Error(t, err, "foreign key should reject runs without a document")
}

func TestRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.Runs(context.Background(), "none")
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}
