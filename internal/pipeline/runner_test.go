package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientreport/internal/aggregate"
	"clientreport/internal/chart"
	"clientreport/internal/document"
	"clientreport/internal/records"
	"clientreport/internal/report"
	"clientreport/internal/sheets"
	"clientreport/internal/shared/testutil"
)

type stubRenderer struct{}

func (stubRenderer) Render(s aggregate.Series, opts chart.Options) ([]byte, error) {
	if s.Empty() {
		return nil, nil
	}
	return []byte(opts.Title), nil
}

type stubEncoder struct {
	err      error
	panicFor string
}

func (e stubEncoder) Encode(rep *report.Report) ([]byte, error) {
	if e.panicFor != "" && rep.ClientName == e.panicFor {
		panic("encoder exploded")
	}
	if e.err != nil {
		return nil, e.err
	}
	return []byte(rep.ClientName), nil
}

func (stubEncoder) Extension() string   { return ".txt" }
func (stubEncoder) ContentType() string { return "text/plain" }

func workbook(title string) *sheets.MemorySource {
	return &sheets.MemorySource{
		SourceTitle: title,
		Tables: map[string]*sheets.MemoryTable{
			records.TableProducts:    {TableName: records.TableProducts, Values: testutil.ListingsGrid()},
			records.TableOrders:      {TableName: records.TableOrders, Values: testutil.OrdersGrid()},
			records.TableHoursWorked: {TableName: records.TableHoursWorked, Values: testutil.HoursGrid()},
		},
	}
}

func noSleep(context.Context, time.Duration) error { return nil }

type fixture struct {
	resolver *sheets.MemoryResolver
	events   []Event
	mu       sync.Mutex
}

func newFixture() *fixture {
	return &fixture{resolver: &sheets.MemoryResolver{Sources: map[string]*sheets.MemorySource{
		"acme":   workbook("Acme"),
		"globex": workbook("Globex"),
	}}}
}

func (f *fixture) runner(t *testing.T, enc document.Encoder, opts ...Option) *Runner {
	logger, _ := testutil.NewTestLogger(t)
	fetcher := sheets.NewFetcher(3, time.Second, logger, sheets.WithSleep(noSleep))
	opts = append([]Option{
		WithLogger(logger),
		WithObserver(ObserverFunc(func(e Event) {
			f.mu.Lock()
			f.events = append(f.events, e)
			f.mu.Unlock()
		})),
	}, opts...)
	return NewRunner(f.resolver, fetcher, report.NewSynthesizer(stubRenderer{}), enc, opts...)
}

func TestRunSingleSource(t *testing.T) {
	f := newFixture()
	results := f.runner(t, stubEncoder{}).Run(context.Background(), []string{"acme"})

	require.Len(t, results, 1)
	res := results[0]
	require.True(t, res.OK(), "unexpected error: %v", res.Err)
	assert.Equal(t, "acme", res.Source)

	assert.Equal(t, "Acme", res.Report.ClientName)
	assert.Equal(t, "290.5", res.Report.Totals.Sales.String())
	assert.Equal(t, "61", res.Report.Totals.Profit.String())
	assert.Equal(t, "12.5", res.Report.Totals.Hours.String())
	assert.Empty(t, res.Report.Degraded)
	assert.Len(t, res.Report.Charts(), 4)

	assert.Equal(t, "Acme_Report.txt", res.Artifact.Name)
	assert.Equal(t, "text/plain", res.Artifact.ContentType)

	require.NotEmpty(t, f.events)
	assert.Equal(t, StatusProcessing, f.events[0].Status)
	last := f.events[len(f.events)-1]
	assert.Equal(t, StatusCompleted, last.Status)
	assert.Equal(t, "Acme_Report.txt", last.Message)
	assert.Equal(t, 1, last.Total)
}

func TestRunIsolatesFailures(t *testing.T) {
	f := newFixture()
	broken := workbook("Broken")
	broken.Tables[records.TableProducts].Values = [][]string{{"Date Uploaded:", "Price"}, {"01/01/2024", "3"}}
	f.resolver.Sources["broken"] = broken

	results := f.runner(t, stubEncoder{}).Run(context.Background(), []string{"acme", "missing", "broken", "globex"})
	require.Len(t, results, 4)

	assert.True(t, results[0].OK())
	assert.Equal(t, "acme", results[0].Source)

	require.False(t, results[1].OK())
	assert.Equal(t, StageResolve, results[1].Err.Stage)
	assert.Equal(t, ErrorTypeInvalidInput, results[1].Err.Type)
	assert.ErrorIs(t, results[1].Err, sheets.ErrInvalidLocator)

	require.False(t, results[2].OK())
	assert.Equal(t, StageNormalize, results[2].Err.Stage)
	assert.Equal(t, ErrorTypeSchema, results[2].Err.Type)
	assert.ErrorIs(t, results[2].Err, records.ErrSchemaMismatch)

	assert.True(t, results[3].OK())
	assert.Equal(t, "Globex", results[3].Report.ClientName)

	list := Errors(results)
	assert.Len(t, list.Errors, 2)
	assert.Len(t, list.ByStage(StageNormalize), 1)
	assert.Contains(t, list.Error(), "2 sources failed")
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture()
	r := f.runner(t, stubEncoder{})
	locators := []string{"acme", "globex"}

	first := r.Run(context.Background(), locators)
	second := r.Run(context.Background(), locators)

	require.Len(t, second, len(first))
	for i := range first {
		require.True(t, first[i].OK())
		require.True(t, second[i].OK())
		assert.Equal(t, first[i].Report.Blocks, second[i].Report.Blocks)
		assert.Equal(t, first[i].Artifact, second[i].Artifact)
	}
}

func TestRunExhaustedFetchIsDegraded(t *testing.T) {
	f := newFixture()
	src := workbook("Flaky")
	src.Tables[records.TableOrders].Err = errors.New("quota exceeded")
	src.Tables[records.TableOrders].Failures = -1
	f.resolver.Sources["flaky"] = src

	results := f.runner(t, stubEncoder{}).Run(context.Background(), []string{"flaky"})
	require.True(t, results[0].OK())

	rep := results[0].Report
	assert.Equal(t, []string{records.TableOrders}, rep.Degraded)
	assert.True(t, rep.Totals.Sales.IsZero())
	assert.Equal(t, "12.5", rep.Totals.Hours.String())
	assert.Equal(t, 3, src.Tables[records.TableOrders].Reads())
	// Listings and hours charts only.
	assert.Len(t, rep.Charts(), 2)
}

func TestRunStrictFetch(t *testing.T) {
	f := newFixture()
	src := workbook("Flaky")
	src.Tables[records.TableHoursWorked].Err = errors.New("quota exceeded")
	src.Tables[records.TableHoursWorked].Failures = -1
	f.resolver.Sources["flaky"] = src

	results := f.runner(t, stubEncoder{}, WithStrictFetch(true)).Run(context.Background(), []string{"flaky", "acme"})

	require.False(t, results[0].OK())
	assert.Equal(t, StageFetch, results[0].Err.Stage)
	assert.Equal(t, ErrorTypeRemote, results[0].Err.Type)
	assert.Contains(t, results[0].Err.Message, "HOURSWORKED unavailable after 3 attempts")
	assert.True(t, results[1].OK())
}

func TestRunMissingTableFailsSource(t *testing.T) {
	for _, missing := range []string{records.TableProducts, records.TableOrders, records.TableHoursWorked} {
		t.Run(missing, func(t *testing.T) {
			f := newFixture()
			src := workbook("Partial")
			delete(src.Tables, missing)
			f.resolver.Sources["partial"] = src

			results := f.runner(t, stubEncoder{}).Run(context.Background(), []string{"partial", "acme"})
			require.Len(t, results, 2)

			require.False(t, results[0].OK())
			assert.Equal(t, StageResolve, results[0].Err.Stage)
			assert.Equal(t, ErrorTypeSchema, results[0].Err.Type)
			assert.ErrorIs(t, results[0].Err, sheets.ErrTableNotFound)
			assert.Contains(t, results[0].Err.Message, missing)
			for _, table := range src.Tables {
				assert.Zero(t, table.Reads(), "no table is fetched once a tab is missing")
			}

			assert.True(t, results[1].OK())
		})
	}
}

func TestRunRecoversFromPanic(t *testing.T) {
	f := newFixture()
	results := f.runner(t, stubEncoder{panicFor: "Acme"}).Run(context.Background(), []string{"acme", "globex"})

	require.False(t, results[0].OK())
	assert.Equal(t, StageEncode, results[0].Err.Stage)
	assert.Equal(t, ErrorTypePanic, results[0].Err.Type)
	assert.Contains(t, results[0].Err.Message, "encoder exploded")
	assert.True(t, results[1].OK())
}

func TestRunEncodeFailure(t *testing.T) {
	f := newFixture()
	results := f.runner(t, stubEncoder{err: errors.New("disk full")}).Run(context.Background(), []string{"acme"})

	require.False(t, results[0].OK())
	assert.Equal(t, StageEncode, results[0].Err.Stage)
	assert.Equal(t, ErrorTypeExecution, results[0].Err.Type)
}

func TestRunCancelled(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := f.runner(t, stubEncoder{}).Run(ctx, []string{"acme", "globex"})
	require.Len(t, results, 2)
	for _, res := range results {
		require.False(t, res.OK())
		assert.Equal(t, ErrorTypeCancellation, res.Err.Type)
	}
}

func TestRunEmpty(t *testing.T) {
	f := newFixture()
	assert.Empty(t, f.runner(t, stubEncoder{}).Run(context.Background(), nil))
	assert.Empty(t, f.events)
}

func TestRunEndToEndWorkbook(t *testing.T) {
	f := newFixture()
	logger, logs := testutil.NewTestLogger(t)
	fetcher := sheets.NewFetcher(1, 0, logger, sheets.WithSleep(noSleep))
	r := NewRunner(f.resolver, fetcher,
		report.NewSynthesizer(chart.NewPNGRenderer()),
		document.NewXLSXEncoder(),
		WithLogger(logger))

	results := r.Run(context.Background(), []string{"acme"})
	require.True(t, results[0].OK(), "unexpected error: %v", results[0].Err)
	assert.Equal(t, "Acme_Report.xlsx", results[0].Artifact.Name)
	assert.NotEmpty(t, results[0].Artifact.Data)

	testutil.AssertNoErrors(t, logs)
	testutil.AssertLogAttr(t, logs, "component", "pipeline")
}
