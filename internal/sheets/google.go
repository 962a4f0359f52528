package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// GoogleResolver opens workbooks through the Google Sheets v4 API.
type GoogleResolver struct {
	svc     *gsheets.Service
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewGoogleResolver creates the Sheets service with the given client options.
// Open waits on limiter when it is not nil.
func NewGoogleResolver(ctx context.Context, limiter *rate.Limiter, logger *slog.Logger, opts ...option.ClientOption) (*GoogleResolver, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleResolver{
		svc:     svc,
		limiter: limiter,
		logger:  logger.With(slog.String("component", "sheets_resolver")),
	}, nil
}

// NewGoogleResolverFromCredentials authenticates with a service-account
// JSON document and read-only scope.
func NewGoogleResolverFromCredentials(ctx context.Context, credentialsJSON []byte, limiter *rate.Limiter, logger *slog.Logger) (*GoogleResolver, error) {
	return NewGoogleResolver(ctx, limiter, logger,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gsheets.SpreadsheetsReadonlyScope),
	)
}

// Open resolves locator and reads the workbook title and tab names.
func (g *GoogleResolver) Open(ctx context.Context, locator string) (Source, error) {
	id, err := SpreadsheetID(locator)
	if err != nil {
		return nil, err
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	ss, err := g.svc.Spreadsheets.Get(id).
		Fields("properties.title", "sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet %s: %w", id, err)
	}

	src := &googleSource{svc: g.svc, id: id, tabs: make(map[string]bool, len(ss.Sheets))}
	if ss.Properties != nil {
		src.title = ss.Properties.Title
	}
	for _, sh := range ss.Sheets {
		if sh != nil && sh.Properties != nil {
			src.tabs[sh.Properties.Title] = true
		}
	}

	g.logger.DebugContext(ctx, "spreadsheet opened",
		slog.String("spreadsheet_id", id),
		slog.String("title", src.title),
		slog.Int("tabs", len(src.tabs)))

	return src, nil
}

type googleSource struct {
	svc   *gsheets.Service
	id    string
	title string
	tabs  map[string]bool
}

func (s *googleSource) Title() string { return s.title }

func (s *googleSource) Table(name string) (GridReader, error) {
	if !s.tabs[name] {
		return nil, fmt.Errorf("%w: %q in spreadsheet %s", ErrTableNotFound, name, s.id)
	}
	return &googleTable{svc: s.svc, id: s.id, name: name}, nil
}

type googleTable struct {
	svc  *gsheets.Service
	id   string
	name string
}

func (t *googleTable) Name() string { return t.name }

func (t *googleTable) ReadGrid(ctx context.Context) ([][]string, error) {
	resp, err := t.svc.Spreadsheets.Values.Get(t.id, t.name).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.name, err)
	}
	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		grid[i] = cells
	}
	return grid, nil
}

func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
