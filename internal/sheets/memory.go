package sheets

import (
	"context"
	"fmt"
	"sync"
)

// MemoryTable is a GridReader over fixed values. Failures is the number of
// leading reads that return Err; a negative value fails every read.
type MemoryTable struct {
	TableName string
	Values    [][]string
	Err       error
	Failures  int

	mu    sync.Mutex
	reads int
}

func (t *MemoryTable) Name() string { return t.TableName }

func (t *MemoryTable) ReadGrid(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads++
	if t.Err != nil && (t.Failures < 0 || t.reads <= t.Failures) {
		return nil, t.Err
	}
	return t.Values, nil
}

// Reads returns how many times ReadGrid was called.
func (t *MemoryTable) Reads() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reads
}

// MemorySource is a workbook held in memory.
type MemorySource struct {
	SourceTitle string
	Tables      map[string]*MemoryTable
}

func (s *MemorySource) Title() string { return s.SourceTitle }

func (s *MemorySource) Table(name string) (GridReader, error) {
	if t, ok := s.Tables[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrTableNotFound, name)
}

// MemoryResolver maps locators to in-memory workbooks.
type MemoryResolver struct {
	Sources map[string]*MemorySource
}

func (r *MemoryResolver) Open(ctx context.Context, locator string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, ok := r.Sources[locator]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocator, locator)
	}
	return s, nil
}
