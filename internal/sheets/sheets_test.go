package sheets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpreadsheetID(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		want    string
		wantErr bool
	}{
		{
			name:    "edit url",
			locator: "https://docs.google.com/spreadsheets/d/1AbC-dEf_123/edit#gid=0",
			want:    "1AbC-dEf_123",
		},
		{
			name:    "url with surrounding space",
			locator: "  https://docs.google.com/spreadsheets/d/xyz789/view  ",
			want:    "xyz789",
		},
		{name: "bare id", locator: "1AbC-dEf_123", want: "1AbC-dEf_123"},
		{name: "empty", locator: "", wantErr: true},
		{name: "other url", locator: "https://example.com/files/abc", wantErr: true},
		{name: "spaces", locator: "not a sheet", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SpreadsheetID(tt.locator)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLocator)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCredentials(filepath.Join(dir, "credentials.json"))
	assert.ErrorIs(t, err, ErrCredentialsMissing)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))
	_, err = LoadCredentials(empty)
	assert.ErrorIs(t, err, ErrCredentialsMissing)

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"type":"service_account"}`), 0o600))
	data, err := LoadCredentials(good)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"service_account"}`, string(data))
}

func TestMemoryResolver(t *testing.T) {
	r := &MemoryResolver{Sources: map[string]*MemorySource{
		"acme": {SourceTitle: "Acme", Tables: map[string]*MemoryTable{
			"PRODUCTS": {TableName: "PRODUCTS", Values: [][]string{{"h"}}},
		}},
	}}

	src, err := r.Open(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", src.Title())

	table, err := src.Table("PRODUCTS")
	require.NoError(t, err)
	grid, err := table.ReadGrid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"h"}}, grid)

	_, err = src.Table("ORDERS")
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = r.Open(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrInvalidLocator))
}
