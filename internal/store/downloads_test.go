package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientreport/internal/document"
)

func TestDownloads_PutGet(t *testing.T) {
	d := NewDownloads(time.Minute, time.Minute)
	a := &document.Artifact{Name: "Acme.xlsx", Data: []byte("PK")}

	id := d.Put(a)
	require.NotEmpty(t, id)

	got, ok := d.Get(id)
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, time.Minute, d.TTL())

	other := d.Put(&document.Artifact{Name: "Other.xlsx"})
	assert.NotEqual(t, id, other)
	assert.Equal(t, 2, d.Len())
}

func TestDownloads_UnknownID(t *testing.T) {
	d := NewDownloads(time.Minute, time.Minute)
	_, ok := d.Get("nope")
	assert.False(t, ok)
}

func TestDownloads_Expiry(t *testing.T) {
	d := NewDownloads(20*time.Millisecond, time.Hour)
	id := d.Put(&document.Artifact{Name: "Acme.xlsx"})

	assert.Eventually(t, func() bool {
		_, ok := d.Get(id)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
