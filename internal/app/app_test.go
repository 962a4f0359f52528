package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientreport/internal/config"
	"clientreport/internal/records"
	"clientreport/internal/sheets"
	"clientreport/internal/shared/testutil"
)

func memoryResolver() *sheets.MemoryResolver {
	return &sheets.MemoryResolver{Sources: map[string]*sheets.MemorySource{
		"acme": {
			SourceTitle: "Acme",
			Tables: map[string]*sheets.MemoryTable{
				records.TableProducts:    {TableName: records.TableProducts, Values: testutil.ListingsGrid()},
				records.TableOrders:      {TableName: records.TableOrders, Values: testutil.OrdersGrid()},
				records.TableHoursWorked: {TableName: records.TableHoursWorked, Values: testutil.HoursGrid()},
			},
		},
	}}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Sheets.InitialDelay = time.Millisecond
	cfg.Sheets.RatePerMinute = 0
	return cfg
}

func TestNew_MissingCredentials(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg := testConfig()
	cfg.Sheets.CredentialsFile = filepath.Join(t.TempDir(), "credentials.json")

	_, err := New(context.Background(), cfg, WithLogger(logger))
	require.Error(t, err)
	assert.ErrorIs(t, err, sheets.ErrCredentialsMissing)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 0

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = New(context.Background(), nil)
	assert.Error(t, err)
}

func TestNew_WiresRouter(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	a, err := New(context.Background(), testConfig(), WithLogger(logger), WithResolver(memoryResolver()))
	require.NoError(t, err)
	a.Hub.Start()
	defer a.Hub.Stop()

	srv := httptest.NewServer(a.Router)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/reports", "application/json", strings.NewReader(`{"links":"acme"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, a.Downloads.Len())

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "report_sources_processed")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	a, err := New(context.Background(), testConfig(), WithLogger(logger), WithResolver(memoryResolver()))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.True(t, handler.ContainsMessage("application shutdown complete"))
}
