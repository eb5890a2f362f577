package duckdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/routeprofit/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, cfg core.AdapterConfig) *Adapter {
	t.Helper()
	adp := New(nil)
	require.NoError(t, adp.Connect(context.Background(), cfg))
	t.Cleanup(func() { _ = adp.Close() })
	return adp
}

func TestAdapter_Connect(t *testing.T) {
	tests := []struct {
		name      string
		setupPath func(t *testing.T) string
		verify    func(t *testing.T, path string)
	}{
		{
			name: "in-memory",
			setupPath: func(_ *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "empty path is in-memory",
			setupPath: func(_ *testing.T) string {
				return ""
			},
		},
		{
			name: "file-based",
			setupPath: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "validate.duckdb")
			},
			verify: func(t *testing.T, path string) {
				_, err := os.Stat(path)
				assert.False(t, os.IsNotExist(err), "database file was not created")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setupPath(t)
			adp := connect(t, core.AdapterConfig{Path: path})
			assert.True(t, adp.IsConnected())

			if tt.verify != nil {
				tt.verify(t, path)
			}
		})
	}
}

func TestAdapter_ConnectAppliesSettings(t *testing.T) {
	adp := connect(t, core.AdapterConfig{
		Path:   ":memory:",
		Params: map[string]any{"settings": map[string]any{"threads": 1}},
	})

	rows, err := adp.Query(context.Background(), "SELECT CAST(current_setting('threads') AS VARCHAR)")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	require.True(t, rows.Next())
	var threads string
	require.NoError(t, rows.Scan(&threads))
	assert.Equal(t, "1", threads)
}

func TestAdapter_ConnectRejectsBadParams(t *testing.T) {
	adp := New(nil)
	err := adp.Connect(context.Background(), core.AdapterConfig{
		Params: map[string]any{"unknown": true},
	})
	require.Error(t, err)
	assert.False(t, adp.IsConnected())
}

func TestAdapter_NotConnected(t *testing.T) {
	tests := []struct {
		name      string
		operation func(ctx context.Context, adp *Adapter) error
	}{
		{
			name: "exec without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.Exec(ctx, "SELECT 1")
			},
		},
		{
			name: "query without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				_, err := adp.Query(ctx, "SELECT 1")
				return err
			},
		},
		{
			name: "insert without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.InsertRows(ctx, "t", []string{"a"}, [][]any{{1}})
			},
		},
		{
			name: "load csv without connect",
			operation: func(ctx context.Context, adp *Adapter) error {
				return adp.LoadCSV(ctx, "t", "missing.csv")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.operation(context.Background(), New(nil))
			assert.Error(t, err, "expected error when operating without connection")
		})
	}
}

func TestAdapter_InsertRowsAndWindow(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, core.AdapterConfig{Path: ":memory:"})

	require.NoError(t, adp.Exec(ctx, `CREATE TABLE route_profit (route VARCHAR, month VARCHAR, profit DOUBLE)`))
	require.NoError(t, adp.InsertRows(ctx, "route_profit", []string{"route", "month", "profit"}, [][]any{
		{"JFK-BOS", "2024-01", 1000.0},
		{"JFK-BOS", "2024-02", 1200.0},
		{"BOS-SEA", "2024-01", 500.0},
	}))

	rows, err := adp.Query(ctx, `
		SELECT route, month,
			(profit - LAG(profit) OVER w) / NULLIF(LAG(profit) OVER w, 0) AS growth
		FROM route_profit
		WINDOW w AS (PARTITION BY route ORDER BY month)
		ORDER BY route, month`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	got := map[string]sql.NullFloat64{}
	for rows.Next() {
		var route, month string
		var growth sql.NullFloat64
		require.NoError(t, rows.Scan(&route, &month, &growth))
		got[route+" "+month] = growth
	}
	require.NoError(t, rows.Err())

	assert.False(t, got["BOS-SEA 2024-01"].Valid)
	assert.False(t, got["JFK-BOS 2024-01"].Valid)
	require.True(t, got["JFK-BOS 2024-02"].Valid)
	assert.InDelta(t, 0.20, got["JFK-BOS 2024-02"].Float64, 1e-12)
}

func TestAdapter_GetTableMetadata(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, core.AdapterConfig{Path: ":memory:"})

	require.NoError(t, adp.Exec(ctx, `
		CREATE TABLE aircraft (
			aircraft_type VARCHAR NOT NULL,
			seats INTEGER,
			unit_cost DOUBLE
		)`))
	require.NoError(t, adp.Exec(ctx, `INSERT INTO aircraft VALUES ('A220', 140, 0.11), ('A321', 200, 0.11)`))

	meta, err := adp.GetTableMetadata(ctx, "aircraft")
	require.NoError(t, err)
	assert.Equal(t, "main", meta.Schema)
	assert.Equal(t, "aircraft", meta.Name)
	assert.Equal(t, int64(2), meta.RowCount)
	require.Len(t, meta.Columns, 3)
	assert.Equal(t, "aircraft_type", meta.Columns[0].Name)
	assert.Equal(t, "VARCHAR", meta.Columns[0].Type)
	assert.False(t, meta.Columns[0].Nullable)
	assert.Equal(t, "DOUBLE", meta.Columns[2].Type)

	_, err = adp.GetTableMetadata(ctx, "nonexistent_table")
	assert.Error(t, err)
}

func TestAdapter_LoadCSV(t *testing.T) {
	ctx := context.Background()
	adp := connect(t, core.AdapterConfig{Path: ":memory:"})

	csvPath := filepath.Join(t.TempDir(), "master.csv")
	csvContent := `route,month,profit
JFK-BOS,2024-01,1000
JFK-BOS,2024-02,1200
BOS-SEA,2024-01,500`
	require.NoError(t, os.WriteFile(csvPath, []byte(csvContent), 0600))

	require.NoError(t, adp.LoadCSV(ctx, "master", csvPath))

	rows, err := adp.Query(ctx, "SELECT COUNT(*), SUM(profit) FROM master")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var count int
	var total float64
	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&count, &total))
	assert.Equal(t, 3, count)
	assert.InDelta(t, 2700.0, total, 1e-9)
}
