package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/leapstack-labs/routeprofit/internal/config"
	"github.com/leapstack-labs/routeprofit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyses_Catalog(t *testing.T) {
	list := Analyses()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Name, list[i].Name, "sorted by name")
	}

	a, ok := LookupAnalysis("PROFIT_BY_ROUTE")
	require.True(t, ok)
	assert.Contains(t, a.SQL("master"), "FROM master")

	_, ok = LookupAnalysis("nope")
	assert.False(t, ok)
}

func TestRunAnalysis(t *testing.T) {
	for _, engine := range []string{"duckdb", "sqlite"} {
		t.Run(engine, func(t *testing.T) {
			ctx := context.Background()
			records := pipeline(t, testutil.SampleCSV, config.DefaultCostModel())
			db := open(t, engine)
			require.NoError(t, LoadMaster(ctx, db, "", records))

			// Every canned query runs on every engine.
			for _, a := range Analyses() {
				res, err := RunAnalysis(ctx, db, a.Name, "", testutil.NewTestLogger(t))
				require.NoError(t, err, a.Name)
				assert.NotEmpty(t, res.Columns, a.Name)
				assert.NotEmpty(t, res.Rows, a.Name)
			}

			res, err := RunAnalysis(ctx, db, "aircraft_mix", DefaultMasterTable, nil)
			require.NoError(t, err)
			assert.Equal(t, []string{"route", "aircraft_type", "months_operated"}, res.Columns)
			require.Len(t, res.Rows, 3)
			assert.Equal(t, "BOS-SEA", res.Rows[0][0])
			assert.Equal(t, "A321", res.Rows[0][1])
			assert.EqualValues(t, 3, res.Rows[0][2])

			res, err = RunAnalysis(ctx, db, "top_route_months", "", nil)
			require.NoError(t, err)
			assert.Len(t, res.Rows, 5)

			res, err = RunAnalysis(ctx, db, "revenue_growth", "", nil)
			require.NoError(t, err)
			require.Len(t, res.Rows, len(records))
			assert.Nil(t, res.Rows[0][3], "first month has no previous revenue")
		})
	}
}

func TestRunAnalysis_Unknown(t *testing.T) {
	_, err := RunAnalysis(context.Background(), nil, "best_route", "", nil)

	var uaErr *UnknownAnalysisError
	require.True(t, errors.As(err, &uaErr))
	assert.Equal(t, "best_route", uaErr.Name)
	assert.Contains(t, uaErr.Available, "profit_by_route")
}
