package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/themagicbeanstock/backend-go/internal/domain"
)

func TestForecastService_ListForecasts(t *testing.T) {
	store := planningStore(t)
	ctx := context.Background()
	_, err := store.UpsertForecasts(ctx, "acct", []domain.ForecastEntry{
		{Date: "2025-03-10", MenuItemID: "m3", PredictedUnits: 5, Model: "prophet"},
		{Date: "2025-03-10", MenuItemID: "m10", PredictedUnits: 7},
		{Date: "2025-03-11", MenuItemID: "m2", PredictedUnits: 9},
	})
	require.NoError(t, err)

	svc := NewForecastService(store, testOptions())

	list, err := svc.ListForecasts(ctx, " acct ", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 3, list.Count)
	assert.Empty(t, list.Message)
	require.Len(t, list.Forecasts, 3)
	assert.Equal(t, "m1", list.Forecasts[0].MenuItemID)
	assert.Equal(t, "m10", list.Forecasts[1].MenuItemID)
	assert.Equal(t, "m3", list.Forecasts[2].MenuItemID)
	assert.Equal(t, "prophet", list.Forecasts[2].Model)

	empty, err := svc.ListForecasts(ctx, "acct", "2025-04-01")
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.NotNil(t, empty.Forecasts)
	assert.Equal(t, ErrNoForecastsDate.Error(), empty.Message)
}

func TestForecastService_InvalidInput(t *testing.T) {
	svc := NewForecastService(planningStore(t), testOptions())

	_, err := svc.ListForecasts(context.Background(), "acct", "10/03/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = svc.ListForecasts(context.Background(), "", "2025-03-10")
	assert.ErrorIs(t, err, ErrInvalidAccount)
}
