package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/themagicbeanstock/backend-go/internal/engine"
)

func TestRecipeService_Calculate(t *testing.T) {
	svc, err := NewRecipeService(planningStore(t), engine.DefaultPolicy(), testOptions())
	require.NoError(t, err)

	lines, err := svc.Calculate(context.Background(), "acct", "r1", 10)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "Flour", lines[0].ItemName)
	assert.Equal(t, 0.5, lines[0].Needed)
	assert.Zero(t, lines[0].ToOrder)
	assert.Equal(t, "Acme", lines[0].Supplier)

	assert.Equal(t, "Eggs", lines[1].ItemName)
	assert.Equal(t, 20.0, lines[1].Needed)
	assert.Equal(t, 10.0, lines[1].ToOrder)
	assert.Equal(t, "Unknown", lines[1].Supplier)
}

func TestRecipeService_Errors(t *testing.T) {
	svc, err := NewRecipeService(planningStore(t), engine.DefaultPolicy(), testOptions())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Calculate(ctx, "acct", "missing", 1)
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	_, err = svc.Calculate(ctx, "acct", "r1", -2)
	assert.ErrorIs(t, err, engine.ErrInvalidServings)

	_, err = svc.Calculate(ctx, "", "r1", 1)
	assert.ErrorIs(t, err, ErrInvalidAccount)
}
