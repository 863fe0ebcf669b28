package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "flowboard/pkg/errors"
)

func TestComputePosition_CentersUnderPointer(t *testing.T) {
	pos, err := ComputePosition(Point{X: 150, Y: 80}, &Point{X: 50, Y: 30})

	require.NoError(t, err)
	assert.Equal(t, Position{X: 0, Y: 0}, pos)
}

func TestComputePosition_AllowsNegativeCoordinates(t *testing.T) {
	pos, err := ComputePosition(Point{X: 10, Y: 10}, &Point{X: 0, Y: 0})

	require.NoError(t, err)
	assert.Equal(t, Position{X: -90, Y: -40}, pos)
}

func TestComputePosition_MissingOriginFails(t *testing.T) {
	_, err := ComputePosition(Point{X: 100, Y: 100}, nil)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsPrecondition(err))
}
