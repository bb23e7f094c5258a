package dispatch_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alia5/factorygen/dispatch"
)

func TestIDErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		is      error
		isNot   error
		wantMsg string
		wantID  int
	}{
		{
			name:    "negative id",
			err:     dispatch.InvalidArgument("FruitFactory", -1),
			is:      dispatch.ErrInvalidArgument,
			isNot:   dispatch.ErrUnknownIdentifier,
			wantMsg: "FruitFactory: id is less than zero: -1",
			wantID:  -1,
		},
		{
			name:    "unknown id",
			err:     dispatch.UnknownIdentifier("FruitFactory", 42),
			is:      dispatch.ErrUnknownIdentifier,
			isNot:   dispatch.ErrInvalidArgument,
			wantMsg: "FruitFactory: unknown id = 42",
			wantID:  42,
		},
		{
			name:    "wrapped",
			err:     fmt.Errorf("produce: %w", dispatch.UnknownIdentifier("SeedFactory", 0)),
			is:      dispatch.ErrUnknownIdentifier,
			isNot:   dispatch.ErrInvalidArgument,
			wantMsg: "produce: SeedFactory: unknown id = 0",
			wantID:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.is)
			assert.False(t, errors.Is(tt.err, tt.isNot))
			assert.EqualError(t, tt.err, tt.wantMsg)

			id, ok := dispatch.ID(tt.err)
			assert.True(t, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestIDNotAFactoryError(t *testing.T) {
	_, ok := dispatch.ID(errors.New("boom"))
	assert.False(t, ok)
}
