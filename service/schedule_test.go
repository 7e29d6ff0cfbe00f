package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMaintenance_PurgeExpiredTokens(t *testing.T) {
	store := new(MockStore)
	store.On("PurgeExpiredTokens", mock.Anything, mock.Anything).Return(int64(3), nil).Once()

	n, err := NewMaintenance(store, quietLogger()).PurgeExpiredTokens(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	store.AssertExpectations(t)
}

func TestMaintenance_PurgeFailure(t *testing.T) {
	store := new(MockStore)
	store.On("PurgeExpiredTokens", mock.Anything, mock.Anything).Return(int64(0), errors.New("locked"))

	_, err := NewMaintenance(store, quietLogger()).PurgeExpiredTokens(context.Background())
	assert.Error(t, err)
}

func TestMaintenance_InvalidSpec(t *testing.T) {
	m := NewMaintenance(new(MockStore), quietLogger())
	assert.Error(t, m.Start("not a cron spec"))
	assert.NoError(t, m.Start("@every 1h"))
	<-m.Stop().Done()
}
