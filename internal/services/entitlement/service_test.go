package entitlement

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/riskgate/internal/common"
	"github.com/bobmcallan/riskgate/internal/interfaces"
	"github.com/bobmcallan/riskgate/internal/models"
	"github.com/bobmcallan/riskgate/internal/storage/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:entitlement_%d?mode=memory&cache=shared", time.Now().UnixNano())
	ledger, err := sqlite.NewLedgerStore(common.NewSilentLogger(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })
	return NewService(ledger, common.NewSilentLogger())
}

// failingLedger returns err from every call.
type failingLedger struct {
	err error
}

func (f *failingLedger) Append(context.Context, string, string, any) (string, error) {
	return "", f.err
}

func (f *failingLedger) ReadAll(context.Context, string, interfaces.LedgerFilter) ([]*models.LedgerRecord, error) {
	return nil, f.err
}

func (f *failingLedger) Close() error { return nil }

func TestIsEntitled_DefaultDeny(t *testing.T) {
	svc := newTestService(t)

	ok, err := svc.IsEntitled(context.Background(), "0xNEW")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsEntitled_LatestWins(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	steps := []struct {
		address   string
		confirmed bool
	}{
		{"0xA", true},
		{"0xB", false},
		{"0xA", false},
		{"0xB", true},
		{"0xA", true},
		{"0xB", false},
	}

	want := map[string]bool{}
	for _, step := range steps {
		_, err := svc.RecordPayment(ctx, step.address, step.confirmed)
		require.NoError(t, err)
		want[step.address] = step.confirmed

		for addr, expected := range want {
			got, err := svc.IsEntitled(ctx, addr)
			require.NoError(t, err)
			assert.Equal(t, expected, got, "address %s after recording %+v", addr, step)
		}
	}
}

func TestIsEntitled_FailClosed(t *testing.T) {
	svc := NewService(&failingLedger{err: errors.New("connection refused")}, common.NewSilentLogger())

	ok, err := svc.IsEntitled(context.Background(), "0xA")
	assert.False(t, ok)
	assert.ErrorIs(t, err, common.ErrLedgerUnavailable)
}

func TestRecordPayment_WriteFailure(t *testing.T) {
	svc := NewService(&failingLedger{err: errors.New("disk full")}, common.NewSilentLogger())

	_, err := svc.RecordPayment(context.Background(), "0xA", true)
	assert.ErrorIs(t, err, common.ErrLedgerUnavailable)
}

func TestRecordPayment_RequiresAddress(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.RecordPayment(context.Background(), "   ", true)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestRecordPayment_NoDedup(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.RecordPayment(ctx, "0xA", true)
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, "0xA")
	require.NoError(t, err)
	assert.Len(t, history, 3)
	for _, rec := range history {
		assert.NotEmpty(t, rec.RecordID)
		assert.Equal(t, "0xA", rec.Address)
	}
}

func TestStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	status, err := svc.Status(ctx, "0xA")
	require.NoError(t, err)
	assert.False(t, status.Entitled)
	assert.Nil(t, status.RecordedAt)

	_, err = svc.RecordPayment(ctx, "0xA", true)
	require.NoError(t, err)

	status, err = svc.Status(ctx, " 0xA ")
	require.NoError(t, err)
	assert.True(t, status.Entitled)
	assert.Equal(t, 1, status.Records)
	assert.Equal(t, "0xA", status.Address)
	assert.NotNil(t, status.RecordedAt)
}
