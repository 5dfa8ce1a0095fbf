package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/verification"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
)

type fakeAlertRepo struct {
	inserted *model.Alert
	fail     error
}

func (f *fakeAlertRepo) Insert(_ context.Context, alert *model.Alert) (uuid.UUID, error) {
	if f.fail != nil {
		return uuid.Nil, f.fail
	}
	f.inserted = alert
	return uuid.New(), nil
}

func (f *fakeAlertRepo) MarkProcessed(context.Context, uuid.UUID, int) error { return nil }
func (f *fakeAlertRepo) Get(context.Context, uuid.UUID) (*model.Alert, error) {
	return nil, nil
}
func (f *fakeAlertRepo) List(context.Context, int) ([]*model.Alert, error) { return nil, nil }
func (f *fakeAlertRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestRecordMapsOutcomeToAlert(t *testing.T) {
	repo := &fakeAlertRepo{}
	svc := NewService(repo, nil)

	req := &model.AlertRequest{
		Organization: "empresa1",
		AlertType:    "semaforo",
		Site:         "principal",
		HardwareName: "Semaforo001",
		AlertValue:   "amarilla",
		Fields:       model.RawData{"nombre": "Semaforo001", "bateria": 87},
	}
	outcome := &verification.Outcome{
		HardwareExists:     true,
		HardwareActive:     true,
		OrganizationExists: true,
		SiteExists:         true,
		Authorized:         true,
	}

	record, err := svc.Record(context.Background(), req, outcome, 12*time.Millisecond)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, record.ID)
	assert.Equal(t, "Semaforo001", record.HardwareName)
	assert.Equal(t, "empresa1", record.Organization)
	assert.Equal(t, "principal", record.Site)
	assert.Equal(t, "semaforo", record.AlertType)
	assert.Equal(t, "amarilla", record.AlertValue)
	assert.True(t, record.Authorized)
	assert.True(t, record.HardwareActive)
	assert.Equal(t, int64(12), record.ProcessingMs)
	assert.Equal(t, 87, record.RawData["bateria"])
	assert.WithinDuration(t, time.Now(), record.Timestamp, time.Second)
}

func TestRecordUnauthorizedOutcome(t *testing.T) {
	repo := &fakeAlertRepo{}
	svc := NewService(repo, nil)

	outcome := &verification.Outcome{HardwareExists: false}
	record, err := svc.Record(context.Background(), &model.AlertRequest{HardwareName: "NoExiste"}, outcome, 0)
	require.NoError(t, err)

	assert.False(t, record.Authorized)
	assert.False(t, record.HardwareActive)
	require.NotNil(t, repo.inserted)
}

func TestRecordStoreFailure(t *testing.T) {
	repo := &fakeAlertRepo{fail: errors.New("connection refused")}
	svc := NewService(repo, nil)

	_, err := svc.Record(context.Background(), &model.AlertRequest{HardwareName: "Semaforo001"}, &verification.Outcome{}, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsStoreUnavailable(err))
}
