package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertCritical(t *testing.T) {
	for _, value := range []string{"roja", "emergencia", "critica"} {
		alert := Alert{AlertValue: value}
		assert.True(t, alert.Critical(), value)
	}
	for _, value := range []string{"verde", "amarilla", "", "ROJA"} {
		alert := Alert{AlertValue: value}
		assert.False(t, alert.Critical(), value)
	}
}

func TestHardwareIsActive(t *testing.T) {
	assert.True(t, (&Hardware{Status: StatusActive}).IsActive())
	assert.False(t, (&Hardware{Status: StatusInactive}).IsActive())
	assert.False(t, (&Hardware{Status: StatusMaintenance}).IsActive())
	assert.False(t, (&Hardware{Status: ""}).IsActive())
}

func TestRecipientListActive(t *testing.T) {
	list := RecipientList{
		{Name: "Laura", Active: true},
		{Name: "Pedro", Active: false},
		{Name: "Sofia", Active: true},
	}

	active := list.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "Laura", active[0].Name)
	assert.Equal(t, "Sofia", active[1].Name)

	assert.Empty(t, RecipientList{}.Active())
}

func TestRecipientListScanRoundTrip(t *testing.T) {
	original := RecipientList{
		{Name: "Laura", Email: "laura@empresa1.com", Role: RoleOperator, Active: true},
	}

	value, err := original.Value()
	require.NoError(t, err)

	var decoded RecipientList
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, original, decoded)
}

func TestRawDataScanFromString(t *testing.T) {
	var data RawData
	require.NoError(t, data.Scan(`{"bateria":87,"firmware":"2.1"}`))
	assert.Equal(t, float64(87), data["bateria"])
	assert.Equal(t, "2.1", data["firmware"])
}

func TestRawDataScanNilLeavesZero(t *testing.T) {
	var data RawData
	require.NoError(t, data.Scan(nil))
	assert.Nil(t, data)
}

func TestScanJSONUnsupportedType(t *testing.T) {
	var data RawData
	assert.Error(t, data.Scan(42))
}
