package models

import (
	"testing"

	"scamshield/internal/services/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		cents  int64
	}{
		{0, 0},
		{0.1, 10},
		{19.99, 1999},
		{1.005, 101},
		{15000, 1500000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.cents, ToMinorUnits(tt.amount), "%v", tt.amount)
	}
	assert.Equal(t, 19.99, FromMinorUnits(1999))
}

func TestSignalsJSON_ScanValue(t *testing.T) {
	in := SignalsJSON{MuleScore: 74, Degraded: []string{"model"}, PayeeCheck: risk.PayeeCheck{Status: risk.PayeeMismatch}}
	raw, err := in.Value()
	require.NoError(t, err)

	var out SignalsJSON
	require.NoError(t, out.Scan(raw))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	assert.Equal(t, SignalsJSON{}, out)
	assert.Error(t, out.Scan(42))
}

func TestTransaction_Accessors(t *testing.T) {
	tx := Transaction{AmountCents: 150050, DstAccount: &Account{IBAN: "RO22"}}
	assert.Equal(t, 1500.50, tx.Amount())
	assert.Equal(t, "", tx.SrcIBAN())
	assert.Equal(t, "RO22", tx.DestinationIBAN())

	tx.DstIBAN = "RO33"
	assert.Equal(t, "RO33", tx.DestinationIBAN())
}

func TestOperatorClaims_Permissions(t *testing.T) {
	c := OperatorClaims{Permissions: GetDefaultPermissions(RoleAnalyst)}
	assert.True(t, c.HasPermission(PermissionAlertsDecide))
	assert.False(t, c.HasPermission(PermissionWatchlistWrite))
	assert.Empty(t, GetDefaultPermissions("guest"))
}
