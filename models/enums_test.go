package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"available", StatusAvailable},
		{"Disponível", StatusAvailable},
		{" disponivel ", StatusAvailable},
		{"Em uso", StatusCheckedOut},
		{"em_uso", StatusCheckedOut},
		{"checked-out", StatusCheckedOut},
		{"Emprestada", StatusLoaned},
		{"loaned", StatusLoaned},
		{"placeholder", StatusPlaceholder},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseStatus("broken")
	assert.Error(t, err)
}

func TestStatusScanNormalizesLegacyValues(t *testing.T) {
	var s Status
	require.NoError(t, s.Scan([]byte("Emprestada")))
	assert.Equal(t, StatusLoaned, s)

	require.NoError(t, s.Scan("Disponível"))
	assert.Equal(t, StatusAvailable, s)

	assert.Error(t, s.Scan(42))
	assert.Error(t, s.Scan("lost"))
}

func TestStatusValueRejectsUnknown(t *testing.T) {
	v, err := StatusCheckedOut.Value()
	require.NoError(t, err)
	assert.Equal(t, "checked-out", v)

	_, err = Status("lost").Value()
	assert.Error(t, err)
}

func TestStatusLent(t *testing.T) {
	assert.True(t, StatusCheckedOut.Lent())
	assert.True(t, StatusLoaned.Lent())
	assert.False(t, StatusAvailable.Lent())
	assert.False(t, StatusPlaceholder.Lent())
}

func TestParseModeKind(t *testing.T) {
	tests := map[string]ModeKind{
		"register":  ModeRegister,
		"cadastro":  ModeRegister,
		"retirar":   ModeCheckOut,
		"CHECKOUT":  ModeCheckOut,
		"devolver":  ModeReturn,
		"return":    ModeReturn,
		"devolução": ModeReturn,
		"idle":      ModeIdle,
	}
	for in, want := range tests {
		got, err := ParseModeKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseModeKind("explode")
	assert.Error(t, err)
}

func TestActionFor(t *testing.T) {
	assert.Equal(t, ActionCheckOut, ActionFor(ModeCheckOut))
	assert.Equal(t, ActionReturn, ActionFor(ModeReturn))
	assert.Equal(t, ActionBind, ActionFor(ModeRegister))
	assert.Equal(t, ActionRawScan, ActionFor(ModeIdle))
	assert.True(t, ModeReturn.Lending())
	assert.False(t, ModeRegister.Lending())
}
