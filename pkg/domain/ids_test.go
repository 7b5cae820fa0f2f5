package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "agricert/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant:
// IDs must be valid, non-empty, non-nil UUIDs.
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseFarmID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseFarmID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseFarmID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		raw := uuid.New()
		parsed, err := ParseFarmID(raw.String())
		require.NoError(t, err)
		assert.Equal(t, FarmID(raw), parsed)
	})

	t.Run("all parse helpers behave consistently", func(t *testing.T) {
		for _, input := range []string{"", "invalid", uuid.Nil.String()} {
			_, errUser := ParseUserID(input)
			_, errFarm := ParseFarmID(input)
			_, errApp := ParseApplicationID(input)
			_, errCert := ParseCertificateID(input)
			assert.Error(t, errUser)
			assert.Error(t, errFarm)
			assert.Error(t, errApp)
			assert.Error(t, errCert)
		}
	})
}

func TestIDJSONRoundTrip(t *testing.T) {
	original := NewCertificateID()

	encoded, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+original.String()+`"`, string(encoded))

	var decoded CertificateID
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, original, decoded)
}

// FuzzParseFarmID checks that parsing never panics on arbitrary input and
// that accepted values round-trip.
func FuzzParseFarmID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")

	f.Fuzz(func(t *testing.T, input string) {
		parsed, err := ParseFarmID(input)
		if err != nil {
			return
		}
		roundTrip, err2 := ParseFarmID(parsed.String())
		if err2 != nil {
			t.Errorf("valid ID failed round-trip: %v", err2)
		}
		if roundTrip != parsed {
			t.Error("round-trip changed ID value")
		}
	})
}
