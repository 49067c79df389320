package v1

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeValidate(t *testing.T) {
	valid := Envelope{
		EventID:       "evt-1",
		EventType:     "treasury.received",
		Sequence:      1,
		SchemaVersion: SchemaVersion,
	}
	require.NoError(t, valid.Validate())

	missingID := valid
	missingID.EventID = ""
	assert.ErrorIs(t, missingID.Validate(), ErrMissingEventID)

	unsequenced := valid
	unsequenced.Sequence = 0
	assert.ErrorIs(t, unsequenced.Validate(), ErrMissingSequence)

	future := valid
	future.SchemaVersion = 2
	assert.ErrorIs(t, future.Validate(), ErrUnknownSchema)
}

func TestEnvelopeDecodeData(t *testing.T) {
	envelope := Envelope{Data: json.RawMessage(`{"amount":250,"category":"grants"}`)}
	var payload struct {
		Amount   uint64 `json:"amount"`
		Category string `json:"category"`
	}
	require.NoError(t, envelope.DecodeData(&payload))
	assert.Equal(t, uint64(250), payload.Amount)
	assert.Equal(t, "grants", payload.Category)
}
