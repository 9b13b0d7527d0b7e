package domain

import (
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestNewKeyID(t *testing.T) {
	a := NewKeyID()
	b := NewKeyID()

	assert.False(t, a.IsZero())
	assert.NotEqual(t, a, b)
	assert.Equal(t, uuid.Version(4), uuid.UUID(a).Version())
}

func TestParseKeyID(t *testing.T) {
	id := NewKeyID()

	tests := []struct {
		name    string
		input   string
		want    KeyID
		wantErr bool
	}{
		{name: "round trip", input: id.String(), want: id},
		{name: "zero id", input: base64.StdEncoding.EncodeToString(make([]byte, 16)), want: KeyID{}},
		{name: "invalid base64", input: "not base64!!", wantErr: true},
		{name: "too short", input: base64.StdEncoding.EncodeToString(make([]byte, 8)), wantErr: true},
		{name: "too long", input: base64.StdEncoding.EncodeToString(make([]byte, 32)), wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKeyID(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKeyID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyID_Binary(t *testing.T) {
	id := NewKeyID()
	bin := id.Binary()

	assert.Equal(t, byte(0x04), bin.Subtype)
	assert.Equal(t, id[:], bin.Data)

	// mutating the binary must not alter the id
	bin.Data[0] ^= 0xFF
	assert.NotEqual(t, id[:], bin.Data)

	back, err := KeyIDFromBinary(id.Binary())
	require.NoError(t, err)
	assert.Equal(t, id, back)
}

func TestKeyIDFromBinary_Errors(t *testing.T) {
	_, err := KeyIDFromBinary(bson.Binary{Subtype: 0x00, Data: make([]byte, 16)})
	assert.ErrorIs(t, err, ErrInvalidKeyID)

	_, err = KeyIDFromBinary(bson.Binary{Subtype: 0x04, Data: make([]byte, 12)})
	assert.ErrorIs(t, err, ErrInvalidKeyID)
}
