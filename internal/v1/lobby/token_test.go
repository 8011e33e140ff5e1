package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec("a-test-secret-that-is-long-enough")

	token, err := codec.Encode(1234, "0042", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), claims.Iat)
	assert.Equal(t, RoomCode("0042"), claims.RoomCode)
	assert.Equal(t, Username("alice"), claims.Username)
}

func TestTokenCodec_RejectsWrongSecret(t *testing.T) {
	codec := NewTokenCodec("secret-one-is-long-enough-too")
	token, err := codec.Encode(1, "0001", "bob")
	require.NoError(t, err)

	other := NewTokenCodec("a-completely-different-secret!!")
	_, err = other.Decode(token)
	assert.Error(t, err)
}

func TestTokenCodec_DoesNotRequireExpiry(t *testing.T) {
	codec := NewTokenCodec("no-expiry-is-enforced-by-this-codec")
	token, err := codec.Encode(1, "0001", "bob")
	require.NoError(t, err)

	// Decoding succeeds even though the token carries no exp claim at all.
	_, err = codec.Decode(token)
	assert.NoError(t, err)
}

func TestExtractToken_StripsBearerPrefix(t *testing.T) {
	token, err := ExtractToken("Bearer abc.def.ghi")
	require.Nil(t, err)
	assert.Equal(t, "abc.def.ghi", token)
}

func TestExtractToken_RejectsMissingPrefix(t *testing.T) {
	_, err := ExtractToken("abc.def.ghi")
	require.NotNil(t, err)
	assert.Equal(t, KindInvalidAuthorizationHeader, err.Kind)
}
