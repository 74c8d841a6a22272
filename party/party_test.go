package party

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartke/frost-ceremony/ciphersuite"
)

func TestFromIndex(t *testing.T) {
	suite := ciphersuite.Ed25519()

	id, err := FromIndex(suite, 1)
	require.NoError(t, err)
	assert.Len(t, id.Bytes(), suite.ScalarSize())

	x, err := id.Scalar(suite)
	require.NoError(t, err)
	assert.EqualValues(t, 1, x.Int64())

	_, err = FromIndex(suite, 0)
	assert.Error(t, err)
}

func TestFromBytesRejectsInvalid(t *testing.T) {
	suite := ciphersuite.Ed25519()

	_, err := FromBytes(suite, make([]byte, suite.ScalarSize()))
	assert.Error(t, err, "zero scalar")

	_, err = FromBytes(suite, []byte{0x01})
	assert.Error(t, err, "wrong width")
}

func TestRoundTrip(t *testing.T) {
	for _, suite := range []ciphersuite.Suite{ciphersuite.Ed25519(), ciphersuite.Ed448()} {
		id, err := FromIndex(suite, 42)
		require.NoError(t, err)

		same, err := FromBytes(suite, id.Bytes())
		require.NoError(t, err)
		assert.Equal(t, id, same)
	}
}

func TestSortIsCanonicalByteOrder(t *testing.T) {
	suite := ciphersuite.Ed25519()

	var ids IDSlice
	for _, i := range []uint16{3, 1, 2} {
		id, err := FromIndex(suite, i)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	ids.Sort()

	for i := 0; i+1 < len(ids); i++ {
		assert.True(t, ids[i] < ids[i+1])
	}

	first, _ := FromIndex(suite, 1)
	assert.Equal(t, first, ids[0])
	assert.True(t, ids.Contains(first))

	other, _ := FromIndex(suite, 9)
	assert.False(t, ids.Contains(other))
}
