package repo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVector(t *testing.T) {
	values, err := parseVector("[0.1,0.2,0.3]")
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2, 0.3}, values)
}

func TestParseVectorWithSpaces(t *testing.T) {
	values, err := parseVector(" [1, -2.5, 0] ")
	require.NoError(t, err)
	require.Equal(t, []float32{1, -2.5, 0}, values)
}

func TestParseVectorEmpty(t *testing.T) {
	values, err := parseVector("[]")
	require.NoError(t, err)
	require.Nil(t, values)
}

func TestParseVectorMalformed(t *testing.T) {
	_, err := parseVector("0.1,0.2")
	require.Error(t, err)
	_, err = parseVector("[0.1,abc]")
	require.Error(t, err)
	_, err = parseVector("")
	require.Error(t, err)
}
