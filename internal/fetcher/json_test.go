package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestDecodeJSONArray(t *testing.T) {
	input := `[{"id":1,"name":"alpha"},{"id":2,"name":"beta"},{"id":3,"name":"gamma"}]`

	records, err := DecodeJSONArray[testRecord](strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, testRecord{1, "alpha"}, records[0])
	assert.Equal(t, testRecord{2, "beta"}, records[1])
	assert.Equal(t, testRecord{3, "gamma"}, records[2])
}

func TestDecodeJSONArray_Empty(t *testing.T) {
	records, err := DecodeJSONArray[testRecord](strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestDecodeJSONArray_EmptyInput(t *testing.T) {
	records, err := DecodeJSONArray[testRecord](strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestDecodeJSONArray_NotArray(t *testing.T) {
	_, err := DecodeJSONArray[testRecord](strings.NewReader(`{"id":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected '['")
}

func TestDecodeJSONArray_BadElement(t *testing.T) {
	_, err := DecodeJSONArray[testRecord](strings.NewReader(`[{"id":1},{"id":"x"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode element 1")
}

func TestDecodeJSONObject(t *testing.T) {
	rec, err := DecodeJSONObject[testRecord](strings.NewReader(`{"id":7,"name":"seven"}`))
	require.NoError(t, err)
	assert.Equal(t, &testRecord{7, "seven"}, rec)

	_, err = DecodeJSONObject[testRecord](strings.NewReader(`not json`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json: decode object")
}
