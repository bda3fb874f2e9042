package fetcher

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	XMLName xml.Name `xml:"item"`
	Name    string   `xml:"name"`
}

func TestNewXMLDecoder_UTF8(t *testing.T) {
	var item testItem
	err := NewXMLDecoder(strings.NewReader(`<?xml version="1.0" encoding="UTF-8"?><item><name>서울</name></item>`)).Decode(&item)
	require.NoError(t, err)
	assert.Equal(t, "서울", item.Name)
}

func TestNewXMLDecoder_Latin1(t *testing.T) {
	// "Liège" encoded as ISO-8859-1.
	input := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><item><name>Li\xe8ge</name></item>"

	var item testItem
	err := NewXMLDecoder(strings.NewReader(input)).Decode(&item)
	require.NoError(t, err)
	assert.Equal(t, "Liège", item.Name)
}

func TestNewXMLDecoder_UnknownCharset(t *testing.T) {
	var item testItem
	err := NewXMLDecoder(strings.NewReader(`<?xml version="1.0" encoding="x-bogus"?><item/>`)).Decode(&item)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported charset")
}
