package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntries(t *testing.T) {
	reply := "```json\n[{\"medicine_name\": \"세레온캡슐\", \"dosage\": \"1캡슐\", \"frequency\": \"3회\", \"days\": 14, \"usage\": \"식후 30분\"},\n" +
		"{\"medicine_name\": \"바이겔크림\", \"days\": \"1\"}]\n```"

	entries, err := ParseEntries(reply)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "세레온캡슐", entries[0].MedicineName)
	assert.Equal(t, "14", entries[0].Days)
	assert.Equal(t, "식후 30분", entries[0].Usage)
	assert.Equal(t, "1", entries[1].Days)
	assert.Empty(t, entries[1].Usage)
}

func TestParseEntries_Failures(t *testing.T) {
	_, err := ParseEntries("이미지에서 약을 찾을 수 없습니다.")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = ParseEntries("] nope [")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = ParseEntries(`[{"medicine_name": ]`)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = ParseEntries("[]")
	assert.ErrorIs(t, err, ErrNoEntries)

	_, err = ParseEntries(`[{"medicine_name": "  "}]`)
	assert.ErrorIs(t, err, ErrNoEntries)
}

func TestDetectImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	ct, err := DetectImage(png)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	ct, err = DetectImage(jpeg)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)

	_, err = DetectImage([]byte("%PDF-1.7 not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = DetectImage(nil)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestDetectImage_RejectsGIF(t *testing.T) {
	gif := []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00")
	_, err := DetectImage(gif)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Contains(t, err.Error(), "image/gif")
}
