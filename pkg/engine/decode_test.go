package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_Write(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		label    string
		sniff    bool
		chunks   [][]byte
		want     string
		wantName string
		wantBOM  bool
	}{
		{
			name:     "utf-8 split inside a sequence",
			label:    "utf-8",
			chunks:   [][]byte{{'c', 'a', 'f', 0xC3}, {0xA9}},
			want:     "café",
			wantName: "utf-8",
		},
		{
			name:     "windows-1252",
			label:    "latin1",
			chunks:   [][]byte{{0x80, ' ', 0xE9}},
			want:     "€ é",
			wantName: "windows-1252",
		},
		{
			name:     "utf-8 bom split across writes",
			label:    "windows-1252",
			sniff:    true,
			chunks:   [][]byte{{0xEF}, {0xBB}, {0xBF, 0xC3, 0xA9}},
			want:     "é",
			wantName: "utf-8",
			wantBOM:  true,
		},
		{
			name:     "utf-16le bom",
			label:    "windows-1252",
			sniff:    true,
			chunks:   [][]byte{{0xFF, 0xFE, 'h', 0, 'i', 0}},
			want:     "hi",
			wantName: "utf-16le",
			wantBOM:  true,
		},
		{
			name:     "bom ignored when not sniffing",
			label:    "utf-8",
			chunks:   [][]byte{{0xEF, 0xBB, 0xBF, 'x'}},
			want:     "\ufeffx",
			wantName: "utf-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := newDecoder(tt.label, tt.sniff)
			require.NoError(t, err)

			var got []byte
			sawBOM := false
			for _, chunk := range tt.chunks {
				out, bom, err := d.write(chunk, false)
				require.NoError(t, err)
				got = append(got, out...)
				sawBOM = sawBOM || bom
			}
			out, _, err := d.write(nil, true)
			require.NoError(t, err)
			got = append(got, out...)

			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, tt.wantName, d.name)
			assert.Equal(t, tt.wantBOM, sawBOM)
			assert.Zero(t, d.buffered())
		})
	}
}

func TestDecoder_PendingBOMPrefix(t *testing.T) {
	t.Parallel()

	d, err := newDecoder("windows-1252", true)
	require.NoError(t, err)

	out, bom, err := d.write([]byte{0xEF, 0xBB}, false)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.False(t, bom)
	assert.Equal(t, 2, d.buffered())

	// End of input settles the prefix as ordinary windows-1252 text.
	out, bom, err = d.write(nil, true)
	require.NoError(t, err)
	assert.False(t, bom)
	assert.Equal(t, "ï»", string(out))
}

func TestNewDecoder_Unknown(t *testing.T) {
	t.Parallel()

	_, err := newDecoder("no-such-charset", false)
	require.ErrorIs(t, err, errUnknownCharset)
	assert.Empty(t, lookupCharset("no-such-charset"))
	assert.Equal(t, "windows-1252", lookupCharset(" ISO-8859-1 "))
}
