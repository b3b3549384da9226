package dictionary

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeChunkFile(t *testing.T, dir string, id int, words ...string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteChunk(&buf, words))
	path := filepath.Join(dir, ChunkFileName(id))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func writeTextFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestChunkRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChunk(&buf, []string{"the", "čaj", "autobus"}))

	entries, err := ReadChunk(&buf)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Word: "the", Freq: 65535},
		{Word: "čaj", Freq: 65534},
		{Word: "autobus", Freq: 65533},
	}, entries)
}

func TestReadChunkTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChunk(&buf, []string{"hello", "world"}))
	data := buf.Bytes()

	_, err := ReadChunk(bytes.NewReader(data[:len(data)-3]))
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadChunkSkipsInvalidWords(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	buf.Write([]byte{0xff, 0xfe})
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	buf.WriteString("ok")
	binary.Write(&buf, binary.LittleEndian, uint16(2))

	entries, err := ReadChunk(&buf)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Word: "ok", Freq: 65534}}, entries)
}

func TestReadText(t *testing.T) {
	input := `# comment
hello 120

world
čaj 7
plain
`
	entries, err := ReadText(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Word: "hello", Freq: 120},
		{Word: "world", Freq: 65534},
		{Word: "čaj", Freq: 7},
		{Word: "plain", Freq: 65532},
	}, entries)

	_, err = ReadText(strings.NewReader("word many\n"))
	assert.ErrorContains(t, err, "line 1")
}

func TestDetectFileFormat(t *testing.T) {
	dir := t.TempDir()
	chunk := writeChunkFile(t, dir, 1, "a")
	text := writeTextFile(t, dir, "words.txt", "a\n")
	other := writeTextFile(t, dir, "notes.md", "a\n")

	format, err := DetectFileFormat(chunk)
	require.NoError(t, err)
	assert.Equal(t, FormatChunk, format)

	format, err = DetectFileFormat(text)
	require.NoError(t, err)
	assert.Equal(t, FormatText, format)

	_, err = DetectFileFormat(other)
	assert.Error(t, err)

	bad := filepath.Join(dir, "dict_0002.bin")
	require.NoError(t, os.WriteFile(bad, []byte{0xff, 0xff, 0xff, 0xff}, 0o644))
	_, err = DetectFileFormat(bad)
	assert.ErrorContains(t, err, "negative")
}

func TestListSupportedFormats(t *testing.T) {
	formats := ListSupportedFormats()
	require.Len(t, formats, 2)
	assert.Equal(t, FormatChunk, formats[0].Format)
	assert.Equal(t, FormatText, formats[1].Format)

	info, ok := GetFormatInfo(FormatText)
	assert.True(t, ok)
	assert.Equal(t, []string{".txt"}, info.Extensions)

	_, ok = GetFormatInfo(FormatUnknown)
	assert.False(t, ok)
}

func TestLoaderGetAvailable(t *testing.T) {
	dir := t.TempDir()
	writeChunkFile(t, dir, 2, "c", "d")
	writeChunkFile(t, dir, 1, "a", "b", "e")
	writeTextFile(t, dir, "extra.txt", "# header\nx\ny\n")
	writeTextFile(t, dir, "dict_bad.bin", "????")

	sources, err := NewLoader(dir, 0).GetAvailable()
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, 1, sources[0].ID)
	assert.Equal(t, 3, sources[0].WordCount)
	assert.Equal(t, 2, sources[1].ID)
	assert.Equal(t, FormatText, sources[2].Format)
	assert.Equal(t, 2, sources[2].WordCount)
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	writeChunkFile(t, dir, 1, "the", "of", "and")
	writeChunkFile(t, dir, 2, "house", "the")
	writeTextFile(t, dir, "extra.txt", "zebra 3\n")

	vocab, err := NewLoader(dir, 0).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"and", "house", "of", "the", "zebra"}, vocab.Words)
	assert.Equal(t, 65535, vocab.Freqs["the"], "duplicates keep the best score")
	assert.Equal(t, 3, vocab.Freqs["zebra"])
	assert.Equal(t, 65535, vocab.MaxFrequency())
}

func TestLoaderMaxWords(t *testing.T) {
	dir := t.TempDir()
	writeChunkFile(t, dir, 1, "the", "of")
	writeChunkFile(t, dir, 2, "and", "house")
	writeChunkFile(t, dir, 3, "zebra")

	loader := NewLoader(dir, 3)
	vocab, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"and", "of", "the"}, vocab.Words)

	vocab, err = loader.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, vocab.Words, 5)
}

func TestLoaderSkipsCorruptChunk(t *testing.T) {
	dir := t.TempDir()
	writeChunkFile(t, dir, 1, "good")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ChunkFileName(2)), []byte{3, 0, 0, 0, 9}, 0o644))

	loader := NewLoader(dir, 0)
	loader.SetRetryPolicy(2, 0)
	vocab, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, vocab.Words)
}

func TestLoaderNoDictionary(t *testing.T) {
	_, err := NewLoader(t.TempDir(), 0).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoDictionary)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ChunkFileName(1)), []byte{1, 0, 0, 0}, 0o644))
	loader := NewLoader(dir, 0)
	loader.SetRetryPolicy(1, 0)
	_, err = loader.Load(context.Background())
	assert.ErrorIs(t, err, ErrNoDictionary)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestLoaderCanceled(t *testing.T) {
	dir := t.TempDir()
	writeChunkFile(t, dir, 1, "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(dir, 0).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
