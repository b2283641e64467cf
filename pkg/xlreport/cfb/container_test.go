package cfb

import (
	"bytes"
	"errors"
	"testing"

	"github.com/richardlehane/mscfb"
	"github.com/richardlehane/msoleps/types"
	"github.com/stretchr/testify/require"
)

func fill(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i%251)
	}
	return b
}

func roundTrip(t *testing.T, c *Container) *Container {
	t.Helper()
	data, err := c.Bytes()
	require.NoError(t, err)
	require.Zero(t, len(data)%sectorSize)
	require.Equal(t, signature, data[:8])

	got, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	return got
}

func TestWriteReadRoundTrip(t *testing.T) {
	c := New()
	small := fill(100, 1)
	large := fill(10000, 7)
	c.Put("Workbook", large)
	c.Put("Aux", small)
	c.Put("Empty", nil)
	c.Root.Children = append(c.Root.Children, &Entry{
		Name:    "_VBA_PROJECT_CUR",
		Storage: true,
		Children: []*Entry{
			{Name: "PROJECT", Data: fill(300, 3)},
			{Name: "VBA", Storage: true, Children: []*Entry{{Name: "dir", Data: fill(5000, 9)}}},
		},
	})

	got := roundTrip(t, c)

	wb, ok := got.Stream("Workbook")
	require.True(t, ok)
	require.Equal(t, large, wb)

	aux, ok := got.Stream("aux")
	require.True(t, ok)
	require.Equal(t, small, aux)

	empty, ok := got.Stream("Empty")
	require.True(t, ok)
	require.Empty(t, empty)

	vba, ok := got.Root.Find("_VBA_PROJECT_CUR")
	require.True(t, ok)
	require.True(t, vba.Storage)
	project, ok := vba.Find("PROJECT")
	require.True(t, ok)
	require.Equal(t, fill(300, 3), project.Data)
	inner, ok := vba.Find("VBA")
	require.True(t, ok)
	dir, ok := inner.Find("dir")
	require.True(t, ok)
	require.Equal(t, fill(5000, 9), dir.Data)
}

func TestControlCharacterNamesSurvive(t *testing.T) {
	c := New()
	c.Put("\x05SummaryInformation", fill(64, 2))
	c.Put("\x01CompObj", fill(70, 4))

	got := roundTrip(t, c)
	require.ElementsMatch(t, []string{"\x05SummaryInformation", "\x01CompObj"}, got.Names())
}

func TestDirectoryMetadataSurvives(t *testing.T) {
	const excelSheet = "{00020820-0000-0000-C000-000000000046}"
	created := types.FileTime{Low: 0x8D5E1F00, High: 0x01DA2B3C}
	modified := types.FileTime{Low: 0x12345678, High: 0x01DA2B3D}

	c := New()
	c.Root.CLSID = types.MustGuidFromString(excelSheet)
	c.Root.Modified = modified
	c.Put("Workbook", fill(200, 1))
	c.Root.Children = append(c.Root.Children, &Entry{
		Name:      "MBD0001",
		Storage:   true,
		CLSID:     types.MustGuidFromString(excelSheet),
		StateBits: 0x0004,
		Created:   created,
		Modified:  modified,
		Children: []*Entry{
			{Name: "\x01Ole", Data: fill(20, 2)},
			{Name: "Inner", Storage: true, CLSID: types.MustGuidFromString("{0003000C-0000-0000-C000-000000000046}")},
		},
	})

	data, err := c.Bytes()
	require.NoError(t, err)

	got, err := Read(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, excelSheet, got.Root.CLSID.String())
	require.Equal(t, modified, got.Root.Modified)

	mbd, ok := got.Root.Find("MBD0001")
	require.True(t, ok)
	require.Equal(t, excelSheet, mbd.CLSID.String())
	require.Equal(t, uint32(0x0004), mbd.StateBits)
	require.Equal(t, created, mbd.Created)
	require.Equal(t, modified, mbd.Modified)
	inner, ok := mbd.Find("Inner")
	require.True(t, ok)
	require.Equal(t, "{0003000C-0000-0000-C000-000000000046}", inner.CLSID.String())

	wb, ok := got.Root.Find("Workbook")
	require.True(t, ok)
	require.Equal(t, types.Guid{}, wb.CLSID)

	// written again after a read, as template preservation does
	again, err := got.Bytes()
	require.NoError(t, err)
	doc, err := mscfb.New(bytes.NewReader(again))
	require.NoError(t, err)
	require.Equal(t, excelSheet, doc.ID())
	ids := map[string]string{}
	for f, err := doc.Next(); err == nil; f, err = doc.Next() {
		ids[f.Name] = f.ID()
	}
	require.Equal(t, excelSheet, ids["MBD0001"])
	require.Equal(t, "{0003000C-0000-0000-C000-000000000046}", ids["Inner"])
}

func TestPutClearsStorageMetadata(t *testing.T) {
	c := New()
	c.Root.Children = append(c.Root.Children, &Entry{
		Name:      "Macros",
		Storage:   true,
		CLSID:     types.MustGuidFromString("{00020820-0000-0000-C000-000000000046}"),
		StateBits: 1,
	})
	c.Put("MACROS", fill(10, 0))

	e, ok := c.Root.Find("Macros")
	require.True(t, ok)
	require.False(t, e.Storage)
	require.Equal(t, types.Guid{}, e.CLSID)
	require.Zero(t, e.StateBits)
}

func TestManyStreamsNeedSeveralDirectorySectors(t *testing.T) {
	c := New()
	for i := 0; i < 40; i++ {
		c.Put(string(rune('A'+i%26))+string(rune('a'+i/26)), fill(i*150, byte(i)))
	}
	got := roundTrip(t, c)
	require.Len(t, got.Root.Children, 40)
	for i := 0; i < 40; i++ {
		data, ok := got.Stream(string(rune('A'+i%26)) + string(rune('a'+i/26)))
		require.True(t, ok)
		require.Equal(t, fill(i*150, byte(i)), data)
	}
}

func TestRemove(t *testing.T) {
	c := New()
	c.Put("Workbook", fill(10, 0))

	require.NoError(t, c.Remove("WORKBOOK"))
	_, ok := c.Stream("Workbook")
	require.False(t, ok)

	err := c.Remove("Workbook")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestPutReplaces(t *testing.T) {
	c := New()
	c.Put("Workbook", fill(10, 0))
	c.Put("Workbook", fill(20, 1))
	require.Len(t, c.Root.Children, 1)
	data, _ := c.Stream("Workbook")
	require.Len(t, data, 20)
}

func TestDuplicateNamesRejected(t *testing.T) {
	c := New()
	c.Root.Children = append(c.Root.Children, &Entry{Name: "a"}, &Entry{Name: "A"})
	_, err := c.Bytes()
	require.Error(t, err)
}

func TestReadRejectsGarbage(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("definitely not a compound document")))
	require.ErrorIs(t, err, ErrInvalidContainer)
}

func TestFatLayout(t *testing.T) {
	tests := []struct {
		data  int
		fat   int
		difat int
	}{
		{0, 1, 0},
		{127, 1, 0},
		{128, 2, 0},
		{109*128 - 109, 109, 0},
		{109 * 128, 110, 1},
	}
	for _, tt := range tests {
		fat, difat := fatLayout(tt.data)
		if fat != tt.fat || difat != tt.difat {
			t.Errorf("fatLayout(%d) = (%d, %d), expected (%d, %d)", tt.data, fat, difat, tt.fat, tt.difat)
		}
	}
}

func TestCompareNames(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"B", "AA", -1},
		{"abc", "ABC", 0},
		{"ABD", "abc", 1},
		{"Workbook", "WORKBOOK", 0},
	}
	for _, tt := range tests {
		if got := compareNames(tt.a, tt.b); got != tt.expected {
			t.Errorf("compareNames(%q, %q) = %d, expected %d", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestPropertiesWithoutPropertySets(t *testing.T) {
	c := New()
	c.Put("Workbook", fill(10, 0))
	props, err := c.Properties()
	require.NoError(t, err)
	require.Empty(t, props)
}
