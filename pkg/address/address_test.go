package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFileWithDoubleExtension(t *testing.T) {
	a := Parse("data.csv.gz")
	assert.Equal(t, KindFile, a.Kind)
	assert.Equal(t, "data.csv.gz", a.Path)
	assert.Equal(t, "gzip", a.Compression)
	format, ok := a.EffectiveFormat()
	assert.True(t, ok)
	assert.Equal(t, "csv", format)
}

func TestParseProfileWithQuery(t *testing.T) {
	a := Parse("@api/users?limit=10")
	assert.Equal(t, KindProfile, a.Kind)
	assert.Equal(t, "api", a.ProfileNamespace)
	assert.Equal(t, "users", a.ProfileName)
	assert.Equal(t, "limit=10", a.Query)
}

func TestParseURL(t *testing.T) {
	a := Parse("s3://bucket/key.json")
	assert.Equal(t, KindURL, a.Kind)
	assert.Equal(t, "s3", a.Protocol)
	assert.Equal(t, "bucket/key.json", a.Path)
	format, ok := a.EffectiveFormat()
	assert.True(t, ok)
	assert.Equal(t, "json", format)
}

func TestParseStdinPlain(t *testing.T) {
	a := Parse("-")
	assert.Equal(t, KindStdin, a.Kind)
	assert.Empty(t, a.Format)
}

func TestParseStdinWithFormat(t *testing.T) {
	a := Parse("-~csv")
	assert.Equal(t, KindStdin, a.Kind)
	assert.Equal(t, "csv", a.Format)
}

func TestParseGlob(t *testing.T) {
	a := Parse("logs/*.json")
	assert.Equal(t, KindGlob, a.Kind)
	assert.Equal(t, "logs/*.json", a.Path)
}

func TestTildeFormatOverridesExtension(t *testing.T) {
	a := Parse("data.csv~tsv")
	assert.Equal(t, "data.csv", a.Path)
	assert.Equal(t, "tsv", a.Format)
	format, ok := a.EffectiveFormat()
	assert.True(t, ok)
	assert.Equal(t, "tsv", format)
}

func TestDoubleExtensionTarGz(t *testing.T) {
	a := Parse("archive.tar.gz")
	assert.Equal(t, "gzip", a.Compression)
	format, ok := a.EffectiveFormat()
	assert.True(t, ok)
	assert.Equal(t, "tar", format)
}

func TestQueryStringPreservesEmbeddedEquals(t *testing.T) {
	a := Parse("http://example.com/data?filter=a=b&x=1")
	assert.Equal(t, KindURL, a.Kind)
	assert.Equal(t, "filter=a=b&x=1", a.Query)
}

func TestPlainFileNoCompressionFormatFromExtension(t *testing.T) {
	a := Parse("report.pdf")
	assert.Equal(t, KindFile, a.Kind)
	assert.Empty(t, a.Compression)
	format, ok := a.EffectiveFormat()
	assert.True(t, ok)
	assert.Equal(t, "pdf", format)
}

func TestParserNeverFails(t *testing.T) {
	for _, raw := range []string{"", "???", "@", "@/", "~~~", "s3://", "-~"} {
		a := Parse(raw)
		assert.NotEqual(t, Kind(99), a.Kind) // always classifies to a known kind
	}
}
