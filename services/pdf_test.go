package services

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePlanPDF(t *testing.T) {
	data := PlanPDF{
		TravelerName: "Ada Lovelace",
		Destination:  "Paris",
		NumDays:      5,
		Budget:       "Mid",
		Currency:     "USD",
		Summary:      "Researching Paris for 5 days...",
		Sections: []PDFSection{
			{Heading: "🌦️ Real-Time Weather Forecast", Body: "🌡️ Temperature: 18.5°C\n💨 Wind Speed: 3.2 m/s"},
			{Heading: "📍 Top Places to Visit", Body: "- [Louvre Museum](https://www.louvre.fr)\n## **Day 1**"},
		},
		Map:         &Coordinates{Lat: 48.8566, Lon: 2.3522},
		GeneratedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	out, err := GeneratePlanPDF(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Greater(t, len(out), 1000)
}

func cyrillicPlan(fontPath string) PlanPDF {
	return PlanPDF{
		Destination: "Москва",
		NumDays:     3,
		Budget:      "Low",
		Currency:    "RUB",
		Sections:    []PDFSection{{Heading: "🏨 Accommodation Suggestions", Body: "Гостиница «Москва» 🏨"}},
		FontPath:    fontPath,
	}
}

func TestGeneratePlanPDFCoreFontFallback(t *testing.T) {
	orig := DefaultFontPaths
	DefaultFontPaths = nil
	t.Cleanup(func() { DefaultFontPaths = orig })

	out, err := GeneratePlanPDF(cyrillicPlan(""))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGeneratePlanPDFUnicodeFont(t *testing.T) {
	font := "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"
	if _, err := os.Stat(font); err != nil {
		t.Skip("DejaVuSans.ttf not installed")
	}

	out, err := GeneratePlanPDF(cyrillicPlan(font))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Contains(t, string(out), "FontFile2")
}

func TestGeneratePlanPDFMissingFont(t *testing.T) {
	_, err := GeneratePlanPDF(cyrillicPlan(filepath.Join(t.TempDir(), "missing.ttf")))
	assert.ErrorContains(t, err, "read PDF font")
}

func TestLatin1Only(t *testing.T) {
	out, dropped := latin1Only("🌡️ Temperature: 18.5°C")
	assert.Equal(t, "Temperature: 18.5°C", out)
	assert.False(t, dropped)

	out, dropped = latin1Only("Москва café")
	assert.Equal(t, "café", out)
	assert.True(t, dropped)
}

func TestWithoutPictographs(t *testing.T) {
	assert.Equal(t, "Москва 18.5°C", withoutPictographs("🌡️ Москва 18.5°C"))
	assert.Equal(t, "Weather", withoutPictographs("🌦️ Weather"))
	assert.Equal(t, "東京 €", withoutPictographs("東京 €☀"))
}

func TestStripMarkdown(t *testing.T) {
	assert.Equal(t, "Louvre (https://www.louvre.fr)", stripMarkdown("[Louvre](https://www.louvre.fr)"))
	assert.Equal(t, "Day 1", stripMarkdown("## **Day 1**"))
}
