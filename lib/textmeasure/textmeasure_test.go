package textmeasure_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/structview/structview/lib/textmeasure"
)

var txts = []string{
	"Allows customers to view information about their bank accounts",
	"Stores user registration information, hashed authentication credentials, access logs",
	"Provides all of the Internet banking functionality to customers via their web browser.",
	"Sends e-mails to users.",
	"Handles all of the core banking functionality.",
}

func TestTextMeasure(t *testing.T) {
	ruler, err := textmeasure.NewRuler()
	if err != nil {
		t.Fatal(err)
	}
	font := textmeasure.NewFont(24, textmeasure.FontStyleRegular)

	// For a set of strings, each extra char increases width but not height
	for _, txt := range txts {
		txt = strings.ReplaceAll(txt, " ", "")
		for i := 1; i < len(txt)-1; i++ {
			w1, h1 := ruler.Measure(font, txt[:i])
			w2, h2 := ruler.Measure(font, txt[:i+1])
			assert.Equal(t, h1, h2)
			assert.Less(t, w1, w2, fmt.Sprintf(`"%s" vs "%s"`, txt[:i], txt[:i+1]))
		}
	}

	// Adding newlines increases height each time
	for _, txt := range txts {
		whitespaces := strings.Count(txt, " ")
		for i := 0; i < whitespaces-1; i++ {
			txt1 := strings.Replace(txt, " ", "\n", i)
			txt2 := strings.Replace(txt, " ", "\n", i+1)

			_, h1 := ruler.Measure(font, txt1)
			_, h2 := ruler.Measure(font, txt2)
			assert.Less(t, h1, h2)
		}
	}
}

func TestBoldIsWider(t *testing.T) {
	ruler, err := textmeasure.NewRuler()
	if err != nil {
		t.Fatal(err)
	}
	w1, _ := ruler.Measure(textmeasure.NewFont(24, textmeasure.FontStyleRegular), "Internet Banking System")
	w2, _ := ruler.Measure(textmeasure.NewFont(24, textmeasure.FontStyleBold), "Internet Banking System")
	assert.Less(t, w1, w2)
}

func TestWrap(t *testing.T) {
	ruler, err := textmeasure.NewRuler()
	if err != nil {
		t.Fatal(err)
	}
	font := textmeasure.NewFont(24, textmeasure.FontStyleRegular)

	for _, txt := range txts {
		lines := ruler.Wrap(font, txt, 300)
		assert.NotEmpty(t, lines)
		assert.Equal(t, strings.Fields(txt), strings.Fields(strings.Join(lines, " ")))
		for _, l := range lines {
			w, _ := ruler.Measure(font, l)
			if strings.Contains(l, " ") {
				assert.LessOrEqual(t, w, 300, l)
			}
		}
	}

	lines := ruler.Wrap(font, "a\nb", 1000)
	assert.Equal(t, []string{"a", "b"}, lines)

	long := strings.Repeat("x", 80)
	lines = ruler.Wrap(font, long, 200)
	assert.Greater(t, len(lines), 1)
	assert.Equal(t, long, strings.Join(lines, ""))
}

func TestWideGraphemes(t *testing.T) {
	ruler, err := textmeasure.NewRuler()
	if err != nil {
		t.Fatal(err)
	}
	font := textmeasure.NewFont(20, textmeasure.FontStyleRegular)

	space, _ := ruler.MeasurePrecise(font, " ")
	w, _ := ruler.MeasurePrecise(font, "銀行")
	assert.InDelta(t, 4*space, w, 1e-9)

	a, _ := ruler.MeasurePrecise(font, "a")
	w, _ = ruler.MeasurePrecise(font, "a銀")
	assert.InDelta(t, a+2*space, w, 1e-9)
}

func TestLineHeight(t *testing.T) {
	ruler, err := textmeasure.NewRuler()
	if err != nil {
		t.Fatal(err)
	}
	font := textmeasure.NewFont(24, textmeasure.FontStyleRegular)

	_, h1 := ruler.MeasurePrecise(font, "a")
	_, h2 := ruler.MeasurePrecise(font, "a\nb")
	assert.InDelta(t, ruler.LineHeight(font), h2-h1, 1e-9)

	ruler.LineHeightFactor = 1.5
	_, h3 := ruler.MeasurePrecise(font, "a\nb")
	assert.InDelta(t, 1.5*(h2-h1), h3-h1, 1e-9)
}
