package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToHTML(t *testing.T) {
	out := ToHTML("## Ceremonia\n\nPiękny **wrzesień** w Krakowie.")
	assert.Contains(t, out, `<h2 id="ceremonia">Ceremonia</h2>`)
	assert.Contains(t, out, "<strong>wrzesień</strong>")
}

func TestToHTMLDropsRawHTML(t *testing.T) {
	out := ToHTML("Tekst <script>alert(1)</script> dalej")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "Tekst")
}

func TestToHTMLUnsafeLink(t *testing.T) {
	out := ToHTML("[klik](javascript:alert(1))")
	assert.NotContains(t, out, `href="javascript:`)
}

func TestToHTMLEmpty(t *testing.T) {
	assert.Equal(t, "", ToHTML("  \n"))
}

func TestExcerpt(t *testing.T) {
	story := "Ania i **Tomek** powiedzieli sobie tak w Tyńcu.\n\nDrugi akapit."
	assert.Equal(t, "Ania i Tomek powiedzieli sobie tak w Tyńcu.", Excerpt(story, 0))
	assert.Equal(t, "Ania i Tomek…", Excerpt(story, 15))
}
