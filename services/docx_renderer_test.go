package services

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wrapBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
}

func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func docxPart(t *testing.T, docx []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			content, err := readZipFile(f)
			require.NoError(t, err)
			return content
		}
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func renderBody(t *testing.T, body string, data Placeholders) string {
	t.Helper()
	out, err := RenderDocx(buildDocx(t, map[string]string{"word/document.xml": wrapBody(body)}), data)
	require.NoError(t, err)
	return docxPart(t, out, "word/document.xml")
}

var twoMembers = []map[string]string{
	{"name": "Ani", "nidn": "111", "nomor": "1"},
	{"name": "Budi", "nidn": "222", "nomor": "2"},
}

func TestRenderJoinsSplitRuns(t *testing.T) {
	doc := renderBody(t,
		`<w:p><w:r><w:t>Nama: &lt;&lt;Nama</w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>Ketua&gt;&gt;</w:t></w:r></w:p>`,
		Placeholders{"NamaKetua": "Budi & <Ani>"})

	assert.Contains(t, doc, "Nama: Budi &amp; &lt;Ani&gt;")
	assert.NotContains(t, doc, "&lt;&lt;")
}

func TestRenderJoinsSplitDelimiters(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"opening split": {
			body: `<w:p><w:r><w:t>Nama: &lt;</w:t></w:r><w:r><w:t>&lt;NamaKetua&gt;&gt;</w:t></w:r></w:p>`,
			want: "<w:t>Nama: Ani</w:t>",
		},
		"closing split": {
			body: `<w:p><w:r><w:t>&lt;&lt;NamaKetua&gt;</w:t></w:r><w:r><w:rPr><w:i/></w:rPr><w:t xml:space="preserve">&gt; selesai</w:t></w:r></w:p>`,
			want: "<w:t>Ani</w:t>",
		},
		"every character split": {
			body: `<w:p><w:r><w:t>&lt;</w:t></w:r><w:r><w:t>&lt;Nama</w:t></w:r><w:proofErr w:type="spellStart"/>` +
				`<w:r><w:t>Ketua&gt;</w:t></w:r><w:r><w:t>&gt;.</w:t></w:r></w:p>`,
			want: "<w:t>Ani</w:t>",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			doc := renderBody(t, tc.body, Placeholders{"NamaKetua": "Ani"})
			assert.Contains(t, doc, tc.want)
			assert.NotContains(t, doc, "NamaKetua")
			assert.NotContains(t, doc, "&lt;")
			assert.NotContains(t, doc, "&gt;")
		})
	}

	doc := renderBody(t, `<w:p><w:r><w:t>&lt;&lt;NamaKetua&gt;</w:t></w:r><w:r><w:t xml:space="preserve">&gt; selesai</w:t></w:r></w:p>`,
		Placeholders{"NamaKetua": "Ani"})
	assert.Contains(t, doc, `<w:t xml:space="preserve"> selesai</w:t>`)
}

func TestRenderSplitSectionTags(t *testing.T) {
	body := `<w:p><w:r><w:t>&lt;</w:t></w:r><w:r><w:t>&lt;#anggota&gt;&gt;</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>- &lt;&lt;name&gt;</w:t></w:r><w:r><w:t>&gt;</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>&lt;&lt;/anggota&gt;</w:t></w:r><w:r><w:t>&gt;</w:t></w:r></w:p>`

	doc := renderBody(t, body, Placeholders{MemberSection: twoMembers})
	assert.Contains(t, doc, "- Ani")
	assert.Contains(t, doc, "- Budi")
	assert.NotContains(t, doc, "anggota")
}

func TestRenderMissingValueIsEmpty(t *testing.T) {
	doc := renderBody(t, `<w:p><w:r><w:t>[&lt;&lt;Unknown&gt;&gt;]</w:t></w:r></w:p>`, Placeholders{})
	assert.Contains(t, doc, "<w:t>[]</w:t>")
}

func TestRenderNewlinesBecomeBreaks(t *testing.T) {
	doc := renderBody(t, `<w:p><w:r><w:t>&lt;&lt;Alamat&gt;&gt;</w:t></w:r></w:p>`,
		Placeholders{"Alamat": "Jl. Juanda\r\nSamarinda"})
	assert.Contains(t, doc, `Jl. Juanda</w:t><w:br/><w:t xml:space="preserve">Samarinda`)
}

func TestRenderRepeatsTableRows(t *testing.T) {
	doc := renderBody(t,
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Anggota</w:t></w:r></w:p></w:tc></w:tr>`+
			`<w:tr><w:tc><w:p><w:r><w:t>&lt;&lt;#anggota&gt;&gt;&lt;&lt;nomor&gt;&gt;</w:t></w:r></w:p></w:tc>`+
			`<w:tc><w:p><w:r><w:t>&lt;&lt;name&gt;&gt; / &lt;&lt;nidn&gt;&gt;&lt;&lt;/anggota&gt;&gt;</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`,
		Placeholders{MemberSection: twoMembers})

	assert.Equal(t, 3, strings.Count(doc, "<w:tr>"))
	assert.Contains(t, doc, "<w:t>1</w:t>")
	assert.Contains(t, doc, "Ani / 111")
	assert.Contains(t, doc, "Budi / 222")
	assert.NotContains(t, doc, "&lt;&lt;")
}

func TestRenderRepeatsParagraphs(t *testing.T) {
	body := `<w:p><w:r><w:t>Daftar:</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>&lt;&lt;#anggota&gt;&gt;</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>- &lt;&lt;name&gt;&gt; (&lt;&lt;nidn&gt;&gt;)</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>&lt;&lt;/anggota&gt;&gt;</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>&lt;&lt;Tanggal&gt;&gt;</w:t></w:r></w:p>`

	doc := renderBody(t, body, Placeholders{MemberSection: twoMembers, "Tanggal": "5 Maret 2024"})
	assert.Equal(t, 4, strings.Count(doc, "<w:p>"))
	assert.Contains(t, doc, "- Ani (111)")
	assert.Contains(t, doc, "- Budi (222)")
	assert.Contains(t, doc, "5 Maret 2024")

	empty := renderBody(t, body, Placeholders{MemberSection: []map[string]string{}})
	assert.Equal(t, 2, strings.Count(empty, "<w:p>"))
	assert.NotContains(t, empty, "- ")
}

func TestRenderInlineConditional(t *testing.T) {
	body := `<w:p><w:r><w:t>&lt;&lt;#Puslitbang&gt;&gt;Pusat: &lt;&lt;Puslitbang&gt;&gt;&lt;&lt;/Puslitbang&gt;&gt;.</w:t></w:r></w:p>`

	assert.Contains(t, renderBody(t, body, Placeholders{"Puslitbang": "P3M"}), "<w:t>Pusat: P3M.</w:t>")
	assert.Contains(t, renderBody(t, body, Placeholders{"Puslitbang": ""}), "<w:t>.</w:t>")
}

func TestRenderHeadersAndUntouchedParts(t *testing.T) {
	parts := map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   wrapBody(`<w:p><w:r><w:t>&lt;&lt;Judul&gt;&gt;</w:t></w:r></w:p>`),
		"word/header1.xml":    `<w:hdr><w:p><w:r><w:t>&lt;&lt;NamaKetua&gt;&gt;</w:t></w:r></w:p></w:hdr>`,
		"word/styles.xml":     `<w:styles>&lt;&lt;Judul&gt;&gt;</w:styles>`,
	}
	out, err := RenderDocx(buildDocx(t, parts), Placeholders{"Judul": "Riset", "NamaKetua": "Sari"})
	require.NoError(t, err)

	assert.Contains(t, docxPart(t, out, "word/document.xml"), "<w:t>Riset</w:t>")
	assert.Contains(t, docxPart(t, out, "word/header1.xml"), "<w:t>Sari</w:t>")
	assert.Equal(t, parts["word/styles.xml"], docxPart(t, out, "word/styles.xml"))
	assert.Equal(t, "<Types/>", docxPart(t, out, "[Content_Types].xml"))
}

func TestRenderErrors(t *testing.T) {
	cases := map[string]string{
		"unclosed section": `<w:p><w:r><w:t>&lt;&lt;#anggota&gt;&gt;&lt;&lt;name&gt;&gt;</w:t></w:r></w:p>`,
		"stray close":      `<w:p><w:r><w:t>&lt;&lt;/anggota&gt;&gt;</w:t></w:r></w:p>`,
		"spans paragraphs": `<w:p><w:r><w:t>&lt;&lt;Nama</w:t></w:r></w:p><w:p><w:r><w:t>Ketua&gt;&gt;</w:t></w:r></w:p>`,
		"unterminated tag": `<w:p><w:r><w:t>&lt;&lt;Nama`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := RenderDocx(buildDocx(t, map[string]string{"word/document.xml": wrapBody(body)}), Placeholders{})
			assert.ErrorIs(t, err, ErrRender)
		})
	}

	_, err := RenderDocx([]byte("not a zip"), Placeholders{})
	assert.ErrorIs(t, err, ErrRender)

	_, err = RenderDocx(buildDocx(t, map[string]string{"word/styles.xml": "<w:styles/>"}), Placeholders{})
	assert.ErrorIs(t, err, ErrRender)
}

func TestDocxRendererTemplateLookup(t *testing.T) {
	dir := t.TempDir()
	tpl := buildDocx(t, map[string]string{
		"word/document.xml": wrapBody(`<w:p><w:r><w:t>&lt;&lt;NamaKetua&gt;&gt;</w:t></w:r></w:p>`),
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Surat Tugas PKM.docx"), tpl, 0o644))

	r := NewDocxRenderer(dir)
	out, err := r.Render("Surat Tugas PKM.docx", Placeholders{"NamaKetua": "Sari"})
	require.NoError(t, err)
	assert.Contains(t, docxPart(t, out, "word/document.xml"), "<w:t>Sari</w:t>")

	_, err = r.Render("Tidak Ada.docx", Placeholders{})
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = r.Render("../Surat Tugas PKM.docx", Placeholders{})
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}
