package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrRender           = errors.New("template render failed")
)

// Renderer merges placeholders into a named document template.
type Renderer interface {
	Render(templateName string, data Placeholders) ([]byte, error)
}

// DocxRenderer fills <<Tag>> placeholders in .docx templates stored in
// TemplateDir. A section <<#name>>...<</name>> repeats once per item of a
// []map[string]string value, or once when the value is a non-empty string.
type DocxRenderer struct {
	TemplateDir string
}

func NewDocxRenderer(dir string) *DocxRenderer {
	return &DocxRenderer{TemplateDir: dir}
}

const (
	tagOpen  = "&lt;&lt;"
	tagClose = "&gt;&gt;"
)

var (
	tagPattern  = regexp.MustCompile(`&lt;&lt;([^<]*?)&gt;&gt;`)
	xmlTagStrip = regexp.MustCompile(`<[^>]*>`)
	xmlEscaper  = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
)

func (r *DocxRenderer) Render(templateName string, data Placeholders) ([]byte, error) {
	if templateName == "" || filepath.Base(templateName) != templateName {
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, templateName)
	}
	path := filepath.Join(r.TemplateDir, templateName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return RenderDocx(raw, data)
}

// RenderDocx renders an in-memory .docx archive.
func RenderDocx(template []byte, data Placeholders) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %v", ErrRender, err)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	sawDocument := false

	for _, f := range zr.File {
		if !isTemplatedPart(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		if f.Name == "word/document.xml" {
			sawDocument = true
		}

		content, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrRender, f.Name, err)
		}
		rendered, err := renderPart(content, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method, Modified: f.Modified})
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return nil, err
		}
	}

	if !sawDocument {
		return nil, fmt.Errorf("%w: word/document.xml missing", ErrRender)
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func isTemplatedPart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") {
		return false
	}
	base := strings.TrimPrefix(name, "word/")
	return strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")
}

func readZipFile(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	return string(b), err
}

func renderPart(xml string, data Placeholders) (string, error) {
	joined, err := joinSplitTags(xml)
	if err != nil {
		return "", err
	}
	return renderScope(joined, data)
}

// paragraphBreak separates paragraphs in the text view of a part. NUL cannot
// occur in XML, so no tag will match across it.
const paragraphBreak = '\x00'

var textTagPattern = regexp.MustCompile(`&lt;&lt;([^\x00]*?)&gt;&gt;`)

// joinSplitTags moves every tag Word spread over several runs into the first
// of those runs. Tags are matched on the concatenated <w:t> text of each
// paragraph, so a delimiter split between runs is still found.
func joinSplitTags(s string) (string, error) {
	text, offsets, err := paragraphText(s)
	if err != nil {
		return "", err
	}

	covered := make([]bool, len(text))
	insert := map[int]string{}
	drop := map[int]bool{}
	for _, loc := range textTagPattern.FindAllStringIndex(text, -1) {
		a, b := loc[0], loc[1]
		for k := a; k < b; k++ {
			covered[k] = true
		}
		if contiguous(offsets[a:b]) {
			continue
		}
		insert[offsets[a]] = text[a:b]
		for _, off := range offsets[a:b] {
			drop[off] = true
		}
	}
	if err := checkUnmatched(text, covered); err != nil {
		return "", err
	}
	if len(insert) == 0 {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if tag, ok := insert[i]; ok {
			b.WriteString(tag)
			continue
		}
		if !drop[i] {
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

// paragraphText returns the <w:t> content of s with paragraphs separated by
// paragraphBreak, and the source offset of each text byte (-1 for a break).
func paragraphText(s string) (string, []int, error) {
	var text strings.Builder
	offsets := make([]int, 0, len(s)/4)
	inText := false
	for i := 0; i < len(s); {
		if s[i] != '<' {
			if inText {
				text.WriteByte(s[i])
				offsets = append(offsets, i)
			}
			i++
			continue
		}
		end := strings.IndexByte(s[i:], '>')
		if end < 0 {
			return "", nil, fmt.Errorf("%w: malformed xml near offset %d", ErrRender, i)
		}
		elem := s[i : i+end+1]
		switch {
		case elem == "</w:t>":
			inText = false
		case elem == "</w:p>":
			text.WriteByte(paragraphBreak)
			offsets = append(offsets, -1)
		case (strings.HasPrefix(elem, "<w:t>") || strings.HasPrefix(elem, "<w:t ")) && !strings.HasSuffix(elem, "/>"):
			inText = true
		}
		i += end + 1
	}
	return text.String(), offsets, nil
}

func contiguous(offsets []int) bool {
	for k := 1; k < len(offsets); k++ {
		if offsets[k] != offsets[k-1]+1 {
			return false
		}
	}
	return true
}

// checkUnmatched rejects an opening delimiter that no tag consumed.
func checkUnmatched(text string, covered []bool) error {
	for i := 0; ; {
		j := strings.Index(text[i:], tagOpen)
		if j < 0 {
			return nil
		}
		j += i
		if !covered[j] {
			rest := text[j:]
			if p := strings.IndexByte(rest, paragraphBreak); p >= 0 && strings.Contains(rest[p:], tagClose) {
				return fmt.Errorf("%w: tag at text offset %d spans paragraphs", ErrRender, j)
			}
			return fmt.Errorf("%w: unterminated tag at text offset %d", ErrRender, j)
		}
		i = j + len(tagOpen)
	}
}

type tagMatch struct {
	start, end int
	name       string
}

func findTags(s string) []tagMatch {
	locs := tagPattern.FindAllStringSubmatchIndex(s, -1)
	tags := make([]tagMatch, 0, len(locs))
	for _, loc := range locs {
		tags = append(tags, tagMatch{start: loc[0], end: loc[1], name: strings.TrimSpace(s[loc[2]:loc[3]])})
	}
	return tags
}

// renderScope expands the first section of s, then recurses into what follows.
func renderScope(s string, scope Placeholders) (string, error) {
	tags := findTags(s)
	openIdx := -1
	for i, t := range tags {
		if strings.HasPrefix(t.name, "#") {
			openIdx = i
			break
		}
	}
	if openIdx < 0 {
		return substitute(s, tags, scope)
	}

	open := tags[openIdx]
	section := strings.TrimSpace(open.name[1:])
	closeIdx := matchClose(tags, openIdx, section)
	if closeIdx < 0 {
		return "", fmt.Errorf("%w: section %q is not closed", ErrRender, section)
	}
	closeTag := tags[closeIdx]

	regionStart, regionEnd, body := sectionRegion(s, open, closeTag)

	head, err := substitute(s[:regionStart], findTags(s[:regionStart]), scope)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(head)
	for _, item := range sectionItems(scope[section]) {
		rendered, err := renderScope(body, mergeScope(scope, item))
		if err != nil {
			return "", err
		}
		b.WriteString(rendered)
	}

	tail, err := renderScope(s[regionEnd:], scope)
	if err != nil {
		return "", err
	}
	b.WriteString(tail)
	return b.String(), nil
}

func matchClose(tags []tagMatch, openIdx int, section string) int {
	depth := 0
	for i := openIdx + 1; i < len(tags); i++ {
		name := tags[i].name
		switch {
		case strings.HasPrefix(name, "#") && strings.TrimSpace(name[1:]) == section:
			depth++
		case strings.HasPrefix(name, "/") && strings.TrimSpace(name[1:]) == section:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// sectionRegion picks what a section repeats: the inline text between its tags
// when both sit in one paragraph, the table row when both sit in one row, and
// whole paragraphs otherwise.
func sectionRegion(s string, open, closeTag tagMatch) (start, end int, body string) {
	between := s[open.end:closeTag.start]
	if !strings.Contains(between, "</w:p>") {
		return open.start, closeTag.end, between
	}

	if rs := elementStart(s, open.start, "w:tr"); rs >= 0 &&
		!strings.Contains(s[rs:open.start], "</w:tr>") &&
		!strings.Contains(between, "</w:tr>") {
		if re := elementEnd(s, closeTag.end, "w:tr"); re >= 0 {
			return rs, re, s[rs:open.start] + between + s[closeTag.end:re]
		}
	}

	ps := elementStart(s, open.start, "w:p")
	pe := elementEnd(s, closeTag.end, "w:p")
	if ps < 0 || pe < 0 {
		return open.start, closeTag.end, between
	}

	openParaEnd := elementEnd(s, open.end, "w:p")
	closeParaStart := elementStart(s, closeTag.start, "w:p")
	if aloneInParagraph(s[ps:openParaEnd], open) && aloneInParagraph(s[closeParaStart:pe], closeTag) {
		return ps, pe, s[openParaEnd:closeParaStart]
	}
	return ps, pe, s[ps:open.start] + between + s[closeTag.end:pe]
}

func elementStart(s string, before int, name string) int {
	a := strings.LastIndex(s[:before], "<"+name+">")
	b := strings.LastIndex(s[:before], "<"+name+" ")
	if b > a {
		a = b
	}
	return a
}

func elementEnd(s string, after int, name string) int {
	closing := "</" + name + ">"
	i := strings.Index(s[after:], closing)
	if i < 0 {
		return -1
	}
	return after + i + len(closing)
}

func aloneInParagraph(paragraph string, tag tagMatch) bool {
	text := strings.TrimSpace(xmlTagStrip.ReplaceAllString(paragraph, ""))
	return text == tagOpen+tag.name+tagClose
}

func sectionItems(v interface{}) []map[string]string {
	switch val := v.(type) {
	case []map[string]string:
		return val
	case string:
		if strings.TrimSpace(val) != "" {
			return []map[string]string{{}}
		}
	case bool:
		if val {
			return []map[string]string{{}}
		}
	}
	return nil
}

func mergeScope(scope Placeholders, item map[string]string) Placeholders {
	merged := make(Placeholders, len(scope)+len(item))
	for k, v := range scope {
		merged[k] = v
	}
	for k, v := range item {
		merged[k] = v
	}
	return merged
}

func substitute(s string, tags []tagMatch, scope Placeholders) (string, error) {
	var b strings.Builder
	last := 0
	for _, t := range tags {
		if strings.HasPrefix(t.name, "/") || strings.HasPrefix(t.name, "#") {
			return "", fmt.Errorf("%w: unexpected section tag %q", ErrRender, t.name)
		}
		b.WriteString(s[last:t.start])
		b.WriteString(escapeValue(scope[t.name]))
		last = t.end
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

func escapeValue(v interface{}) string {
	var s string
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		s = val
	case []map[string]string:
		return ""
	default:
		s = fmt.Sprint(val)
	}
	s = xmlEscaper.Replace(strings.ReplaceAll(s, "\r\n", "\n"))
	return strings.ReplaceAll(s, "\n", `</w:t><w:br/><w:t xml:space="preserve">`)
}
