package services

import (
	"html/template"
	"strings"
)

type emailMetaItem struct {
	Label string
	Value string
}

// buildEmailHTML renders the office's plain notification layout: a heading,
// paragraphs and an optional label/value table. Empty rows are skipped.
func buildEmailHTML(subject string, paragraphs []string, meta []emailMetaItem) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:Arial,Helvetica,sans-serif;color:#111827;max-width:640px;margin:0 auto;">`)
	b.WriteString(`<h2 style="margin:0 0 18px 0;font-size:20px;">`)
	b.WriteString(template.HTMLEscapeString(subject))
	b.WriteString(`</h2>`)

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		escaped := template.HTMLEscapeString(p)
		escaped = strings.ReplaceAll(escaped, "\n", "<br />")
		b.WriteString(`<p style="margin:0 0 14px 0;line-height:1.6;">`)
		b.WriteString(escaped)
		b.WriteString(`</p>`)
	}

	var rows []emailMetaItem
	for _, item := range meta {
		if strings.TrimSpace(item.Label) == "" || strings.TrimSpace(item.Value) == "" {
			continue
		}
		rows = append(rows, item)
	}
	if len(rows) > 0 {
		b.WriteString(`<table role="presentation" cellpadding="0" cellspacing="0" width="100%" style="border:1px solid #e5e7eb;border-radius:8px;background:#f9fafb;">`)
		for _, row := range rows {
			b.WriteString(`<tr><td style="padding:8px 12px;font-size:13px;color:#6b7280;width:38%;">`)
			b.WriteString(template.HTMLEscapeString(row.Label))
			b.WriteString(`</td><td style="padding:8px 12px;font-size:14px;font-weight:600;">`)
			b.WriteString(template.HTMLEscapeString(row.Value))
			b.WriteString(`</td></tr>`)
		}
		b.WriteString(`</table>`)
	}

	b.WriteString(`</div>`)
	return b.String()
}
