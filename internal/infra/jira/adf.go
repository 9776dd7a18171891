package jira

import (
	"encoding/json"
	"strings"
)

// adfDocument is the subset of the Atlassian Document Format needed to
// pull plain text out of comment bodies.
type adfDocument struct {
	Type    string    `json:"type"`
	Content []adfNode `json:"content"`
}

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Content []adfNode `json:"content"`
}

// commentText extracts plain text from a comment body, which is either
// an ADF document (API v3) or a bare string (legacy). Unknown node
// types are skipped rather than failing the whole comment.
func commentText(body json.RawMessage) string {
	if len(body) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(body, &plain); err == nil {
		return plain
	}

	var doc adfDocument
	if err := json.Unmarshal(body, &doc); err != nil || doc.Type != "doc" {
		return ""
	}

	paragraphs := make([]string, 0, len(doc.Content))
	for _, block := range doc.Content {
		if block.Type != "paragraph" {
			continue
		}
		var sb strings.Builder
		for _, node := range block.Content {
			if node.Type == "text" {
				sb.WriteString(node.Text)
			}
		}
		if sb.Len() > 0 {
			paragraphs = append(paragraphs, sb.String())
		}
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n"))
}
