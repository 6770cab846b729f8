package document

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	summarySystemPrompt = "You are a helpful assistant that generates concise summaries of documents."
	summaryUserPrompt   = "Please provide a concise summary of the following document in 3-5 paragraphs: "

	insightsSystemPrompt = "You are a helpful assistant that extracts key insights from documents. " +
		"Return your response as a valid JSON array of strings."
	insightsUserPrompt = "Please extract exactly 5 key insights from the following document. " +
		"Format your response as a valid JSON array of strings with no additional text before or after the array: "

	maxInsights = 5
)

var firstArray = regexp.MustCompile(`\[[\s\S]*?\]`)

// parseInsights extracts insight strings from a model reply.
// Accepted shapes, in order: {"insights": [...]}, a bare JSON array, the first [...] block
// inside prose, and finally up to 5 non-empty lines that contain no braces.
func parseInsights(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var wrapped struct {
		Insights []string `json:"insights"`
	}
	if err := json.Unmarshal([]byte(content), &wrapped); err == nil && wrapped.Insights != nil {
		return cleanInsights(wrapped.Insights)
	}

	var arr []string
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return cleanInsights(arr)
	}

	if m := firstArray.FindString(content); m != "" {
		if err := json.Unmarshal([]byte(m), &arr); err == nil {
			return cleanInsights(arr)
		}
	}

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.ContainsAny(line, "{}") {
			continue
		}
		lines = append(lines, line)
		if len(lines) == maxInsights {
			break
		}
	}
	return lines
}

func cleanInsights(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
