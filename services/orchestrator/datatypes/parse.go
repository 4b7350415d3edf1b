// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseInsightPayload turns raw upstream model output into a validated
// seven-section payload. Parsing is two-stage: a strict parse of the whole
// text, then one retry on the first-'{'-to-last-'}' substring for models
// that wrap JSON in prose. Any shape violation fails the whole payload;
// there is no partial credit.
func ParseInsightPayload(raw string) (*InsightSections, error) {
	sections, err := parseSections([]byte(raw))
	if err == nil {
		return sections, nil
	}

	if extracted, ok := extractJSONObject(raw); ok {
		if sections, retryErr := parseSections([]byte(extracted)); retryErr == nil {
			return sections, nil
		}
	}
	return nil, err
}

func parseSections(data []byte) (*InsightSections, error) {
	var byKey map[string]json.RawMessage
	if err := json.Unmarshal(data, &byKey); err != nil {
		return nil, fmt.Errorf("upstream output is not a JSON object: %w", err)
	}
	if len(byKey) != len(SectionKeys) {
		return nil, fmt.Errorf("expected exactly %d sections, got %d", len(SectionKeys), len(byKey))
	}

	out := &InsightSections{}
	for _, key := range SectionKeys {
		rawSec, ok := byKey[key]
		if !ok {
			return nil, fmt.Errorf("insight payload section %q is missing or empty", key)
		}
		var sec InsightSection
		if err := json.Unmarshal(rawSec, &sec); err != nil {
			return nil, fmt.Errorf("insight payload section %q is malformed: %w", key, err)
		}
		sec.Title = strings.TrimSpace(sec.Title)
		sec.Body = strings.TrimSpace(sec.Body)
		out.setSection(key, sec)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// extractJSONObject returns the substring spanning the first '{' through
// the last '}'. Best effort only; the caller revalidates.
func extractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
