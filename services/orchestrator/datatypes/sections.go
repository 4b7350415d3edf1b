// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"fmt"
	"strings"
)

// SectionKeys lists the exact sections a generated insight payload must
// contain, in display order.
var SectionKeys = []string{"overall", "sleep", "stress", "exercise", "nutrition", "bp", "weight"}

// InsightSection is one titled passage of a generated insight payload.
type InsightSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// InsightSections is the full seven-section insight payload.
type InsightSections struct {
	Overall   InsightSection `json:"overall"`
	Sleep     InsightSection `json:"sleep"`
	Stress    InsightSection `json:"stress"`
	Exercise  InsightSection `json:"exercise"`
	Nutrition InsightSection `json:"nutrition"`
	BP        InsightSection `json:"bp"`
	Weight    InsightSection `json:"weight"`
}

// Section returns the section stored under key.
func (s *InsightSections) Section(key string) (InsightSection, bool) {
	switch key {
	case "overall":
		return s.Overall, true
	case "sleep":
		return s.Sleep, true
	case "stress":
		return s.Stress, true
	case "exercise":
		return s.Exercise, true
	case "nutrition":
		return s.Nutrition, true
	case "bp":
		return s.BP, true
	case "weight":
		return s.Weight, true
	}
	return InsightSection{}, false
}

// setSection writes a section by key; used by the payload parser.
func (s *InsightSections) setSection(key string, sec InsightSection) {
	switch key {
	case "overall":
		s.Overall = sec
	case "sleep":
		s.Sleep = sec
	case "stress":
		s.Stress = sec
	case "exercise":
		s.Exercise = sec
	case "nutrition":
		s.Nutrition = sec
	case "bp":
		s.BP = sec
	case "weight":
		s.Weight = sec
	}
}

// Validate enforces the all-or-nothing section contract: every section
// present with a non-empty title and body after trimming. Partial payloads
// are rejected outright.
func (s *InsightSections) Validate() error {
	for _, key := range SectionKeys {
		sec, _ := s.Section(key)
		if strings.TrimSpace(sec.Title) == "" || strings.TrimSpace(sec.Body) == "" {
			return fmt.Errorf("insight payload section %q is missing or empty", key)
		}
	}
	return nil
}
