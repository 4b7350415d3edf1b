// Copyright (C) 2026 MHP Labs (dev@mhplabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides the wire types for the insights service.
//
// This file contains the request/response contract for starting and polling
// insight-generation jobs, plus the strict shape of a generated insight
// payload. Validation failures here are reported at the boundary with a 400
// before any job exists.
package datatypes

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mhplabs/mhp-backend/pkg/stats"
	"github.com/mhplabs/mhp-backend/services/stress"
)

const (
	// DefaultTimeZone is assumed when the client omits one.
	DefaultTimeZone = "America/Los_Angeles"

	// MaxForwardDays caps how many trailing daily records are forwarded
	// upstream; older entries are dropped, newest kept.
	MaxForwardDays = 14
)

// insightsValidate is the validator instance for insight datatypes.
// Initialized in init() with the day-key validator.
var insightsValidate *validator.Validate

func init() {
	insightsValidate = validator.New()
	_ = insightsValidate.RegisterValidation("daykey", validateDayKey)
}

// validateDayKey accepts only well-formed YYYY-MM-DD calendar dates.
func validateDayKey(fl validator.FieldLevel) bool {
	return stats.IsDayKey(fl.Field().String())
}

// InsightRequest is the POST /insights body.
type InsightRequest struct {
	ProfileID   string          `json:"profileId" validate:"required"`
	ProfileName string          `json:"profileName"`
	DayKey      string          `json:"dayKey" validate:"required,daykey"`
	TimeZone    string          `json:"timeZone"`
	Days        []stress.Record `json:"days" validate:"required,min=1"`
}

// Normalize fills defaults and trims the day window to the trailing
// MaxForwardDays entries. Call before Validate.
func (r *InsightRequest) Normalize() {
	r.ProfileID = strings.TrimSpace(r.ProfileID)
	r.ProfileName = strings.TrimSpace(r.ProfileName)
	r.DayKey = strings.TrimSpace(r.DayKey)
	if strings.TrimSpace(r.TimeZone) == "" {
		r.TimeZone = DefaultTimeZone
	}
	if len(r.Days) > MaxForwardDays {
		r.Days = r.Days[len(r.Days)-MaxForwardDays:]
	}
}

// Validate checks the request against the wire contract and returns a
// client-presentable error for the first violation.
func (r *InsightRequest) Validate() error {
	if err := insightsValidate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if ok := AsValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			return fmt.Errorf("invalid request: field %q failed %q", jsonFieldName(verrs[0].Field()), verrs[0].Tag())
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// AsValidationErrors unwraps a validator error list, keeping the
// errors.As dance out of callers.
func AsValidationErrors(err error, target *validator.ValidationErrors) bool {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		*target = verrs
		return true
	}
	return false
}

// jsonFieldName maps struct field names to their wire names for error text.
func jsonFieldName(field string) string {
	switch field {
	case "ProfileID":
		return "profileId"
	case "DayKey":
		return "dayKey"
	case "Days":
		return "days"
	case "TimeZone":
		return "timeZone"
	case "ProfileName":
		return "profileName"
	}
	return field
}

// StartResponse is the 202 body for an accepted or still-pending job.
type StartResponse struct {
	OK     bool   `json:"ok"`
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// DoneResponse is the 200 body for a completed job.
type DoneResponse struct {
	OK              bool             `json:"ok"`
	JobID           string           `json:"jobId"`
	Status          string           `json:"status"`
	Model           string           `json:"model"`
	DayKey          string           `json:"dayKey"`
	AnalysisVersion int              `json:"analysisVersion"`
	Insights        *InsightSections `json:"insights"`
}

// ErrorResponse is the body for every non-2xx outcome.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Raw   string `json:"raw,omitempty"`
}

// StressRequest is the POST /stress body: score one day over the supplied
// records.
type StressRequest struct {
	DayKey string          `json:"dayKey" validate:"required,daykey"`
	Days   []stress.Record `json:"days" validate:"required,min=1"`
}

// Validate checks the stress-scoring request.
func (r *StressRequest) Validate() error {
	r.DayKey = strings.TrimSpace(r.DayKey)
	if err := insightsValidate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if ok := AsValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			return fmt.Errorf("invalid request: field %q failed %q", jsonFieldName(verrs[0].Field()), verrs[0].Tag())
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
