// Package models defines compliance rules, the violations they produce, and
// the per-organization summaries derived from them.
package models

import (
	"math"
	"time"

	id "ledger/pkg/domain"
	dErrors "ledger/pkg/domain-errors"
)

// MaxScore is the score of an organization with no unresolved violations.
const MaxScore = 100.0

// MaxResolutionNotesLength bounds Violation.ResolutionNotes in runes.
const MaxResolutionNotesLength = 2000

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityWeights = map[Severity]float64{
	SeverityLow:      2,
	SeverityMedium:   5,
	SeverityHigh:     10,
	SeverityCritical: 20,
}

// Severities lists every severity from least to most serious.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid severity: "+s)
	}
	return sev, nil
}

func (s Severity) IsValid() bool {
	_, ok := severityWeights[s]
	return ok
}

// Weight is the score penalty one unresolved violation of s carries.
func (s Severity) Weight() float64 {
	return severityWeights[s]
}

// RuleType selects the check a rule runs.
type RuleType string

const (
	RuleConsentRequired   RuleType = "consent_required"
	RulePurposeLimitation RuleType = "purpose_limitation"
	RuleRetentionLimit    RuleType = "retention_limit"
)

func (t RuleType) IsValid() bool {
	switch t {
	case RuleConsentRequired, RulePurposeLimitation, RuleRetentionLimit:
		return true
	}
	return false
}

// Rule is an administratively defined compliance rule.
type Rule struct {
	ID           id.RuleID
	Name         string
	Description  string
	Type         RuleType
	Severity     Severity
	Jurisdiction string
	Active       bool
	CreatedAt    time.Time
}

func NewRule(ruleID id.RuleID, name, description string, ruleType RuleType, severity Severity, jurisdiction string, active bool, now time.Time) (*Rule, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "rule name is required")
	}
	if !ruleType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid rule type: "+string(ruleType))
	}
	if !severity.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid severity: "+string(severity))
	}
	return &Rule{
		ID:           ruleID,
		Name:         name,
		Description:  description,
		Type:         ruleType,
		Severity:     severity,
		Jurisdiction: jurisdiction,
		Active:       active,
		CreatedAt:    now,
	}, nil
}

type ViolationStatus string

const (
	StatusDetected      ViolationStatus = "detected"
	StatusInvestigating ViolationStatus = "investigating"
	StatusResolved      ViolationStatus = "resolved"
	StatusIgnored       ViolationStatus = "ignored"
)

func ParseViolationStatus(s string) (ViolationStatus, error) {
	st := ViolationStatus(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid violation status: "+s)
	}
	return st, nil
}

func (s ViolationStatus) IsValid() bool {
	switch s {
	case StatusDetected, StatusInvestigating, StatusResolved, StatusIgnored:
		return true
	}
	return false
}

// IsUnresolved reports whether a violation in status s still counts
// against the score. Only resolved violations stop counting.
func (s ViolationStatus) IsUnresolved() bool {
	return s != StatusResolved
}

// Violation is a detected breach of a rule. Severity and ImpactScore are
// copied from the rule at detection and never change.
type Violation struct {
	ID              id.ViolationID
	OrganizationID  id.OrganizationID
	RuleID          id.RuleID
	AccessEventID   *id.AccessEventID
	Severity        Severity
	ImpactScore     float64
	Description     string
	Status          ViolationStatus
	DetectedAt      time.Time
	ResolvedAt      *time.Time
	ResolvedBy      *id.UserID
	ResolutionNotes string
}

// NewViolation freezes rule's severity onto a new detected violation.
func NewViolation(violationID id.ViolationID, rule *Rule, orgID id.OrganizationID, eventID *id.AccessEventID, description string, now time.Time) (*Violation, error) {
	if rule == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "rule is required")
	}
	if orgID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "organization ID is required")
	}
	if description == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "violation description is required")
	}
	v := &Violation{
		ID:             violationID,
		OrganizationID: orgID,
		RuleID:         rule.ID,
		Severity:       rule.Severity,
		ImpactScore:    rule.Severity.Weight(),
		Description:    description,
		Status:         StatusDetected,
		DetectedAt:     now,
	}
	if eventID != nil {
		eid := *eventID
		v.AccessEventID = &eid
	}
	return v, nil
}

func (v *Violation) IsUnresolved() bool {
	return v.Status.IsUnresolved()
}

// CanResolve allows detected and investigating violations to be resolved.
func (v *Violation) CanResolve() error {
	switch v.Status {
	case StatusDetected, StatusInvestigating:
		return nil
	default:
		return dErrors.New(dErrors.CodeInvariantViolation, "violation is already "+string(v.Status))
	}
}

func (v *Violation) ApplyResolution(now time.Time, by id.UserID, notes string) {
	v.Status = StatusResolved
	v.ResolvedAt = &now
	v.ResolvedBy = &by
	v.ResolutionNotes = notes
}

func (v *Violation) Clone() *Violation {
	if v == nil {
		return nil
	}
	out := *v
	if v.AccessEventID != nil {
		eid := *v.AccessEventID
		out.AccessEventID = &eid
	}
	if v.ResolvedAt != nil {
		t := *v.ResolvedAt
		out.ResolvedAt = &t
	}
	if v.ResolvedBy != nil {
		u := *v.ResolvedBy
		out.ResolvedBy = &u
	}
	return &out
}

// ViolationFilter narrows a violation listing. Nil fields match everything.
type ViolationFilter struct {
	Status   *ViolationStatus
	Severity *Severity
}

func (f ViolationFilter) Validate() error {
	if f.Status != nil && !f.Status.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid violation status: "+string(*f.Status))
	}
	if f.Severity != nil && !f.Severity.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid severity: "+string(*f.Severity))
	}
	return nil
}

func (f ViolationFilter) Matches(v *Violation) bool {
	if f.Status != nil && v.Status != *f.Status {
		return false
	}
	if f.Severity != nil && v.Severity != *f.Severity {
		return false
	}
	return true
}

// ComputeScore is 100 minus the impact of every unresolved violation,
// floored at 0 and rounded to two decimals. No accesses means 100.
func ComputeScore(totalAccesses int, violations []*Violation) float64 {
	if totalAccesses == 0 {
		return MaxScore
	}
	penalty := 0.0
	for _, v := range violations {
		if v.IsUnresolved() {
			penalty += v.ImpactScore
		}
	}
	score := MaxScore - penalty
	if score < 0 {
		score = 0
	}
	return Round2(score)
}

// Round2 rounds x to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ScanResult reports one compliance scan.
type ScanResult struct {
	OrganizationID    id.OrganizationID
	ViolationsCreated int
	RulesEvaluated    int
	EventsScanned     int
	WindowStart       time.Time
	ScannedAt         time.Time
	Score             float64
}

// Summary is an organization's compliance position.
type Summary struct {
	OrganizationID       id.OrganizationID
	OrganizationName     string
	Score                float64
	ScoreUpdatedAt       *time.Time
	TotalAccesses        int
	AuthorizedAccesses   int
	AuthorizationRate    float64
	TotalViolations      int
	UnresolvedViolations int
	UnresolvedBySeverity map[Severity]int
}

// AuthorizationRate is the percentage of authorized accesses, or 0 with no
// accesses.
func AuthorizationRate(total, authorized int) float64 {
	if total == 0 {
		return 0
	}
	return Round2(float64(authorized) / float64(total) * 100)
}
