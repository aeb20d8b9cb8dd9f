package entity

import "database/sql"

type SegmentKind string

const (
	SegmentKindDynamic SegmentKind = "dynamic"
	SegmentKindStatic  SegmentKind = "static"
)

// RuleOperator is the closed set of comparison operators a dynamic segment
// rule may use. Rules are ANDed together at evaluation time.
type RuleOperator string

const (
	RuleEquals      RuleOperator = "equals"
	RuleGreaterThan RuleOperator = "greater_than"
	RuleLessThan    RuleOperator = "less_than"
	RuleContains    RuleOperator = "contains"
)

// SegmentRule is one field/operator/value triple of a dynamic segment.
type SegmentRule struct {
	ID        int          `db:"id" json:"-"`
	SegmentID int          `db:"segment_id" json:"-"`
	Field     string       `db:"field" json:"field" valid:"required"`
	Operator  RuleOperator `db:"operator" json:"operator" valid:"required"`
	Value     string       `db:"value" json:"value"`
}

// Segment is a named customer cohort, either rule-defined (dynamic) or
// explicitly enumerated (static). ClientCount is a cached estimate,
// recomputed on demand, not live.
type Segment struct {
	ID          int            `db:"id"`
	Name        string         `db:"name" valid:"required"`
	Kind        SegmentKind    `db:"kind" valid:"required"`
	ClientCount int            `db:"client_count"`
	CreatedAt   sql.NullTime   `db:"created_at"`
	Description sql.NullString `db:"description"`
}

// SegmentFull is a segment together with its rules (dynamic only).
type SegmentFull struct {
	Segment
	Rules []SegmentRule
}
