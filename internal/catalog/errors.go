package catalog

import (
	"fmt"

	"github.com/starford/raido/internal/apperr"
)

// MalformedManifestError reports a skill record missing a required
// field. Record is the zero-based position in the manifest sequence;
// Name is included when the record at least carried one.
type MalformedManifestError struct {
	Record int
	Name   string
	Field  string
}

func (e *MalformedManifestError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("catalog: record %d (%s): missing %s", e.Record, e.Name, e.Field)
	}
	return fmt.Sprintf("catalog: record %d: missing %s", e.Record, e.Field)
}

func (e *MalformedManifestError) Unwrap() error { return apperr.ErrMalformedManifest }

// DuplicateDocumentError reports a document path claimed by a second
// skill. A document belongs to exactly one skill.
type DuplicateDocumentError struct {
	Record int
	Name   string
	Path   string
	Owner  string
}

func (e *DuplicateDocumentError) Error() string {
	return fmt.Sprintf("catalog: record %d (%s): document %q already owned by %q", e.Record, e.Name, e.Path, e.Owner)
}

func (e *DuplicateDocumentError) Unwrap() error { return apperr.ErrMalformedManifest }

// DuplicateSkillError reports two records sharing a name.
type DuplicateSkillError struct {
	Record int
	Name   string
}

func (e *DuplicateSkillError) Error() string {
	return fmt.Sprintf("catalog: record %d: duplicate skill %q", e.Record, e.Name)
}

func (e *DuplicateSkillError) Unwrap() error { return apperr.ErrDuplicateSkill }

// DanglingEscalationError reports a neighbor edge whose target skill
// does not exist in the manifest.
type DanglingEscalationError struct {
	Skill    string
	Neighbor string
}

func (e *DanglingEscalationError) Error() string {
	return fmt.Sprintf("catalog: skill %q escalates to unknown skill %q", e.Skill, e.Neighbor)
}

func (e *DanglingEscalationError) Unwrap() error { return apperr.ErrDanglingEscalation }
