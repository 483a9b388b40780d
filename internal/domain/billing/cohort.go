package billing

import (
	"strings"

	"github.com/condo/backend/internal/domain/shared"
)

// Cohort selects which obligations a generation run materialises
type Cohort string

const (
	// CohortFees issues every required registry fee to every household
	CohortFees Cohort = "FEES"

	// CohortVehicleMonthly issues a monthly parking ticket to every active vehicle
	CohortVehicleMonthly Cohort = "VEHICLE_MONTHLY"
)

// AllCohorts lists the cohorts in the order a scheduled run processes them
func AllCohorts() []Cohort {
	return []Cohort{CohortFees, CohortVehicleMonthly}
}

// IsValid returns true if the cohort is valid
func (c Cohort) IsValid() bool {
	switch c {
	case CohortFees, CohortVehicleMonthly:
		return true
	}
	return false
}

// ParseCohort parses a cohort name at the boundary
func ParseCohort(s string) (Cohort, error) {
	c := Cohort(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", shared.NewDomainError(shared.CodeBadRequest, "Unknown generation cohort: "+s)
	}
	return c, nil
}
