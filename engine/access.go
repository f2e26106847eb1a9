package engine

import (
	"errors"

	"contracthub/models"
)

// ErrAccessDenied is returned when a user asks for a record outside their
// accessible team set or belonging to another organisation. Callers must
// deny the whole request, never degrade to a partial view.
var ErrAccessDenied = errors.New("access denied")

// AccessSet is the resolved answer to "which teams' contracts may this user
// see". It is computed fresh per request from the user's assignments and the
// current team graph; team membership can change between page loads, so it
// must never be cached across requests.
type AccessSet struct {
	OrganisationID uint

	// Unrestricted marks organisation-wide access. It is a sentinel: the
	// team-id set is left empty rather than materialised, so teams added
	// after resolution are still covered.
	Unrestricted bool

	// TeamIDs is the union of descendant closures over the user's team-level
	// assignments. Meaningless when Unrestricted is set.
	TeamIDs map[uint]struct{}

	// CanManage is true when any assignment carries a managerial role.
	CanManage bool
}

// ResolveAccess computes the accessible-team set for a user. Each assignment
// must have its TeamRole loaded. Any organisation-level role grants the
// unrestricted sentinel; otherwise team-level assignments each contribute
// their team plus all its descendants. A user with no assignments gets an
// empty set and sees only unassigned contracts.
func ResolveAccess(organisationID uint, assignments []models.UserTeamAssignment, graph *TeamGraph) AccessSet {
	access := AccessSet{
		OrganisationID: organisationID,
		TeamIDs:        make(map[uint]struct{}),
	}

	for _, assignment := range assignments {
		if assignment.TeamRole.CanManage {
			access.CanManage = true
		}
		if assignment.TeamRole.AccessLevel == models.AccessLevelOrganisation {
			access.Unrestricted = true
		}
	}
	if access.Unrestricted {
		return access
	}

	for _, assignment := range assignments {
		if assignment.TeamRole.AccessLevel != models.AccessLevelTeam {
			continue
		}
		for id := range graph.Descendants(assignment.TeamID) {
			access.TeamIDs[id] = struct{}{}
		}
	}

	return access
}

// CanViewTeam reports whether the team id is inside the accessible set.
func (a AccessSet) CanViewTeam(teamID uint) bool {
	if a.Unrestricted {
		return true
	}
	_, ok := a.TeamIDs[teamID]
	return ok
}

// CanViewContract applies the central visibility rule for one contract.
// A contract with no team is the "unassigned bucket": it is not filtered by
// team membership at all and is visible to any organisation member who
// reached the page. This is deliberate policy, not a gap.
func (a AccessSet) CanViewContract(contract models.Contract) bool {
	if contract.OrganisationID != a.OrganisationID {
		return false
	}
	if contract.TeamID == nil {
		return true
	}
	return a.CanViewTeam(*contract.TeamID)
}

// AuthorizeView returns ErrAccessDenied unless the contract is visible.
func (a AccessSet) AuthorizeView(contract models.Contract) error {
	if !a.CanViewContract(contract) {
		return ErrAccessDenied
	}
	return nil
}

// AuthorizeManage returns ErrAccessDenied unless the contract is visible and
// the user holds a managerial role.
func (a AccessSet) AuthorizeManage(contract models.Contract) error {
	if err := a.AuthorizeView(contract); err != nil {
		return err
	}
	if !a.CanManage {
		return ErrAccessDenied
	}
	return nil
}

// FilterContracts keeps only the contracts the access set can see,
// preserving input order.
func (a AccessSet) FilterContracts(contracts []models.Contract) []models.Contract {
	visible := make([]models.Contract, 0, len(contracts))
	for _, contract := range contracts {
		if a.CanViewContract(contract) {
			visible = append(visible, contract)
		}
	}
	return visible
}
