package team

import "errors"

const (
	maxApplications = 10
	maxMembers      = 30
	maxManagers     = 3
)

var (
	ErrFull                   = errors.New("team: member list full")
	ErrAlreadyMember          = errors.New("team: already a member")
	ErrNotMember              = errors.New("team: not a team member")
	ErrApplicationListFull    = errors.New("team: application list full")
	ErrApplicationExists      = errors.New("team: application already exists")
	ErrApplicationNotFound    = errors.New("team: application not found")
	ErrManagerListFull        = errors.New("team: manager list full")
	ErrAlreadyManager         = errors.New("team: already a manager")
	ErrManagerNotFound        = errors.New("team: manager not found")
	ErrCaptainCannotLeave     = errors.New("team: captain cannot leave")
	ErrInsufficientTeamReward = errors.New("team: insufficient team reward balance")
)

// Team is one player-run guild. The captain is always a member; up to
// three members hold manager privileges.
type Team struct {
	Number  uint32
	Captain string

	Managers     []string
	Members      []string
	Applications []string

	CurrentPeriod uint16

	PurchasedOres              uint32
	CurrentPeriodPurchasedOres uint32

	DistributableTeamRewards uint64
	DistributedTeamRewards   uint64

	LastUpdatedTimestamp uint64
}

// New creates a team with the captain as founding member.
func New(number uint32, captain string, now uint64) *Team {
	return &Team{
		Number:               number,
		Captain:              captain,
		Members:              []string{captain},
		LastUpdatedTimestamp: now,
	}
}

func (t *Team) IsCaptain(player string) bool { return player == t.Captain }

func (t *Team) IsManager(player string) bool { return contains(t.Managers, player) }

func (t *Team) IsCaptainOrManager(player string) bool {
	return t.IsCaptain(player) || t.IsManager(player)
}

func (t *Team) IsMember(player string) bool { return contains(t.Members, player) }

// Apply queues a join application.
func (t *Team) Apply(player string) error {
	if len(t.Members) >= maxMembers {
		return ErrFull
	}
	if t.IsMember(player) {
		return ErrAlreadyMember
	}
	if len(t.Applications) >= maxApplications {
		return ErrApplicationListFull
	}
	if contains(t.Applications, player) {
		return ErrApplicationExists
	}
	t.Applications = append(t.Applications, player)
	return nil
}

// AcceptApplication promotes an applicant to member.
func (t *Team) AcceptApplication(applicant string) error {
	if len(t.Members) >= maxMembers {
		return ErrFull
	}
	if t.IsMember(applicant) {
		return ErrAlreadyMember
	}
	if !contains(t.Applications, applicant) {
		return ErrApplicationNotFound
	}
	t.Applications = remove(t.Applications, applicant)
	t.Members = append(t.Members, applicant)
	return nil
}

// RejectApplication drops a pending application.
func (t *Team) RejectApplication(applicant string) error {
	if !contains(t.Applications, applicant) {
		return ErrApplicationNotFound
	}
	t.Applications = remove(t.Applications, applicant)
	return nil
}

// TransferCaptaincy hands leadership to an existing member. A manager
// promoted to captain loses the manager slot.
func (t *Team) TransferCaptaincy(newCaptain string) error {
	if !t.IsMember(newCaptain) {
		return ErrNotMember
	}
	if t.IsCaptain(newCaptain) {
		return ErrAlreadyMember
	}
	t.Managers = remove(t.Managers, newCaptain)
	t.Captain = newCaptain
	return nil
}

// GrantManager gives a member manager privileges.
func (t *Team) GrantManager(member string) error {
	if !t.IsMember(member) {
		return ErrNotMember
	}
	if len(t.Managers) >= maxManagers {
		return ErrManagerListFull
	}
	if t.IsManager(member) {
		return ErrAlreadyManager
	}
	t.Managers = append(t.Managers, member)
	return nil
}

// RevokeManager strips manager privileges.
func (t *Team) RevokeManager(manager string) error {
	if !t.IsManager(manager) {
		return ErrManagerNotFound
	}
	t.Managers = remove(t.Managers, manager)
	return nil
}

// RemoveMember drops a member (and any manager slot they held). The
// captain can never be removed.
func (t *Team) RemoveMember(player string) error {
	if !t.IsMember(player) {
		return ErrNotMember
	}
	if t.IsCaptain(player) {
		return ErrCaptainCannotLeave
	}
	t.Members = remove(t.Members, player)
	t.Managers = remove(t.Managers, player)
	return nil
}

// UpdateCurrentPeriod resets the per-period ore counter when the
// period changes.
func (t *Team) UpdateCurrentPeriod(period uint16) {
	if t.CurrentPeriod != period {
		t.CurrentPeriod = period
		t.CurrentPeriodPurchasedOres = 0
	}
}

// DistributeRewards moves part of the distributable balance to the
// distributed tally.
func (t *Team) DistributeRewards(amount uint64) error {
	if t.DistributableTeamRewards < amount {
		return ErrInsufficientTeamReward
	}
	t.DistributableTeamRewards -= amount
	t.DistributedTeamRewards += amount
	return nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func remove(list []string, v string) []string {
	kept := list[:0]
	for _, x := range list {
		if x != v {
			kept = append(kept, x)
		}
	}
	return kept
}
