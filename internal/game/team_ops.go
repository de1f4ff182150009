package game

import (
	"fmt"

	"github.com/ErenVance/DoomsdayArk/internal/events"
	"github.com/ErenVance/DoomsdayArk/internal/team"
)

// TeamID derives the canonical identifier for a team number.
func TeamID(number uint32) string {
	return fmt.Sprintf("team:%d", number)
}

// CreateTeam founds a new team with the player as captain. Only
// players currently on the default team may found one.
func (e *Engine) CreateTeam(playerID string) (*team.Team, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return nil, err
	}
	if p.Team != e.state.DefaultTeam {
		return nil, ErrUnauthorized
	}

	number := e.state.IncrementTeamNonce()
	t := team.New(number, playerID, e.now())
	id := TeamID(number)
	e.teams[id] = t
	p.JoinTeam(id)

	e.emit(events.TypeCreateTeam, events.InitiatorTeam, playerID, map[string]any{
		"team":   id,
		"player": playerID,
	})
	return t, nil
}

// ApplyToJoinTeam files a membership application, subject to the
// rejoin cooldown.
func (e *Engine) ApplyToJoinTeam(playerID, teamID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return err
	}
	t, err := e.teamByID(teamID)
	if err != nil {
		return err
	}
	if p.CanApplyToTeamAt > e.now() {
		return ErrTeamCooldownActive
	}

	if err := p.ApplyToJoinTeam(teamID); err != nil {
		return err
	}
	if err := t.Apply(playerID); err != nil {
		return err
	}

	e.emit(events.TypeApplyToJoinTeam, events.InitiatorTeam, playerID, map[string]string{
		"team":   teamID,
		"player": playerID,
	})
	return nil
}

// AcceptTeamApplication admits an applicant. Captain or manager only.
func (e *Engine) AcceptTeamApplication(acceptorID, teamID, applicantID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.teamByID(teamID)
	if err != nil {
		return err
	}
	a, err := e.playerByID(applicantID)
	if err != nil {
		return err
	}
	if !t.IsCaptainOrManager(acceptorID) {
		return ErrUnauthorized
	}

	if err := t.AcceptApplication(applicantID); err != nil {
		return err
	}
	if err := a.AcceptTeamApplication(teamID); err != nil {
		return err
	}

	e.emit(events.TypeAcceptApplication, events.InitiatorTeam, acceptorID, map[string]string{
		"team":      teamID,
		"applicant": applicantID,
	})
	return nil
}

// RejectTeamApplication declines an applicant. Captain or manager only.
func (e *Engine) RejectTeamApplication(rejectorID, teamID, applicantID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.teamByID(teamID)
	if err != nil {
		return err
	}
	a, err := e.playerByID(applicantID)
	if err != nil {
		return err
	}
	if !t.IsCaptainOrManager(rejectorID) {
		return ErrUnauthorized
	}

	if err := t.RejectApplication(applicantID); err != nil {
		return err
	}
	if err := a.RejectTeamApplication(teamID); err != nil {
		return err
	}

	e.emit(events.TypeRejectApplication, events.InitiatorTeam, rejectorID, map[string]string{
		"team":      teamID,
		"applicant": applicantID,
	})
	return nil
}

// LeaveTeam returns the player to the default team and starts the
// rejoin cooldown. Captains cannot leave their own team.
func (e *Engine) LeaveTeam(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.playerByID(playerID)
	if err != nil {
		return err
	}
	t, err := e.teamByID(p.Team)
	if err != nil {
		return err
	}
	if t.IsCaptain(playerID) {
		return ErrUnauthorized
	}

	teamID := p.Team
	if err := t.RemoveMember(playerID); err != nil {
		return err
	}
	if err := p.LeaveTeam(e.state.DefaultTeam, e.now()+e.state.TeamJoinCooldownSeconds); err != nil {
		return err
	}

	e.emit(events.TypeLeaveTeam, events.InitiatorTeam, playerID, map[string]string{
		"team":   teamID,
		"player": playerID,
	})
	return nil
}

// RemoveMemberFromTeam expels a member. Managers can remove plain
// members; removing a manager takes the captain.
func (e *Engine) RemoveMemberFromTeam(managerID, teamID, memberID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.teamByID(teamID)
	if err != nil {
		return err
	}
	m, err := e.playerByID(memberID)
	if err != nil {
		return err
	}
	if !t.IsCaptainOrManager(managerID) {
		return ErrUnauthorized
	}
	if managerID == memberID {
		return ErrUnauthorized
	}
	if t.IsManager(memberID) && !t.IsCaptain(managerID) {
		return ErrUnauthorized
	}
	if m.Team == e.state.DefaultTeam {
		return ErrTeamNotFound
	}

	if err := t.RemoveMember(memberID); err != nil {
		return err
	}
	if err := m.LeaveTeam(e.state.DefaultTeam, e.now()+e.state.TeamJoinCooldownSeconds); err != nil {
		return err
	}

	e.emit(events.TypeRemoveMember, events.InitiatorTeam, managerID, map[string]string{
		"team":   teamID,
		"member": memberID,
	})
	return nil
}

// GrantManagerPrivileges promotes a member to manager. Captain only.
func (e *Engine) GrantManagerPrivileges(captainID, teamID, memberID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.teamByID(teamID)
	if err != nil {
		return err
	}
	if !t.IsCaptain(captainID) {
		return ErrUnauthorized
	}
	if captainID == memberID {
		return ErrUnauthorized
	}

	if err := t.GrantManager(memberID); err != nil {
		return err
	}

	e.emit(events.TypeGrantManager, events.InitiatorTeam, captainID, map[string]string{
		"team":   teamID,
		"member": memberID,
	})
	return nil
}

// RevokeManagerPrivileges demotes a manager. Captain only.
func (e *Engine) RevokeManagerPrivileges(captainID, teamID, managerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.teamByID(teamID)
	if err != nil {
		return err
	}
	if !t.IsCaptain(captainID) {
		return ErrUnauthorized
	}
	if captainID == managerID {
		return ErrUnauthorized
	}

	if err := t.RevokeManager(managerID); err != nil {
		return err
	}

	e.emit(events.TypeRevokeManager, events.InitiatorTeam, captainID, map[string]string{
		"team":    teamID,
		"manager": managerID,
	})
	return nil
}

// TransferTeamCaptaincy hands the team to another member. Captain
// only; a promoted manager loses the manager seat.
func (e *Engine) TransferTeamCaptaincy(captainID, teamID, memberID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.teamByID(teamID)
	if err != nil {
		return err
	}
	if !t.IsCaptain(captainID) {
		return ErrUnauthorized
	}
	if captainID == memberID {
		return ErrUnauthorized
	}

	if err := t.TransferCaptaincy(memberID); err != nil {
		return err
	}

	e.emit(events.TypeTransferCaptaincy, events.InitiatorTeam, captainID, map[string]string{
		"team":        teamID,
		"new_captain": memberID,
	})
	return nil
}

// DistributeTeamRewards pays part of the team's distributable balance
// to a member. Captain only.
func (e *Engine) DistributeTeamRewards(captainID, teamID, memberID string, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.teamByID(teamID)
	if err != nil {
		return err
	}
	m, err := e.playerByID(memberID)
	if err != nil {
		return err
	}
	if !t.IsCaptain(captainID) {
		return ErrUnauthorized
	}
	if !t.IsMember(memberID) {
		return ErrUnauthorized
	}

	if err := t.DistributeRewards(amount); err != nil {
		return err
	}
	m.CollectedTeamRewards += amount
	m.TokenBalance += amount

	e.emit(events.TypeDistributeTeam, events.InitiatorTeam, captainID, map[string]any{
		"team":         teamID,
		"member":       memberID,
		"team_rewards": amount,
	})
	return nil
}
