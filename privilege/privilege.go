// Package privilege defines the account privilege bitmask shared with the
// game server. The integer layout is a wire contract and must not change.
package privilege

import "strings"

// Privileges is an account privilege mask.
type Privileges uint32

const (
	UserPublic              Privileges = 1 << 0 // not restricted
	UserNormal              Privileges = 1 << 1
	UserDonor               Privileges = 1 << 2
	AdminAccessRAP          Privileges = 1 << 3
	AdminManageUsers        Privileges = 1 << 4
	AdminBanUsers           Privileges = 1 << 5
	AdminSilenceUsers       Privileges = 1 << 6
	AdminWipeUsers          Privileges = 1 << 7
	AdminManageBeatmaps     Privileges = 1 << 8
	AdminManageServers      Privileges = 1 << 9
	AdminManageSettings     Privileges = 1 << 10
	AdminManageBetaKeys     Privileges = 1 << 11
	AdminManageReports      Privileges = 1 << 12
	AdminManageDocs         Privileges = 1 << 13
	AdminManageBadges       Privileges = 1 << 14
	AdminViewRAPLogs        Privileges = 1 << 15
	AdminManagePrivileges   Privileges = 1 << 16
	AdminSendAlerts         Privileges = 1 << 17
	AdminChatMod            Privileges = 1 << 18
	AdminKickUsers          Privileges = 1 << 19
	UserPendingVerification Privileges = 1 << 20
	UserTournamentStaff     Privileges = 1 << 21
	AdminCaker              Privileges = 1 << 22
	AdminViewTopScores      Privileges = 1 << 23
	AdminViewIPs            Privileges = 1 << 24
	AdminManageClans        Privileges = 1 << 25
	AdminViewErrorLog       Privileges = 1 << 26
	UserPremium             Privileges = 1 << 27
)

// None is the empty capability. Has(m, None) is always true.
const None Privileges = 0

// DefaultUnbanned is the mask given on unban. Prior privileges are not
// restored; staff must re-elevate the account by hand.
const DefaultUnbanned = UserPublic | UserNormal

// Has reports whether mask contains every bit of cap.
func Has(mask, cap Privileges) bool {
	return mask&cap == cap
}

// Has reports whether p contains every bit of cap.
func (p Privileges) Has(cap Privileges) bool { return Has(p, cap) }

// All composes capabilities that must be held together.
func All(caps ...Privileges) Privileges {
	var out Privileges
	for _, c := range caps {
		out |= c
	}
	return out
}

// Set returns p with cap added.
func (p Privileges) Set(cap Privileges) Privileges { return p | cap }

// Clear returns p with cap removed.
func (p Privileges) Clear(cap Privileges) Privileges { return p &^ cap }

// Banned reports whether p is the banned sentinel (exactly zero).
func (p Privileges) Banned() bool { return p == 0 }

// Restricted reports whether p lacks UserPublic without being banned.
func (p Privileges) Restricted() bool { return p != 0 && !p.Has(UserPublic) }

// Standing is the account state derived from mask and ban timestamp.
type Standing int

const (
	Active Standing = iota
	Restricted
	Banned
)

func (s Standing) String() string {
	switch s {
	case Active:
		return "active"
	case Restricted:
		return "restricted"
	case Banned:
		return "banned"
	}
	return "unknown"
}

// Standing derives the account standing from the mask alone; ban_datetime
// only records when it changed. Frozen is a separate overlay.
func (p Privileges) Standing() Standing {
	switch {
	case p.Banned():
		return Banned
	case !p.Has(UserPublic):
		return Restricted
	default:
		return Active
	}
}

var names = []struct {
	p    Privileges
	name string
}{
	{UserPublic, "UserPublic"},
	{UserNormal, "UserNormal"},
	{UserDonor, "UserDonor"},
	{AdminAccessRAP, "AdminAccessRAP"},
	{AdminManageUsers, "AdminManageUsers"},
	{AdminBanUsers, "AdminBanUsers"},
	{AdminSilenceUsers, "AdminSilenceUsers"},
	{AdminWipeUsers, "AdminWipeUsers"},
	{AdminManageBeatmaps, "AdminManageBeatmaps"},
	{AdminManageServers, "AdminManageServers"},
	{AdminManageSettings, "AdminManageSettings"},
	{AdminManageBetaKeys, "AdminManageBetaKeys"},
	{AdminManageReports, "AdminManageReports"},
	{AdminManageDocs, "AdminManageDocs"},
	{AdminManageBadges, "AdminManageBadges"},
	{AdminViewRAPLogs, "AdminViewRAPLogs"},
	{AdminManagePrivileges, "AdminManagePrivileges"},
	{AdminSendAlerts, "AdminSendAlerts"},
	{AdminChatMod, "AdminChatMod"},
	{AdminKickUsers, "AdminKickUsers"},
	{UserPendingVerification, "UserPendingVerification"},
	{UserTournamentStaff, "UserTournamentStaff"},
	{AdminCaker, "AdminCaker"},
	{AdminViewTopScores, "AdminViewTopScores"},
	{AdminViewIPs, "AdminViewIPs"},
	{AdminManageClans, "AdminManageClans"},
	{AdminViewErrorLog, "AdminViewErrorLog"},
	{UserPremium, "UserPremium"},
}

// Names lists the named capabilities set in p.
func (p Privileges) Names() []string {
	out := make([]string, 0, 4)
	for _, n := range names {
		if p.Has(n.p) {
			out = append(out, n.name)
		}
	}
	return out
}

func (p Privileges) String() string {
	if p == 0 {
		return "None"
	}
	return strings.Join(p.Names(), "|")
}
