package privilege

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHas_SubsetLaw(t *testing.T) {
	masks := []Privileges{0, 1, 2, 3, 7, 1 << 20, 0xFFFFFFFF, UserPublic | AdminBanUsers}
	caps := []Privileges{0, 1, 2, 3, AdminBanUsers, AdminBanUsers | UserPublic, 1 << 31}
	for _, m := range masks {
		for _, c := range caps {
			assert.Equal(t, m&c == c, Has(m, c), "mask=%d cap=%d", m, c)
		}
	}
}

func TestHas_NoneAlwaysTrue(t *testing.T) {
	for _, m := range []Privileges{0, 1, 2, 0xFFFFFFFF} {
		assert.True(t, Has(m, None))
	}
}

func TestHas_RequiresEveryBit(t *testing.T) {
	mask := UserPublic | AdminAccessRAP
	assert.True(t, mask.Has(AdminAccessRAP))
	// Any-bit overlap is not enough.
	assert.False(t, mask.Has(All(AdminAccessRAP, AdminBanUsers)))
}

func TestSetClear(t *testing.T) {
	p := DefaultUnbanned
	assert.Equal(t, Privileges(3), p)
	p = p.Clear(UserPublic)
	assert.Equal(t, Privileges(2), p)
	assert.True(t, p.Restricted())
	p = p.Set(UserPublic)
	assert.False(t, p.Restricted())
}

func TestStanding(t *testing.T) {
	assert.Equal(t, Active, Privileges(3).Standing())
	assert.Equal(t, Restricted, Privileges(2).Standing())
	assert.Equal(t, Banned, Privileges(0).Standing())
	assert.Equal(t, "restricted", Restricted.String())
}

func TestString(t *testing.T) {
	assert.Equal(t, "None", Privileges(0).String())
	assert.Equal(t, "UserPublic|UserNormal", DefaultUnbanned.String())
}
