package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKEN", "secret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SCHED_TICK_SECONDS", "")
	t.Setenv("DEFAULT_PREP_MINUTES", "")
	t.Setenv("DEFAULT_CLEANUP_MINUTES", "")
	t.Setenv("VOICE_CHECK_AFTER_MINUTES", "")
	t.Setenv("RAID_MANAGER_ROLE_ID", "")
	t.Setenv("RAID_REQUIRE_MANAGE_GUILD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.SchedTickSeconds)
	assert.Equal(t, 10, cfg.DefaultPrepMinutes)
	assert.Equal(t, 30, cfg.DefaultCleanupMinutes)
	assert.Equal(t, 5, cfg.VoiceCheckAfterMinutes)
	assert.True(t, cfg.RaidRequireManageGuild)
	assert.Contains(t, cfg.DatabaseURL, "postgres://")
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TOKEN", "   ")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonNumericManagerRole(t *testing.T) {
	t.Setenv("TOKEN", "secret")
	t.Setenv("RAID_MANAGER_ROLE_ID", "pas-un-id")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadDatabaseURL(t *testing.T) {
	t.Setenv("TOKEN", "secret")
	t.Setenv("DATABASE_URL", "pas une url")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOKEN", "secret")
	t.Setenv("DATABASE_URL", "postgres://db:5432/raids")
	t.Setenv("SCHED_TICK_SECONDS", "5")
	t.Setenv("RAID_MANAGER_ROLE_ID", "123456")
	t.Setenv("RAID_REQUIRE_MANAGE_GUILD", "off")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.SchedTickSeconds)
	assert.Equal(t, "123456", cfg.RaidManagerRoleID)
	assert.False(t, cfg.RaidRequireManageGuild)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "abc")
	assert.Equal(t, 7, envInt("X_INT", 7))

	t.Setenv("X_BOOL", "yes")
	assert.True(t, envBool("X_BOOL", false))

	t.Setenv("X_STR", "  ")
	assert.Equal(t, "def", envOr("X_STR", "def"))
}
