package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=alt.json", "-a", "localhost"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=alt.json"},
		},
		{
			name:    "unknown flags and positionals dropped",
			args:    []string{"-x", "1", "-y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-r"},
			allowed: []string{"-r"},
			want:    []string{"-r"},
		},
		{
			name:    "next flag is not a value",
			args:    []string{"-c", "-d", "reflections.db"},
			allowed: []string{"-c", "-d"},
			want:    []string{"-c", "-d", "reflections.db"},
		},
		{
			name:    "repeated flag kept in order",
			args:    []string{"-a", "http://one", "-a", "http://two"},
			allowed: []string{"-a"},
			want:    []string{"-a", "http://one", "-a", "http://two"},
		},
		{
			name:    "empty",
			args:    nil,
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Run("short flag", func(t *testing.T) {
		assert.Equal(t, "/etc/short.json", ConfigPath([]string{"-c", "/etc/short.json"}, ""))
	})

	t.Run("long flag wins over earlier short", func(t *testing.T) {
		args := []string{"-c", "/etc/1.json", "-config", "/etc/2.json"}
		assert.Equal(t, "/etc/2.json", ConfigPath(args, ""))
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("DAILYREFLECT_TEST_CONFIG", "/etc/env.json")
		assert.Equal(t, "/etc/env.json", ConfigPath([]string{"-a", "x"}, "DAILYREFLECT_TEST_CONFIG"))
	})

	t.Run("flag beats env", func(t *testing.T) {
		t.Setenv("DAILYREFLECT_TEST_CONFIG", "/etc/env.json")
		assert.Equal(t, "/etc/flag.json", ConfigPath([]string{"-c", "/etc/flag.json"}, "DAILYREFLECT_TEST_CONFIG"))
	})

	t.Run("nothing set", func(t *testing.T) {
		assert.Empty(t, ConfigPath([]string{"-x", "1"}, ""))
	})
}
