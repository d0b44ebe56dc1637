package flagx

import (
	"os"
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
		{"separate value", []string{"-k", "100", "-a", ":8080"}, []string{"-k"}, []string{"-k", "100"}},
		{"equals form", []string{"--config=alt.json", "-a", "x"}, []string{"--config"}, []string{"--config=alt.json"}},
		{"unknown flags dropped", []string{"-x", "1", "positional"}, []string{"-k"}, []string{}},
		{"flag at end without value", []string{"-k"}, []string{"-k"}, []string{"-k"}},
		{"next dash token is not a value", []string{"-c", "-k"}, []string{"-c"}, []string{"-c"}},
		{"equals value may start with dash", []string{"-c=--odd.json"}, []string{"-c"}, []string{"-c=--odd.json"}},
		{"order and repeats preserved", []string{"-c", "a.json", "-k", "5", "-c", "b.json"}, []string{"-c", "-k"},
			[]string{"-c", "a.json", "-k", "5", "-c", "b.json"}},
		{"empty", []string{}, []string{"-c"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigPath(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short flag", func(t *testing.T) {
		os.Args = []string{"bin", "-c", "/etc/lookboard.json"}
		assert.Equal(t, "/etc/lookboard.json", ConfigPath())
	})

	t.Run("long flag wins over env", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "/from/env.json")
		os.Args = []string{"bin", "-config", "/from/flag.json"}
		assert.Equal(t, "/from/flag.json", ConfigPath())
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "/from/env.json")
		os.Args = []string{"bin", "-k", "10"}
		assert.Equal(t, "/from/env.json", ConfigPath())
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv(ConfigEnvVar, "")
		os.Args = []string{"bin"}
		assert.Empty(t, ConfigPath())
	})
}
