package main

import (
	"bytes"
	"strings"
	"testing"

	"entmatch/internal/config"
	"entmatch/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	fake       *testsupport.FakeMatcher
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	clearMatcherEnv(t)

	fake := testsupport.NewFakeMatcher(t, "Acme Corporation", "Globex Inc", "Initech LLC")
	opts = append([]testsupport.ConfigOption{testsupport.WithMatcherURL(fake.URL())}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	return &cliTestEnv{
		cfg:        cfg,
		fake:       fake,
		configPath: testsupport.WriteConfigFile(t, cfg),
	}
}

func clearMatcherEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvAPIBaseURL,
		config.EnvAPITimeout,
		config.EnvDebounceMS,
		config.EnvMaxAlternatives,
		config.EnvMaxFileSize,
		config.EnvAllowedFileTypes,
	} {
		t.Setenv(key, "")
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	return runCLIWithInput(t, args, configPath, "")
}

func runCLIWithInput(t *testing.T, args []string, configPath, input string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(input))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
