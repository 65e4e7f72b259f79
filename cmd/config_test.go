package cmd

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestConfigCommands(t *testing.T) {
	dir := setupTestEnvironment(t)

	output := mustRunCLI(t, dir, "config", "show")
	if !strings.Contains(output, "defaults") {
		t.Errorf("Expected defaults without a config file, got: %s", output)
	}

	output = mustRunCLI(t, dir, "config", "init")
	if !strings.Contains(output, "Wrote config") {
		t.Errorf("Expected write message, got: %s", output)
	}

	output = mustRunCLI(t, dir, "config", "init")
	if !strings.Contains(output, "already exists") {
		t.Errorf("Expected existing config warning, got: %s", output)
	}

	output = mustRunCLI(t, dir, "config", "show", "--json")
	var shown map[string]any
	if err := json.Unmarshal([]byte(output), &shown); err != nil {
		t.Fatalf("Failed to parse config JSON: %v\nOutput: %s", err, output)
	}
	if shown["fromFile"] != true {
		t.Errorf("Expected fromFile to be true, got %v", shown["fromFile"])
	}
	database, _ := shown["database"].(map[string]any)
	if database["driver"] != "sqlite" {
		t.Errorf("Expected sqlite driver, got %v", database["driver"])
	}
}
