package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gsync "github.com/anshulchahar/gita/internal/sync"
)

const testCatalog = `units:
  - number: 1
    name: Arjuna Vishada Yoga
    nameHi: अर्जुन विषाद योग
    theme: Despair
    difficulty: beginner
    shlokas: 47
`

type cliEnv struct {
	dir     string
	catalog string
}

// testEnv points the CLI at a temporary content directory and ledger and
// resets global flag state. Returns a cleanup function.
func testEnv(t *testing.T) (cliEnv, func()) {
	t.Helper()

	root := t.TempDir()
	env := cliEnv{
		dir:     filepath.Join(root, "content"),
		catalog: filepath.Join(root, "catalog.yaml"),
	}
	if err := os.MkdirAll(env.dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(env.catalog, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GITA_CONFIG", "")
	t.Setenv("GITA_CONTENT_DIR", env.dir)
	t.Setenv("GITA_LEDGER_PATH", filepath.Join(root, "ledger.db"))
	t.Setenv("GITA_STORE_URL", "")
	t.Setenv("GITA_CLIENT_ID", "")
	t.Setenv("GITA_CLIENT_SECRET", "")
	t.Setenv("GITA_CREDENTIALS", filepath.Join(root, "creds.json"))
	t.Setenv("GITA_LOG_MODE", "nop")

	reset := func() {
		cfgFile = ""
		cfgContentDir = ""
		cfgStoreURL = ""
		cfgLedgerPath = ""
		cfgDebug = false
		outputJSON = false
		syncUnits = nil
		syncDryRun = false
		syncWatch = false
		validateUnits = nil
		reconcileDryRun = false
		generateCatalog = ""
		generateUnits = nil
		generateForce = false
		themeUnits = nil
		wipeConfirm = false
		wipeCollections = nil
		statusKind = ""
	}
	reset()
	ttyCleanup := setMockTTY(false)

	return env, func() {
		reset()
		ttyCleanup()
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func generateUnit(t *testing.T, env cliEnv) {
	t.Helper()
	if _, err := execute(t, "generate", "--catalog", env.catalog); err != nil {
		t.Fatalf("generate: %v", err)
	}
}

func TestCLI_Help_ListsAllCommands(t *testing.T) {
	_, cleanup := testEnv(t)
	defer cleanup()

	output, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, cmd := range []string{"sync", "validate", "reconcile", "generate", "theme", "wipe", "status", "outline", "mcp", "version"} {
		if !strings.Contains(output, cmd) {
			t.Errorf("--help output should contain %q command", cmd)
		}
	}
}

func TestCLI_Help_GroupsCommands(t *testing.T) {
	_, cleanup := testEnv(t)
	defer cleanup()
	initHelp(rootCmd)
	initHelp(rootCmd)

	output, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := strings.Index(output, "Content Commands:")
	remote := strings.Index(output, "Remote Commands:")
	if content < 0 || remote < 0 || content > remote {
		t.Fatalf("--help output missing ordered command groups:\n%s", output)
	}
	if strings.Count(output, "Content Commands:") != 1 {
		t.Errorf("Content Commands listed more than once:\n%s", output)
	}
	generate := strings.Index(output, "\n  generate ")
	wipe := strings.Index(output, "\n  wipe ")
	if generate < content || generate > remote {
		t.Errorf("generate should be listed under Content Commands")
	}
	if wipe < remote {
		t.Errorf("wipe should be listed under Remote Commands")
	}
}

func TestCLI_Generate_WritesUnit(t *testing.T) {
	env, cleanup := testEnv(t)
	defer cleanup()

	output, err := execute(t, "generate", "--catalog", env.catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "unit 1 written") {
		t.Errorf("output should report unit 1, got: %s", output)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "unit1.json")); err != nil {
		t.Errorf("unit1.json not created: %v", err)
	}

	output, err = execute(t, "generate", "--catalog", env.catalog)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if !strings.Contains(output, "skipped") {
		t.Errorf("existing unit should be skipped, got: %s", output)
	}
}

func TestCLI_Generate_RequiresCatalog(t *testing.T) {
	_, cleanup := testEnv(t)
	defer cleanup()

	if _, err := execute(t, "generate"); err == nil {
		t.Fatal("expected error without --catalog")
	}
}

func TestCLI_Validate_Success(t *testing.T) {
	env, cleanup := testEnv(t)
	defer cleanup()
	generateUnit(t, env)

	output, err := execute(t, "validate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "unit 1:") {
		t.Errorf("output should report unit 1, got: %s", output)
	}
}

func TestCLI_Validate_BrokenUnitFails(t *testing.T) {
	env, cleanup := testEnv(t)
	defer cleanup()
	generateUnit(t, env)

	path := filepath.Join(env.dir, "unit1.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	broken := strings.Replace(string(data), `"prerequisite": "lesson_1_1_1"`, `"prerequisite": "lesson_9_9_9"`, 1)
	if broken == string(data) {
		t.Fatal("fixture did not contain the expected prerequisite")
	}
	if err := os.WriteFile(path, []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := execute(t, "validate", "--json")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var reports []struct {
		Unit       int      `json:"unit"`
		Valid      bool     `json:"valid"`
		Violations []string `json:"violations"`
	}
	if err := json.Unmarshal([]byte(output), &reports); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, output)
	}
	if len(reports) != 1 || reports[0].Valid || len(reports[0].Violations) == 0 {
		t.Errorf("reports = %+v, want one invalid unit", reports)
	}
}

func TestCLI_Outline(t *testing.T) {
	env, cleanup := testEnv(t)
	defer cleanup()
	generateUnit(t, env)

	output, err := execute(t, "outline", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"# Unit 1", "## section_1_1", "`lesson_1_1_1`", "after `lesson_1_1_1`"} {
		if !strings.Contains(output, want) {
			t.Errorf("outline should contain %q, got:\n%s", want, output)
		}
	}
}

func TestCLI_Outline_InvalidUnit(t *testing.T) {
	_, cleanup := testEnv(t)
	defer cleanup()

	if _, err := execute(t, "outline", "zero"); err == nil {
		t.Fatal("expected error for non-numeric unit")
	}
}

func TestCLI_Reconcile_DryRun(t *testing.T) {
	env, cleanup := testEnv(t)
	defer cleanup()
	generateUnit(t, env)

	plan := filepath.Join(t.TempDir(), "plan.json")
	body := `{"unit": 1, "renameLessons": [{"id": "lesson_1_1_1", "lessonName": "The Field of Dharma"}]}`
	if err := os.WriteFile(plan, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(filepath.Join(env.dir, "unit1.json"))

	output, err := execute(t, "reconcile", plan, "--dry-run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "Renamed: 1") {
		t.Errorf("output should report one rename, got: %s", output)
	}
	after, _ := os.ReadFile(filepath.Join(env.dir, "unit1.json"))
	if !bytes.Equal(before, after) {
		t.Error("dry run modified the unit file")
	}
}

func TestCLI_SyncDryRun_ListsWrites(t *testing.T) {
	env, cleanup := testEnv(t)
	defer cleanup()
	generateUnit(t, env)

	output, err := execute(t, "sync", "--dry-run", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var writes []gsync.Write
	if err := json.Unmarshal([]byte(output), &writes); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if len(writes) == 0 {
		t.Fatal("no writes planned")
	}
	if writes[0].Collection != gsync.CollectionJourneys {
		t.Errorf("first write = %s, want journeys first", writes[0].Collection)
	}
	for _, w := range writes {
		if w.Collection == gsync.CollectionQuestions {
			t.Errorf("placeholder question %s planned for upload", w.ID)
		}
	}
}

func TestCLI_Sync_RequiresStoreURL(t *testing.T) {
	env, cleanup := testEnv(t)
	defer cleanup()
	generateUnit(t, env)

	_, err := execute(t, "sync")
	if err == nil {
		t.Fatal("expected error without a store URL")
	}
	if !strings.Contains(err.Error(), "StoreBaseURL") {
		t.Errorf("error should mention StoreBaseURL, got: %v", err)
	}
}

func TestCLI_Wipe_RequiresConfirm(t *testing.T) {
	_, cleanup := testEnv(t)
	defer cleanup()

	_, err := execute(t, "wipe")
	if err == nil || !strings.Contains(err.Error(), "--confirm") {
		t.Fatalf("err = %v, want confirmation error", err)
	}
}

func TestCLI_Status_NoRuns(t *testing.T) {
	_, cleanup := testEnv(t)
	defer cleanup()

	output, err := execute(t, "status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "No runs recorded yet") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestCLI_Status_UnknownKind(t *testing.T) {
	_, cleanup := testEnv(t)
	defer cleanup()

	if _, err := execute(t, "status", "--kind", "export"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestCLI_ConfigFile_Layering(t *testing.T) {
	env, cleanup := testEnv(t)
	defer cleanup()

	cfgPath := filepath.Join(t.TempDir(), "gita.yaml")
	if err := os.WriteFile(cfgPath, []byte("store_url: https://file.example.com\nunlocked_units: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GITA_STORE_URL", "https://env.example.com")
	cfgFile = cfgPath
	cfgStoreURL = "https://flag.example.com"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.StoreBaseURL != "https://flag.example.com" {
		t.Errorf("StoreBaseURL = %q, want flag value", cfg.StoreBaseURL)
	}
	if cfg.UnlockedUnits != 5 {
		t.Errorf("UnlockedUnits = %d, want 5 from file", cfg.UnlockedUnits)
	}
	if cfg.ContentDir != env.dir {
		t.Errorf("ContentDir = %q, want env value %q", cfg.ContentDir, env.dir)
	}
}

func TestScrubSensitiveData(t *testing.T) {
	msg := "refresh failed for 1//0gAbC-def_123 using ya29.a0AfH6SM"
	got := scrubSensitiveData(msg)
	if strings.Contains(got, "0gAbC") || strings.Contains(got, "a0AfH6SM") {
		t.Errorf("tokens not scrubbed: %s", got)
	}
	if !strings.Contains(got, "[REDACTED]") {
		t.Errorf("expected redaction marker: %s", got)
	}
}

func TestVersion_JSON(t *testing.T) {
	_, cleanup := testEnv(t)
	defer cleanup()

	output, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var info versionInfo
	if err := json.Unmarshal([]byte(output), &info); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if info.Version != version || info.Go == "" {
		t.Errorf("info = %+v", info)
	}
}

func TestVersion_Human(t *testing.T) {
	_, cleanup := testEnv(t)
	defer cleanup()

	output, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(output, "gita ") || !strings.Contains(output, "commit:") {
		t.Errorf("unexpected output: %s", output)
	}
}
