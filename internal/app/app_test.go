package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/anshulchahar/gita"
	"github.com/anshulchahar/gita/internal/app"
	gsync "github.com/anshulchahar/gita/internal/sync"
)

const catalogYAML = `units:
  - number: 2
    name: Sankhya Yoga
    nameHi: सांख्य योग
    theme: Knowledge and duty
    difficulty: beginner
    shlokas: 72
  - number: 1
    name: Arjuna Vishada Yoga
    nameHi: अर्जुन विषाद योग
    theme: Despair
    difficulty: beginner
    shlokas: 47
`

type backend struct {
	*httptest.Server
	mu        sync.Mutex
	refreshes int32
	writes    map[string]int
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{writes: map[string]int{}}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/token":
			atomic.AddInt32(&b.refreshes, 1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`)
		case strings.HasPrefix(r.URL.Path, "/docs/"):
			if got := r.Header.Get("Authorization"); got != "Bearer fresh-token" {
				t.Errorf("Authorization = %q, want fresh token", got)
			}
			parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/docs/"), "/")
			b.mu.Lock()
			b.writes[parts[0]]++
			b.mu.Unlock()
			_, _ = io.WriteString(w, `{}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(b.Close)
	return b
}

type env struct {
	dir     string
	catalog string
	cfg     gita.Config
}

func newEnv(t *testing.T, b *backend) *env {
	t.Helper()
	root := t.TempDir()
	e := &env{
		dir:     filepath.Join(root, "content"),
		catalog: filepath.Join(root, "catalog.yaml"),
	}
	if err := os.WriteFile(e.catalog, []byte(catalogYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	creds := filepath.Join(root, "creds.json")
	if err := os.WriteFile(creds, []byte(`{"tokens":{"access_token":"stale","expires_at":1000,"refresh_token":"1//refresh"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	e.cfg = gita.Config{
		ContentDir:      e.dir,
		LedgerPath:      filepath.Join(root, "ledger.db"),
		CredentialsPath: creds,
		ClientID:        "id",
		ClientSecret:    "secret",
		UnlockedUnits:   1,
		LogMode:         "nop",
	}
	if b != nil {
		e.cfg.StoreBaseURL = b.URL + "/docs"
		e.cfg.TokenEndpoint = b.URL + "/token"
	}
	return e
}

func newApp(t *testing.T, cfg gita.Config) *app.App {
	t.Helper()
	a, err := app.New(cfg, nil)
	if err != nil {
		t.Fatalf("app.New() error: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestGenerateThenValidate(t *testing.T) {
	e := newEnv(t, nil)
	a := newApp(t, e.cfg)

	gen, err := a.Generate(e.catalog, nil, false)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(gen) != 2 || gen[0].Unit != 1 || gen[1].Unit != 2 {
		t.Fatalf("Generate() = %+v, want units 1 and 2", gen)
	}

	reports, err := a.Validate(nil)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	for _, r := range reports {
		if !r.Valid {
			t.Errorf("unit %d invalid: %v", r.Unit, r.Violations)
		}
		if r.Lessons != 12 || r.Questions != 60 {
			t.Errorf("unit %d has %d lessons, %d questions, want 12, 60", r.Unit, r.Lessons, r.Questions)
		}
	}

	again, err := a.Generate(e.catalog, []int{1}, false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]app.Generated{{Unit: 1, Skipped: true}}, again); diff != "" {
		t.Errorf("second Generate() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_ForceOnlyRewritesRequestedUnits(t *testing.T) {
	e := newEnv(t, nil)
	a := newApp(t, e.cfg)
	if _, err := a.Generate(e.catalog, nil, false); err != nil {
		t.Fatal(err)
	}

	doc, err := gita.LoadDocument(e.dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	doc.Sections[0].Name = "AUTHORED"
	if _, err := gita.SaveDocument(e.dir, doc); err != nil {
		t.Fatal(err)
	}

	gen, err := a.Generate(e.catalog, []int{1}, true)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(gen) != 1 || gen[0].Unit != 1 || gen[0].Skipped {
		t.Fatalf("Generate() = %+v, want only unit 1 rewritten", gen)
	}

	doc, err = gita.LoadDocument(e.dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Sections[0].Name != "AUTHORED" {
		t.Errorf("unit 2 section name = %q, want AUTHORED", doc.Sections[0].Name)
	}
}

func TestGenerate_UnknownUnit(t *testing.T) {
	e := newEnv(t, nil)
	a := newApp(t, e.cfg)
	if _, err := a.Generate(e.catalog, []int{1, 9}, false); err == nil {
		t.Error("Generate() = nil error, want error for unit 9")
	}
}

func TestValidate_ReportsViolations(t *testing.T) {
	e := newEnv(t, nil)
	a := newApp(t, e.cfg)
	if _, err := a.Generate(e.catalog, []int{1}, false); err != nil {
		t.Fatal(err)
	}
	doc, err := gita.LoadDocument(e.dir, 1)
	if err != nil {
		t.Fatal(err)
	}
	doc.Lessons[2].Order = 9
	if _, err := gita.SaveDocument(e.dir, doc); err != nil {
		t.Fatal(err)
	}

	reports, err := a.Validate([]int{1})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 || reports[0].Valid || len(reports[0].Violations) == 0 {
		t.Errorf("Validate() = %+v, want one invalid report", reports)
	}
}

func TestReconcile_InsertAtPosition(t *testing.T) {
	e := newEnv(t, nil)
	a := newApp(t, e.cfg)
	if _, err := a.Generate(e.catalog, []int{1}, false); err != nil {
		t.Fatal(err)
	}
	chain, err := a.LessonChain(1)
	if err != nil {
		t.Fatal(err)
	}
	order := make([]string, 0, len(chain)+1)
	for i, l := range chain {
		if i == 3 {
			order = append(order, "lesson_1_1_4")
		}
		order = append(order, l.ID)
	}

	plan := gita.Plan{
		Unit: 1,
		InsertLessons: []gita.NewLesson{{
			ID:             "lesson_1_1_4",
			SectionID:      "section_1_1",
			Name:           "The Conch Shells",
			ShlokasCovered: []int{12, 13},
		}},
		Order: order,
	}
	data, _ := json.Marshal(plan)
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := app.ReadPlan(path)
	if err != nil {
		t.Fatalf("ReadPlan() error: %v", err)
	}

	res, err := a.Reconcile(p, false)
	if err != nil {
		t.Fatalf("Reconcile() error: %v", err)
	}
	if diff := cmp.Diff([]string{"lesson_1_1_4"}, res.Inserted); diff != "" {
		t.Errorf("Inserted mismatch (-want +got):\n%s", diff)
	}

	chain, err = a.LessonChain(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(chain) != 13 {
		t.Fatalf("len(chain) = %d, want 13", len(chain))
	}
	if chain[3].ID != "lesson_1_1_4" || chain[3].Prerequisite != "lesson_1_1_3" {
		t.Errorf("chain[3] = %+v, want lesson_1_1_4 after lesson_1_1_3", chain[3])
	}
	if chain[4].Prerequisite != "lesson_1_1_4" || chain[4].Order != 5 {
		t.Errorf("chain[4] = %+v, want order 5 after lesson_1_1_4", chain[4])
	}
}

func TestReconcile_DryRunLeavesFile(t *testing.T) {
	e := newEnv(t, nil)
	a := newApp(t, e.cfg)
	if _, err := a.Generate(e.catalog, []int{1}, false); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(filepath.Join(e.dir, "unit1.json"))

	_, err := a.Reconcile(gita.Plan{Unit: 1, RenameSections: []gita.SectionRename{{ID: "section_1_1", Name: "Dharmakshetra"}}}, true)
	if err != nil {
		t.Fatal(err)
	}
	after, _ := os.ReadFile(filepath.Join(e.dir, "unit1.json"))
	if string(before) != string(after) {
		t.Error("dry run modified unit1.json")
	}
}

func TestTheme(t *testing.T) {
	e := newEnv(t, nil)
	a := newApp(t, e.cfg)
	if _, err := a.Generate(e.catalog, nil, false); err != nil {
		t.Fatal(err)
	}
	themes := filepath.Join(t.TempDir(), "themes.yaml")
	if err := os.WriteFile(themes, []byte("1:\n  - name: The Battlefield\n    lessons: [Two Armies, The Conch]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := a.Theme(themes, nil)
	if err != nil {
		t.Fatalf("Theme() error: %v", err)
	}
	// one section plus its three lessons
	if diff := cmp.Diff([]app.Themed{{Unit: 1, Renamed: 4}}, got); diff != "" {
		t.Errorf("Theme() mismatch (-want +got):\n%s", diff)
	}
	chain, _ := a.LessonChain(1)
	if chain[0].Name != "Two Armies" || chain[2].Name != "Advanced The Battlefield 3" {
		t.Errorf("lesson names = %q, %q", chain[0].Name, chain[2].Name)
	}
}

func TestSync_EndToEnd(t *testing.T) {
	b := newBackend(t)
	e := newEnv(t, b)
	a := newApp(t, e.cfg)
	if _, err := a.Generate(e.catalog, []int{1}, false); err != nil {
		t.Fatal(err)
	}

	sum, err := a.Sync(context.Background(), nil)
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	// Generated questions are placeholders and stay local.
	if sum.Failed != 0 || sum.Succeeded != 21 {
		t.Errorf("Succeeded/Failed = %d/%d, want 21/0", sum.Succeeded, sum.Failed)
	}
	if n := atomic.LoadInt32(&b.refreshes); n != 1 {
		t.Errorf("token refreshes = %d, want 1", n)
	}
	want := map[string]int{"journeys": 3, "units": 1, "chapters": 1, "sections": 4, "lessons": 12}
	b.mu.Lock()
	if diff := cmp.Diff(want, b.writes); diff != "" {
		t.Errorf("writes per collection mismatch (-want +got):\n%s", diff)
	}
	b.mu.Unlock()

	run, err := a.LastRun(context.Background(), gsync.KindSync)
	if err != nil {
		t.Fatalf("LastRun() error: %v", err)
	}
	if run.ID != sum.RunID || run.Succeeded != 21 || len(run.Failures) != 0 {
		t.Errorf("LastRun() = %+v, want run %s with 21 successes", run, sum.RunID)
	}
}

func TestSync_MissingUnitsAreSkipped(t *testing.T) {
	b := newBackend(t)
	e := newEnv(t, b)
	a := newApp(t, e.cfg)
	if _, err := a.Generate(e.catalog, []int{1}, false); err != nil {
		t.Fatal(err)
	}

	sum, err := a.Sync(context.Background(), []int{7, 9})
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if diff := cmp.Diff([]int{7, 9}, sum.Skipped); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}
	if sum.Succeeded != 3 || sum.Failed != 0 {
		t.Errorf("Succeeded/Failed = %d/%d, want 3/0", sum.Succeeded, sum.Failed)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if diff := cmp.Diff(map[string]int{"journeys": 3}, b.writes); diff != "" {
		t.Errorf("writes per collection mismatch (-want +got):\n%s", diff)
	}
}

func TestSync_MissingCredentials(t *testing.T) {
	b := newBackend(t)
	e := newEnv(t, b)
	e.cfg.CredentialsPath = filepath.Join(t.TempDir(), "none.json")
	a := newApp(t, e.cfg)
	if _, err := a.Generate(e.catalog, []int{1}, false); err != nil {
		t.Fatal(err)
	}

	_, err := a.Sync(context.Background(), nil)
	var ae *gita.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("Sync() error = %v, want *AuthError", err)
	}
	if !errors.Is(err, gita.ErrCredentialsNotFound) {
		t.Errorf("Sync() error = %v, want ErrCredentialsNotFound", err)
	}
}

func TestSync_RequiresRemoteConfig(t *testing.T) {
	e := newEnv(t, nil)
	a := newApp(t, e.cfg)
	if _, err := a.Generate(e.catalog, []int{1}, false); err != nil {
		t.Fatal(err)
	}
	_, err := a.Sync(context.Background(), nil)
	var ve *gita.ValidationError
	if !errors.As(err, &ve) || ve.Field != "StoreBaseURL" {
		t.Errorf("Sync() error = %v, want ValidationError on StoreBaseURL", err)
	}
}

func TestPlan_CountsWrites(t *testing.T) {
	e := newEnv(t, nil)
	a := newApp(t, e.cfg)
	if _, err := a.Generate(e.catalog, nil, false); err != nil {
		t.Fatal(err)
	}
	writes, err := a.Plan([]int{2, 5})
	if err != nil {
		t.Fatalf("Plan() error: %v", err)
	}
	// 3 journeys + unit + chapter + 4 sections + 12 lessons; unit 5 is not in the catalog
	if len(writes) != 21 {
		t.Errorf("len(writes) = %d, want 21", len(writes))
	}
}
