package grader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/tuannm99/sqllab/internal/engine"
	"github.com/tuannm99/sqllab/internal/record"
	"github.com/tuannm99/sqllab/internal/sqlite"
)

// Mode is how an answer is judged.
type Mode string

const (
	ModeResult Mode = "result" // compare result sets
	ModeState  Mode = "state"  // compare seed tables after running
	ModeInsert Mode = "insert" // compare INSERT target and column list
	ModeDDL    Mode = "ddl"    // the expected table must exist afterwards
	ModeText   Mode = "text"   // normalized text, containment allowed
	ModeExact  Mode = "exact"  // normalized text equality
)

// Backend opens a fresh, empty engine.
type Backend func(ctx context.Context) (engine.Querier, error)

func MemoryBackend(context.Context) (engine.Querier, error) { return engine.New(), nil }

func SQLiteBackend(ctx context.Context) (engine.Querier, error) {
	e, err := sqlite.Open(ctx)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// BackendByName maps a config value to a Backend.
func BackendByName(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", "memory":
		return MemoryBackend, nil
	case "sqlite":
		return SQLiteBackend, nil
	default:
		return nil, fmt.Errorf("grader: unknown backend %q", name)
	}
}

type Verdict struct {
	ExerciseID string `json:"exercise_id"`
	Mode       Mode   `json:"mode"`
	Correct    bool   `json:"correct"`
	Message    string `json:"message"`

	User           *engine.Result            `json:"user,omitempty"`
	Expected       *engine.Result            `json:"expected,omitempty"`
	UserTables     map[string]*engine.Result `json:"user_tables,omitempty"`
	ExpectedTables map[string]*engine.Result `json:"expected_tables,omitempty"`
}

type Grader struct {
	catalog *Catalog
	open    Backend
	log     *slog.Logger
}

func New(c *Catalog, b Backend, log *slog.Logger) *Grader {
	if b == nil {
		b = MemoryBackend
	}
	if log == nil {
		log = slog.Default()
	}
	return &Grader{catalog: c, open: b, log: log}
}

func (g *Grader) Catalog() *Catalog { return g.catalog }

var resultCategories = map[string]bool{
	"SELECT Operations":    true,
	"Joins":                true,
	"Subqueries":           true,
	"Aggregate Functions":  true,
	"Grouping & Filtering": true,
}

var textCategories = map[string]bool{
	"DCL":                           true,
	"TCL":                           true,
	"Stored Procedures & Functions": true,
	"Triggers":                      true,
}

// ModeFor picks the judging mode from the exercise category and, for DML,
// from the kind of statement the user wrote.
func ModeFor(ex Exercise, userSQL string) Mode {
	expected := normalize(ex.Expected)
	switch {
	case resultCategories[ex.Category]:
		return ModeResult
	case textCategories[ex.Category]:
		return ModeText
	case ex.Category == "DML":
		if strings.HasPrefix(normalize(userSQL), "insert") {
			return ModeInsert
		}
		return ModeState
	case ex.Category == "Constraints":
		return ModeExact
	case strings.HasPrefix(expected, "create table"), strings.HasPrefix(expected, "create index"):
		return ModeDDL
	default:
		return ModeExact
	}
}

// Check judges userSQL against an exercise. The error is only for an
// unknown exercise or a backend that cannot be opened; a wrong or failing
// answer is reported in the Verdict.
func (g *Grader) Check(ctx context.Context, exerciseID, userSQL string) (*Verdict, error) {
	ex, err := g.catalog.Exercise(exerciseID)
	if err != nil {
		return nil, err
	}
	mode := ModeFor(ex, userSQL)
	v := &Verdict{ExerciseID: ex.ID, Mode: mode}
	g.log.Debug("grader: check", "exercise", ex.ID, "mode", mode)

	switch mode {
	case ModeResult:
		err = g.checkResult(ctx, ex, userSQL, v)
	case ModeState:
		err = g.checkState(ctx, ex, userSQL, v)
	case ModeDDL:
		err = g.checkDDL(ctx, ex, userSQL, v)
	case ModeInsert:
		v.Correct = sameInsertShape(userSQL, ex.Expected)
		v.Message = pick(v.Correct, "Correct!", "Incorrect query structure.")
	case ModeText:
		v.Correct = similarText(userSQL, ex.Expected)
		v.Message = pick(v.Correct, "Query syntax matches expected pattern.",
			"Query syntax does not match expected pattern.")
	default:
		v.Correct = normalize(userSQL) == normalize(ex.Expected)
		v.Message = pick(v.Correct, "Correct!",
			"Incorrect. The SQL query doesn't match the expected result.")
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// seeded opens a backend and runs every seed statement. Seed failures are
// logged and skipped.
func (g *Grader) seeded(ctx context.Context) (engine.Querier, error) {
	q, err := g.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("grader: open backend: %w", err)
	}
	for _, s := range g.catalog.Seeds {
		for _, stmt := range s.Statements {
			if res := q.Execute(ctx, stmt); !res.Success {
				g.log.Warn("grader: seed statement failed", "table", s.Table, "err", res.Error)
			}
		}
	}
	return q, nil
}

func release(q engine.Querier) {
	if c, ok := q.(io.Closer); ok {
		_ = c.Close()
	}
}

func (g *Grader) pair(ctx context.Context) (user, expected engine.Querier, err error) {
	if user, err = g.seeded(ctx); err != nil {
		return nil, nil, err
	}
	if expected, err = g.seeded(ctx); err != nil {
		release(user)
		return nil, nil, err
	}
	return user, expected, nil
}

func (g *Grader) checkResult(ctx context.Context, ex Exercise, userSQL string, v *Verdict) error {
	user, expected, err := g.pair(ctx)
	if err != nil {
		return err
	}
	defer release(user)
	defer release(expected)

	v.User = user.Execute(ctx, userSQL)
	v.Expected = expected.Execute(ctx, ex.Expected)
	switch {
	case !v.User.Success:
		v.Message = "SQL Error: " + v.User.Error
	case !v.Expected.Success:
		v.Message = "Expected query failed on this backend: " + v.Expected.Error
	default:
		v.Correct = SameResult(v.User, v.Expected)
		v.Message = pick(v.Correct, "Correct!", "Incorrect. The result does not match the expected result.")
	}
	return nil
}

func (g *Grader) checkState(ctx context.Context, ex Exercise, userSQL string, v *Verdict) error {
	user, expected, err := g.pair(ctx)
	if err != nil {
		return err
	}
	defer release(user)
	defer release(expected)

	if res := user.Execute(ctx, userSQL); !res.Success {
		v.User = res
		v.Message = "SQL Error: " + res.Error
		return nil
	}
	if res := expected.Execute(ctx, ex.Expected); !res.Success {
		v.Expected = res
		v.Message = "Expected query failed on this backend: " + res.Error
		return nil
	}

	v.UserTables = g.tableStates(ctx, user)
	v.ExpectedTables = g.tableStates(ctx, expected)
	v.Correct = sameStates(v.UserTables, v.ExpectedTables)
	v.Message = pick(v.Correct, "Correct!", "Incorrect. The table contents differ from the expected result.")
	return nil
}

// tableStates snapshots every seeded table that still exists.
func (g *Grader) tableStates(ctx context.Context, q engine.Querier) map[string]*engine.Result {
	out := map[string]*engine.Result{}
	for _, t := range g.catalog.SeedTables() {
		if res := q.Execute(ctx, "SELECT * FROM "+t); res.Success {
			out[t] = res
		}
	}
	return out
}

func (g *Grader) checkDDL(ctx context.Context, ex Exercise, userSQL string, v *Verdict) error {
	q, err := g.seeded(ctx)
	if err != nil {
		return err
	}
	defer release(q)

	v.User = q.Execute(ctx, userSQL)
	if !v.User.Success {
		v.Message = "SQL Error: " + v.User.Error
		return nil
	}
	name := extractTableName(ex.Expected)
	for _, d := range q.ListTables() {
		if name != "" && strings.EqualFold(d.Name, name) {
			v.Correct = true
			break
		}
	}
	v.Message = pick(v.Correct, "Correct!", "Incorrect. The SQL query doesn't match the expected result.")
	return nil
}

// SameResult compares column count, row count and every cell's text by
// position. Column names are ignored.
func SameResult(a, b *engine.Result) bool {
	if len(a.Fields) != len(b.Fields) || len(a.Data) != len(b.Data) {
		return false
	}
	for i := range a.Data {
		for j := range a.Fields {
			if cellText(a.Data[i], a.Fields[j]) != cellText(b.Data[i], b.Fields[j]) {
				return false
			}
		}
	}
	return true
}

func cellText(r record.Row, col string) string {
	v, ok := r[col]
	if !ok {
		return "null"
	}
	return v.Text()
}

func sameStates(a, b map[string]*engine.Result) bool {
	if len(a) != len(b) {
		return false
	}
	for name, ra := range a {
		rb, ok := b[name]
		if !ok || !SameResult(ra, rb) {
			return false
		}
	}
	return true
}

var (
	spaceRe  = regexp.MustCompile(`\s+`)
	insertRe = regexp.MustCompile(`(?is)insert\s+into\s+(\w+)\s*\((.*?)\)\s*values\s*\((.*?)\)`)
	tableRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)CREATE TABLE\s+(\w+)`),
		regexp.MustCompile(`(?i)ALTER TABLE\s+(\w+)`),
		regexp.MustCompile(`(?i)DROP TABLE\s+(\w+)`),
		regexp.MustCompile(`(?i)CREATE INDEX\s+\w+\s+ON\s+(\w+)`),
	}
)

// normalize collapses whitespace, drops one trailing ';' and lowercases.
func normalize(sql string) string {
	s := spaceRe.ReplaceAllString(strings.TrimSpace(sql), " ")
	s = strings.TrimSuffix(s, ";")
	return strings.ToLower(s)
}

// similarText accepts equal text or either side containing the other.
func similarText(user, expected string) bool {
	u := strings.ToLower(strings.TrimSpace(spaceRe.ReplaceAllString(user, " ")))
	e := strings.ToLower(strings.TrimSpace(spaceRe.ReplaceAllString(expected, " ")))
	if u == "" {
		return false
	}
	return u == e || strings.Contains(u, e) || strings.Contains(e, u)
}

// sameInsertShape compares target table and the sorted column list.
func sameInsertShape(user, expected string) bool {
	um := insertRe.FindStringSubmatch(user)
	em := insertRe.FindStringSubmatch(expected)
	if um == nil || em == nil {
		return false
	}
	return strings.EqualFold(um[1], em[1]) && columnSet(um[2]) == columnSet(em[2])
}

func columnSet(list string) string {
	parts := strings.Split(list, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func extractTableName(sql string) string {
	for _, re := range tableRes {
		if m := re.FindStringSubmatch(sql); m != nil {
			return m[1]
		}
	}
	return ""
}

func pick(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
