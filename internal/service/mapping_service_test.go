package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/internal/repository"
	pkgerrors "github.com/Suryaprasath-41/Feedback-System/pkg/errors"
)

func newTestMappingService() (MappingService, *fakeStore) {
	repo, st := newFakeRepo()
	return NewMappingService(repo, 2, zap.NewNop()), st
}

func mappingSet(t *testing.T, st *fakeStore, dept, sem string) map[[4]string]int {
	t.Helper()
	ms, err := (&fakeMappingRepo{st: st}).List(context.Background(), repository.MappingFilter{Department: dept, Semester: sem})
	if err != nil {
		t.Fatalf("list mappings: %v", err)
	}
	set := make(map[[4]string]int, len(ms))
	for _, m := range ms {
		set[[4]string{m.Department, m.Semester, m.Staff, m.Subject}]++
	}
	return set
}

// ────────────────────── Reconcile: APPEND ──────────────────────

func TestMappingService_Reconcile_AppendDedup(t *testing.T) {
	svc, st := newTestMappingService()
	ctx := context.Background()

	batch := []MappingRow{
		{Department: "CS-A", Semester: "2", Staff: "Dr.X", Subject: "DS"},
		{Department: "CS-A", Semester: "2", Staff: "Dr.X", Subject: "DS"},
		{Department: "CS-A", Semester: "2", Staff: "Dr.Y", Subject: "OS"},
	}

	resp, err := svc.Reconcile(ctx, batch, ModeAppend, Scope{}, "admin")
	if err != nil {
		t.Fatalf("Reconcile should succeed: %v", err)
	}
	if resp.Inserted != 2 || resp.SkippedDuplicates != 1 {
		t.Errorf("expected inserted=2 skipped=1, got inserted=%d skipped=%d", resp.Inserted, resp.SkippedDuplicates)
	}
	if len(resp.Errors) != 0 {
		t.Errorf("expected no row errors, got %v", resp.Errors)
	}
	if st.mappingCount() != 2 {
		t.Errorf("expected 2 stored mappings, got %d", st.mappingCount())
	}
}

func TestMappingService_Reconcile_AppendIsIdempotent(t *testing.T) {
	svc, st := newTestMappingService()
	ctx := context.Background()

	batch := []MappingRow{
		{Department: "CS-A", Semester: "2", Staff: "Dr.X", Subject: "DS"},
		{Department: "CS-A", Semester: "2", Staff: "Dr.Y", Subject: "OS"},
		{Department: "EEE", Semester: "4", Staff: "Dr.Z", Subject: "Circuits"},
	}

	if _, err := svc.Reconcile(ctx, batch, ModeAppend, Scope{}, ""); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	before := mappingSet(t, st, "", "")

	resp, err := svc.Reconcile(ctx, batch, ModeAppend, Scope{}, "")
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	if resp.Inserted != 0 || resp.SkippedDuplicates != len(batch) {
		t.Errorf("expected inserted=0 skipped=%d, got inserted=%d skipped=%d",
			len(batch), resp.Inserted, resp.SkippedDuplicates)
	}

	after := mappingSet(t, st, "", "")
	if len(after) != len(before) {
		t.Fatalf("store changed: before %d rows, after %d", len(before), len(after))
	}
	for k, n := range after {
		if n != 1 {
			t.Errorf("natural key %v stored %d times", k, n)
		}
	}
}

func TestMappingService_Reconcile_RowErrors(t *testing.T) {
	svc, st := newTestMappingService()

	batch := []MappingRow{
		{Row: 2, Department: "CS-A", Semester: "2", Staff: "  ", Subject: "DS"},
		{Row: 3, Department: "CS-A", Semester: "2", Staff: "Dr.X", Subject: "DS"},
		{Row: 4, Department: "", Semester: "", Staff: "Dr.Y", Subject: "OS"},
	}

	resp, err := svc.Reconcile(context.Background(), batch, ModeAppend, Scope{}, "")
	if err != nil {
		t.Fatalf("Reconcile should succeed: %v", err)
	}
	if resp.Inserted != 1 {
		t.Errorf("expected 1 valid row inserted, got %d", resp.Inserted)
	}
	if len(resp.Errors) != 3 {
		t.Fatalf("expected 3 row errors, got %d: %v", len(resp.Errors), resp.Errors)
	}
	if resp.Errors[0].Row != 2 || resp.Errors[0].Field != "staff" {
		t.Errorf("expected row 2 staff error, got %+v", resp.Errors[0])
	}
	if resp.Errors[0].Reason != "staff must not be empty" {
		t.Errorf("unexpected reason: %q", resp.Errors[0].Reason)
	}
	for _, e := range resp.Errors[1:] {
		if e.Row != 4 {
			t.Errorf("expected row 4 errors, got %+v", e)
		}
	}
	if st.mappingCount() != 1 {
		t.Errorf("expected 1 stored mapping, got %d", st.mappingCount())
	}
}

func TestMappingService_Reconcile_TrimsAndEnsuresCatalog(t *testing.T) {
	svc, st := newTestMappingService()

	batch := []MappingRow{{Department: " CS-A ", Semester: "2 ", Staff: " Dr.X", Subject: "DS"}}
	if _, err := svc.Reconcile(context.Background(), batch, ModeAppend, Scope{}, ""); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	if _, ok := mappingSet(t, st, "CS-A", "2")[[4]string{"CS-A", "2", "Dr.X", "DS"}]; !ok {
		t.Error("expected the trimmed mapping to be stored")
	}
	for kind, name := range map[model.CatalogKind]string{
		model.KindDepartment: "CS-A",
		model.KindSemester:   "2",
		model.KindStaff:      "Dr.X",
		model.KindSubject:    "DS",
	} {
		if !st.hasCatalogName(kind, name) {
			t.Errorf("expected %s %q in the catalog", kind, name)
		}
	}
}

func TestMappingService_Reconcile_InvalidMode(t *testing.T) {
	svc, _ := newTestMappingService()

	_, err := svc.Reconcile(context.Background(), nil, ReconcileMode("merge"), Scope{}, "")
	if !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
}

// ────────────────────── Reconcile: REPLACE ──────────────────────

func TestMappingService_Reconcile_ReplaceRequiresScope(t *testing.T) {
	svc, st := newTestMappingService()
	seedMapping(st, "CS-A", "2", "Dr.Old", "DS")

	_, err := svc.Reconcile(context.Background(), []MappingRow{
		{Department: "CS-A", Semester: "2", Staff: "Dr.X", Subject: "DS"},
	}, ModeReplace, Scope{Department: "  "}, "")
	if !errors.Is(err, ErrScopeRequired) {
		t.Fatalf("expected ErrScopeRequired, got %v", err)
	}
	if st.mappingCount() != 1 {
		t.Errorf("store should be untouched, got %d mappings", st.mappingCount())
	}
}

func TestMappingService_Reconcile_ReplaceScope(t *testing.T) {
	svc, st := newTestMappingService()
	seedMapping(st, "CS-A", "2", "Dr.Old", "DS")
	seedMapping(st, "CS-A", "2", "Dr.X", "DS")
	seedMapping(st, "CS-B", "2", "Dr.Keep", "OS")
	seedMapping(st, "CS-A", "4", "Dr.Keep", "AI")

	batch := []MappingRow{
		{Department: "CS-A", Semester: "2", Staff: "Dr.X", Subject: "DS"},
		{Department: "CS-A", Semester: "2", Staff: "Dr.Y", Subject: "OS"},
		{Department: "CS-A", Semester: "2", Staff: "Dr.Y", Subject: "OS"},
		{Department: "CS-B", Semester: "2", Staff: "Dr.Z", Subject: "DB"},
	}

	resp, err := svc.Reconcile(context.Background(), batch, ModeReplace,
		Scope{Department: "CS-A", Semester: "2"}, "")
	if err != nil {
		t.Fatalf("Reconcile should succeed: %v", err)
	}
	if resp.Deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", resp.Deleted)
	}
	if resp.Inserted != 2 || resp.SkippedDuplicates != 1 {
		t.Errorf("expected inserted=2 skipped=1, got inserted=%d skipped=%d", resp.Inserted, resp.SkippedDuplicates)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Row != 4 || resp.Errors[0].Field != "department" {
		t.Errorf("expected an out-of-scope error on row 4, got %v", resp.Errors)
	}

	inScope := mappingSet(t, st, "CS-A", "2")
	want := [][4]string{{"CS-A", "2", "Dr.X", "DS"}, {"CS-A", "2", "Dr.Y", "OS"}}
	if len(inScope) != len(want) {
		t.Fatalf("expected scope to hold exactly %d mappings, got %v", len(want), inScope)
	}
	for _, k := range want {
		if inScope[k] != 1 {
			t.Errorf("expected %v in scope", k)
		}
	}

	if len(mappingSet(t, st, "CS-B", "2")) != 1 || len(mappingSet(t, st, "CS-A", "4")) != 1 {
		t.Error("mappings outside the scope must be untouched")
	}
}

func TestMappingService_Reconcile_ReplaceDepartmentOnly(t *testing.T) {
	svc, st := newTestMappingService()
	seedMapping(st, "CS-A", "2", "Dr.Old", "DS")
	seedMapping(st, "CS-A", "4", "Dr.Old", "AI")

	resp, err := svc.Reconcile(context.Background(), []MappingRow{
		{Department: "CS-A", Semester: "6", Staff: "Dr.New", Subject: "ML"},
	}, ModeReplace, Scope{Department: "CS-A"}, "")
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if resp.Deleted != 2 || resp.Inserted != 1 {
		t.Errorf("expected deleted=2 inserted=1, got deleted=%d inserted=%d", resp.Deleted, resp.Inserted)
	}
	if st.mappingCount() != 1 {
		t.Errorf("expected only the new mapping, got %d", st.mappingCount())
	}
}

// ────────────────────── Reconcile: store failures ──────────────────────

func TestMappingService_Reconcile_RetriesConflict(t *testing.T) {
	svc, st := newTestMappingService()
	st.failCommits = 1

	resp, err := svc.Reconcile(context.Background(), []MappingRow{
		{Department: "CS-A", Semester: "2", Staff: "Dr.X", Subject: "DS"},
		{Department: "CS-A", Semester: "2", Staff: "Dr.X", Subject: "DS"},
	}, ModeAppend, Scope{}, "")
	if err != nil {
		t.Fatalf("Reconcile should succeed after a retry: %v", err)
	}
	if resp.Inserted != 1 || resp.SkippedDuplicates != 1 {
		t.Errorf("counters must not accumulate across retries, got inserted=%d skipped=%d",
			resp.Inserted, resp.SkippedDuplicates)
	}
}

func TestMappingService_Reconcile_StoreUnavailable(t *testing.T) {
	svc, st := newTestMappingService()
	seedMapping(st, "CS-A", "2", "Dr.Old", "DS")
	st.failCommits = 10

	_, err := svc.Reconcile(context.Background(), []MappingRow{
		{Department: "CS-A", Semester: "2", Staff: "Dr.X", Subject: "DS"},
	}, ModeReplace, Scope{Department: "CS-A", Semester: "2"}, "")
	if !errors.Is(err, pkgerrors.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	set := mappingSet(t, st, "", "")
	if len(set) != 1 || set[[4]string{"CS-A", "2", "Dr.Old", "DS"}] != 1 {
		t.Errorf("a failed replace must leave the store unchanged, got %v", set)
	}
	if st.hasCatalogName(model.KindStaff, "Dr.X") {
		t.Error("catalog names must roll back with the batch")
	}
}

// ────────────────────── CRUD ──────────────────────

func TestMappingService_Create(t *testing.T) {
	svc, _ := newTestMappingService()
	ctx := context.Background()
	req := &dto.CreateMappingRequest{Department: "CS-A", Semester: "2", Staff: "Dr.X", Subject: "DS"}

	m, err := svc.Create(ctx, req, "admin")
	if err != nil {
		t.Fatalf("Create should succeed: %v", err)
	}
	if m.ID == "" || m.Staff != "Dr.X" {
		t.Errorf("unexpected mapping: %+v", m)
	}

	if _, err := svc.Create(ctx, req, "admin"); !errors.Is(err, ErrMappingExists) {
		t.Errorf("expected ErrMappingExists, got %v", err)
	}
}

func TestMappingService_Create_Blank(t *testing.T) {
	svc, _ := newTestMappingService()

	_, err := svc.Create(context.Background(), &dto.CreateMappingRequest{Department: "CS-A", Semester: "2", Staff: " ", Subject: "DS"}, "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Errors[0].Field != "staff" {
		t.Errorf("expected staff field error, got %+v", verr.Errors[0])
	}
}

func TestMappingService_ListAndDelete(t *testing.T) {
	svc, st := newTestMappingService()
	ctx := context.Background()
	seedMapping(st, "CS-A", "2", "Dr.X", "DS")
	seedMapping(st, "CS-B", "2", "Dr.Y", "OS")

	list, err := svc.List(ctx, &dto.MappingListRequest{Department: "CS-A"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Staff != "Dr.X" {
		t.Fatalf("expected the CS-A mapping only, got %+v", list)
	}

	if err := svc.Delete(ctx, list[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, list[0].ID); !errors.Is(err, ErrMappingNotFound) {
		t.Errorf("expected ErrMappingNotFound, got %v", err)
	}
}

func TestMappingService_DeleteScope(t *testing.T) {
	svc, st := newTestMappingService()
	ctx := context.Background()
	seedMapping(st, "CS-A", "2", "Dr.X", "DS")
	seedMapping(st, "CS-A", "2", "Dr.Y", "OS")
	seedMapping(st, "CS-B", "2", "Dr.Y", "OS")

	if _, err := svc.DeleteScope(ctx, Scope{}); !errors.Is(err, ErrScopeRequired) {
		t.Errorf("expected ErrScopeRequired, got %v", err)
	}

	n, err := svc.DeleteScope(ctx, Scope{Department: "CS-A", Semester: "2"})
	if err != nil {
		t.Fatalf("DeleteScope: %v", err)
	}
	if n != 2 || st.mappingCount() != 1 {
		t.Errorf("expected 2 deleted and 1 left, got deleted=%d left=%d", n, st.mappingCount())
	}
}
