package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	pkgerrors "github.com/Suryaprasath-41/Feedback-System/pkg/errors"
)

func newTestStudentService(maxRange int) (StudentService, *fakeStore) {
	repo, st := newFakeRepo()
	return NewStudentService(repo, 1, maxRange, zap.NewNop()), st
}

func TestStudentService_Import(t *testing.T) {
	svc, st := newTestStudentService(600)
	seedStudent(st, "23CS001", "CS-A", "2")

	resp, err := svc.Import(context.Background(), []StudentRow{
		{Row: 2, RegisterNo: "23CS001", Department: "CS-A", Semester: "2"},
		{Row: 3, RegisterNo: "23CS002", Department: "CS-A", Semester: "2"},
		{Row: 4, RegisterNo: "23CS002", Department: "CS-A", Semester: "2"},
		{Row: 5, RegisterNo: "00123", Department: "CS-A", Semester: "2"},
		{Row: 6, RegisterNo: "23CS004", Department: " ", Semester: "2"},
	}, "admin")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if resp.Total != 5 || resp.Added != 2 || resp.Duplicates != 2 {
		t.Errorf("expected total=5 added=2 duplicates=2, got %+v", resp)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Row != 6 || resp.Errors[0].Field != "department" {
		t.Errorf("expected a department error on row 6, got %v", resp.Errors)
	}
	if _, ok := st.students["123"]; !ok {
		t.Error("expected the leading zeros to be stripped")
	}
	if !st.hasCatalogName(model.KindDepartment, "CS-A") || !st.hasCatalogName(model.KindSemester, "2") {
		t.Error("expected the group names in the catalog")
	}
}

func TestStudentService_Import_CapsListedDuplicates(t *testing.T) {
	svc, _ := newTestStudentService(600)

	var rows []StudentRow
	for i := 0; i < 30; i++ {
		rows = append(rows, StudentRow{RegisterNo: "77", Department: "CS-A", Semester: "2"})
	}
	resp, err := svc.Import(context.Background(), rows, "")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if resp.Added != 1 || resp.Duplicates != 29 {
		t.Errorf("expected added=1 duplicates=29, got added=%d duplicates=%d", resp.Added, resp.Duplicates)
	}
	if len(resp.DuplicateRegisterNos) != maxListedDuplicates {
		t.Errorf("expected %d listed duplicates, got %d", maxListedDuplicates, len(resp.DuplicateRegisterNos))
	}
}

func TestStudentService_Import_StoreUnavailable(t *testing.T) {
	svc, st := newTestStudentService(600)
	st.failCommits = 2

	_, err := svc.Import(context.Background(), []StudentRow{
		{RegisterNo: "1", Department: "CS-A", Semester: "2"},
	}, "")
	if !errors.Is(err, pkgerrors.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if len(st.students) != 0 {
		t.Error("a failed import must not leave students behind")
	}
}

func TestStudentService_AddRange(t *testing.T) {
	svc, st := newTestStudentService(600)
	seedStudent(st, "1005", "CS-A", "2")

	resp, err := svc.AddRange(context.Background(), &dto.AddStudentRangeRequest{
		Start: 1001, End: 1010, Department: "CS-A", Semester: "2",
	}, "admin")
	if err != nil {
		t.Fatalf("AddRange: %v", err)
	}
	if resp.Total != 10 || resp.Added != 9 || resp.Duplicates != 1 {
		t.Errorf("expected total=10 added=9 duplicates=1, got %+v", resp)
	}
	for n := 1001; n <= 1010; n++ {
		if _, ok := st.students[fmt.Sprint(n)]; !ok {
			t.Errorf("expected student %d", n)
		}
	}
}

func TestStudentService_AddRange_Limits(t *testing.T) {
	svc, st := newTestStudentService(600)
	ctx := context.Background()

	_, err := svc.AddRange(ctx, &dto.AddStudentRangeRequest{Start: 1, End: 601, Department: "CS-A", Semester: "2"}, "")
	if !errors.Is(err, ErrRangeTooLarge) {
		t.Errorf("expected ErrRangeTooLarge for 601 students, got %v", err)
	}

	resp, err := svc.AddRange(ctx, &dto.AddStudentRangeRequest{Start: 1, End: 600, Department: "CS-A", Semester: "2"}, "")
	if err != nil || resp.Added != 600 {
		t.Errorf("expected 600 students added, got %+v (%v)", resp, err)
	}

	_, err = svc.AddRange(ctx, &dto.AddStudentRangeRequest{Start: 10, End: 5, Department: "CS-A", Semester: "2"}, "")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for end < start, got %v", err)
	}
	if len(st.students) != 600 {
		t.Errorf("rejected ranges must not add students, got %d", len(st.students))
	}
}

func TestStudentService_Create(t *testing.T) {
	svc, _ := newTestStudentService(600)
	ctx := context.Background()
	req := &dto.CreateStudentRequest{RegisterNo: "23CS010", Department: "CS-A", Semester: "2"}

	s, err := svc.Create(ctx, req, "admin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.RegisterNo != "23CS010" || s.ID == "" {
		t.Errorf("unexpected student: %+v", s)
	}
	if _, err := svc.Create(ctx, req, "admin"); !errors.Is(err, ErrStudentExists) {
		t.Errorf("expected ErrStudentExists, got %v", err)
	}
}

func TestStudentService_UpdateAndDelete(t *testing.T) {
	svc, st := newTestStudentService(600)
	ctx := context.Background()
	seedStudent(st, "23CS001", "CS-A", "2")

	if _, err := svc.Update(ctx, "23CS001", &dto.UpdateStudentRequest{}, ""); !errors.Is(err, ErrNothingToApply) {
		t.Errorf("expected ErrNothingToApply, got %v", err)
	}

	sem := "4"
	s, err := svc.Update(ctx, "23CS001", &dto.UpdateStudentRequest{Semester: &sem}, "admin")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Semester != "4" || s.Department != "CS-A" {
		t.Errorf("unexpected student after update: %+v", s)
	}

	blank := "   "
	for _, req := range []*dto.UpdateStudentRequest{{Department: &blank}, {Semester: &blank}} {
		var verr *ValidationError
		if _, err := svc.Update(ctx, "23CS001", req, "admin"); !errors.As(err, &verr) {
			t.Fatalf("expected a ValidationError for a blank value, got %v", err)
		}
	}
	if got := st.students["23CS001"]; got.Department != "CS-A" || got.Semester != "4" {
		t.Errorf("a rejected update must not change the student, got %+v", got)
	}

	if _, err := svc.Update(ctx, "nobody", &dto.UpdateStudentRequest{Semester: &sem}, ""); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, "23CS001"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, "23CS001"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("expected ErrStudentNotFound, got %v", err)
	}
}

func TestStudentService_ListAndGroups(t *testing.T) {
	svc, st := newTestStudentService(600)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		seedStudent(st, fmt.Sprintf("23CS%03d", i), "CS-A", "2")
	}
	seedStudent(st, "23EE001", "EEE", "4")

	page, err := svc.List(ctx, &dto.StudentListRequest{
		PaginationRequest: dto.PaginationRequest{Page: 2, PageSize: 2},
		Department:        "CS-A",
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	items := page.Items.([]dto.StudentResponse)
	if page.Total != 5 || len(items) != 2 || items[0].RegisterNo != "23CS003" {
		t.Errorf("unexpected page: total=%d items=%+v", page.Total, items)
	}

	groups, err := svc.Groups(ctx)
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(groups) != 2 || groups[0].Department != "CS-A" || groups[1].Semester != "4" {
		t.Errorf("unexpected groups: %+v", groups)
	}
}
