package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/internal/repository"
	pkgerrors "github.com/Suryaprasath-41/Feedback-System/pkg/errors"
)

// ── in-memory store ──
//
// Transactions are serialized and roll back to a snapshot on error, which is
// enough to exercise the services' all-or-nothing and at-most-once paths.

type fakeStore struct {
	mu   sync.Mutex // guards the data below
	txMu sync.Mutex // one transaction at a time

	students map[string]model.Student
	catalog  map[model.CatalogKind]map[string]struct{}
	mappings []model.Mapping
	ratings  []model.Rating
	records  map[string]time.Time
	nextID   int

	// failCommits makes the next N commits fail as serialization conflicts
	failCommits int
	commits     int
	// beforeRecordCreate simulates another process committing a record
	// between the existence check and the insert
	beforeRecordCreate func(registerNo string)
	outsideRecords     map[string]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		students:       make(map[string]model.Student),
		catalog:        make(map[model.CatalogKind]map[string]struct{}),
		records:        make(map[string]time.Time),
		outsideRecords: make(map[string]time.Time),
	}
}

// newFakeRepo returns a repository aggregate over a fresh in-memory store
func newFakeRepo() (*repository.Repository, *fakeStore) {
	st := newFakeStore()
	repo := st.repository()
	repo.Tx = &fakeTransactor{store: st}
	return repo, st
}

func (st *fakeStore) repository() *repository.Repository {
	return &repository.Repository{
		Student:    &fakeStudentRepo{st: st},
		Catalog:    &fakeCatalogRepo{st: st},
		Mapping:    &fakeMappingRepo{st: st},
		Rating:     &fakeRatingRepo{st: st},
		Submission: &fakeSubmissionRepo{st: st},
	}
}

func (st *fakeStore) id(prefix string) string {
	st.nextID++
	return fmt.Sprintf("%s-%d", prefix, st.nextID)
}

type snapshot struct {
	students map[string]model.Student
	catalog  map[model.CatalogKind]map[string]struct{}
	mappings []model.Mapping
	ratings  []model.Rating
	records  map[string]time.Time
}

func (st *fakeStore) snapshot() snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()

	s := snapshot{
		students: make(map[string]model.Student, len(st.students)),
		catalog:  make(map[model.CatalogKind]map[string]struct{}, len(st.catalog)),
		mappings: append([]model.Mapping(nil), st.mappings...),
		ratings:  append([]model.Rating(nil), st.ratings...),
		records:  make(map[string]time.Time, len(st.records)),
	}
	for k, v := range st.students {
		s.students[k] = v
	}
	for kind, names := range st.catalog {
		cp := make(map[string]struct{}, len(names))
		for n := range names {
			cp[n] = struct{}{}
		}
		s.catalog[kind] = cp
	}
	for k, v := range st.records {
		s.records[k] = v
	}
	return s
}

func (st *fakeStore) restore(s snapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.students = s.students
	st.catalog = s.catalog
	st.mappings = s.mappings
	st.ratings = s.ratings
	st.records = s.records
	// rows committed by "another process" survive our rollback
	for k, v := range st.outsideRecords {
		st.records[k] = v
	}
}

func (st *fakeStore) ratingCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.ratings)
}

func (st *fakeStore) mappingCount() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.mappings)
}

func (st *fakeStore) hasCatalogName(kind model.CatalogKind, name string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.catalog[kind][name]
	return ok
}

// ── transactor ──

type fakeTransactor struct {
	store *fakeStore
}

func (t *fakeTransactor) Transaction(_ context.Context, fn func(tx *repository.Repository) error) error {
	st := t.store
	st.txMu.Lock()
	defer st.txMu.Unlock()

	snap := st.snapshot()
	txRepo := st.repository()
	txRepo.Tx = joinedFakeTransactor{repo: txRepo}

	err := fn(txRepo)
	if err == nil {
		st.mu.Lock()
		if st.failCommits > 0 {
			st.failCommits--
			err = fmt.Errorf("%w: simulated serialization failure", pkgerrors.ErrStoreUnavailable)
		} else {
			st.commits++
		}
		st.mu.Unlock()
	}
	if err != nil {
		st.restore(snap)
		return err
	}
	return nil
}

type joinedFakeTransactor struct {
	repo *repository.Repository
}

func (j joinedFakeTransactor) Transaction(_ context.Context, fn func(tx *repository.Repository) error) error {
	return fn(j.repo)
}

// ── students ──

type fakeStudentRepo struct{ st *fakeStore }

func (r *fakeStudentRepo) Create(_ context.Context, s *model.Student) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.students[s.RegisterNo]; ok {
		return pkgerrors.ErrDuplicate
	}
	if s.StudentID == "" {
		s.StudentID = r.st.id("student")
	}
	r.st.students[s.RegisterNo] = *s
	return nil
}

func (r *fakeStudentRepo) CreateIfAbsent(ctx context.Context, s *model.Student) (bool, error) {
	err := r.Create(ctx, s)
	if err == pkgerrors.ErrDuplicate {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeStudentRepo) GetByRegisterNo(_ context.Context, registerNo string) (*model.Student, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	s, ok := r.st.students[registerNo]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *fakeStudentRepo) GetForUpdate(ctx context.Context, registerNo string) (*model.Student, error) {
	return r.GetByRegisterNo(ctx, registerNo)
}

func (r *fakeStudentRepo) List(_ context.Context, filter repository.StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var all []model.Student
	for _, s := range r.st.students {
		if filter.Department != "" && s.Department != filter.Department {
			continue
		}
		if filter.Semester != "" && s.Semester != filter.Semester {
			continue
		}
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RegisterNo < all[j].RegisterNo })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeStudentRepo) ListRegisterNos(_ context.Context, department, semester string) ([]string, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []string
	for _, s := range r.st.students {
		if s.Department == department && s.Semester == semester {
			out = append(out, s.RegisterNo)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeStudentRepo) ListGroups(_ context.Context) ([]repository.Group, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	seen := map[repository.Group]struct{}{}
	for _, s := range r.st.students {
		seen[repository.Group{Department: s.Department, Semester: s.Semester}] = struct{}{}
	}
	return sortedGroups(seen), nil
}

func (r *fakeStudentRepo) Update(_ context.Context, s *model.Student) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.students[s.RegisterNo] = *s
	return nil
}

func (r *fakeStudentRepo) Delete(_ context.Context, registerNo string) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.students[registerNo]; !ok {
		return 0, nil
	}
	delete(r.st.students, registerNo)
	return 1, nil
}

func (r *fakeStudentRepo) DeleteAll(_ context.Context) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	n := int64(len(r.st.students))
	r.st.students = make(map[string]model.Student)
	return n, nil
}

func sortedGroups(seen map[repository.Group]struct{}) []repository.Group {
	out := make([]repository.Group, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Department != out[j].Department {
			return out[i].Department < out[j].Department
		}
		return out[i].Semester < out[j].Semester
	})
	return out
}

// ── catalog ──

type fakeCatalogRepo struct{ st *fakeStore }

func (r *fakeCatalogRepo) EnsureNames(_ context.Context, kind model.CatalogKind, names []string) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.catalog[kind] == nil {
		r.st.catalog[kind] = make(map[string]struct{})
	}
	var added int64
	for _, n := range names {
		if _, ok := r.st.catalog[kind][n]; !ok {
			r.st.catalog[kind][n] = struct{}{}
			added++
		}
	}
	return added, nil
}

func (r *fakeCatalogRepo) Names(_ context.Context, kind model.CatalogKind) ([]string, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []string
	for n := range r.st.catalog[kind] {
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// ── mappings ──

type fakeMappingRepo struct{ st *fakeStore }

func (r *fakeMappingRepo) Create(_ context.Context, m *model.Mapping) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, e := range r.st.mappings {
		if e.Department == m.Department && e.Semester == m.Semester && e.Staff == m.Staff && e.Subject == m.Subject {
			return pkgerrors.ErrDuplicate
		}
	}
	m.MappingID = r.st.id("mapping")
	m.CreatedAt = time.Now().UTC()
	r.st.mappings = append(r.st.mappings, *m)
	return nil
}

func (r *fakeMappingRepo) CreateIfAbsent(ctx context.Context, m *model.Mapping) (bool, error) {
	err := r.Create(ctx, m)
	if err == pkgerrors.ErrDuplicate {
		return false, nil
	}
	return err == nil, err
}

func (r *fakeMappingRepo) DeleteScope(_ context.Context, department, semester string) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var kept []model.Mapping
	var n int64
	for _, m := range r.st.mappings {
		if (department == "" || m.Department == department) && (semester == "" || m.Semester == semester) {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.st.mappings = kept
	return n, nil
}

func (r *fakeMappingRepo) DeleteByID(_ context.Context, id string) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for i, m := range r.st.mappings {
		if m.MappingID == id {
			r.st.mappings = append(r.st.mappings[:i:i], r.st.mappings[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeMappingRepo) DeleteAll(ctx context.Context) (int64, error) {
	return r.DeleteScope(ctx, "", "")
}

func (r *fakeMappingRepo) List(_ context.Context, f repository.MappingFilter) ([]model.Mapping, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []model.Mapping
	for _, m := range r.st.mappings {
		if (f.Department == "" || m.Department == f.Department) &&
			(f.Semester == "" || m.Semester == f.Semester) &&
			(f.Staff == "" || m.Staff == f.Staff) &&
			(f.Subject == "" || m.Subject == f.Subject) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMappingRepo) ListPairs(_ context.Context, department, semester string) ([]model.Assignment, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	seen := map[model.Assignment]struct{}{}
	var out []model.Assignment
	for _, m := range r.st.mappings {
		if m.Department != department || m.Semester != semester {
			continue
		}
		p := model.Assignment{Staff: m.Staff, Subject: m.Subject}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	// deliberately unsorted: the service orders the pairs
	return out, nil
}

// ── ratings ──

type fakeRatingRepo struct{ st *fakeStore }

func (r *fakeRatingRepo) CreateBatch(_ context.Context, ratings []model.Rating) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, n := range ratings {
		for _, e := range r.st.ratings {
			if e.RegisterNo == n.RegisterNo && e.Staff == n.Staff && e.Subject == n.Subject {
				return pkgerrors.ErrDuplicate
			}
		}
	}
	for _, n := range ratings {
		n.RatingID = r.st.id("rating")
		r.st.ratings = append(r.st.ratings, n)
	}
	return nil
}

func (r *fakeRatingRepo) Sum(_ context.Context, f repository.RatingFilter) (repository.RatingSums, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var sums repository.RatingSums
	for _, rt := range r.st.ratings {
		if (f.Staff == "" || rt.Staff == f.Staff) &&
			(f.Subject == "" || rt.Subject == f.Subject) &&
			(f.Department == "" || rt.Department == f.Department) &&
			(f.Semester == "" || rt.Semester == f.Semester) {
			addSums(&sums, rt)
		}
	}
	return sums, nil
}

func (r *fakeRatingRepo) SumByPair(_ context.Context, department, semester string) ([]repository.PairSums, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	byPair := map[model.Assignment]*repository.RatingSums{}
	var order []model.Assignment
	for _, rt := range r.st.ratings {
		if rt.Department != department || rt.Semester != semester {
			continue
		}
		p := model.Assignment{Staff: rt.Staff, Subject: rt.Subject}
		if byPair[p] == nil {
			byPair[p] = &repository.RatingSums{}
			order = append(order, p)
		}
		addSums(byPair[p], rt)
	}
	out := make([]repository.PairSums, 0, len(order))
	for _, p := range order {
		out = append(out, repository.PairSums{Assignment: p, RatingSums: *byPair[p]})
	}
	return out, nil
}

func (r *fakeRatingRepo) DeleteAll(_ context.Context) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	n := int64(len(r.st.ratings))
	r.st.ratings = nil
	return n, nil
}

func addSums(s *repository.RatingSums, rt model.Rating) {
	s.Count++
	s.AverageSum += rt.Average
	for i, v := range rt.Scores() {
		s.QuestionSums[i] += v
	}
}

// ── submission records ──

type fakeSubmissionRepo struct{ st *fakeStore }

func (r *fakeSubmissionRepo) Exists(_ context.Context, registerNo string) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	_, ok := r.st.records[registerNo]
	return ok, nil
}

func (r *fakeSubmissionRepo) Create(_ context.Context, rec *model.SubmissionRecord) error {
	if hook := r.st.beforeRecordCreate; hook != nil {
		hook(rec.RegisterNo)
	}
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.records[rec.RegisterNo]; ok {
		return fmt.Errorf("%w: submission_records_pkey", pkgerrors.ErrDuplicate)
	}
	r.st.records[rec.RegisterNo] = rec.SubmittedAt
	return nil
}

func (r *fakeSubmissionRepo) FilterSubmitted(_ context.Context, registerNos []string) ([]string, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []string
	for _, n := range registerNos {
		if _, ok := r.st.records[n]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) DeleteAll(_ context.Context) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	n := int64(len(r.st.records))
	r.st.records = make(map[string]time.Time)
	return n, nil
}

// commitOutside simulates another process committing a submission record
func (st *fakeStore) commitOutside(registerNo string, at time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.records[registerNo] = at
	st.outsideRecords[registerNo] = at
}

// ── fixtures ──

func seedStudent(st *fakeStore, regNo, dept, sem string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.students[regNo] = model.Student{StudentID: st.id("student"), RegisterNo: regNo, Department: dept, Semester: sem}
}

func seedMapping(st *fakeStore, dept, sem, staff, subject string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.mappings = append(st.mappings, model.Mapping{
		MappingID: st.id("mapping"), Department: dept, Semester: sem, Staff: staff, Subject: subject,
	})
}

func uniformScores(v float64) []float64 {
	s := make([]float64, model.QuestionCount)
	for i := range s {
		s[i] = v
	}
	return s
}
