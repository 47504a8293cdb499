package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/hrms-lite/internal/models"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
)

type fakeHRClient struct {
	mu sync.Mutex

	employees    []models.Employee
	records      []models.AttendanceRecord
	listEmpErr   error
	listAttErr   error
	createErr    error
	deleteErr    error
	markErr      map[string]error
	deleteAttErr error

	listEmpCalls int
	created      []models.EmployeeCreate
	deleted      []string
	marked       []models.AttendanceCreate
	markCtxErrs  []error
	deletedAtt   []string
}

func (f *fakeHRClient) ListEmployees(context.Context) ([]models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listEmpCalls++
	if f.listEmpErr != nil {
		return nil, f.listEmpErr
	}
	out := make([]models.Employee, len(f.employees))
	copy(out, f.employees)
	return out, nil
}

func (f *fakeHRClient) CreateEmployee(_ context.Context, req models.EmployeeCreate) (*models.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	emp := models.Employee{ID: "oid-" + req.EmployeeID, EmployeeID: req.EmployeeID, FullName: req.FullName, Email: req.Email, Department: req.Department}
	f.employees = append(f.employees, emp)
	return &emp, nil
}

func (f *fakeHRClient) DeleteEmployee(_ context.Context, employeeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, employeeID)
	return nil
}

func (f *fakeHRClient) ListAttendance(context.Context) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listAttErr != nil {
		return nil, f.listAttErr
	}
	out := make([]models.AttendanceRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeHRClient) ListAttendanceByEmployee(_ context.Context, employeeID string) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listAttErr != nil {
		return nil, f.listAttErr
	}
	out := []models.AttendanceRecord{}
	for _, r := range f.records {
		if r.EmployeeID == employeeID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeHRClient) MarkAttendance(ctx context.Context, req models.AttendanceCreate) (*models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCtxErrs = append(f.markCtxErrs, ctx.Err())
	if err := f.markErr[req.EmployeeID]; err != nil {
		return nil, err
	}
	f.marked = append(f.marked, req)
	return &models.AttendanceRecord{ID: "r-" + req.EmployeeID, EmployeeID: req.EmployeeID, Date: req.Date, Status: req.Status}, nil
}

func (f *fakeHRClient) DeleteAttendance(_ context.Context, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteAttErr != nil {
		return f.deleteAttErr
	}
	f.deletedAtt = append(f.deletedAtt, recordID)
	return nil
}

type memoryCacheRepo struct {
	mu          sync.Mutex
	items       map[string][]byte
	invalidated []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

func threeEmployees() []models.Employee {
	return []models.Employee{
		{EmployeeID: "E1", FullName: "Ada Lovelace", Email: "ada@example.com", Department: "Engineering"},
		{EmployeeID: "E2", FullName: "Grace Hopper", Email: "grace@example.com", Department: "Engineering"},
		{EmployeeID: "E3", FullName: "Alan Turing", Email: "alan@example.com", Department: "HR"},
	}
}
