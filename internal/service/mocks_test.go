package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/tap-api/internal/models"
	"github.com/noah-isme/tap-api/pkg/jobs"
)

type mockUsers struct {
	byEmail map[string]string
}

func (m *mockUsers) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	owner, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return false, nil
	}
	return excludeID == "" || owner != excludeID, nil
}

func (m *mockUsers) register(email, id string) {
	if m.byEmail == nil {
		m.byEmail = map[string]string{}
	}
	m.byEmail[strings.ToLower(email)] = id
}

type mockInstructorRepo struct {
	users          *mockUsers
	items          map[string]*models.Instructor
	qualifications map[string]*models.InstructorQualification
	seq            int
}

func (m *mockInstructorRepo) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error) {
	var out []models.Instructor
	for _, item := range m.items {
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (m *mockInstructorRepo) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInstructorRepo) FindQualification(ctx context.Context, id string) (*models.InstructorQualification, error) {
	if q, ok := m.qualifications[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInstructorRepo) QualificationsFor(ctx context.Context, ids []string) (map[string]models.InstructorQualification, error) {
	out := map[string]models.InstructorQualification{}
	for _, id := range ids {
		if q, ok := m.qualifications[id]; ok {
			out[id] = *q
		}
	}
	return out, nil
}

func (m *mockInstructorRepo) Create(ctx context.Context, user *models.User, instructor *models.Instructor, q *models.InstructorQualification) error {
	if m.items == nil {
		m.items = map[string]*models.Instructor{}
		m.qualifications = map[string]*models.InstructorQualification{}
	}
	m.seq++
	instructor.ID = fmt.Sprintf("instructor-%d", m.seq)
	user.ID = instructor.ID
	cp := *instructor
	m.items[instructor.ID] = &cp
	if q != nil {
		q.InstructorID = instructor.ID
		qcp := *q
		m.qualifications[instructor.ID] = &qcp
	}
	if m.users != nil {
		m.users.register(user.Email, user.ID)
	}
	return nil
}

func (m *mockInstructorRepo) Update(ctx context.Context, instructor *models.Instructor, q *models.InstructorQualification) error {
	cp := *instructor
	m.items[instructor.ID] = &cp
	if q != nil {
		q.InstructorID = instructor.ID
		qcp := *q
		m.qualifications[instructor.ID] = &qcp
	}
	return nil
}

type mockResumeRepo struct {
	items     map[string]*models.InstructorResume
	upsertErr error
}

func (m *mockResumeRepo) FindByInstructorID(ctx context.Context, id string) (*models.InstructorResume, error) {
	if r, ok := m.items[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockResumeRepo) Upsert(ctx context.Context, resume *models.InstructorResume) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.items == nil {
		m.items = map[string]*models.InstructorResume{}
	}
	if existing, ok := m.items[resume.InstructorID]; ok {
		resume.ID = existing.ID
	} else {
		resume.ID = "resume-" + resume.InstructorID
	}
	resume.UploadedAt = time.Now().UTC()
	resume.UpdatedAt = resume.UploadedAt
	cp := *resume
	m.items[resume.InstructorID] = &cp
	return nil
}

type mockSlotRepo struct {
	items    map[string]*models.TimeSlotDetail
	bookings *mockBookingRepo
	seq      int
}

func (m *mockSlotRepo) Create(ctx context.Context, slot *models.InstructorTimeSlot) error {
	if m.items == nil {
		m.items = map[string]*models.TimeSlotDetail{}
	}
	m.seq++
	slot.ID = fmt.Sprintf("slot-%d", m.seq)
	m.items[slot.ID] = &models.TimeSlotDetail{InstructorTimeSlot: *slot, Available: true}
	return nil
}

func (m *mockSlotRepo) FindByID(ctx context.Context, id string) (*models.TimeSlotDetail, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSlotRepo) ListByInstructor(ctx context.Context, instructorID string) ([]models.TimeSlotDetail, error) {
	var out []models.TimeSlotDetail
	for _, s := range m.items {
		if s.InstructorID == instructorID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSlotRepo) HasOverlap(ctx context.Context, instructorID string, start, end time.Time) (bool, error) {
	for _, s := range m.items {
		if s.InstructorID == instructorID && s.StartAt.Before(end) && s.EndAt.After(start) {
			return true, nil
		}
	}
	return false, nil
}

type mockFiles struct {
	mu      sync.Mutex
	dir     string
	data    map[string][]byte
	deleted []string
}

func (m *mockFiles) SaveStream(name string, r io.Reader, limit int64) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if limit > 0 && int64(len(buf)) > limit {
		return 0, fmt.Errorf("file exceeds %d bytes", limit)
	}
	return int64(len(buf)), m.put(name, buf)
}

func (m *mockFiles) Save(name string, data []byte) (string, error) {
	return name, m.put(name, data)
}

func (m *mockFiles) put(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[name] = bytes.Clone(data)
	if m.dir != "" {
		path := filepath.Join(m.dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}
	return nil
}

func (m *mockFiles) Open(name string) (*os.File, error) {
	if m.dir == "" {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(m.dir, filepath.FromSlash(name)))
}

func (m *mockFiles) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	m.deleted = append(m.deleted, name)
	return nil
}

type mockStudentRepo struct {
	users    *mockUsers
	items    map[string]*models.Student
	seq      int
	lastUser *models.User
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range m.items {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, user *models.User, student *models.Student) error {
	if m.items == nil {
		m.items = map[string]*models.Student{}
	}
	m.seq++
	student.ID = fmt.Sprintf("student-%d", m.seq)
	user.ID = student.ID
	m.lastUser = user
	cp := *student
	m.items[student.ID] = &cp
	if m.users != nil {
		m.users.register(user.Email, user.ID)
	}
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	cp := *student
	m.items[student.ID] = &cp
	return nil
}

type mockPreferenceRepo struct {
	items map[string]*models.StudentPreference
}

func (m *mockPreferenceRepo) FindByStudentID(ctx context.Context, studentID string) (*models.StudentPreference, error) {
	if p, ok := m.items[studentID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPreferenceRepo) Upsert(ctx context.Context, pref *models.StudentPreference) error {
	if m.items == nil {
		m.items = map[string]*models.StudentPreference{}
	}
	if existing, ok := m.items[pref.StudentID]; ok {
		pref.ID = existing.ID
	} else {
		pref.ID = "pref-" + pref.StudentID
	}
	cp := *pref
	m.items[pref.StudentID] = &cp
	return nil
}

type mockBankRepo struct {
	items map[string]*models.StudentBankDetails
}

func (m *mockBankRepo) FindByStudentID(ctx context.Context, studentID string) (*models.StudentBankDetails, error) {
	if d, ok := m.items[studentID]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockBankRepo) Upsert(ctx context.Context, details *models.StudentBankDetails) error {
	if m.items == nil {
		m.items = map[string]*models.StudentBankDetails{}
	}
	if existing, ok := m.items[details.StudentID]; ok {
		details.ID = existing.ID
		details.CreatedAt = existing.CreatedAt
	} else {
		details.ID = "bank-" + details.StudentID
	}
	cp := *details
	m.items[details.StudentID] = &cp
	return nil
}

func (m *mockBankRepo) DeleteByStudentID(ctx context.Context, studentID string) (bool, error) {
	if _, ok := m.items[studentID]; !ok {
		return false, nil
	}
	delete(m.items, studentID)
	return true, nil
}

type mockReference struct {
	skills map[int]bool
	levels map[int]bool
}

func (m *mockReference) SkillExists(ctx context.Context, id int) (bool, error) { return m.skills[id], nil }
func (m *mockReference) LevelExists(ctx context.Context, id int) (bool, error) { return m.levels[id], nil }

type mockPaymentRepo struct {
	mu    sync.Mutex
	items map[string]*models.StudentPayment
	order []string
}

func (m *mockPaymentRepo) Create(ctx context.Context, p *models.StudentPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = map[string]*models.StudentPayment{}
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.items[p.ID] = &cp
	m.order = append(m.order, p.ID)
	return nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*models.StudentPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.StudentPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StudentPayment
	for _, id := range m.order {
		if p := m.items[id]; p.StudentID == studentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) SetReceiptPath(ctx context.Context, id, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.ReceiptPath = &path
	return nil
}

type mockQueue struct {
	jobs []jobs.Job
	err  error
}

func (m *mockQueue) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

type mockCourseRepo struct {
	items     map[string]*models.CourseDetail
	listCalls int
	seq       int
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	m.listCalls++
	var out []models.CourseDetail
	for _, c := range m.items {
		if filter.InstructorID != "" && c.InstructorID != filter.InstructorID {
			continue
		}
		if filter.Published != nil && c.IsPublished != *filter.Published {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	if c, ok := m.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.items == nil {
		m.items = map[string]*models.CourseDetail{}
	}
	m.seq++
	course.ID = fmt.Sprintf("course-%d", m.seq)
	m.items[course.ID] = &models.CourseDetail{Course: *course}
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	m.items[course.ID].Course = *course
	return nil
}

func (m *mockCourseRepo) SetPublished(ctx context.Context, id string, published bool) error {
	m.items[id].IsPublished = published
	return nil
}

func (m *mockCourseRepo) SkillExists(ctx context.Context, id int) (bool, error) { return id == 1, nil }
func (m *mockCourseRepo) LevelExists(ctx context.Context, id int) (bool, error) { return id == 1, nil }

func (m *mockCourseRepo) ListSkills(ctx context.Context) ([]models.Skill, error) {
	return []models.Skill{{ID: 1, Name: "Mathematics"}}, nil
}

func (m *mockCourseRepo) ListLevels(ctx context.Context) ([]models.ProficiencyLevel, error) {
	return []models.ProficiencyLevel{{ID: 1, Name: "Beginner"}}, nil
}

type mockCache struct {
	store       map[string][]byte
	invalidated []string
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.store == nil {
		m.store = map[string][]byte{}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *mockCache) Invalidate(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	m.store = nil
	return nil
}

type mockBookingRepo struct {
	mu    sync.Mutex
	slots *mockSlotRepo
	items map[string]*models.StudentBooking
	seq   int
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *models.StudentBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = map[string]*models.StudentBooking{}
	}
	for _, b := range m.items {
		if b.SlotID == booking.SlotID && b.Status.Active() {
			return fmt.Errorf("create booking: %w", &pq.Error{Code: "23505"})
		}
	}
	m.seq++
	booking.ID = fmt.Sprintf("booking-%d", m.seq)
	booking.BookedAt = time.Now().UTC()
	cp := *booking
	m.items[booking.ID] = &cp
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*models.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return m.detail(b), nil
}

func (m *mockBookingRepo) detail(b *models.StudentBooking) *models.BookingDetail {
	out := &models.BookingDetail{StudentBooking: *b}
	if m.slots != nil {
		if s, ok := m.slots.items[b.SlotID]; ok {
			out.StartAt, out.EndAt = s.StartAt, s.EndAt
		}
	}
	return out
}

func (m *mockBookingRepo) ListByStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BookingDetail
	for _, b := range m.items {
		if b.StudentID == studentID {
			out = append(out, *m.detail(b))
		}
	}
	return out, nil
}

func (m *mockBookingRepo) HasActiveForSlot(ctx context.Context, slotID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.items {
		if b.SlotID == slotID && b.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.items[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	return true, nil
}

type mockEnrollmentRepo struct {
	items map[string]*models.StudentCourseEnrollment
	seq   int
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, e *models.StudentCourseEnrollment) error {
	if m.items == nil {
		m.items = map[string]*models.StudentCourseEnrollment{}
	}
	m.seq++
	e.ID = fmt.Sprintf("enrollment-%d", m.seq)
	cp := *e
	m.items[e.ID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	if e, ok := m.items[id]; ok {
		return &models.EnrollmentDetail{StudentCourseEnrollment: *e}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) ExistsForCourse(ctx context.Context, studentID, courseID string) (bool, error) {
	for _, e := range m.items {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	var out []models.EnrollmentDetail
	for _, e := range m.items {
		if e.StudentID == studentID {
			out = append(out, models.EnrollmentDetail{StudentCourseEnrollment: *e})
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) UpdateProgress(ctx context.Context, id string, progress float64, status models.EnrollmentStatus) error {
	e, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Progress = progress
	e.Status = status
	return nil
}

