package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory Store for tests. It mirrors the relational
// backend's contract: NotFoundError for missing rows, ValidationError
// for dangling foreign keys, and conflict-free student inserts.
type MemStore struct {
	mu sync.Mutex

	// FailWith, when set, makes every call fail with that error.
	FailWith error

	StudentRows    []Student
	TrainingRows   []Training
	SessionRows    []Session
	EnrollmentRows []Enrollment
	DecisionRows   []DecisionRecord

	nextID int64
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) id() int64 {
	m.nextID++
	return m.nextID
}

// SeedTraining inserts a training and returns it.
func (m *MemStore) SeedTraining(title string) Training {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := Training{ID: m.id(), Title: title}
	m.TrainingRows = append(m.TrainingRows, t)
	return t
}

// SeedSession inserts a session for a training and returns it.
func (m *MemStore) SeedSession(trainingID int64, start, end time.Time) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Session{ID: m.id(), TrainingID: trainingID, StartDate: start, EndDate: end, Capacity: DefaultSessionCapacity}
	m.SessionRows = append(m.SessionRows, s)
	return s
}

func (m *MemStore) Students(ctx context.Context) ([]Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	out := append([]Student(nil), m.StudentRows...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) StudentByEmail(ctx context.Context, email string) (*Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return m.studentByEmailLocked(email), nil
}

func (m *MemStore) studentByEmailLocked(email string) *Student {
	for i := range m.StudentRows {
		if m.StudentRows[i].Email == email {
			s := m.StudentRows[i]
			return &s
		}
	}
	return nil
}

func (m *MemStore) CreateStudent(ctx context.Context, fullName, email string, phone *string) (Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return Student{}, m.FailWith
	}
	if m.studentByEmailLocked(email) != nil {
		return Student{}, storagef("insert student", fmt.Errorf("duplicate key value violates unique constraint %q", "student_email_key"))
	}
	s := Student{ID: m.id(), FullName: fullName, Email: email, Phone: phone, CreatedAt: time.Now()}
	m.StudentRows = append(m.StudentRows, s)
	return s, nil
}

func (m *MemStore) UpdateStudent(ctx context.Context, id int64, fullName, email string, phone *string) (Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return Student{}, m.FailWith
	}
	for i := range m.StudentRows {
		if m.StudentRows[i].ID == id {
			m.StudentRows[i].FullName = fullName
			m.StudentRows[i].Email = email
			m.StudentRows[i].Phone = phone
			return m.StudentRows[i], nil
		}
	}
	return Student{}, &NotFoundError{Resource: "student", ID: id}
}

func (m *MemStore) DeleteStudent(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for i := range m.StudentRows {
		if m.StudentRows[i].ID == id {
			m.StudentRows = append(m.StudentRows[:i], m.StudentRows[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Resource: "student", ID: id}
}

func (m *MemStore) Trainings(ctx context.Context) ([]Training, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	out := append([]Training(nil), m.TrainingRows...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) CreateTraining(ctx context.Context, title string) (Training, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return Training{}, m.FailWith
	}
	t := Training{ID: m.id(), Title: title}
	m.TrainingRows = append(m.TrainingRows, t)
	return t, nil
}

func (m *MemStore) UpdateTraining(ctx context.Context, id int64, title string) (Training, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return Training{}, m.FailWith
	}
	for i := range m.TrainingRows {
		if m.TrainingRows[i].ID == id {
			m.TrainingRows[i].Title = title
			return m.TrainingRows[i], nil
		}
	}
	return Training{}, &NotFoundError{Resource: "training", ID: id}
}

func (m *MemStore) DeleteTraining(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for i := range m.TrainingRows {
		if m.TrainingRows[i].ID == id {
			m.TrainingRows = append(m.TrainingRows[:i], m.TrainingRows[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Resource: "training", ID: id}
}

func (m *MemStore) SessionsByTraining(ctx context.Context, trainingID int64) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []Session
	for _, s := range m.SessionRows {
		if s.TrainingID == trainingID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *MemStore) CreateSession(ctx context.Context, trainingID int64, start, end time.Time, capacity int) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return Session{}, m.FailWith
	}
	if m.trainingByIDLocked(trainingID) == nil {
		return Session{}, Validationf("training %d inconnu", trainingID)
	}
	s := Session{ID: m.id(), TrainingID: trainingID, StartDate: start, EndDate: end, Capacity: capacity}
	m.SessionRows = append(m.SessionRows, s)
	return s, nil
}

func (m *MemStore) DeleteSession(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for i := range m.SessionRows {
		if m.SessionRows[i].ID == id {
			m.SessionRows = append(m.SessionRows[:i], m.SessionRows[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Resource: "session", ID: id}
}

func (m *MemStore) trainingByIDLocked(id int64) *Training {
	for i := range m.TrainingRows {
		if m.TrainingRows[i].ID == id {
			return &m.TrainingRows[i]
		}
	}
	return nil
}

func (m *MemStore) sessionByIDLocked(id int64) *Session {
	for i := range m.SessionRows {
		if m.SessionRows[i].ID == id {
			return &m.SessionRows[i]
		}
	}
	return nil
}

func (m *MemStore) EnrollmentByID(ctx context.Context, id int64) (Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return Enrollment{}, m.FailWith
	}
	for _, e := range m.EnrollmentRows {
		if e.ID == id {
			return e, nil
		}
	}
	return Enrollment{}, &NotFoundError{Resource: "enrollment", ID: id}
}

func (m *MemStore) UpdateEnrollmentDecision(ctx context.Context, id int64, status Status, message string) (Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return Enrollment{}, m.FailWith
	}
	for i := range m.EnrollmentRows {
		if m.EnrollmentRows[i].ID == id {
			m.EnrollmentRows[i].Status = status
			m.EnrollmentRows[i].DecisionMessage = &message
			return m.EnrollmentRows[i], nil
		}
	}
	return Enrollment{}, &NotFoundError{Resource: "enrollment", ID: id}
}

func (m *MemStore) EnrollmentsByStudent(ctx context.Context, studentID int64) ([]StatusView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	views := []StatusView{}
	for _, e := range m.EnrollmentRows {
		if e.StudentID != studentID {
			continue
		}
		v := StatusView{
			ID:              e.ID,
			Status:          e.Status,
			DecisionMessage: e.DecisionMessage,
			SubmittedAt:     e.SubmittedAt,
		}
		if t := m.trainingByIDLocked(e.TrainingID); t != nil {
			v.Training = TrainingRef{Title: t.Title}
		}
		if s := m.sessionByIDLocked(e.SessionID); s != nil {
			v.Session = SessionRef{StartDate: s.StartDate, EndDate: s.EndDate}
		}
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].SubmittedAt.Equal(views[j].SubmittedAt) {
			return views[i].SubmittedAt.After(views[j].SubmittedAt)
		}
		return views[i].ID > views[j].ID
	})
	return views, nil
}

func (m *MemStore) ListEnrollments(ctx context.Context) ([]ApplicationView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	views := []ApplicationView{}
	for _, e := range m.EnrollmentRows {
		v := ApplicationView{
			ID:              e.ID,
			Status:          e.Status,
			Note:            e.Note,
			ResumePath:      e.ResumePath,
			CoverLetterPath: e.CoverLetterPath,
			SubmittedAt:     e.SubmittedAt,
		}
		for _, st := range m.StudentRows {
			if st.ID == e.StudentID {
				v.Student = StudentRef{FullName: st.FullName, Email: st.Email, Phone: st.Phone}
			}
		}
		if t := m.trainingByIDLocked(e.TrainingID); t != nil {
			v.Training = TrainingRef{Title: t.Title}
		}
		if s := m.sessionByIDLocked(e.SessionID); s != nil {
			v.Session = SessionRef{StartDate: s.StartDate, EndDate: s.EndDate}
		}
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].SubmittedAt.Equal(views[j].SubmittedAt) {
			return views[i].SubmittedAt.After(views[j].SubmittedAt)
		}
		return views[i].ID > views[j].ID
	})
	return views, nil
}

func (m *MemStore) InsertDecision(ctx context.Context, rec DecisionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.DecisionRows = append(m.DecisionRows, rec)
	return nil
}

func (m *MemStore) Decisions(ctx context.Context) ([]DecisionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	out := append([]DecisionRecord(nil), m.DecisionRows...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) BeginApply(ctx context.Context) (ApplyTx, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return &memApplyTx{store: m}, nil
}

// memApplyTx applies writes immediately and undoes them on rollback,
// which is close enough to transaction semantics for unit tests.
type memApplyTx struct {
	store     *MemStore
	committed bool

	insertedStudents    []int64
	insertedEnrollments []int64
}

func (tx *memApplyTx) StudentByEmail(ctx context.Context, email string) (*Student, error) {
	return tx.store.StudentByEmail(ctx, email)
}

func (tx *memApplyTx) InsertStudent(ctx context.Context, fullName, email string, phone *string) (*Student, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	if tx.store.FailWith != nil {
		return nil, tx.store.FailWith
	}
	if tx.store.studentByEmailLocked(email) != nil {
		// ON CONFLICT DO NOTHING
		return nil, nil
	}
	s := Student{ID: tx.store.id(), FullName: fullName, Email: email, Phone: phone, CreatedAt: time.Now()}
	tx.store.StudentRows = append(tx.store.StudentRows, s)
	tx.insertedStudents = append(tx.insertedStudents, s.ID)
	return &s, nil
}

func (tx *memApplyTx) CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error) {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	if tx.store.FailWith != nil {
		return Enrollment{}, tx.store.FailWith
	}
	if tx.store.trainingByIDLocked(e.TrainingID) == nil {
		return Enrollment{}, Validationf("training %d inconnu", e.TrainingID)
	}
	if tx.store.sessionByIDLocked(e.SessionID) == nil {
		return Enrollment{}, Validationf("session %d inconnue", e.SessionID)
	}
	e.ID = tx.store.id()
	tx.store.EnrollmentRows = append(tx.store.EnrollmentRows, e)
	tx.insertedEnrollments = append(tx.insertedEnrollments, e.ID)
	return e, nil
}

func (tx *memApplyTx) Commit(ctx context.Context) error {
	tx.committed = true
	return nil
}

func (tx *memApplyTx) Rollback(ctx context.Context) error {
	if tx.committed {
		return nil
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	for _, id := range tx.insertedEnrollments {
		for i := range tx.store.EnrollmentRows {
			if tx.store.EnrollmentRows[i].ID == id {
				tx.store.EnrollmentRows = append(tx.store.EnrollmentRows[:i], tx.store.EnrollmentRows[i+1:]...)
				break
			}
		}
	}
	for _, id := range tx.insertedStudents {
		for i := range tx.store.StudentRows {
			if tx.store.StudentRows[i].ID == id {
				tx.store.StudentRows = append(tx.store.StudentRows[:i], tx.store.StudentRows[i+1:]...)
				break
			}
		}
	}
	return nil
}

// MemBlobs is an in-memory BlobStore for tests.
type MemBlobs struct {
	mu sync.Mutex

	// Objects maps key to stored content type.
	Objects map[string]MemObject

	// UploadErr, when set, fails every Upload.
	UploadErr error

	// SignErr maps object keys to a signing failure for that key.
	SignErr map[string]error
}

// MemObject is a stored blob.
type MemObject struct {
	ContentType string
	Data        []byte
}

// NewMemBlobs creates an empty MemBlobs.
func NewMemBlobs() *MemBlobs {
	return &MemBlobs{Objects: map[string]MemObject{}, SignErr: map[string]error{}}
}

func (b *MemBlobs) Upload(ctx context.Context, key, contentType string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.UploadErr != nil {
		return b.UploadErr
	}
	b.Objects[key] = MemObject{ContentType: contentType, Data: append([]byte(nil), data...)}
	return nil
}

func (b *MemBlobs) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.SignErr[key]; err != nil {
		return "", err
	}
	return fmt.Sprintf("https://files.test/%s?expires=%d", key, int64(expiry.Seconds())), nil
}
