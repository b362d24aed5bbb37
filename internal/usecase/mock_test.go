package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"promptmarket/internal/domain"
	"promptmarket/internal/domain/model"
	"promptmarket/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// =============================
// In-memory repositories
// =============================
//
// Mocks store and return copies, so use-case side mutations only become
// visible through the explicit update methods, like with a real database.

// ---- Mock JobRepository ----

type MockJobRepo struct {
	mu   sync.Mutex
	jobs map[string]model.Job

	SaveFunc     func(ctx context.Context, tx repository.Tx, j *model.Job) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Job, error)
}

var _ repository.JobRepository = (*MockJobRepo)(nil)

func NewMockJobRepo() *MockJobRepo {
	return &MockJobRepo{jobs: map[string]model.Job{}}
}

func (m *MockJobRepo) Save(ctx context.Context, tx repository.Tx, j *model.Job) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, j)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = *j
	return nil
}

func (m *MockJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return &j, nil
}

func (m *MockJobRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	return m.FindByID(ctx, tx, id)
}

func (m *MockJobRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}
	j.Status = status
	j.UpdatedAt = time.Now()
	m.jobs[id] = j
	return nil
}

func (m *MockJobRepo) snapshot() map[string]model.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]model.Job, len(m.jobs))
	for k, v := range m.jobs {
		out[k] = v
	}
	return out
}

func (m *MockJobRepo) restore(s map[string]model.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = s
}

// ---- Mock EscrowRepository ----

type MockEscrowRepo struct {
	mu      sync.Mutex
	escrows map[string]model.Escrow // keyed by escrow ID

	MarkReleasedFunc func(ctx context.Context, tx repository.Tx, id string, releasedAt time.Time) error
}

var _ repository.EscrowRepository = (*MockEscrowRepo)(nil)

func NewMockEscrowRepo() *MockEscrowRepo {
	return &MockEscrowRepo{escrows: map[string]model.Escrow{}}
}

func (m *MockEscrowRepo) Save(ctx context.Context, tx repository.Tx, e *model.Escrow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.escrows[e.ID] = *e
	return nil
}

func (m *MockEscrowRepo) FindByJobID(ctx context.Context, tx repository.Tx, jobID string) (*model.Escrow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.escrows {
		if e.JobID == jobID {
			e := e
			return &e, nil
		}
	}
	return nil, domain.ErrEscrowNotFound
}

func (m *MockEscrowRepo) FindByJobIDForUpdate(ctx context.Context, tx repository.Tx, jobID string) (*model.Escrow, error) {
	return m.FindByJobID(ctx, tx, jobID)
}

func (m *MockEscrowRepo) MarkReleased(ctx context.Context, tx repository.Tx, id string, releasedAt time.Time) error {
	if m.MarkReleasedFunc != nil {
		return m.MarkReleasedFunc(ctx, tx, id, releasedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.escrows[id]
	if !ok {
		return domain.ErrEscrowNotFound
	}
	if e.Status != model.EscrowStatusLocked {
		return domain.ErrAlreadySettled
	}
	e.Status = model.EscrowStatusReleased
	e.ReleasedAt = &releasedAt
	m.escrows[id] = e
	return nil
}

func (m *MockEscrowRepo) snapshot() map[string]model.Escrow {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]model.Escrow, len(m.escrows))
	for k, v := range m.escrows {
		out[k] = v
	}
	return out
}

func (m *MockEscrowRepo) restore(s map[string]model.Escrow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.escrows = s
}

// ---- Mock SubmissionRepository ----

type MockSubmissionRepo struct {
	mu   sync.Mutex
	subs map[string]model.Submission

	SaveFunc func(ctx context.Context, tx repository.Tx, s *model.Submission) error
}

var _ repository.SubmissionRepository = (*MockSubmissionRepo)(nil)

func NewMockSubmissionRepo() *MockSubmissionRepo {
	return &MockSubmissionRepo{subs: map[string]model.Submission{}}
}

func (m *MockSubmissionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Submission) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[s.ID] = *s
	return nil
}

func (m *MockSubmissionRepo) FindByJobAndID(ctx context.Context, tx repository.Tx, jobID, id string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok || s.JobID != jobID {
		return nil, domain.ErrSubmissionNotFound
	}
	return &s, nil
}

func (m *MockSubmissionRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Submission
	for _, s := range m.subs {
		if s.JobID == jobID {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockSubmissionRepo) ListScoredByJob(ctx context.Context, tx repository.Tx, jobID string, limit int) ([]*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Submission
	for _, s := range m.subs {
		if s.JobID == jobID && s.Status == model.SubmissionStatusScored {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if *out[i].FinalScore != *out[j].FinalScore {
			return *out[i].FinalScore > *out[j].FinalScore
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockSubmissionRepo) UpdateScore(ctx context.Context, tx repository.Tx, s *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[s.ID]; !ok {
		return domain.ErrSubmissionNotFound
	}
	m.subs[s.ID] = *s
	return nil
}

func (m *MockSubmissionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.SubmissionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[id]
	if !ok {
		return domain.ErrSubmissionNotFound
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	m.subs[id] = s
	return nil
}

func (m *MockSubmissionRepo) snapshot() map[string]model.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]model.Submission, len(m.subs))
	for k, v := range m.subs {
		out[k] = v
	}
	return out
}

func (m *MockSubmissionRepo) restore(s map[string]model.Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = s
}

// ---- Mock PayoutRepository ----

type MockPayoutRepo struct {
	mu      sync.Mutex
	payouts []model.Payout

	SaveFunc func(ctx context.Context, tx repository.Tx, p *model.Payout) error
}

var _ repository.PayoutRepository = (*MockPayoutRepo)(nil)

func NewMockPayoutRepo() *MockPayoutRepo {
	return &MockPayoutRepo{}
}

func (m *MockPayoutRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payout) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payouts = append(m.payouts, *p)
	return nil
}

func (m *MockPayoutRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.Payout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Payout
	for _, p := range m.payouts {
		if p.JobID == jobID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out, nil
}

func (m *MockPayoutRepo) snapshot() []model.Payout {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Payout(nil), m.payouts...)
}

func (m *MockPayoutRepo) restore(s []model.Payout) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payouts = s
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu       sync.Mutex
	byHandle map[string]model.User

	GetOrCreateByHandleFunc func(ctx context.Context, tx repository.Tx, handle string) (*model.User, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byHandle: map[string]model.User{}}
}

func (m *MockUserRepo) GetOrCreateByHandle(ctx context.Context, tx repository.Tx, handle string) (*model.User, error) {
	if m.GetOrCreateByHandleFunc != nil {
		return m.GetOrCreateByHandleFunc(ctx, tx, handle)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byHandle[handle]; ok {
		return &u, nil
	}
	u, err := model.NewUser("", handle)
	if err != nil {
		return nil, err
	}
	m.byHandle[u.Handle] = *u
	return u, nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byHandle {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) snapshot() map[string]model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]model.User, len(m.byHandle))
	for k, v := range m.byHandle {
		out[k] = v
	}
	return out
}

func (m *MockUserRepo) restore(s map[string]model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byHandle = s
}

// ---- Mock AuditLogRepository ----

type MockAuditLogRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog

	AppendFunc func(ctx context.Context, tx repository.Tx, entry *model.AuditLog) error
}

var _ repository.AuditLogRepository = (*MockAuditLogRepo)(nil)

func NewMockAuditLogRepo() *MockAuditLogRepo {
	return &MockAuditLogRepo{}
}

func (m *MockAuditLogRepo) Append(ctx context.Context, tx repository.Tx, entry *model.AuditLog) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *MockAuditLogRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AuditLog
	for _, e := range m.entries {
		if e.JobID == jobID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

func (m *MockAuditLogRepo) snapshot() []model.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AuditLog(nil), m.entries...)
}

func (m *MockAuditLogRepo) restore(s []model.AuditLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = s
}

// =============================
// Infra helpers for tests
// =============================

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately unless WithTxFunc is set. Tests that
// verify rollback behavior install a snapshotting WithTxFunc via
// enableRollback below.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// ---- Shared dependency bundle ----

type ucTestDeps struct {
	jobs    *MockJobRepo
	escrows *MockEscrowRepo
	subs    *MockSubmissionRepo
	payouts *MockPayoutRepo
	users   *MockUserRepo
	audit   *MockAuditLogRepo
	tm      *MockTxManager
}

func newUCDeps() *ucTestDeps {
	return &ucTestDeps{
		jobs:    NewMockJobRepo(),
		escrows: NewMockEscrowRepo(),
		subs:    NewMockSubmissionRepo(),
		payouts: NewMockPayoutRepo(),
		users:   NewMockUserRepo(),
		audit:   NewMockAuditLogRepo(),
		tm:      NewMockTxManager(),
	}
}

// enableRollback makes the mock transaction manager behave like a real one:
// any error from fn restores every repository to its pre-transaction state.
func (d *ucTestDeps) enableRollback() {
	d.tm.WithTxFunc = func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
		jobs := d.jobs.snapshot()
		escrows := d.escrows.snapshot()
		subs := d.subs.snapshot()
		payouts := d.payouts.snapshot()
		users := d.users.snapshot()
		audit := d.audit.snapshot()

		if err := fn(ctx, repository.NoTX); err != nil {
			d.jobs.restore(jobs)
			d.escrows.restore(escrows)
			d.subs.restore(subs)
			d.payouts.restore(payouts)
			d.users.restore(users)
			d.audit.restore(audit)
			return err
		}
		return nil
	}
}

// seedOpenJob inserts a job with a locked escrow straight into the mocks.
func seedOpenJob(d *ucTestDeps, rewardTokens int64) (*model.Job, *model.Escrow) {
	requester, _ := model.NewUser("", model.SystemRequesterHandle)
	d.users.byHandle[requester.Handle] = *requester

	job, err := model.NewJob("", requester.ID, "Label 500 images", "Please label the attached image batch.", rewardTokens, time.Now().Add(24*time.Hour))
	if err != nil {
		panic(err)
	}
	d.jobs.jobs[job.ID] = *job

	escrow, err := model.NewEscrow("", job)
	if err != nil {
		panic(err)
	}
	d.escrows.escrows[escrow.ID] = *escrow
	return job, escrow
}

// seedScoredSubmission inserts a SCORED submission with a fixed final score
// and creation time, bypassing the scoring path.
func seedScoredSubmission(d *ucTestDeps, jobID, workerHandle string, finalScore float64, createdAt time.Time) *model.Submission {
	worker, err := d.users.GetOrCreateByHandle(context.Background(), repository.NoTX, workerHandle)
	if err != nil {
		panic(err)
	}
	sub, err := model.NewSubmission("", jobID, worker.ID, "seeded submission content for ranking tests", 1000)
	if err != nil {
		panic(err)
	}
	sub.CreatedAt = createdAt
	quality := finalScore
	speed := finalScore
	sub.QualityScore = &quality
	sub.SpeedScore = &speed
	sub.FinalScore = &finalScore
	sub.Status = model.SubmissionStatusScored
	d.subs.subs[sub.ID] = *sub
	return sub
}
