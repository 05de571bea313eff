// Package memstore is an in-memory domain.UnitOfWork for service and handler
// tests. It enforces the same unique keys and cascades as the SQL schema and
// rolls a transaction back when its callback fails.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"freelance-market/internal/domain"
)

type data struct {
	seq         uint
	users       map[uint]domain.User
	userTags    map[uint][]uint
	tags        map[uint]domain.Tag
	projects    map[uint]domain.Project
	apps        map[uint]domain.Application
	reviews     map[uint]domain.Review
	userReviews map[uint]domain.UserReview
}

func (d *data) clone() *data {
	c := &data{
		seq:         d.seq,
		users:       make(map[uint]domain.User, len(d.users)),
		userTags:    make(map[uint][]uint, len(d.userTags)),
		tags:        make(map[uint]domain.Tag, len(d.tags)),
		projects:    make(map[uint]domain.Project, len(d.projects)),
		apps:        make(map[uint]domain.Application, len(d.apps)),
		reviews:     make(map[uint]domain.Review, len(d.reviews)),
		userReviews: make(map[uint]domain.UserReview, len(d.userReviews)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.userTags {
		c.userTags[k] = append([]uint(nil), v...)
	}
	for k, v := range d.tags {
		c.tags[k] = v
	}
	for k, v := range d.projects {
		c.projects[k] = v
	}
	for k, v := range d.apps {
		c.apps[k] = v
	}
	for k, v := range d.reviews {
		c.reviews[k] = v
	}
	for k, v := range d.userReviews {
		c.userReviews[k] = v
	}
	return c
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	d    *data
	now  func() time.Time

	// FailNext, when set, is returned by the next mutating call.
	FailNext error
}

func New() *Store {
	return &Store{d: (&data{}).clone(), now: time.Now}
}

func (s *Store) Users() domain.UserRepository               { return userRepo{s} }
func (s *Store) Tags() domain.TagRepository                 { return tagRepo{s} }
func (s *Store) Projects() domain.ProjectRepository         { return projectRepo{s} }
func (s *Store) Applications() domain.ApplicationRepository { return appRepo{s} }
func (s *Store) Reviews() domain.ReviewRepository           { return reviewRepo{s} }
func (s *Store) UserReviews() domain.UserReviewRepository   { return userReviewRepo{s} }

// Transaction serialises callbacks and restores the previous state on error.
func (s *Store) Transaction(ctx context.Context, fn func(r domain.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.d.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.d = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

// Counts reports the number of rows per table, for cascade assertions.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ts := range s.d.userTags {
		n += len(ts)
	}
	return map[string]int{
		"users":        len(s.d.users),
		"user_tags":    n,
		"tags":         len(s.d.tags),
		"projects":     len(s.d.projects),
		"applications": len(s.d.apps),
		"reviews":      len(s.d.reviews),
		"user_reviews": len(s.d.userReviews),
	}
}

// lock takes the data mutex and consumes FailNext for mutating calls.
func (s *Store) lock(mutating bool) (*data, func(), error) {
	s.mu.Lock()
	if mutating && s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		s.mu.Unlock()
		return nil, nil, err
	}
	return s.d, s.mu.Unlock, nil
}

func (d *data) next() uint {
	d.seq++
	return d.seq
}

func dup(what string) error { return fmt.Errorf("%s: %w", what, domain.ErrDuplicate) }

// ---- users ----

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	for _, x := range d.users {
		if x.Email == u.Email {
			return dup("users.email")
		}
	}
	u.ID = d.next()
	u.CreatedAt, u.UpdatedAt = r.s.now(), r.s.now()
	if u.Status == "" {
		u.Status = domain.UserActive
	}
	row := *u
	row.Tags = nil
	d.users[u.ID] = row
	return nil
}

func (d *data) withTags(u domain.User) *domain.User {
	u.Tags = []domain.Tag{}
	for _, id := range d.userTags[u.ID] {
		u.Tags = append(u.Tags, d.tags[id])
	}
	return &u
}

func (r userRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	u, ok := d.users[id]
	if !ok {
		return nil, nil
	}
	return d.withTags(u), nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	for _, u := range d.users {
		if u.Email == email {
			return d.withTags(u), nil
		}
	}
	return nil, nil
}

func (r userRepo) List(_ context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	q := strings.ToLower(strings.TrimSpace(f.Q))
	var out []domain.User
	for _, u := range d.users {
		if q != "" && !strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	return window(out, f.Offset, f.Limit), total, nil
}

func (r userRepo) Update(_ context.Context, u *domain.User) error {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := d.users[u.ID]; !ok {
		return nil
	}
	for _, x := range d.users {
		if x.ID != u.ID && x.Email == u.Email {
			return dup("users.email")
		}
	}
	u.UpdatedAt = r.s.now()
	row := *u
	row.Tags = nil
	d.users[u.ID] = row
	return nil
}

func (r userRepo) ReplaceTags(_ context.Context, u *domain.User, tags []domain.Tag) error {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	ids := make([]uint, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	d.userTags[u.ID] = ids
	u.Tags = append([]domain.Tag{}, tags...)
	return nil
}

func (r userRepo) Footprint(_ context.Context, id uint) (domain.UserFootprint, error) {
	d, unlock, err := r.s.lock(false)
	if err != nil {
		return domain.UserFootprint{}, err
	}
	defer unlock()
	var fp domain.UserFootprint
	seen := map[uint]bool{}
	for pid, p := range d.projects {
		if p.EmployerID == id && !seen[pid] {
			seen[pid] = true
			fp.ProjectIDs = append(fp.ProjectIDs, pid)
		}
	}
	for _, a := range d.apps {
		if a.FreelancerID == id && !seen[a.ProjectID] {
			seen[a.ProjectID] = true
			fp.ProjectIDs = append(fp.ProjectIDs, a.ProjectID)
		}
	}
	for _, rv := range d.userReviews {
		if rv.ReviewerID == id {
			fp.ReviewedUserIDs = append(fp.ReviewedUserIDs, rv.ReviewedID)
		}
	}
	sort.Slice(fp.ProjectIDs, func(i, j int) bool { return fp.ProjectIDs[i] < fp.ProjectIDs[j] })
	sort.Slice(fp.ReviewedUserIDs, func(i, j int) bool { return fp.ReviewedUserIDs[i] < fp.ReviewedUserIDs[j] })
	return fp, nil
}

func (r userRepo) Delete(_ context.Context, id uint) (bool, error) {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return false, err
	}
	defer unlock()
	if _, ok := d.users[id]; !ok {
		return false, nil
	}
	for pid, p := range d.projects {
		if p.EmployerID == id {
			d.deleteProject(pid)
		}
	}
	for aid, a := range d.apps {
		if a.FreelancerID == id {
			d.deleteApp(aid)
		}
	}
	for rid, rv := range d.userReviews {
		if rv.ReviewerID == id || rv.ReviewedID == id {
			delete(d.userReviews, rid)
		}
	}
	delete(d.userTags, id)
	delete(d.users, id)
	return true, nil
}

// ---- tags ----

type tagRepo struct{ s *Store }

func (r tagRepo) GetOrCreate(_ context.Context, name string) (*domain.Tag, error) {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, t := range d.tags {
		if t.Name == name {
			t := t
			return &t, nil
		}
	}
	t := domain.Tag{ID: d.next(), Name: name}
	d.tags[t.ID] = t
	return &t, nil
}

// ---- projects ----

type projectRepo struct{ s *Store }

func (r projectRepo) Create(_ context.Context, p *domain.Project) error {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	p.ID = d.next()
	p.CreatedAt, p.UpdatedAt = r.s.now(), r.s.now()
	d.projects[p.ID] = *p
	return nil
}

func (r projectRepo) FindByID(_ context.Context, id uint) (*domain.Project, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	p, ok := d.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r projectRepo) List(_ context.Context, f domain.ProjectFilter) ([]domain.Project, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	q := strings.ToLower(strings.TrimSpace(f.Search))
	out := []domain.Project{}
	for _, p := range d.projects {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.EmployerID != 0 && p.EmployerID != f.EmployerID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return window(out, f.Offset, f.Limit), nil
}

func (r projectRepo) Update(_ context.Context, p *domain.Project) error {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := d.projects[p.ID]; ok {
		p.UpdatedAt = r.s.now()
		d.projects[p.ID] = *p
	}
	return nil
}

func (d *data) deleteApp(id uint) {
	for rid, rv := range d.reviews {
		if rv.ApplicationID == id {
			delete(d.reviews, rid)
		}
	}
	delete(d.apps, id)
}

func (d *data) deleteProject(id uint) {
	for aid, a := range d.apps {
		if a.ProjectID == id {
			d.deleteApp(aid)
		}
	}
	delete(d.projects, id)
}

func (r projectRepo) Delete(_ context.Context, id uint) (bool, error) {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return false, err
	}
	defer unlock()
	if _, ok := d.projects[id]; !ok {
		return false, nil
	}
	d.deleteProject(id)
	return true, nil
}

func (r projectRepo) Stats(_ context.Context, id uint) (domain.ProjectStats, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	var st domain.ProjectStats
	var sum float64
	for _, a := range d.apps {
		if a.ProjectID == id {
			st.ApplicationCount++
			sum += a.ProposedPrice
		}
	}
	if st.ApplicationCount > 0 {
		st.AvgProposedPrice = sum / float64(st.ApplicationCount)
	}
	return st, nil
}

// ---- applications ----

type appRepo struct{ s *Store }

func (r appRepo) Create(_ context.Context, a *domain.Application) error {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	for _, x := range d.apps {
		if x.ProjectID == a.ProjectID && x.FreelancerID == a.FreelancerID {
			return dup("applications.project_freelancer")
		}
	}
	a.ID = d.next()
	a.CreatedAt, a.UpdatedAt = r.s.now(), r.s.now()
	d.apps[a.ID] = *a
	return nil
}

func (r appRepo) FindByID(_ context.Context, id uint) (*domain.Application, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	a, ok := d.apps[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r appRepo) FindByProjectAndFreelancer(_ context.Context, projectID, freelancerID uint) (*domain.Application, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	for _, a := range d.apps {
		if a.ProjectID == projectID && a.FreelancerID == freelancerID {
			return &a, nil
		}
	}
	return nil, nil
}

func (r appRepo) ListByProject(_ context.Context, projectID uint) ([]domain.Application, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	out := []domain.Application{}
	for _, a := range d.apps {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r appRepo) List(_ context.Context, offset, limit int) ([]domain.Application, int64, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	out := make([]domain.Application, 0, len(d.apps))
	for _, a := range d.apps {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return window(out, offset, limit), int64(len(out)), nil
}

func (r appRepo) Update(_ context.Context, a *domain.Application) error {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := d.apps[a.ID]; ok {
		a.UpdatedAt = r.s.now()
		d.apps[a.ID] = *a
	}
	return nil
}

func (r appRepo) Delete(_ context.Context, id uint) (bool, error) {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return false, err
	}
	defer unlock()
	if _, ok := d.apps[id]; !ok {
		return false, nil
	}
	d.deleteApp(id)
	return true, nil
}

// ---- reviews ----

type reviewRepo struct{ s *Store }

func (r reviewRepo) Create(_ context.Context, rv *domain.Review) error {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	for _, x := range d.reviews {
		if x.ApplicationID == rv.ApplicationID {
			return dup("reviews.application_id")
		}
	}
	rv.ID = d.next()
	rv.CreatedAt = r.s.now()
	d.reviews[rv.ID] = *rv
	return nil
}

func (r reviewRepo) FindByApplication(_ context.Context, applicationID uint) (*domain.Review, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	for _, rv := range d.reviews {
		if rv.ApplicationID == applicationID {
			return &rv, nil
		}
	}
	return nil, nil
}

type userReviewRepo struct{ s *Store }

func (r userReviewRepo) Create(_ context.Context, rv *domain.UserReview) error {
	d, unlock, err := r.s.lock(true)
	if err != nil {
		return err
	}
	defer unlock()
	for _, x := range d.userReviews {
		if x.ReviewerID == rv.ReviewerID && x.ReviewedID == rv.ReviewedID {
			return dup("user_reviews.pair")
		}
	}
	rv.ID = d.next()
	rv.CreatedAt = r.s.now()
	d.userReviews[rv.ID] = *rv
	return nil
}

func (r userReviewRepo) FindByPair(_ context.Context, reviewerID, reviewedID uint) (*domain.UserReview, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	for _, rv := range d.userReviews {
		if rv.ReviewerID == reviewerID && rv.ReviewedID == reviewedID {
			return &rv, nil
		}
	}
	return nil, nil
}

func (r userReviewRepo) ListForUser(_ context.Context, reviewedID uint) ([]domain.UserReview, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	out := []domain.UserReview{}
	for _, rv := range d.userReviews {
		if rv.ReviewedID == reviewedID {
			out = append(out, rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r userReviewRepo) Summary(_ context.Context, reviewedID uint) (domain.RatingSummary, error) {
	d, unlock, _ := r.s.lock(false)
	defer unlock()
	var sum domain.RatingSummary
	total := 0
	for _, rv := range d.userReviews {
		if rv.ReviewedID == reviewedID {
			sum.Count++
			total += rv.Rating
		}
	}
	if sum.Count > 0 {
		sum.Average = float64(total) / float64(sum.Count)
	}
	return sum, nil
}

func window[T any](in []T, offset, limit int) []T {
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
