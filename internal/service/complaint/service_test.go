package complaint_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"asrama/internal/domain"
	"asrama/internal/mocks"
	"asrama/internal/service/complaint"
)

type fixture struct {
	svc            complaint.Service
	complaintRepo  *mocks.ComplaintRepository
	commentRepo    *mocks.CommentRepository
	assignmentRepo *mocks.AssignmentRepository
	audit          *mocks.AuditRecorder
	notifier       *mocks.Notifier
	cache          *mocks.CacheInvalidator
}

func newFixture() *fixture {
	f := &fixture{
		complaintRepo:  new(mocks.ComplaintRepository),
		commentRepo:    new(mocks.CommentRepository),
		assignmentRepo: new(mocks.AssignmentRepository),
		audit:          new(mocks.AuditRecorder),
		notifier:       new(mocks.Notifier),
		cache:          new(mocks.CacheInvalidator),
	}
	f.audit.On("Record", mock.Anything, mock.Anything).Return().Maybe()
	f.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return().Maybe()
	f.cache.On("Invalidate", mock.Anything, mock.Anything).Return().Maybe()
	f.svc = complaint.NewService(f.complaintRepo, f.commentRepo, f.assignmentRepo, f.audit, f.notifier, f.cache, logrus.New())
	return f
}

func TestComplaintService_Claim(t *testing.T) {
	ctx := context.Background()
	dormID := uuid.New()
	a := domain.Actor{UserID: uuid.New(), Role: domain.RoleStaff, DormID: &dormID}
	b := domain.Actor{UserID: uuid.New(), Role: domain.RoleStaff, DormID: &dormID}

	t.Run("First claim reviews and assigns", func(t *testing.T) {
		f := newFixture()
		c := &domain.Complaint{ID: uuid.New(), ResidentID: uuid.New(), DormID: dormID, Status: domain.StatusSubmitted}

		f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil).Once()
		f.complaintRepo.On("Claim", ctx, mock.MatchedBy(func(x *domain.Complaint) bool {
			return x.IsManagedBy(a.UserID) && x.Status == domain.StatusReviewed && x.ReviewedBy != nil && *x.ReviewedBy == a.UserID
		}), domain.StatusSubmitted).Return(true, nil).Once()

		out, err := f.svc.Claim(ctx, a, c.ID, nil)

		require.NoError(t, err)
		assert.True(t, out.IsManagedBy(a.UserID))
		assert.NotNil(t, out.ClaimedAt)
		assert.NotNil(t, out.ReviewedAt)
		f.complaintRepo.AssertExpectations(t)
	})

	t.Run("Second claim by same staff is a no-op", func(t *testing.T) {
		f := newFixture()
		claimedAt := time.Now().Add(-time.Hour)
		manager := a.UserID
		c := &domain.Complaint{ID: uuid.New(), DormID: dormID, Status: domain.StatusReviewed, ManagedBy: &manager, ClaimedAt: &claimedAt}

		f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil).Once()

		out, err := f.svc.Claim(ctx, a, c.ID, nil)

		require.NoError(t, err)
		assert.Equal(t, claimedAt, *out.ClaimedAt)
		f.complaintRepo.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
		f.audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("Claim by other staff fails without change", func(t *testing.T) {
		f := newFixture()
		manager := a.UserID
		c := &domain.Complaint{ID: uuid.New(), DormID: dormID, Status: domain.StatusReviewed, ManagedBy: &manager}

		f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil).Once()

		_, err := f.svc.Claim(ctx, b, c.ID, nil)

		assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
		assert.Equal(t, a.UserID, *c.ManagedBy)
		f.complaintRepo.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Losing a concurrent claim reports AlreadyClaimed", func(t *testing.T) {
		f := newFixture()
		c := &domain.Complaint{ID: uuid.New(), DormID: dormID, Status: domain.StatusSubmitted}
		winner := a.UserID
		fresh := &domain.Complaint{ID: c.ID, DormID: dormID, Status: domain.StatusReviewed, ManagedBy: &winner}

		f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil).Once()
		f.complaintRepo.On("Claim", ctx, mock.Anything, domain.StatusSubmitted).Return(false, nil).Once()
		f.complaintRepo.On("GetByID", ctx, c.ID).Return(fresh, nil).Once()

		_, err := f.svc.Claim(ctx, b, c.ID, nil)

		assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)
		f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Staff of other dorm cannot claim", func(t *testing.T) {
		f := newFixture()
		other := uuid.New()
		c := &domain.Complaint{ID: uuid.New(), DormID: dormID, Status: domain.StatusSubmitted}
		f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil).Once()

		_, err := f.svc.Claim(ctx, domain.Actor{UserID: uuid.New(), Role: domain.RoleStaff, DormID: &other}, c.ID, nil)
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})

	t.Run("Closed complaints cannot be claimed", func(t *testing.T) {
		f := newFixture()
		c := &domain.Complaint{ID: uuid.New(), DormID: dormID, Status: domain.StatusDropped}
		f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil).Once()

		_, err := f.svc.Claim(ctx, a, c.ID, nil)
		assert.ErrorIs(t, err, domain.ErrRequestClosed)
	})
}

func TestComplaintService_ManagerGate(t *testing.T) {
	ctx := context.Background()
	dormID := uuid.New()
	otherDorm := uuid.New()
	manager := domain.Actor{UserID: uuid.New(), Role: domain.RoleStaff, DormID: &otherDorm}
	colleague := domain.Actor{UserID: uuid.New(), Role: domain.RoleStaff, DormID: &dormID}
	admin := domain.Actor{UserID: uuid.New(), Role: domain.RoleAdmin}

	reviewed := func() *domain.Complaint {
		m := manager.UserID
		at := time.Now()
		return &domain.Complaint{ID: uuid.New(), ResidentID: uuid.New(), DormID: dormID, Status: domain.StatusReviewed, ManagedBy: &m, ReviewedAt: &at}
	}

	t.Run("Manager advances regardless of dorm", func(t *testing.T) {
		f := newFixture()
		c := reviewed()
		f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil).Once()
		f.complaintRepo.On("UpdateLifecycle", ctx, c, domain.StatusReviewed).Return(nil).Once()

		out, err := f.svc.UpdateStatus(ctx, manager, c.ID, domain.StatusInProgress, nil)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, out.Status)
		f.notifier.AssertCalled(t, "Notify", mock.Anything, c.ResidentID, domain.NotifComplaintStatus, mock.Anything)
	})

	for name, actor := range map[string]domain.Actor{"dorm colleague": colleague, "admin": admin} {
		t.Run(name+" is rejected", func(t *testing.T) {
			f := newFixture()
			c := reviewed()
			f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil)

			_, err := f.svc.UpdateStatus(ctx, actor, c.ID, domain.StatusInProgress, nil)
			assert.ErrorIs(t, err, domain.ErrNotAuthorized)

			_, err = f.svc.Revert(ctx, actor, c.ID, nil)
			assert.ErrorIs(t, err, domain.ErrNotAuthorized)

			assert.Equal(t, domain.StatusReviewed, c.Status)
		})
	}

	t.Run("Manager reverts resolved", func(t *testing.T) {
		f := newFixture()
		m := manager.UserID
		at := time.Now()
		c := &domain.Complaint{ID: uuid.New(), DormID: dormID, Status: domain.StatusResolved, ManagedBy: &m,
			ReviewedAt: &at, InProgressAt: &at, ResolvedAt: &at, ResolvedBy: &m}
		f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil).Once()
		f.complaintRepo.On("UpdateLifecycle", ctx, c, domain.StatusResolved).Return(nil).Once()

		out, err := f.svc.Revert(ctx, manager, c.ID, nil)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, out.Status)
		assert.Nil(t, out.ResolvedAt)
		assert.Nil(t, out.ResolvedBy)
	})
}

func TestComplaintService_Drop(t *testing.T) {
	ctx := context.Background()
	residentID := uuid.New()
	student := domain.Actor{UserID: residentID, Role: domain.RoleStudent}

	t.Run("Owner drops open complaint", func(t *testing.T) {
		f := newFixture()
		c := &domain.Complaint{ID: uuid.New(), ResidentID: residentID, Status: domain.StatusReviewed}
		f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil).Once()
		f.complaintRepo.On("UpdateLifecycle", ctx, c, domain.StatusReviewed).Return(nil).Once()

		out, err := f.svc.Drop(ctx, student, c.ID, nil)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusDropped, out.Status)
		assert.NotNil(t, out.DroppedAt)
	})

	t.Run("Resolved complaint cannot be dropped", func(t *testing.T) {
		f := newFixture()
		c := &domain.Complaint{ID: uuid.New(), ResidentID: residentID, Status: domain.StatusResolved}
		f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil).Once()

		_, err := f.svc.Drop(ctx, student, c.ID, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Only the owner drops", func(t *testing.T) {
		f := newFixture()
		c := &domain.Complaint{ID: uuid.New(), ResidentID: uuid.New(), Status: domain.StatusSubmitted}
		f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil).Once()

		_, err := f.svc.Drop(ctx, student, c.ID, nil)
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	})
}

func TestComplaintService_GetMasksAnonymousAuthor(t *testing.T) {
	ctx := context.Background()
	dormID := uuid.New()
	residentID := uuid.New()
	managerID := uuid.New()
	manager := domain.Actor{UserID: managerID, Role: domain.RoleStaff, DormID: &dormID}

	comments := []domain.Comment{
		{ID: uuid.New(), UserID: residentID, Content: "Noise every night", User: &domain.CommentUser{ID: residentID, FullName: "Dewi Lestari", Role: "student"}},
		{ID: uuid.New(), UserID: managerID, Content: "Noted", User: &domain.CommentUser{ID: managerID, FullName: "Pak Anton", Role: "staff"}},
	}

	for _, anonymous := range []bool{true, false} {
		f := newFixture()
		c := &domain.Complaint{ID: uuid.New(), ResidentID: residentID, DormID: dormID, IsAnonymous: anonymous, Status: domain.StatusReviewed, ManagedBy: &managerID}
		f.complaintRepo.On("GetByID", ctx, c.ID).Return(c, nil).Once()
		f.commentRepo.On("ListByRequest", ctx, domain.KindComplaint, c.ID, mock.Anything).Return(comments, int64(2), nil).Once()

		out, err := f.svc.Get(ctx, manager, c.ID)
		require.NoError(t, err)

		if anonymous {
			assert.Equal(t, domain.AnonymousAuthorName, out.Comments[0].User.FullName)
			assert.Equal(t, uuid.Nil, out.ResidentID)
		} else {
			assert.Equal(t, "Dewi Lestari", out.Comments[0].User.FullName)
			assert.Equal(t, residentID, out.ResidentID)
		}
		assert.Equal(t, "Pak Anton", out.Comments[1].User.FullName)
		assert.Equal(t, residentID, comments[0].UserID)
	}
}
