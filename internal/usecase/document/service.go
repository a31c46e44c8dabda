package document

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"path"
	"strings"
	"time"

	domainDocument "dojo-admin/internal/domain/document"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/logger"
	"dojo-admin/internal/usecase/notification"
	appErrors "dojo-admin/pkg/errors"
	"dojo-admin/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrStorageUnavailable is returned for uploads when no object store is wired.
var ErrStorageUnavailable = errors.New("document storage is not configured")

//go:generate mockgen -destination=../../mocks/mock_object_store.go -package=mocks dojo-admin/internal/usecase/document ObjectStore

// ObjectStore keeps uploaded files and hands back a retrievable URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

type Service struct {
	documentRepo domainDocument.Repository
	userRepo     domainUser.Repository
	store        ObjectStore
	notifier     notification.Notifier
	prefix       string
	now          func() time.Time
}

// NewService builds the RENADE workflow. store may be nil, in which case
// uploads fail with ErrStorageUnavailable and reviews keep working.
func NewService(
	documentRepo domainDocument.Repository,
	userRepo domainUser.Repository,
	store ObjectStore,
	notifier notification.Notifier,
	prefix string,
) *Service {
	return &Service{
		documentRepo: documentRepo,
		userRepo:     userRepo,
		store:        store,
		notifier:     notifier,
		prefix:       strings.Trim(prefix, "/"),
		now:          time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Upload stores the photo and CURP scan side by side and opens a pending
// request for the member.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, photo, curp *File) (*DocumentResponse, error) {
	if photo == nil || curp == nil {
		return nil, appErrors.Validation("Both files are required", domainDocument.ErrMissingFile)
	}
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	var photoURL, curpURL string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		photoURL, err = s.put(gctx, userID, "foto", photo)
		return err
	})
	g.Go(func() error {
		var err error
		curpURL, err = s.put(gctx, userID, "curp", curp)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to upload documents",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to upload documents: %w", err)
	}

	request := &domainDocument.Request{
		UserID:     userID,
		PhotoURL:   photoURL,
		CURPURL:    curpURL,
		Status:     domainDocument.StatusPending,
		UploadedAt: s.now().UTC(),
	}
	if err := s.documentRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	logger.Info("Documents submitted",
		zap.String("request_id", request.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("event", "documents_submitted"),
	)

	return ToDocumentResponse(request), nil
}

func (s *Service) put(ctx context.Context, userID uuid.UUID, kind string, file *File) (string, error) {
	key := s.objectKey(userID, kind, file.Name)
	return s.store.Put(ctx, key, file.Body, file.Size, file.ContentType)
}

// objectKey lays files out as prefix/user/kind_unixmillis_name.
func (s *Service) objectKey(userID uuid.UUID, kind, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' {
			return '_'
		}
		return r
	}, name)
	if name == "." || name == "" {
		name = kind
	}

	object := fmt.Sprintf("%s/%s_%d_%s", userID, kind, s.now().UnixMilli(), name)
	if s.prefix == "" {
		return object
	}
	return s.prefix + "/" + object
}

// Mine returns the member's latest request, or a Sin enviar status when
// nothing was ever uploaded.
func (s *Service) Mine(ctx context.Context, userID uuid.UUID) (*DocumentResponse, error) {
	request, err := s.documentRepo.LatestForUser(ctx, userID)
	if errors.Is(err, domainDocument.ErrRequestNotFound) {
		return notSubmittedResponse(), nil
	}
	if err != nil {
		return nil, err
	}
	return ToDocumentResponse(request), nil
}

func (s *Service) ListPending(ctx context.Context) ([]*PendingDocumentResponse, error) {
	listings, err := s.documentRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*PendingDocumentResponse, 0, len(listings))
	for _, listing := range listings {
		responses = append(responses, ToPendingDocumentResponse(listing))
	}
	return responses, nil
}

// Review validates or rejects a pending request and tells the member.
func (s *Service) Review(ctx context.Context, reviewerID, requestID uuid.UUID, req *ReviewRequest) (*DocumentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	status := domainDocument.Status(req.Status)
	if !status.IsReviewOutcome() {
		return nil, appErrors.Validation("Invalid decision", domainDocument.ErrInvalidDecision)
	}

	var reason *string
	if req.Reason != nil && strings.TrimSpace(*req.Reason) != "" {
		reason = utils.SanitizeOptional(req.Reason)
	}
	if status == domainDocument.StatusRejected && reason == nil {
		return nil, appErrors.Validation("Rejection reason is required", domainDocument.ErrReasonRequired)
	}
	if status == domainDocument.StatusValidated {
		reason = nil
	}

	reviewed, err := s.documentRepo.ApplyReview(ctx, requestID, domainDocument.Review{
		Status:     status,
		Reason:     reason,
		ReviewerID: reviewerID,
		ReviewedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Document request reviewed",
		zap.String("request_id", reviewed.ID.String()),
		zap.String("user_id", reviewed.UserID.String()),
		zap.String("status", string(reviewed.Status)),
		zap.String("reviewed_by", reviewerID.String()),
		zap.String("event", "documents_reviewed"),
	)

	s.notifyReview(reviewed)

	return ToDocumentResponse(reviewed), nil
}

func (s *Service) notifyReview(reviewed *domainDocument.Request) {
	ownerID := reviewed.UserID
	validated := reviewed.Status == domainDocument.StatusValidated
	var reason string
	if reviewed.RejectionReason != nil {
		reason = html.UnescapeString(*reviewed.RejectionReason)
	}

	event := "documents_rejected"
	if validated {
		event = "documents_validated"
	}

	s.notifier.Go(notification.Request{
		Event:    event,
		Channels: notification.ChannelAll,
		Resolve: func(ctx context.Context) ([]notification.Recipient, error) {
			owner, err := s.userRepo.GetByID(ctx, ownerID)
			if err != nil {
				return nil, fmt.Errorf("document owner %s: %w", ownerID, err)
			}
			return []notification.Recipient{notification.RecipientFromUser(owner)}, nil
		},
		Render: func(r notification.Recipient) notification.Message {
			if validated {
				return notification.DocumentValidatedMessage(r)
			}
			return notification.DocumentRejectedMessage(r, reason)
		},
	})
}
