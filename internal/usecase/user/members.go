package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainEvent "dojo-admin/internal/domain/event"
	domainPayment "dojo-admin/internal/domain/payment"
	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/internal/logger"
	paymentUsecase "dojo-admin/internal/usecase/payment"
	trackingUsecase "dojo-admin/internal/usecase/tracking"
	appErrors "dojo-admin/pkg/errors"
	"dojo-admin/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CreateUser adds a member on behalf of staff. Only admins may create admins.
func (s *Service) CreateUser(ctx context.Context, actor domainUser.Identity, req *CreateUserRequest) (*UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	role := domainUser.RoleTeacher
	if req.Role != "" {
		role = domainUser.Role(req.Role)
	}
	if role == domainUser.RoleAdmin && actor.Role != domainUser.RoleAdmin {
		return nil, appErrors.Forbidden("Only administrators can create administrators")
	}

	password := req.Password
	if password == "" {
		password = s.config.App.DefaultMemberPassword
	} else if err := utils.ValidatePassword(password); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeWeakPassword, err.Error(), nil)
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	surname := utils.SanitizeString(req.PaternalSurname)
	if surname == "" {
		surname = placeholderSurname
	}

	user := &domainUser.User{
		Name:            utils.SanitizeString(req.Name),
		PaternalSurname: surname,
		MaternalSurname: utils.SanitizeOptional(req.MaternalSurname),
		Email:           utils.SanitizeEmail(req.Email),
		PasswordHash:    hashedPassword,
		Role:            role,
		Grade:           utils.SanitizeOptional(req.Grade),
		Phone:           sanitizePhone(req.Phone),
		CURP:            sanitizeCURP(req.CURP),
		BirthDate:       birthDate,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Member created",
		zap.String("user_id", user.ID.String()),
		zap.String("created_by", actor.UserID.String()),
		zap.String("role", string(user.Role)),
		zap.String("event", "member_created"),
	)

	return ToUserResponse(user, s.now()), nil
}

// ListUsers returns members newest first, optionally only those with role.
func (s *Service) ListUsers(ctx context.Context, role string) ([]*UserResponse, error) {
	var filter domainUser.Filter
	if role != "" {
		r := domainUser.Role(role)
		if !r.IsValid() {
			return nil, appErrors.Validation("Invalid role filter", domainUser.ErrInvalidUserRole)
		}
		filter.Role = &r
	}

	users, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, ToUserResponse(user, now))
	}

	return responses, nil
}

// UpdateUser edits profile fields. Students may only edit themselves; the
// role is never changed here.
func (s *Service) UpdateUser(ctx context.Context, actor domainUser.Identity, userID uuid.UUID, req *UpdateUserRequest) (*UserResponse, error) {
	if !actor.CanAccess(userID) {
		return nil, appErrors.Forbidden("You can only edit your own profile")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = utils.SanitizeString(*req.Name)
	}
	if req.PaternalSurname != nil {
		user.PaternalSurname = utils.SanitizeString(*req.PaternalSurname)
	}
	if req.MaternalSurname != nil {
		user.MaternalSurname = utils.SanitizeOptional(req.MaternalSurname)
	}
	if req.Email != nil {
		user.Email = utils.SanitizeEmail(*req.Email)
	}
	if req.Phone != nil {
		user.Phone = sanitizePhone(req.Phone)
	}
	if req.CURP != nil {
		user.CURP = sanitizeCURP(req.CURP)
	}
	if req.BirthDate != nil {
		birthDate, err := parseDate(req.BirthDate)
		if err != nil {
			return nil, err
		}
		user.BirthDate = birthDate
	}
	if req.BloodType != nil {
		bloodType := strings.ToUpper(strings.TrimSpace(*req.BloodType))
		user.BloodType = &bloodType
	}
	if req.Allergies != nil {
		user.Allergies = utils.SanitizeOptional(req.Allergies)
	}
	if req.Grade != nil {
		user.Grade = utils.SanitizeOptional(req.Grade)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Member updated",
		zap.String("user_id", user.ID.String()),
		zap.String("updated_by", actor.UserID.String()),
		zap.String("event", "member_updated"),
	)

	return ToUserResponse(user, s.now()), nil
}

func (s *Service) UpdateRole(ctx context.Context, actor domainUser.Identity, userID uuid.UUID, req *UpdateRoleRequest) (*UserResponse, error) {
	if actor.Role != domainUser.RoleAdmin {
		return nil, appErrors.Forbidden("Only administrators can change roles")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("Invalid input", err)
	}

	role := domainUser.Role(req.Role)
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}

	logger.Info("Member role changed",
		zap.String("user_id", userID.String()),
		zap.String("role", string(role)),
		zap.String("changed_by", actor.UserID.String()),
		zap.String("event", "member_role_changed"),
	)

	return s.GetProfile(ctx, userID)
}

func (s *Service) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	logger.Info("User deleted successfully",
		zap.String("user_id", userID.String()),
		zap.String("event", "user_deleted"),
	)

	return nil
}

// MemberProfile returns a member with payment and event history. Students
// may only read their own.
func (s *Service) MemberProfile(ctx context.Context, actor domainUser.Identity, userID uuid.UUID) (*ProfileResponse, error) {
	if !actor.CanAccess(userID) {
		return nil, appErrors.Forbidden("Access denied: you cannot view another student's profile")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		payments []*domainPayment.Listing
		events   []*domainEvent.SportEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payments, err = s.paymentRepo.List(gctx, domainPayment.Filter{UserID: &userID})
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.eventRepo.ListByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profile := &ProfileResponse{
		UserResponse: ToUserResponse(user, s.now()),
		Payments:     make([]*paymentUsecase.PaymentResponse, 0, len(payments)),
		Exams:        []*trackingUsecase.EventResponse{},
		Tournaments:  []*trackingUsecase.EventResponse{},
		Seminars:     []*trackingUsecase.EventResponse{},
	}

	for _, p := range payments {
		profile.Payments = append(profile.Payments, paymentUsecase.ToPaymentResponse(&p.Payment))
	}

	for _, e := range events {
		response := trackingUsecase.ToEventResponse(e)
		switch e.Type {
		case domainEvent.TypeExam:
			profile.Exams = append(profile.Exams, response)
		case domainEvent.TypeTournament:
			profile.Tournaments = append(profile.Tournaments, response)
		case domainEvent.TypeSeminar:
			profile.Seminars = append(profile.Seminars, response)
		}
	}

	return profile, nil
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(*value))
	if err != nil {
		return nil, appErrors.Validation("Invalid date, expected YYYY-MM-DD", err)
	}
	return &parsed, nil
}

func sanitizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	sanitized := utils.SanitizePhone(*phone)
	return &sanitized
}

func sanitizeCURP(curp *string) *string {
	if curp == nil {
		return nil
	}
	sanitized := utils.SanitizeCURP(*curp)
	if sanitized == "" {
		return nil
	}
	return &sanitized
}
