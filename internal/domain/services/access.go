package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/docsmait/docsmait/internal/domain/repositories"
	"github.com/docsmait/docsmait/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

var ErrNotEntityAuthor = errors.New("only the author or an admin can modify this entity")

// requireAuthorOrAdmin guards writes on reviewable entities: the
// author and admins pass, everyone else is refused.
func requireAuthorOrAdmin(ctx context.Context, users repositories.UserRepository, authorID, userID uuid.UUID) error {
	if userID == authorID {
		return nil
	}
	isAdmin, err := hasAdminRole(ctx, users, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrNotEntityAuthor
	}
	return nil
}

// requireMember guards reads: project members and admins pass.
func requireMember(ctx context.Context, projects repositories.ProjectRepository, users repositories.UserRepository, projectID, userID uuid.UUID) error {
	isMember, err := projects.IsMember(ctx, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if isMember {
		return nil
	}
	isAdmin, err := hasAdminRole(ctx, users, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrNotProjectMember
	}
	return nil
}

func hasAdminRole(ctx context.Context, users repositories.UserRepository, userID uuid.UUID) (bool, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load user: %w", err)
	}
	return user.Role == models.UserRoleAdmin, nil
}
