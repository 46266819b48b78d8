package services

import (
	"context"
	"errors"

	"github.com/yigit/unicampus/internal/app/models"
	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/pkg/apperrors"
	"github.com/yigit/unicampus/internal/pkg/auth"
)

func isAdmin(ctx context.Context) bool {
	claims, ok := auth.ClaimsFromContext(ctx)
	return ok && claims.HasRole(models.RoleAdmin)
}

// studentOnly reports a caller whose only built-in role is STUDENT
func studentOnly(ctx context.Context) bool {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return false
	}
	return claims.HasRole(models.RoleStudent) && !claims.HasRole(models.RoleAdmin) && !claims.HasRole(models.RoleFaculty)
}

// uniqueIDs drops duplicates and keeps first-seen order
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ownRosterLine narrows a section roster to the calling student's line. Callers who are
// not student-only get the roster back unchanged; students outside the section are refused.
func ownRosterLine(ctx context.Context, students repositories.IStudentRepository, roster []models.SectionStudent) ([]models.SectionStudent, error) {
	if !studentOnly(ctx) {
		return roster, nil
	}

	notEnrolled := apperrors.NewForbiddenError("Students may only view sections they are enrolled in")
	me, err := students.GetByUserID(ctx, auth.UserIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, notEnrolled
		}
		return nil, err
	}
	for _, line := range roster {
		if line.StudentID == me.ID {
			return []models.SectionStudent{line}, nil
		}
	}
	return nil, notEnrolled
}
