package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Roles resolves role records and the authority set derived from them.
type Roles interface {
	GetByName(ctx context.Context, name RoleName) (*Role, error)
	AuthoritiesForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type roles struct {
	db *bun.DB
}

var _ Roles = (*roles)(nil)

func NewRolesRepository(db *bun.DB) Roles {
	return &roles{db: db}
}

func (a *roles) GetByName(ctx context.Context, name RoleName) (*Role, error) {
	record := &Role{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	return record, nil
}

// AuthoritiesForUser returns the user's permission names followed by the
// prefixed role name, e.g. ["users:read", "ROLE_admin"]. Authorities are
// always re-derived from storage, never read back out of a token.
func (a *roles) AuthoritiesForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	record := &Role{}

	err := a.db.NewSelect().
		Model(record).
		Relation("Permissions").
		Join("JOIN users AS usr ON usr.role_id = rol.id").
		Where("usr.id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	authorities := make([]string, 0, len(record.Permissions)+1)
	for _, p := range record.Permissions {
		authorities = append(authorities, p.Name)
	}
	authorities = append(authorities, RolePrefix+record.Name)

	return authorities, nil
}
