package auth

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Tokens is the ledger of issued access tokens. Rows are soft-revoked by
// flipping the revoked/expired flags; nothing here deletes.
type Tokens interface {
	FindByToken(ctx context.Context, token string) (*Token, error)
	FindByTokenTx(ctx context.Context, tx bun.IDB, token string) (*Token, error)

	AllValid(ctx context.Context, userID uuid.UUID) ([]*Token, error)
	AllValidTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*Token, error)

	Record(ctx context.Context, token *Token) (*Token, error)
	RecordTx(ctx context.Context, tx bun.IDB, token *Token) (*Token, error)

	Revoke(ctx context.Context, tokens []*Token) error
	RevokeTx(ctx context.Context, tx bun.IDB, tokens []*Token) error

	Supersede(ctx context.Context, userID uuid.UUID, token *Token) (*Token, error)
}

type tokens struct {
	db *bun.DB
}

var _ Tokens = (*tokens)(nil)

func NewTokensRepository(db *bun.DB) Tokens {
	return &tokens{db: db}
}

func (a *tokens) FindByToken(ctx context.Context, token string) (*Token, error) {
	return a.FindByTokenTx(ctx, a.db, token)
}

func (a *tokens) FindByTokenTx(ctx context.Context, tx bun.IDB, token string) (*Token, error) {
	record := &Token{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

// AllValid returns every token owned by the user whose revoked and expired
// flags are both unset. Callers must not assume any ordering.
func (a *tokens) AllValid(ctx context.Context, userID uuid.UUID) ([]*Token, error) {
	return a.AllValidTx(ctx, a.db, userID)
}

func (a *tokens) AllValidTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*Token, error) {
	var records []*Token

	err := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Where("?TableAlias.revoked = ?", false).
		Where("?TableAlias.expired = ?", false).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

// Record inserts a new ledger row. A collision on the token string is an
// integrity violation and surfaces as ErrDuplicateToken.
func (a *tokens) Record(ctx context.Context, token *Token) (*Token, error) {
	return a.RecordTx(ctx, a.db, token)
}

func (a *tokens) RecordTx(ctx context.Context, tx bun.IDB, token *Token) (*Token, error) {
	prepareTokenDefaults(token)

	res, err := tx.NewInsert().
		Model(token).
		On("CONFLICT (token) DO NOTHING").
		Exec(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to record token")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrDuplicateToken
	}

	return token, nil
}

// Revoke sets both flags on every given token in a single statement.
func (a *tokens) Revoke(ctx context.Context, tokens []*Token) error {
	return a.RevokeTx(ctx, a.db, tokens)
}

func (a *tokens) RevokeTx(ctx context.Context, tx bun.IDB, records []*Token) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, t := range records {
		ids = append(ids, t.ID)
	}

	_, err := tx.NewUpdate().
		Model((*Token)(nil)).
		Set("revoked = ?", true).
		Set("expired = ?", true).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)

	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to revoke tokens")
	}

	for _, t := range records {
		t.Revoked = true
		t.Expired = true
	}

	return nil
}

// Supersede is the unit of atomicity behind the single-active-session
// invariant: it revokes every valid token the user owns and records the
// replacement inside one transaction. Revocation runs first so an
// interrupted call leaves zero valid tokens, never two.
func (a *tokens) Supersede(ctx context.Context, userID uuid.UUID, token *Token) (*Token, error) {
	var recorded *Token

	err := a.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		valid, err := a.AllValidTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		if err := a.RevokeTx(ctx, tx, valid); err != nil {
			return err
		}

		recorded, err = a.RecordTx(ctx, tx, token)
		return err
	})

	if err != nil {
		return nil, err
	}

	return recorded, nil
}

func prepareTokenDefaults(record *Token) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.Type == "" {
		record.Type = TokenTypeBearer
	}
}
