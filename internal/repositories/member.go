package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/models"
)

const memberColumns = `member_id, full_name, phone, card_number, registered_by, created_at`

// MemberWriteRepository persists card holders. Inserts join the request
// transaction so a failed fee debit rolls the member back too.
type MemberWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewMemberWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *MemberWriteRepository {
	return &MemberWriteRepository{db: db, txGetter: txGetter}
}

func (r *MemberWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a new member.
func (r *MemberWriteRepository) Save(ctx context.Context, fullName, phone, cardNumber string, registeredBy uuid.UUID) (*models.MemberDB, error) {
	query := `
		INSERT INTO members (full_name, phone, card_number, registered_by, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING ` + memberColumns

	var member models.MemberDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &member, query,
		fullName, phone, cardNumber, registeredBy)

	logger.Log.Infow("member save",
		"query", strings.Join(strings.Fields(query), " "),
		"phone", phone,
		"registered_by", registeredBy,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &member, nil
}

// MemberReadRepository handles member reads.
type MemberReadRepository struct {
	db *sqlx.DB
}

func NewMemberReadRepository(db *sqlx.DB) *MemberReadRepository {
	return &MemberReadRepository{db: db}
}

// GetByPhone returns the member with the given phone, or nil when absent.
func (r *MemberReadRepository) GetByPhone(ctx context.Context, phone string) (*models.MemberDB, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE phone = $1`

	var member models.MemberDB
	err := r.db.GetContext(ctx, &member, query, phone)

	logger.Log.Infow("member get",
		"query", strings.Join(strings.Fields(query), " "),
		"phone", phone,
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}
