package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bonchicares/agent-wallet/internal/logger"
	"github.com/bonchicares/agent-wallet/internal/models"
)

// ErrMemberAlreadyExists is returned when the phone is already registered.
var ErrMemberAlreadyExists = errors.New("member already registered")

// MemberWriter defines write operations for members.
type MemberWriter interface {
	Save(ctx context.Context, fullName, phone, cardNumber string, registeredBy uuid.UUID) (*models.MemberDB, error)
}

// MemberReader defines read operations for members.
type MemberReader interface {
	GetByPhone(ctx context.Context, phone string) (*models.MemberDB, error)
}

// FeeDebiter is the ledger operation the registration workflow consumes.
type FeeDebiter interface {
	Debit(ctx context.Context, agentID uuid.UUID, amount decimal.Decimal, description, referenceType string, referenceID *string, actorID *uuid.UUID) (*models.WalletDB, error)
}

// MemberService runs the member registration workflow: create the member,
// issue a card number and debit the registration fee from the selling
// agent's wallet. The whole workflow runs inside the request transaction,
// so an insufficient-funds debit rolls the member creation back with it.
type MemberService struct {
	writer MemberWriter
	reader MemberReader
	ledger FeeDebiter
	fee    decimal.Decimal
}

// NewMemberService creates a new MemberService with the configured
// per-member registration fee.
func NewMemberService(writer MemberWriter, reader MemberReader, ledger FeeDebiter, fee decimal.Decimal) *MemberService {
	return &MemberService{
		writer: writer,
		reader: reader,
		ledger: ledger,
		fee:    fee,
	}
}

// Register creates a member and debits the registration fee. Returns the
// member and the agent's wallet after the debit.
func (s *MemberService) Register(ctx context.Context, fullName, phone string, agentID uuid.UUID, actorID *uuid.UUID) (*models.MemberDB, *models.WalletDB, error) {
	existing, err := s.reader.GetByPhone(ctx, phone)
	if err != nil {
		logger.Log.Errorw("failed to check member exists", "phone", phone, "error", err)
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrMemberAlreadyExists
	}

	member, err := s.writer.Save(ctx, fullName, phone, newCardNumber(), agentID)
	if err != nil {
		logger.Log.Errorw("failed to save member", "phone", phone, "error", err)
		return nil, nil, err
	}

	referenceID := member.MemberID.String()
	wallet, err := s.ledger.Debit(ctx, agentID, s.fee,
		fmt.Sprintf("User Registration: %s", phone),
		models.ReferenceUserRegistration, &referenceID, actorID)
	if err != nil {
		// The caller's transaction rolls the member insert back.
		return nil, nil, err
	}

	return member, wallet, nil
}

// newCardNumber issues a card number for a new member.
func newCardNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BC" + strings.ToUpper(raw[:12])
}
