package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/infrastructure/models"
	"campus-market.backend/pkg/utils"
)

// SmartContractRepository implements bilateral agreement data operations.
// Terms and signatures are serialized JSON on the model.
type SmartContractRepository struct {
	db *gorm.DB
}

// NewSmartContractRepository creates a new smart contract repository
func NewSmartContractRepository(db *gorm.DB) *SmartContractRepository {
	return &SmartContractRepository{db: db}
}

func (r *SmartContractRepository) toEntity(m *models.SmartContract) (*entities.SmartContract, error) {
	c := &entities.SmartContract{
		ID:            m.ID,
		BuyerID:       m.BuyerID,
		SellerID:      m.SellerID,
		ListingID:     m.ListingID,
		TransactionID: m.TransactionID,
		BuyerSigned:   m.BuyerSigned,
		SellerSigned:  m.SellerSigned,
		Status:        entities.ContractStatus(m.Status),
		ReleasedAt:    m.ReleasedAt,
		ReleasedBy:    m.ReleasedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(m.Terms), &c.Terms); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(m.Signatures), &c.Signatures); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *SmartContractRepository) toModel(c *entities.SmartContract) (*models.SmartContract, error) {
	terms, err := json.Marshal(c.Terms)
	if err != nil {
		return nil, err
	}
	sigs := c.Signatures
	if sigs == nil {
		sigs = []entities.ContractSignature{}
	}
	rawSigs, err := json.Marshal(sigs)
	if err != nil {
		return nil, err
	}
	return &models.SmartContract{
		ID:            c.ID,
		BuyerID:       c.BuyerID,
		SellerID:      c.SellerID,
		ListingID:     c.ListingID,
		TransactionID: c.TransactionID,
		Terms:         string(terms),
		BuyerSigned:   c.BuyerSigned,
		SellerSigned:  c.SellerSigned,
		Signatures:    string(rawSigs),
		Status:        string(c.Status),
		ReleasedAt:    c.ReleasedAt,
		ReleasedBy:    c.ReleasedBy,
	}, nil
}

// Create inserts an agreement in CREATED state
func (r *SmartContractRepository) Create(ctx context.Context, contract *entities.SmartContract) error {
	db := GetDB(ctx, r.db)
	if contract.ID == uuid.Nil {
		contract.ID = utils.GenerateUUIDv7()
	}
	if contract.Status == "" {
		contract.Status = entities.ContractStatusCreated
	}
	m, err := r.toModel(contract)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	contract.CreatedAt = m.CreatedAt
	contract.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets an agreement by ID
func (r *SmartContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.SmartContract, error) {
	db := GetDB(ctx, r.db)
	var m models.SmartContract
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

// Save persists signature and status mutations
func (r *SmartContractRepository) Save(ctx context.Context, contract *entities.SmartContract) error {
	db := GetDB(ctx, r.db)
	m, err := r.toModel(contract)
	if err != nil {
		return err
	}
	res := db.WithContext(ctx).Model(&models.SmartContract{}).
		Where("id = ?", contract.ID).
		Updates(map[string]interface{}{
			"buyer_signed":  m.BuyerSigned,
			"seller_signed": m.SellerSigned,
			"signatures":    m.Signatures,
			"status":        m.Status,
			"released_at":   m.ReleasedAt,
			"released_by":   m.ReleasedBy,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ContractAuditRepositoryImpl implements the append-only contract audit
// trail
type ContractAuditRepositoryImpl struct {
	db *gorm.DB
}

// NewContractAuditRepository creates a new contract audit repository
func NewContractAuditRepository(db *gorm.DB) *ContractAuditRepositoryImpl {
	return &ContractAuditRepositoryImpl{db: db}
}

// Append writes an audit record. There is no update path.
func (r *ContractAuditRepositoryImpl) Append(ctx context.Context, audit *entities.ContractAudit) error {
	db := GetDB(ctx, r.db)
	if audit.ID == uuid.Nil {
		audit.ID = utils.GenerateUUIDv7()
	}
	payload, err := json.Marshal(audit.Payload)
	if err != nil {
		return err
	}
	m := &models.ContractAudit{
		ID:         audit.ID,
		ContractID: audit.ContractID,
		Action:     audit.Action,
		ActorID:    audit.ActorID,
		Payload:    string(payload),
		Hash:       audit.Hash,
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	audit.CreatedAt = m.CreatedAt
	return nil
}

// ListByContract returns the audit trail for a contract, oldest first
func (r *ContractAuditRepositoryImpl) ListByContract(ctx context.Context, contractID uuid.UUID) ([]entities.ContractAudit, error) {
	db := GetDB(ctx, r.db)
	var ms []models.ContractAudit
	if err := db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]entities.ContractAudit, 0, len(ms))
	for i := range ms {
		a := entities.ContractAudit{
			ID:         ms[i].ID,
			ContractID: ms[i].ContractID,
			Action:     ms[i].Action,
			ActorID:    ms[i].ActorID,
			Hash:       ms[i].Hash,
			CreatedAt:  ms[i].CreatedAt,
		}
		if err := json.Unmarshal([]byte(ms[i].Payload), &a.Payload); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
