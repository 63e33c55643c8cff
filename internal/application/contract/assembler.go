package contract

import (
	"context"
	"sort"

	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/party"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// auditEntriesPerContract bounds the audit trail attached to each aggregate
const auditEntriesPerContract = 20

// Assembler loads company portfolios as fully assembled contract aggregates:
// every contract row joined with its versions, approval steps, allocations,
// renewal request and audit trail, plus resolved party references. Child
// collections are loaded concurrently, one batched query per family, and the
// output ordering is deterministic for identical stored state.
type Assembler struct {
	contractRepo     contract.ContractRepository
	versionRepo      contract.VersionRepository
	stepRepo         contract.ApprovalStepRepository
	allocationRepo   contract.AllocationRepository
	renewalRepo      contract.RenewalRequestRepository
	auditRepo        contract.AuditRepository
	userRepo         party.UserRepository
	counterpartyRepo party.CounterpartyRepository
	propertyRepo     party.PropertyRepository
	logger           *zap.Logger
}

// NewAssembler creates a portfolio assembler
func NewAssembler(
	contractRepo contract.ContractRepository,
	versionRepo contract.VersionRepository,
	stepRepo contract.ApprovalStepRepository,
	allocationRepo contract.AllocationRepository,
	renewalRepo contract.RenewalRequestRepository,
	auditRepo contract.AuditRepository,
	userRepo party.UserRepository,
	counterpartyRepo party.CounterpartyRepository,
	propertyRepo party.PropertyRepository,
	logger *zap.Logger,
) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		contractRepo:     contractRepo,
		versionRepo:      versionRepo,
		stepRepo:         stepRepo,
		allocationRepo:   allocationRepo,
		renewalRepo:      renewalRepo,
		auditRepo:        auditRepo,
		userRepo:         userRepo,
		counterpartyRepo: counterpartyRepo,
		propertyRepo:     propertyRepo,
		logger:           logger,
	}
}

// Load assembles every contract of a company matching the filter
func (a *Assembler) Load(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]contract.Contract, error) {
	contracts, err := a.contractRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		return []contract.Contract{}, nil
	}
	if err := a.assemble(ctx, companyID, contracts); err != nil {
		return nil, err
	}
	sortContracts(contracts)
	return contracts, nil
}

// LoadOne assembles a single contract aggregate
func (a *Assembler) LoadOne(ctx context.Context, companyID, contractID uuid.UUID) (*contract.Contract, error) {
	c, err := a.contractRepo.FindByIDForCompany(ctx, companyID, contractID)
	if err != nil {
		return nil, err
	}
	contracts := []contract.Contract{*c}
	if err := a.assemble(ctx, companyID, contracts); err != nil {
		return nil, err
	}
	return &contracts[0], nil
}

// assemble joins child rows and party references onto the given contracts.
// The child families are independent, so each one loads in its own goroutine;
// the first failure cancels the rest.
func (a *Assembler) assemble(ctx context.Context, companyID uuid.UUID, contracts []contract.Contract) error {
	ids := make([]uuid.UUID, len(contracts))
	for i := range contracts {
		ids[i] = contracts[i].ID
	}

	var (
		versions     []contract.ContractVersion
		comments     []contract.VersionComment
		steps        []contract.ApprovalStep
		allocations  []contract.PropertyAllocation
		renewals     []contract.RenewalRequest
		feedback     []contract.RenewalFeedback
		audits       []contract.AuditEntry
		users        []party.User
		counterparts []party.Counterparty
		properties   []party.Property
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		versions, err = a.versionRepo.FindByContracts(gctx, ids)
		if err != nil {
			return err
		}
		versionIDs := make([]uuid.UUID, len(versions))
		for i := range versions {
			versionIDs[i] = versions[i].ID
		}
		comments, err = a.versionRepo.FindCommentsByVersions(gctx, versionIDs)
		return err
	})
	g.Go(func() error {
		var err error
		steps, err = a.stepRepo.FindByContracts(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		allocations, err = a.allocationRepo.FindByContracts(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		renewals, err = a.renewalRepo.FindRecentByContracts(gctx, ids)
		if err != nil {
			return err
		}
		requestIDs := make([]uuid.UUID, len(renewals))
		for i := range renewals {
			requestIDs[i] = renewals[i].ID
		}
		feedback, err = a.renewalRepo.FindFeedbackByRequests(gctx, requestIDs)
		return err
	})
	g.Go(func() error {
		var err error
		audits, err = a.auditRepo.FindByContracts(gctx, ids, auditEntriesPerContract)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = a.userRepo.FindAllForCompany(gctx, companyID)
		return err
	})
	g.Go(func() error {
		var err error
		counterparts, err = a.counterpartyRepo.FindAllForCompany(gctx, companyID)
		return err
	})
	g.Go(func() error {
		var err error
		properties, err = a.propertyRepo.FindAllForCompany(gctx, companyID)
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	commentsByVersion := make(map[uuid.UUID][]contract.VersionComment)
	for i := range comments {
		commentsByVersion[comments[i].VersionID] = append(commentsByVersion[comments[i].VersionID], comments[i])
	}
	versionsByContract := make(map[uuid.UUID][]contract.ContractVersion)
	for i := range versions {
		v := versions[i]
		v.Comments = commentsByVersion[v.ID]
		sort.Slice(v.Comments, func(a, b int) bool {
			return v.Comments[a].CreatedAt.Before(v.Comments[b].CreatedAt)
		})
		versionsByContract[v.ContractID] = append(versionsByContract[v.ContractID], v)
	}
	stepsByContract := make(map[uuid.UUID][]contract.ApprovalStep)
	for i := range steps {
		stepsByContract[steps[i].ContractID] = append(stepsByContract[steps[i].ContractID], steps[i])
	}
	allocationsByContract := make(map[uuid.UUID][]contract.PropertyAllocation)
	for i := range allocations {
		allocationsByContract[allocations[i].ContractID] = append(allocationsByContract[allocations[i].ContractID], allocations[i])
	}
	feedbackByRequest := make(map[uuid.UUID][]contract.RenewalFeedback)
	for i := range feedback {
		feedbackByRequest[feedback[i].RenewalRequestID] = append(feedbackByRequest[feedback[i].RenewalRequestID], feedback[i])
	}
	renewalByContract := pickRenewals(renewals)
	auditsByContract := make(map[uuid.UUID][]contract.AuditEntry)
	for i := range audits {
		auditsByContract[audits[i].ContractID] = append(auditsByContract[audits[i].ContractID], audits[i])
	}

	usersByID := make(map[uuid.UUID]*party.User, len(users))
	for i := range users {
		usersByID[users[i].ID] = &users[i]
	}
	counterpartiesByID := make(map[uuid.UUID]*party.Counterparty, len(counterparts))
	for i := range counterparts {
		counterpartiesByID[counterparts[i].ID] = &counterparts[i]
	}
	propertiesByID := make(map[uuid.UUID]*party.Property, len(properties))
	for i := range properties {
		propertiesByID[properties[i].ID] = &properties[i]
	}

	for i := range contracts {
		c := &contracts[i]

		c.Versions = versionsByContract[c.ID]
		sort.Slice(c.Versions, func(a, b int) bool {
			return c.Versions[a].VersionNumber < c.Versions[b].VersionNumber
		})

		c.ApprovalSteps = stepsByContract[c.ID]
		sort.Slice(c.ApprovalSteps, func(a, b int) bool {
			if !c.ApprovalSteps[a].CreatedAt.Equal(c.ApprovalSteps[b].CreatedAt) {
				return c.ApprovalSteps[a].CreatedAt.Before(c.ApprovalSteps[b].CreatedAt)
			}
			return c.ApprovalSteps[a].ID.String() < c.ApprovalSteps[b].ID.String()
		})

		c.Allocations = allocationsByContract[c.ID]
		sort.Slice(c.Allocations, func(a, b int) bool {
			return c.Allocations[a].ID.String() < c.Allocations[b].ID.String()
		})

		if r, ok := renewalByContract[c.ID]; ok {
			r.Feedback = feedbackByRequest[r.ID]
			sort.Slice(r.Feedback, func(a, b int) bool {
				return r.Feedback[a].CreatedAt.Before(r.Feedback[b].CreatedAt)
			})
			c.RenewalRequest = r
		}

		c.AuditEntries = auditsByContract[c.ID]
		sort.Slice(c.AuditEntries, func(a, b int) bool {
			if !c.AuditEntries[a].CreatedAt.Equal(c.AuditEntries[b].CreatedAt) {
				return c.AuditEntries[a].CreatedAt.After(c.AuditEntries[b].CreatedAt)
			}
			return c.AuditEntries[a].ID.String() < c.AuditEntries[b].ID.String()
		})

		c.Owner = usersByID[c.OwnerID]
		if c.Owner == nil {
			a.logger.Warn("contract owner not found",
				zap.String("contract_id", c.ID.String()),
				zap.String("owner_id", c.OwnerID.String()))
		}
		c.Counterparty = counterpartiesByID[c.CounterpartyID]
		if c.Counterparty == nil {
			a.logger.Warn("contract counterparty not found",
				zap.String("contract_id", c.ID.String()),
				zap.String("counterparty_id", c.CounterpartyID.String()))
		}
		if c.PropertyID != nil {
			c.Property = propertiesByID[*c.PropertyID]
			if c.Property == nil {
				a.logger.Warn("contract property not found",
					zap.String("contract_id", c.ID.String()),
					zap.String("property_id", c.PropertyID.String()))
			}
		}
	}

	return nil
}

// pickRenewals selects at most one renewal request per contract: the most
// recent open one, or none when every request is already resolved
func pickRenewals(renewals []contract.RenewalRequest) map[uuid.UUID]*contract.RenewalRequest {
	picked := make(map[uuid.UUID]*contract.RenewalRequest)
	for i := range renewals {
		r := &renewals[i]
		if !r.IsOpen() {
			continue
		}
		current, ok := picked[r.ContractID]
		if !ok {
			picked[r.ContractID] = r
			continue
		}
		if r.CreatedAt.After(current.CreatedAt) ||
			(r.CreatedAt.Equal(current.CreatedAt) && r.ID.String() > current.ID.String()) {
			picked[r.ContractID] = r
		}
	}
	return picked
}

// sortContracts orders the portfolio newest first with the ID as tiebreaker
func sortContracts(contracts []contract.Contract) {
	sort.Slice(contracts, func(a, b int) bool {
		if !contracts[a].CreatedAt.Equal(contracts[b].CreatedAt) {
			return contracts[a].CreatedAt.After(contracts[b].CreatedAt)
		}
		return contracts[a].ID.String() < contracts[b].ID.String()
	})
}
