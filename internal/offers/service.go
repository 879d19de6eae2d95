package offers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/clone"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/pagination"
)

var hundred = decimal.NewFromInt(100)

type offersRepository interface {
	Create() *models.Offer
	FindByID(ctx context.Context, id int64) (*models.Offer, error)
	Save(ctx context.Context, offer *models.Offer) (*models.Offer, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, opts listQuery) ([]models.Offer, error)
	FindAutomaticallyAdded(ctx context.Context, now time.Time) ([]models.Offer, error)
}

// CodeCache drops cached offer code lookups. Cached codes embed their offer,
// so any offer write must invalidate them.
type CodeCache interface {
	InvalidateOfferCodes(ctx context.Context, codes []models.OfferCode)
}

// Service exposes offer administration and cloning.
type Service interface {
	Create(ctx context.Context, input OfferInput) (*models.Offer, error)
	Get(ctx context.Context, id int64) (*models.Offer, error)
	Update(ctx context.Context, id int64, input OfferInput) (*models.Offer, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params ListParams) (*pagination.Page[models.Offer], error)
	ListAutomatic(ctx context.Context) ([]models.Offer, error)
	CloneOffer(ctx context.Context, id int64, tenantID string) (*models.Offer, error)
}

type service struct {
	repo  offersRepository
	codes CodeCache
	logg  *logger.Logger
	now   func() time.Time
}

// NewService builds the offer service backed by repo. codes may be nil when
// offer codes are not cached.
func NewService(repo offersRepository, codes CodeCache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("offer repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, codes: codes, logg: logg, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input OfferInput) (*models.Offer, error) {
	offer := s.repo.Create()
	if err := s.apply(offer, input); err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, offer)
	if err != nil {
		return nil, mapWriteError(err, "create offer")
	}
	s.logg.Info(s.logg.WithOfferID(ctx, saved.ID), "offer created")
	return saved, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Offer, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id must be positive")
	}
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	return offer, nil
}

func (s *service) Update(ctx context.Context, id int64, input OfferInput) (*models.Offer, error) {
	offer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(offer, input); err != nil {
		return nil, err
	}
	saved, err := s.repo.Save(ctx, offer)
	if err != nil {
		return nil, mapWriteError(err, "update offer")
	}
	s.invalidateCodes(ctx, saved.OfferCodes)
	return saved, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer id must be positive")
	}
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil {
		return nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete offer")
	}
	s.invalidateCodes(ctx, offer.OfferCodes)
	s.logg.Info(s.logg.WithOfferID(ctx, id), "offer deleted")
	return nil
}

func (s *service) invalidateCodes(ctx context.Context, codes []models.OfferCode) {
	if s.codes != nil && len(codes) > 0 {
		s.codes.InvalidateOfferCodes(ctx, codes)
	}
}

func (s *service) List(ctx context.Context, params ListParams) (*pagination.Page[models.Offer], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, listQuery{
		limit:  pagination.LimitWithBuffer(params.Limit),
		cursor: cursor,
		active: params.Active,
		now:    s.now().UTC(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	page := pagination.Trim(rows, params.Limit, func(o models.Offer) int64 { return o.ID })
	return &page, nil
}

func (s *service) ListAutomatic(ctx context.Context) ([]models.Offer, error) {
	rows, err := s.repo.FindAutomaticallyAdded(ctx, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list automatic offers")
	}
	return rows, nil
}

// CloneOffer persists a deep copy of the offer, its codes, and its price
// tiers under tenantID, or under the source's tenant when tenantID is blank.
// The source is left untouched.
func (s *service) CloneOffer(ctx context.Context, id int64, tenantID string) (*models.Offer, error) {
	source, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cc := clone.NewContext(strings.TrimSpace(tenantID))
	copied := source.Clone(cc)

	saved, err := s.repo.Save(ctx, copied)
	if err != nil {
		return nil, mapWriteError(err, "clone offer")
	}
	fields := map[string]any{"offer_id": saved.ID, "source_offer_id": source.ID, "copies": cc.Len()}
	if saved.TenantID != nil {
		fields["tenant_id"] = *saved.TenantID
	}
	ctx = s.logg.WithFields(ctx, fields)
	s.logg.Info(ctx, "offer cloned")
	return saved, nil
}

// apply validates input and copies it onto offer. Children are rebuilt from
// the input so the repository can replace them wholesale.
func (s *service) apply(offer *models.Offer, input OfferInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	offerType, err := enums.ParseOfferType(input.Type)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "type is invalid")
	}
	discountType, err := enums.ParseOfferDiscountType(input.DiscountType)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "discount_type is invalid")
	}
	if err := validateValue(discountType, input.Value, "value"); err != nil {
		return err
	}

	start := s.now().UTC()
	if input.StartDate != nil && !input.StartDate.IsZero() {
		start = input.StartDate.UTC()
	} else if offer.ID != 0 {
		start = offer.StartDate
	}
	var end *time.Time
	if input.EndDate != nil {
		e := input.EndDate.UTC()
		if !e.After(start) {
			return pkgerrors.New(pkgerrors.CodeValidation, "end_date must be after start_date")
		}
		end = &e
	}

	qualifierRule, err := parseRestriction(input.OfferItemQualifierRuleType, "offer_item_qualifier_rule_type")
	if err != nil {
		return err
	}
	targetRule, err := parseRestriction(input.OfferItemTargetRuleType, "offer_item_target_rule_type")
	if err != nil {
		return err
	}

	if input.MaxUsesPerCustomer != nil && *input.MaxUsesPerCustomer < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max_uses_per_customer must be zero or positive")
	}
	if input.MinimumDaysPerUsage != nil && *input.MinimumDaysPerUsage < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum_days_per_usage must be zero or positive")
	}
	if input.MaxUsesPerOrder < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max_uses_per_order must be zero or positive")
	}
	var strategy *enums.CustomerMaxUsesStrategyType
	if strings.TrimSpace(input.MaxUsesStrategyType) != "" {
		parsed, err := enums.ParseCustomerMaxUsesStrategyType(input.MaxUsesStrategyType)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "max_uses_strategy_type is invalid")
		}
		strategy = &parsed
	}
	var adjustment *enums.OfferAdjustmentType
	if strings.TrimSpace(input.AdjustmentType) != "" {
		parsed, err := enums.ParseOfferAdjustmentType(input.AdjustmentType)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "adjustment_type is invalid")
		}
		adjustment = &parsed
	}
	currency := enums.CurrencyUSD
	if strings.TrimSpace(input.Currency) != "" {
		if currency, err = enums.ParseCurrency(input.Currency); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "currency is invalid")
		}
	}

	thresholds := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"qualifying_item_sub_total", input.QualifyingItemSubTotal},
		{"order_min_sub_total", input.OrderMinSubTotal},
		{"target_min_sub_total", input.TargetMinSubTotal},
	}
	for _, th := range thresholds {
		if th.value != nil && th.value.IsNegative() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be zero or positive", th.name)
		}
	}

	rules := make(map[string]models.OfferRuleXref, len(input.MatchRules))
	for key, ruleID := range input.MatchRules {
		ruleType, err := enums.ParseOfferRuleType(key)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "match rule key is invalid")
		}
		if ruleID <= 0 {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "match rule %s must reference a rule id", ruleType)
		}
		rules[ruleType.String()] = models.OfferRuleXref{OfferRuleID: ruleID}
	}

	priceData := make([]models.OfferPriceData, 0, len(input.PriceData))
	for i, tier := range input.PriceData {
		row, err := buildPriceData(i, tier)
		if err != nil {
			return err
		}
		priceData = append(priceData, row)
	}

	offer.Name = name
	offer.Description = input.Description
	offer.MarketingMessage = input.MarketingMessage
	offer.Type = offerType
	offer.DiscountType = discountType
	offer.Value = input.Value
	offer.SetPriority(input.Priority)
	offer.StartDate = start
	offer.EndDate = end
	offer.TargetSystem = input.TargetSystem
	offer.ApplyDiscountToSalePrice = input.ApplyDiscountToSalePrice
	offer.OfferItemQualifierRuleType = qualifierRule
	offer.OfferItemTargetRuleType = targetRule
	offer.ApplyToChildItems = input.ApplyToChildItems
	offer.CombinableWithOtherOffers = input.CombinableWithOtherOffers == nil || *input.CombinableWithOtherOffers
	offer.AutomaticallyAdded = input.AutomaticallyAdded
	offer.MaxUsesPerCustomer = input.MaxUsesPerCustomer
	offer.MaxUsesStrategyType = strategy
	offer.MinimumDaysPerUsage = input.MinimumDaysPerUsage
	offer.MaxUsesPerOrder = input.MaxUsesPerOrder
	offer.TotalitarianOffer = input.TotalitarianOffer
	offer.UseListForDiscounts = input.UseListForDiscounts
	offer.RequiresRelatedTargetAndQualifiers = input.RequiresRelatedTargetAndQualifiers
	offer.QualifyingItemSubTotal = nullDecimal(input.QualifyingItemSubTotal)
	offer.OrderMinSubTotal = nullDecimal(input.OrderMinSubTotal)
	offer.TargetMinSubTotal = nullDecimal(input.TargetMinSubTotal)
	offer.Currency = currency
	offer.AdjustmentType = adjustment
	offer.Archived = input.Archived

	offer.QualifyingItemCriteriaXrefs = make([]models.OfferQualifyingCriteriaXref, 0, len(input.QualifyingItemCriteriaIDs))
	for _, id := range input.QualifyingItemCriteriaIDs {
		offer.QualifyingItemCriteriaXrefs = append(offer.QualifyingItemCriteriaXrefs, models.OfferQualifyingCriteriaXref{OfferItemCriteriaID: id})
	}
	offer.TargetItemCriteriaXrefs = make([]models.OfferTargetCriteriaXref, 0, len(input.TargetItemCriteriaIDs))
	for _, id := range input.TargetItemCriteriaIDs {
		offer.TargetItemCriteriaXrefs = append(offer.TargetItemCriteriaXrefs, models.OfferTargetCriteriaXref{OfferItemCriteriaID: id})
	}
	offer.SetOfferMatchRulesXref(rules)
	offer.PriceData = priceData
	return nil
}

func buildPriceData(index int, tier PriceDataInput) (models.OfferPriceData, error) {
	field := fmt.Sprintf("price_data[%d]", index)
	discountType, err := enums.ParseOfferDiscountType(tier.DiscountType)
	if err != nil {
		return models.OfferPriceData{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+".discount_type is invalid")
	}
	if err := validateValue(discountType, tier.Amount, field+".amount"); err != nil {
		return models.OfferPriceData{}, err
	}
	identifierType, err := enums.ParseOfferPriceDataIdentifierType(tier.IdentifierType)
	if err != nil {
		return models.OfferPriceData{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+".identifier_type is invalid")
	}
	identifier := strings.TrimSpace(tier.Identifier)
	if identifier == "" {
		return models.OfferPriceData{}, pkgerrors.Newf(pkgerrors.CodeValidation, "%s.identifier is required", field)
	}
	quantity := tier.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return models.OfferPriceData{}, pkgerrors.Newf(pkgerrors.CodeValidation, "%s.quantity must be positive", field)
	}
	if tier.StartDate != nil && tier.EndDate != nil && !tier.EndDate.After(*tier.StartDate) {
		return models.OfferPriceData{}, pkgerrors.Newf(pkgerrors.CodeValidation, "%s.end_date must be after start_date", field)
	}
	return models.OfferPriceData{
		Amount:         tier.Amount,
		DiscountType:   discountType,
		Identifier:     identifier,
		IdentifierType: identifierType,
		Quantity:       quantity,
		StartDate:      tier.StartDate,
		EndDate:        tier.EndDate,
		Archived:       tier.Archived,
	}, nil
}

func validateValue(discountType enums.OfferDiscountType, value decimal.Decimal, field string) error {
	if value.IsNegative() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be zero or positive", field)
	}
	if discountType == enums.OfferDiscountTypePercentOff && value.GreaterThan(hundred) {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "%s must not exceed 100 for percent discounts", field)
	}
	return nil
}

func parseRestriction(value, field string) (enums.OfferItemRestrictionRuleType, error) {
	if strings.TrimSpace(value) == "" {
		return enums.OfferItemRestrictionNone, nil
	}
	parsed, err := enums.ParseOfferItemRestrictionRuleType(value)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+" is invalid")
	}
	return parsed, nil
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *v, Valid: true}
}

func mapWriteError(err error, action string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
