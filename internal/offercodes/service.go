package offercodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
	"github.com/angelmondragon/storefront/pkg/redis"
)

const (
	defaultMaxCodeLength = 255
	defaultCacheTTL      = 5 * time.Minute

	redeemOutcomeOK       = "redeemed"
	redeemOutcomeRejected = "rejected"
	redeemOutcomeError    = "error"
)

type offerReader interface {
	FindByID(ctx context.Context, id int64) (*models.Offer, error)
}

type auditStore interface {
	Record(ctx context.Context, audit *models.OfferAudit) error
	CountByOfferCode(ctx context.Context, offerCodeID int64) (int64, error)
	CountBySubject(ctx context.Context, offerID int64, strategy enums.CustomerMaxUsesStrategyType, subjectID int64, since time.Time) (int64, error)
}

// Service exposes offer code lookup, administration, and redemption.
type Service interface {
	Get(ctx context.Context, id int64) (*models.OfferCode, error)
	GetByCode(ctx context.Context, code string) (*models.OfferCode, error)
	ListByCode(ctx context.Context, code string) ([]models.OfferCode, error)
	ListByIDs(ctx context.Context, ids []int64) ([]models.OfferCode, error)
	Create(ctx context.Context, offerID int64, input CreateInput) (*models.OfferCode, error)
	Update(ctx context.Context, id int64, input UpdateInput) (*models.OfferCode, error)
	Delete(ctx context.Context, id int64) error
	IsUsed(ctx context.Context, id int64) (bool, error)
	Redeem(ctx context.Context, code string, input RedeemInput) (*models.OfferAudit, error)
	InvalidateOfferCodes(ctx context.Context, codes []models.OfferCode)
}

// CreateInput holds the attributes of a new code.
type CreateInput struct {
	Code         string
	StartDate    *time.Time
	EndDate      *time.Time
	MaxUses      int
	EmailAddress *string
}

// UpdateInput holds a partial update; nil fields are left untouched.
type UpdateInput struct {
	Code         *string
	StartDate    *time.Time
	EndDate      *time.Time
	MaxUses      *int
	EmailAddress *string
	Archived     *bool
}

// RedeemInput identifies who redeems a code and for which order.
type RedeemInput struct {
	CustomerID   *int64
	AccountID    *int64
	OrderID      *int64
	EmailAddress string
}

// ServiceOptions carries the optional collaborators of the service.
type ServiceOptions struct {
	Cache         redis.Cache
	CacheTTL      time.Duration
	MaxCodeLength int
	Metrics       *metrics.OfferCodeMetrics
	Logger        *logger.Logger
	Now           func() time.Time
}

type service struct {
	dao       Dao
	audits    auditStore
	offers    offerReader
	cache     redis.Cache
	cacheTTL  time.Duration
	maxLength int
	metrics   *metrics.OfferCodeMetrics
	logg      *logger.Logger
	validate  *validator.Validate
	now       func() time.Time
}

// NewService builds the offer code service. The cache is optional.
func NewService(dao Dao, audits auditStore, offers offerReader, opts ServiceOptions) (Service, error) {
	if dao == nil {
		return nil, fmt.Errorf("offer code dao required")
	}
	if audits == nil {
		return nil, fmt.Errorf("offer audit repository required")
	}
	if offers == nil {
		return nil, fmt.Errorf("offer repository required")
	}
	s := &service{
		dao:       dao,
		audits:    audits,
		offers:    offers,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		maxLength: opts.MaxCodeLength,
		metrics:   opts.Metrics,
		logg:      opts.Logger,
		validate:  validator.New(),
		now:       opts.Now,
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = defaultCacheTTL
	}
	if s.maxLength <= 0 {
		s.maxLength = defaultMaxCodeLength
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.OfferCode, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer code id must be positive")
	}
	var key string
	if s.cache != nil {
		key = s.cache.OfferCodeIDKey(id)
		if cached := s.readCache(ctx, key); cached != nil {
			return cached, nil
		}
	}
	code, err := s.dao.ReadOfferCodeByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer code")
	}
	if code == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer code not found")
	}
	s.writeCache(ctx, key, code)
	return code, nil
}

// GetByCode resolves the active code used for redemption lookups, reading
// through the cache when one is configured.
func (s *service) GetByCode(ctx context.Context, code string) (*models.OfferCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	var key string
	if s.cache != nil {
		key = s.cache.OfferCodeKey(code)
		if cached := s.readCache(ctx, key); cached != nil {
			return cached, nil
		}
	}
	found, err := s.dao.ReadOfferCodeByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer code")
	}
	if found == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer code not found")
	}
	s.writeCache(ctx, key, found)
	return found, nil
}

func (s *service) ListByCode(ctx context.Context, code string) ([]models.OfferCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	rows, err := s.dao.ReadAllOfferCodesByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offer codes")
	}
	return rows, nil
}

func (s *service) ListByIDs(ctx context.Context, ids []int64) ([]models.OfferCode, error) {
	rows, err := s.dao.ReadOfferCodesByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offer codes")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, offerID int64, input CreateInput) (*models.OfferCode, error) {
	if offerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id must be positive")
	}
	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}

	code := s.dao.Create()
	code.OfferID = offer.ID
	code.Code = strings.TrimSpace(input.Code)
	code.StartDate = input.StartDate
	code.EndDate = input.EndDate
	code.MaxUses = input.MaxUses
	code.EmailAddress = normalizeEmail(input.EmailAddress)
	if err := s.validateCode(code); err != nil {
		return nil, err
	}

	saved, err := s.dao.Save(ctx, code)
	if err != nil {
		return nil, s.mapSaveError(err)
	}
	s.invalidate(ctx, saved)
	s.logg.Info(s.logg.WithOfferCode(s.logg.WithOfferID(ctx, offer.ID), saved.Code), "offer code created")
	return saved, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateInput) (*models.OfferCode, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer code id must be positive")
	}
	code, err := s.dao.ReadOfferCodeByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer code")
	}
	if code == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer code not found")
	}
	previous := code.Code

	if input.Code != nil {
		code.Code = strings.TrimSpace(*input.Code)
	}
	if input.StartDate != nil {
		code.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		code.EndDate = input.EndDate
	}
	if input.MaxUses != nil {
		code.MaxUses = *input.MaxUses
	}
	if input.EmailAddress != nil {
		code.EmailAddress = normalizeEmail(input.EmailAddress)
	}
	if input.Archived != nil {
		code.Archived = *input.Archived
	}
	if err := s.validateCode(code); err != nil {
		return nil, err
	}

	saved, err := s.dao.Save(ctx, code)
	if err != nil {
		return nil, s.mapSaveError(err)
	}
	s.invalidateKeys(ctx, saved.ID, previous, saved.Code)
	return saved, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer code id must be positive")
	}
	code, err := s.dao.ReadOfferCodeByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer code")
	}
	if code == nil {
		return nil
	}
	if err := s.dao.Delete(ctx, code); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete offer code")
	}
	s.invalidate(ctx, code)
	return nil
}

func (s *service) IsUsed(ctx context.Context, id int64) (bool, error) {
	code, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	used, err := s.dao.OfferCodeIsUsed(ctx, code)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "evaluate offer code usage")
	}
	return used, nil
}

// Redeem records one use of code after checking the code window, the offer
// window, the email restriction, the code's use limit, and the offer's
// per-customer limits.
func (s *service) Redeem(ctx context.Context, codeValue string, input RedeemInput) (audit *models.OfferAudit, err error) {
	ctx = s.logg.WithOfferCode(ctx, codeValue)
	defer func() {
		switch {
		case err == nil:
			s.metrics.Redemption(redeemOutcomeOK)
		case pkgerrors.HasCode(err, pkgerrors.CodeDependency):
			s.metrics.Redemption(redeemOutcomeError)
			s.logg.Error(ctx, "offer code redemption failed", err)
		default:
			s.metrics.Redemption(redeemOutcomeRejected)
		}
	}()

	codeValue = strings.TrimSpace(codeValue)
	if codeValue == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	code, err := s.dao.ReadOfferCodeByCode(ctx, codeValue)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer code")
	}
	if code == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer code not found")
	}

	offer := code.Offer
	if offer == nil {
		if offer, err = s.offers.FindByID(ctx, code.OfferID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
		}
		if offer == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
	}

	now := s.now()
	if !code.IsActive(now) {
		return nil, rejection("offer code is not active", code)
	}
	if !offer.IsActive(now) {
		return nil, rejection("offer is not active", code)
	}
	if code.EmailAddress != nil && !strings.EqualFold(*code.EmailAddress, strings.TrimSpace(input.EmailAddress)) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer code is restricted to another email address")
	}
	if !code.IsUnlimitedUse() {
		count, err := s.audits.CountByOfferCode(ctx, code.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count offer code redemptions")
		}
		if count >= int64(code.MaxUses) {
			return nil, rejection("offer code has reached its maximum uses", code)
		}
	}
	if err := s.checkSubjectLimits(ctx, offer, input, now); err != nil {
		return nil, err
	}

	audit = &models.OfferAudit{
		OfferID:      offer.ID,
		OfferCodeID:  &code.ID,
		CustomerID:   input.CustomerID,
		AccountID:    input.AccountID,
		OrderID:      input.OrderID,
		RedeemedDate: now,
	}
	if err := s.audits.Record(ctx, audit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record redemption")
	}
	s.logg.Info(s.logg.WithOfferID(ctx, offer.ID), "offer code redeemed")
	return audit, nil
}

func (s *service) checkSubjectLimits(ctx context.Context, offer *models.Offer, input RedeemInput, now time.Time) error {
	limited := offer.IsLimitedUsePerCustomer()
	spaced := offer.MinimumDaysPerUsage != nil && *offer.MinimumDaysPerUsage > 0
	if !limited && !spaced {
		return nil
	}

	strategy := offer.EffectiveMaxUsesStrategyType()
	subject := input.CustomerID
	if strategy == enums.CustomerMaxUsesStrategyAccount {
		subject = input.AccountID
	}
	if subject == nil {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "%s id is required to redeem this offer", strings.ToLower(string(strategy)))
	}

	if limited {
		count, err := s.audits.CountBySubject(ctx, offer.ID, strategy, *subject, time.Time{})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customer redemptions")
		}
		if count >= *offer.MaxUsesPerCustomer {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "maximum uses per customer reached").
				WithDetails(map[string]any{"offer_id": offer.ID, "max_uses_per_customer": *offer.MaxUsesPerCustomer})
		}
	}
	if spaced {
		since := now.Add(-time.Duration(*offer.MinimumDaysPerUsage) * 24 * time.Hour)
		count, err := s.audits.CountBySubject(ctx, offer.ID, strategy, *subject, since)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count recent redemptions")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "offer was redeemed too recently").
				WithDetails(map[string]any{"offer_id": offer.ID, "minimum_days_per_usage": *offer.MinimumDaysPerUsage})
		}
	}
	return nil
}

func rejection(message string, code *models.OfferCode) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, message).
		WithDetails(map[string]any{"offer_code_id": code.ID, "code": code.Code})
}

func (s *service) validateCode(code *models.OfferCode) error {
	switch {
	case code.Code == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	case len(code.Code) > s.maxLength:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "code must be at most %d characters", s.maxLength)
	case strings.ContainsAny(code.Code, " \t\r\n"):
		return pkgerrors.New(pkgerrors.CodeValidation, "code must not contain whitespace")
	case code.MaxUses < 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "max_uses must be zero or positive")
	case code.StartDate != nil && code.EndDate != nil && !code.EndDate.After(*code.StartDate):
		return pkgerrors.New(pkgerrors.CodeValidation, "end_date must be after start_date")
	}
	if code.EmailAddress != nil {
		if err := s.validate.Var(*code.EmailAddress, "email"); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "email_address is invalid")
		}
	}
	return nil
}

func (s *service) mapSaveError(err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save offer code")
}

func (s *service) readCache(ctx context.Context, key string) *models.OfferCode {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !redis.IsMiss(err) {
			s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "offer code cache read failed")
		}
		s.metrics.CacheMiss()
		return nil
	}
	var code models.OfferCode
	if err := json.Unmarshal([]byte(raw), &code); err != nil {
		s.metrics.CacheMiss()
		return nil
	}
	s.metrics.CacheHit()
	return &code
}

func (s *service) writeCache(ctx context.Context, key string, code *models.OfferCode) {
	if s.cache == nil || key == "" || code == nil {
		return
	}
	payload, err := json.Marshal(code)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "cache_key", key), "offer code cache write failed")
	}
}

// InvalidateOfferCodes drops the cached lookups of codes whose owning offer
// changed, since cached entries embed the offer.
func (s *service) InvalidateOfferCodes(ctx context.Context, codes []models.OfferCode) {
	if s.cache == nil || len(codes) == 0 {
		return
	}
	keys := make([]string, 0, 2*len(codes))
	for _, c := range codes {
		keys = append(keys, s.cache.OfferCodeIDKey(c.ID))
		if strings.TrimSpace(c.Code) != "" {
			keys = append(keys, s.cache.OfferCodeKey(c.Code))
		}
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "offer_codes", len(codes)), "offer code cache invalidation failed")
	}
}

func (s *service) invalidate(ctx context.Context, code *models.OfferCode) {
	if code == nil {
		return
	}
	s.invalidateKeys(ctx, code.ID, code.Code)
}

func (s *service) invalidateKeys(ctx context.Context, id int64, codes ...string) {
	if s.cache == nil {
		return
	}
	keys := []string{s.cache.OfferCodeIDKey(id)}
	for _, c := range codes {
		if strings.TrimSpace(c) != "" {
			keys = append(keys, s.cache.OfferCodeKey(c))
		}
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logg.Warn(ctx, "offer code cache invalidation failed")
	}
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
