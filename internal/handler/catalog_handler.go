package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/walletgate/vas-catalog/internal/cache"
	"github.com/walletgate/vas-catalog/internal/models"
	"github.com/walletgate/vas-catalog/internal/repository"
	"github.com/walletgate/vas-catalog/internal/service"
	"github.com/walletgate/vas-catalog/internal/utils"
)

// CatalogHandler exposes the operator endpoints of the sync engine: schedule
// control, manual triggers, published offers, comparisons, overrides, and the
// audit log.
type CatalogHandler struct {
	sync       *service.SyncService
	comparison *service.ComparisonService
	offers     *repository.BestOfferRepository
	audit      *repository.AuditRepository
	variants   *repository.VariantRepository
	offerCache *cache.BestOfferCache
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(
	sync *service.SyncService,
	comparison *service.ComparisonService,
	offers *repository.BestOfferRepository,
	audit *repository.AuditRepository,
	variants *repository.VariantRepository,
	offerCache *cache.BestOfferCache,
) *CatalogHandler {
	return &CatalogHandler{
		sync:       sync,
		comparison: comparison,
		offers:     offers,
		audit:      audit,
		variants:   variants,
		offerCache: offerCache,
	}
}

// GetStatus reports the engine state and the published catalog version.
func (h *CatalogHandler) GetStatus(c *gin.Context) {
	status := h.sync.Status()

	version, err := h.offers.CurrentVersion(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to read catalog version")
	}

	utils.Success(c, 200, "Catalog sync status", gin.H{
		"sync":           status,
		"catalogVersion": version,
	})
}

// StartScheduler starts the background schedules.
func (h *CatalogHandler) StartScheduler(c *gin.Context) {
	h.sync.Start()
	utils.Success(c, 200, "Scheduler started", nil)
}

// StopScheduler stops the background schedules. An in-flight run finishes.
func (h *CatalogHandler) StopScheduler(c *gin.Context) {
	h.sync.Stop()
	utils.Success(c, 200, "Scheduler stopped", nil)
}

// TriggerSweep starts a manual full sweep in the background.
func (h *CatalogHandler) TriggerSweep(c *gin.Context) {
	if h.sync.Status().Running {
		utils.Error(c, 409, "SWEEP_IN_PROGRESS", "A catalog sweep is already in progress")
		return
	}

	go func() {
		if _, err := h.sync.RunFullSweep(context.Background(), models.TriggerManual); err != nil && !errors.Is(err, service.ErrSweepInProgress) {
			log.Error().Err(err).Msg("Manual full sweep failed")
		}
	}()

	utils.Success(c, 202, "Full sweep started", nil)
}

// TriggerRefresh starts a manual price refresh in the background.
func (h *CatalogHandler) TriggerRefresh(c *gin.Context) {
	if h.sync.Status().Running {
		utils.Error(c, 409, "SWEEP_IN_PROGRESS", "A catalog sweep is already in progress")
		return
	}

	go func() {
		if _, err := h.sync.RunPriceRefresh(context.Background(), models.TriggerManual); err != nil && !errors.Is(err, service.ErrSweepInProgress) {
			log.Error().Err(err).Msg("Manual price refresh failed")
		}
	}()

	utils.Success(c, 202, "Price refresh started", nil)
}

// GetBestOffers returns the published best-offer table, cached per category.
func (h *CatalogHandler) GetBestOffers(c *gin.Context) {
	ctx := c.Request.Context()

	vasType, ok := parseVasType(c.Query("vas_type"))
	if !ok {
		utils.Error(c, 400, "INVALID_VAS_TYPE", "Unknown vas_type")
		return
	}
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 50)

	offers, err := h.loadOffers(ctx, vasType)
	if err != nil {
		utils.Error(c, 500, "CATALOG_UNAVAILABLE", "Failed to load best offers")
		return
	}

	total := len(offers)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	utils.SuccessWithPagination(c, 200, "Best offers", offers[start:end], page, limit, total)
}

// loadOffers serves the full per-category list from cache, falling back to
// the database and repopulating the cache on miss.
func (h *CatalogHandler) loadOffers(ctx context.Context, vasType models.VasType) ([]models.BestOffer, error) {
	if h.offerCache != nil {
		if offers, err := h.offerCache.Get(ctx, vasType); err == nil && offers != nil {
			return offers, nil
		}
	}

	offers, err := h.offers.List(ctx, vasType)
	if err != nil {
		return nil, err
	}

	if h.offerCache != nil {
		if err := h.offerCache.Set(ctx, vasType, offers); err != nil {
			log.Warn().Err(err).Msg("Failed to cache best offers")
		}
	}
	return offers, nil
}

// Compare returns cross-supplier deals, promotions, and recommendations.
func (h *CatalogHandler) Compare(c *gin.Context) {
	ctx := c.Request.Context()

	vasType, ok := parseVasType(c.Query("vas_type"))
	if !ok {
		utils.Error(c, 400, "INVALID_VAS_TYPE", "Unknown vas_type")
		return
	}

	deals, err := h.comparison.BestDeals(ctx, vasType)
	if err != nil {
		utils.Error(c, 500, "CATALOG_UNAVAILABLE", "Failed to compare catalogs")
		return
	}
	promos, err := h.comparison.Promotions(ctx)
	if err != nil {
		utils.Error(c, 500, "CATALOG_UNAVAILABLE", "Failed to load promotions")
		return
	}
	recs, err := h.comparison.Recommendations(ctx)
	if err != nil {
		utils.Error(c, 500, "CATALOG_UNAVAILABLE", "Failed to build recommendations")
		return
	}

	utils.Success(c, 200, "Catalog comparison", gin.H{
		"deals":           deals,
		"promotions":      promos,
		"recommendations": recs,
	})
}

// GetAudit returns the refresh audit log, newest first.
func (h *CatalogHandler) GetAudit(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 50)

	rows, total, err := h.audit.List(c.Request.Context(), page, limit)
	if err != nil {
		utils.Error(c, 500, "CATALOG_UNAVAILABLE", "Failed to load audit log")
		return
	}
	utils.SuccessWithPagination(c, 200, "Refresh audit log", rows, page, limit, total)
}

// overrideRequest is the body of the price-type override endpoint. A null
// priceType clears the override and returns the variant to automatic
// classification on the next sweep.
type overrideRequest struct {
	PriceType *string `json:"priceType"`
}

// OverridePriceType sets or clears the operator price-type override on one
// variant. The override takes effect at the next classification pass.
func (h *CatalogHandler) OverridePriceType(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.Error(c, 400, "INVALID_VARIANT_ID", "Variant id must be a positive integer")
		return
	}

	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	var override *models.PriceType
	if req.PriceType != nil {
		pt := models.PriceType(*req.PriceType)
		if pt != models.PriceTypeFixed && pt != models.PriceTypeVariable {
			utils.Error(c, 400, "INVALID_PRICE_TYPE", "priceType must be fixed, variable, or null")
			return
		}
		override = &pt
	}

	if err := h.variants.SetPriceTypeOverride(c.Request.Context(), id, override); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Error(c, 404, "VARIANT_NOT_FOUND", "Variant not found")
			return
		}
		utils.Error(c, 500, "CATALOG_UNAVAILABLE", "Failed to update override")
		return
	}

	utils.Success(c, 200, "Price type override updated", gin.H{
		"variantId": id,
		"priceType": req.PriceType,
	})
}

// parseVasType validates an optional vas_type query parameter. Empty means
// all categories.
func parseVasType(raw string) (models.VasType, bool) {
	if raw == "" {
		return "", true
	}
	vt := models.VasType(raw)
	for _, known := range models.AllVasTypes {
		if vt == known {
			return vt, true
		}
	}
	return "", false
}

func parseIntQuery(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
