package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"hotel-pms/models"
	"hotel-pms/ota"
	"hotel-pms/utils"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OTASyncDays is how far ahead availability is pushed to the channel manager.
const OTASyncDays = 30

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// JobForSlug maps the REST/CLI job name ("night-audit") to its job constant.
func JobForSlug(slug string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(slug)) {
	case "no-show":
		return models.JobNoShow, true
	case "night-audit":
		return models.JobNightAudit, true
	case "dynamic-pricing":
		return models.JobDynamicPricing, true
	case "ota-sync":
		return models.JobOTASync, true
	}
	return "", false
}

type jobResult struct {
	affected int
	details  map[string]interface{}
}

type AutomationService struct {
	DB    *gorm.DB
	Rooms *RoomService
	Fraud *FraudService
	OTA   *ota.Client

	// OnConfigChange is called after a successful config update.
	OnConfigChange func(models.AutomationConfig)

	now   func() time.Time
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAutomationService(db *gorm.DB, rooms *RoomService, fraud *FraudService, otaClient *ota.Client) *AutomationService {
	return &AutomationService{
		DB:    db,
		Rooms: rooms,
		Fraud: fraud,
		OTA:   otaClient,
		now:   func() time.Time { return time.Now().UTC() },
		locks: make(map[string]*sync.Mutex),
	}
}

// SetClock replaces the time source used by the jobs.
func (s *AutomationService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *AutomationService) jobLock(job string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[job]
	if !ok {
		l = &sync.Mutex{}
		s.locks[job] = l
	}
	return l
}

// Config returns the singleton config row, seeding defaults when missing.
func (s *AutomationService) Config(ctx context.Context) (*models.AutomationConfig, error) {
	var cfg models.AutomationConfig
	err := s.DB.WithContext(ctx).Order("id").First(&cfg).Error
	if err == nil {
		return &cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cfg = models.DefaultAutomationConfig()
	if err := s.DB.WithContext(ctx).Create(&cfg).Error; err != nil {
		return nil, fmt.Errorf("failed to seed automation config: %w", err)
	}
	return &cfg, nil
}

func validateAutomationConfig(cfg models.AutomationConfig) error {
	switch {
	case cfg.NoShowGraceHours < 0:
		return fmt.Errorf("%w: noShowGraceHours cannot be negative", ErrValidation)
	case cfg.HighOccupancyThreshold < 0 || cfg.HighOccupancyThreshold > 100,
		cfg.LowOccupancyThreshold < 0 || cfg.LowOccupancyThreshold > 100:
		return fmt.Errorf("%w: occupancy thresholds must be between 0 and 100", ErrValidation)
	case cfg.LowOccupancyThreshold > cfg.HighOccupancyThreshold:
		return fmt.Errorf("%w: low occupancy threshold exceeds high threshold", ErrValidation)
	case cfg.PriceIncreasePercent < 0, cfg.PriceDecreasePercent < 0 || cfg.PriceDecreasePercent >= 100:
		return fmt.Errorf("%w: invalid price adjustment percent", ErrValidation)
	case cfg.FraudVoidThreshold < 0 || cfg.FraudHighChargeAmount < 0:
		return fmt.Errorf("%w: fraud thresholds cannot be negative", ErrValidation)
	}
	if _, err := cronParser.Parse(cfg.NightAuditSchedule); err != nil {
		return fmt.Errorf("%w: invalid nightAuditSchedule: %v", ErrValidation, err)
	}
	return nil
}

func (s *AutomationService) UpdateConfig(ctx context.Context, in models.AutomationConfig) (*models.AutomationConfig, error) {
	in.NightAuditSchedule = strings.TrimSpace(in.NightAuditSchedule)
	if in.NightAuditSchedule == "" {
		in.NightAuditSchedule = models.DefaultAutomationConfig().NightAuditSchedule
	}
	if err := validateAutomationConfig(in); err != nil {
		return nil, err
	}
	current, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}
	in.ID = current.ID
	if err := s.DB.WithContext(ctx).Save(&in).Error; err != nil {
		return nil, fmt.Errorf("failed to save automation config: %w", err)
	}
	log.WithField("schedule", in.NightAuditSchedule).Info("automation config updated")
	if s.OnConfigChange != nil {
		s.OnConfigChange(in)
	}
	return &in, nil
}

func (s *AutomationService) Runs(ctx context.Context, job string, limit int) ([]models.AutomationRun, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	runs := []models.AutomationRun{}
	q := s.DB.WithContext(ctx).Order("started_at DESC, id DESC").Limit(limit)
	if job = strings.ToUpper(strings.TrimSpace(job)); job != "" {
		q = q.Where("job = ?", job)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Run executes job and records it. Runs of the same job never overlap.
func (s *AutomationService) Run(ctx context.Context, job, trigger string) (*models.AutomationRun, error) {
	var exec func(context.Context, models.AutomationConfig) (jobResult, error)
	switch job {
	case models.JobNoShow:
		exec = s.noShow
	case models.JobNightAudit:
		exec = s.nightAudit
	case models.JobDynamicPricing:
		exec = s.dynamicPricing
	case models.JobOTASync:
		exec = s.otaSync
	default:
		return nil, fmt.Errorf("%w: unknown job %q", ErrValidation, job)
	}

	lock := s.jobLock(job)
	lock.Lock()
	defer lock.Unlock()

	cfg, err := s.Config(ctx)
	if err != nil {
		return nil, err
	}

	run := models.AutomationRun{Job: job, Trigger: trigger, StartedAt: s.now()}
	if err := s.DB.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to record automation run: %w", err)
	}

	entry := log.WithFields(log.Fields{"job": job, "trigger": trigger, "run_id": run.ID})
	entry.Info("automation job started")

	result, jobErr := exec(ctx, *cfg)
	run.FinishedAt = utils.PtrTime(s.now())
	run.Affected = result.affected
	if result.details != nil {
		if raw, err := json.Marshal(result.details); err == nil {
			run.Details = datatypes.JSON(raw)
		}
	}
	if jobErr != nil {
		run.Error = jobErr.Error()
		entry.WithError(jobErr).Error("automation job failed")
	} else {
		entry.WithField("affected", run.Affected).Info("automation job finished")
	}
	if err := s.DB.WithContext(ctx).Save(&run).Error; err != nil {
		entry.WithError(err).Error("failed to update automation run")
	}
	return &run, jobErr
}

// RunScheduled is the cron entry point; jobs disabled in the config are skipped.
func (s *AutomationService) RunScheduled(job string) {
	ctx := context.Background()
	cfg, err := s.Config(ctx)
	if err != nil {
		log.WithError(err).WithField("job", job).Error("[CRON] could not load automation config")
		return
	}
	if !jobEnabled(*cfg, job) {
		log.WithField("job", job).Debug("[CRON] job disabled, skipping")
		return
	}
	_, _ = s.Run(ctx, job, models.TriggerScheduled)
}

func jobEnabled(cfg models.AutomationConfig, job string) bool {
	switch job {
	case models.JobNoShow:
		return cfg.NoShowEnabled
	case models.JobNightAudit:
		return cfg.NightAuditEnabled
	case models.JobDynamicPricing:
		return cfg.DynamicPricingEnabled
	case models.JobOTASync:
		return cfg.OTASyncEnabled
	}
	return false
}

// ---------------------------
// No-show
// ---------------------------

func (s *AutomationService) noShow(ctx context.Context, cfg models.AutomationConfig) (jobResult, error) {
	now := s.now()
	grace := time.Duration(cfg.NoShowGraceHours) * time.Hour

	var candidates []models.Reservation
	err := s.DB.WithContext(ctx).
		Where("status IN ? AND check_in < ?", []string{models.ReservationPending, models.ReservationConfirmed}, now).
		Order("id").
		Find(&candidates).Error
	if err != nil {
		return jobResult{}, err
	}

	var cancelled []uint
	for _, c := range candidates {
		if !c.CheckIn.Add(grace).Before(now) {
			continue
		}
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res, err := lockReservation(tx, c.ID)
			if err != nil {
				return err
			}
			return cancelReservation(tx, res, models.CancellationNoShow)
		})
		if err != nil {
			if errors.Is(err, ErrInvalidTransition) {
				continue
			}
			return jobResult{affected: len(cancelled)}, err
		}
		cancelled = append(cancelled, c.ID)
	}
	return jobResult{
		affected: len(cancelled),
		details:  map[string]interface{}{"cancelled": cancelled, "graceHours": cfg.NoShowGraceHours},
	}, nil
}

// ---------------------------
// Night audit
// ---------------------------

// BusinessDate is the hotel day a moment belongs to: before noon it is
// still the previous night's audit day.
func BusinessDate(t time.Time) time.Time {
	d := utils.DateOnly(t)
	if t.UTC().Hour() < 12 {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

func (s *AutomationService) nightAudit(ctx context.Context, cfg models.AutomationConfig) (jobResult, error) {
	businessDate := BusinessDate(s.now())

	var inHouse []models.Reservation
	err := s.DB.WithContext(ctx).Preload("Rooms").
		Where("status IN ?", []string{models.ReservationCheckedIn, models.ReservationOccupied}).
		Order("id").
		Find(&inHouse).Error
	if err != nil {
		return jobResult{}, err
	}

	posted, promoted := 0, 0
	for _, res := range inHouse {
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			f, err := ensureFolio(tx, res.ID)
			if err != nil {
				return err
			}
			folio, err := lockFolio(tx, f.ID)
			if err != nil {
				return err
			}
			if folio.Status == models.FolioOpen {
				for _, rm := range res.Rooms {
					var existing int64
					if err := tx.Model(&models.LineItem{}).
						Where("folio_id = ? AND room_id = ? AND type = ? AND business_date = ? AND voided = ?",
							folio.ID, rm.ID, models.LineRoomCharge, businessDate, false).
						Count(&existing).Error; err != nil {
						return err
					}
					if existing > 0 || rm.CurrentPrice <= 0 {
						continue
					}
					roomID := rm.ID
					item := models.LineItem{
						Type:         models.LineRoomCharge,
						Description:  fmt.Sprintf("Room %s night of %s", rm.Number, utils.FormatDate(businessDate)),
						Amount:       rm.CurrentPrice,
						RoomID:       &roomID,
						BusinessDate: utils.PtrTime(businessDate),
						PostedBy:     "night-audit",
					}
					if err := postLineItem(tx, folio, &item); err != nil {
						return err
					}
					posted++
				}
			}
			if res.Status == models.ReservationCheckedIn {
				if err := tx.Model(&models.Reservation{}).
					Where("id = ? AND status = ?", res.ID, models.ReservationCheckedIn).
					Update("status", models.ReservationOccupied).Error; err != nil {
					return err
				}
				promoted++
			}
			return nil
		})
		if err != nil {
			return jobResult{affected: posted}, fmt.Errorf("night audit of reservation %d: %w", res.ID, err)
		}
	}

	alerts, err := s.Fraud.RunRules(ctx, cfg)
	if err != nil {
		return jobResult{affected: posted}, fmt.Errorf("fraud rules: %w", err)
	}
	return jobResult{
		affected: posted,
		details: map[string]interface{}{
			"businessDate": utils.FormatDate(businessDate),
			"roomCharges":  posted,
			"promoted":     promoted,
			"fraudAlerts":  alerts,
		},
	}, nil
}

// ---------------------------
// Dynamic pricing
// ---------------------------

// AdjustedPrice applies the occupancy thresholds to a base price.
func AdjustedPrice(cfg models.AutomationConfig, base models.Money, occupancy float64) models.Money {
	switch {
	case occupancy > cfg.HighOccupancyThreshold:
		return base + base.Percent(cfg.PriceIncreasePercent)
	case occupancy < cfg.LowOccupancyThreshold:
		return base - base.Percent(cfg.PriceDecreasePercent)
	default:
		return base
	}
}

func (s *AutomationService) dynamicPricing(ctx context.Context, cfg models.AutomationConfig) (jobResult, error) {
	db := s.DB.WithContext(ctx)
	night := utils.DateOnly(s.now()).AddDate(0, 0, 1)

	var rooms []models.Room
	if err := db.Where("status <> ?", models.RoomMaintenance).Order("hotel_id, id").Find(&rooms).Error; err != nil {
		return jobResult{}, err
	}
	busy, err := busyRoomIDs(db, night, night.AddDate(0, 0, 1), nil, 0)
	if err != nil {
		return jobResult{}, err
	}
	busySet := make(map[uint]bool, len(busy))
	for _, id := range busy {
		busySet[id] = true
	}

	byHotel := map[uint][]models.Room{}
	for _, rm := range rooms {
		byHotel[rm.HotelID] = append(byHotel[rm.HotelID], rm)
	}

	changed := 0
	occupancyByHotel := map[string]float64{}
	for hotelID, hotelRooms := range byHotel {
		held := 0
		for _, rm := range hotelRooms {
			if busySet[rm.ID] {
				held++
			}
		}
		occupancy := float64(held) / float64(len(hotelRooms)) * 100
		occupancyByHotel[fmt.Sprint(hotelID)] = occupancy

		for _, rm := range hotelRooms {
			price := AdjustedPrice(cfg, rm.BasePrice, occupancy)
			if price == rm.CurrentPrice {
				continue
			}
			if err := db.Model(&models.Room{}).Where("id = ?", rm.ID).Update("current_price", price).Error; err != nil {
				return jobResult{affected: changed}, err
			}
			changed++
		}
	}
	return jobResult{
		affected: changed,
		details: map[string]interface{}{
			"night":     utils.FormatDate(night),
			"occupancy": occupancyByHotel,
		},
	}, nil
}

// ---------------------------
// OTA sync
// ---------------------------

// OTASnapshot summarizes per-type availability and the lowest current
// price for each of the next days.
func (s *AutomationService) OTASnapshot(ctx context.Context, days int) ([]ota.Availability, error) {
	from := utils.DateOnly(s.now())
	matrix, err := s.Rooms.Availability(ctx, from, from.AddDate(0, 0, days-1), "")
	if err != nil {
		return nil, err
	}
	var rooms []models.Room
	if err := s.DB.WithContext(ctx).Find(&rooms).Error; err != nil {
		return nil, err
	}
	price := make(map[uint]models.Money, len(rooms))
	types := map[string]bool{}
	for _, rm := range rooms {
		price[rm.ID] = rm.CurrentPrice
		types[rm.Type] = true
	}
	sortedTypes := make([]string, 0, len(types))
	for t := range types {
		sortedTypes = append(sortedTypes, t)
	}
	sort.Strings(sortedTypes)

	out := make([]ota.Availability, 0, len(matrix)*len(sortedTypes))
	for _, day := range matrix {
		rows := make(map[string]*ota.Availability, len(sortedTypes))
		for _, t := range sortedTypes {
			rows[t] = &ota.Availability{Date: day.Date, RoomType: t}
		}
		for _, cell := range day.Rooms {
			if cell.Status != models.DayAvailable {
				continue
			}
			row, ok := rows[cell.RoomType]
			if !ok {
				continue
			}
			row.Available++
			if p := price[cell.RoomID]; row.MinPrice == 0 || p < row.MinPrice {
				row.MinPrice = p
			}
		}
		for _, t := range sortedTypes {
			out = append(out, *rows[t])
		}
	}
	return out, nil
}

func (s *AutomationService) otaSync(ctx context.Context, _ models.AutomationConfig) (jobResult, error) {
	if !s.OTA.Configured() {
		return jobResult{details: map[string]interface{}{"skipped": "no channel manager endpoint configured"}}, nil
	}
	rows, err := s.OTASnapshot(ctx, OTASyncDays)
	if err != nil {
		return jobResult{}, err
	}
	resp, err := s.OTA.Push(ctx, ota.PushRequest{GeneratedAt: s.now(), Availability: rows})
	if err != nil {
		return jobResult{}, err
	}
	return jobResult{
		affected: resp.Accepted,
		details:  map[string]interface{}{"days": OTASyncDays, "rows": len(rows), "message": resp.Message},
	}, nil
}
