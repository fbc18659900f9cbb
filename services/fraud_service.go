package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"hotel-pms/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var alertTransitions = map[string][]string{
	models.AlertOpen:          {models.AlertInvestigating, models.AlertResolved, models.AlertDismissed},
	models.AlertInvestigating: {models.AlertResolved, models.AlertDismissed},
}

type FraudService struct {
	DB *gorm.DB
}

func NewFraudService(db *gorm.DB) *FraudService {
	return &FraudService{DB: db}
}

func (s *FraudService) List(ctx context.Context, status string) ([]models.FraudAlert, error) {
	alerts := []models.FraudAlert{}
	q := s.DB.WithContext(ctx).Order("created_at DESC, id DESC")
	if status = strings.ToUpper(strings.TrimSpace(status)); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list fraud alerts: %w", err)
	}
	return alerts, nil
}

func (s *FraudService) UpdateStatus(ctx context.Context, id uint, status, actor string) (*models.FraudAlert, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	db := s.DB.WithContext(ctx)
	var alert models.FraudAlert
	if err := db.First(&alert, id).Error; err != nil {
		return nil, notFound(err)
	}
	if !allowed(alertTransitions, alert.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, alert.Status, status)
	}
	updates := map[string]interface{}{"status": status}
	if status == models.AlertResolved || status == models.AlertDismissed {
		updates["resolved_by"] = actor
		updates["resolved_at"] = time.Now().UTC()
	}
	if err := db.Model(&alert).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := db.First(&alert, id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// RunRules evaluates every fraud rule and returns how many alerts it raised.
func (s *FraudService) RunRules(ctx context.Context, cfg models.AutomationConfig) (int, error) {
	var raised int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		raised, err = runFraudRules(tx, cfg)
		return err
	})
	return raised, err
}

func runFraudRules(tx *gorm.DB, cfg models.AutomationConfig) (int, error) {
	rules := []func(*gorm.DB, models.AutomationConfig) ([]models.FraudAlert, error){
		excessiveVoids,
		duplicateIdentity,
		highValueCharges,
	}
	raised := 0
	for _, rule := range rules {
		alerts, err := rule(tx, cfg)
		if err != nil {
			return raised, err
		}
		for i := range alerts {
			ok, err := raiseAlert(tx, &alerts[i])
			if err != nil {
				return raised, err
			}
			if ok {
				raised++
			}
		}
	}
	return raised, nil
}

// raiseAlert inserts a unless an open or investigating alert of the same
// type already exists for the same subject.
func raiseAlert(tx *gorm.DB, a *models.FraudAlert) (bool, error) {
	q := tx.Model(&models.FraudAlert{}).
		Where("alert_type = ? AND status IN ?", a.AlertType, []string{models.AlertOpen, models.AlertInvestigating})
	switch a.AlertType {
	case models.FraudDuplicateIdentity:
		q = q.Where("guest_id = ?", derefUint(a.GuestID))
	default:
		q = q.Where("folio_id = ?", derefUint(a.FolioID))
	}
	var existing int64
	if err := q.Count(&existing).Error; err != nil {
		return false, err
	}
	if existing > 0 {
		return false, nil
	}
	a.Status = models.AlertOpen
	if err := tx.Create(a).Error; err != nil {
		return false, err
	}
	log.WithFields(log.Fields{"alert_type": a.AlertType, "severity": a.Severity}).Warn("fraud alert raised")
	return true, nil
}

func excessiveVoids(tx *gorm.DB, cfg models.AutomationConfig) ([]models.FraudAlert, error) {
	if cfg.FraudVoidThreshold <= 0 {
		return nil, nil
	}
	var rows []struct {
		FolioID       uint
		ReservationID uint
		Voids         int
	}
	err := tx.Table("line_items").
		Select("line_items.folio_id AS folio_id, folios.reservation_id AS reservation_id, COUNT(*) AS voids").
		Joins("JOIN folios ON folios.id = line_items.folio_id").
		Where("line_items.voided = ?", true).
		Group("line_items.folio_id, folios.reservation_id").
		Having("COUNT(*) >= ?", cfg.FraudVoidThreshold).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	alerts := make([]models.FraudAlert, 0, len(rows))
	for _, r := range rows {
		severity := models.SeverityMedium
		if r.Voids >= cfg.FraudVoidThreshold*2 {
			severity = models.SeverityHigh
		}
		folioID, resID := r.FolioID, r.ReservationID
		alerts = append(alerts, models.FraudAlert{
			FolioID:       &folioID,
			ReservationID: &resID,
			AlertType:     models.FraudExcessiveVoids,
			Severity:      severity,
			Description:   fmt.Sprintf("Folio #%d has %d voided line items", r.FolioID, r.Voids),
		})
	}
	return alerts, nil
}

func duplicateIdentity(tx *gorm.DB, _ models.AutomationConfig) ([]models.FraudAlert, error) {
	var rows []struct {
		ReservationID  uint
		GuestID        uint
		IdentityNumber string
		CheckIn        time.Time
		CheckOut       time.Time
	}
	err := tx.Table("reservations").
		Select("reservations.id AS reservation_id, guests.id AS guest_id, guests.identity_number AS identity_number, "+
			"reservations.check_in AS check_in, reservations.check_out AS check_out").
		Joins("JOIN guests ON guests.id = reservations.guest_id").
		Where("reservations.status IN ? AND reservations.deleted_at IS NULL", models.ActiveReservationStatuses).
		Where("guests.identity_number <> '' AND guests.deleted_at IS NULL").
		Order("reservations.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byIdentity := map[string][]int{}
	for i, r := range rows {
		key := strings.ToUpper(strings.TrimSpace(r.IdentityNumber))
		byIdentity[key] = append(byIdentity[key], i)
	}
	keys := make([]string, 0, len(byIdentity))
	for k := range byIdentity {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var alerts []models.FraudAlert
	flagged := map[uint]bool{}
	for _, key := range keys {
		idx := byIdentity[key]
		for a := 0; a < len(idx); a++ {
			for b := a + 1; b < len(idx); b++ {
				first, second := rows[idx[a]], rows[idx[b]]
				if first.GuestID == second.GuestID || flagged[second.GuestID] {
					continue
				}
				if !(first.CheckIn.Before(second.CheckOut) && first.CheckOut.After(second.CheckIn)) {
					continue
				}
				flagged[second.GuestID] = true
				guestID, resID := second.GuestID, second.ReservationID
				alerts = append(alerts, models.FraudAlert{
					GuestID:       &guestID,
					ReservationID: &resID,
					AlertType:     models.FraudDuplicateIdentity,
					Severity:      models.SeverityHigh,
					Description: fmt.Sprintf("Identity %s is used by guests #%d and #%d with overlapping stays",
						key, first.GuestID, second.GuestID),
				})
			}
		}
	}
	return alerts, nil
}

func highValueCharges(tx *gorm.DB, cfg models.AutomationConfig) ([]models.FraudAlert, error) {
	if cfg.FraudHighChargeAmount <= 0 {
		return nil, nil
	}
	var rows []struct {
		ItemID        uint
		FolioID       uint
		ReservationID uint
		Type          string
		Amount        models.Money
	}
	err := tx.Table("line_items").
		Select("line_items.id AS item_id, line_items.folio_id AS folio_id, folios.reservation_id AS reservation_id, "+
			"line_items.type AS type, line_items.amount AS amount").
		Joins("JOIN folios ON folios.id = line_items.folio_id").
		Where("line_items.voided = ? AND line_items.amount >= ?", false, cfg.FraudHighChargeAmount).
		Where("line_items.type IN ?", []string{
			models.LineRoomCharge, models.LineService, models.LineFoodBeverage, models.LineTax, models.LineAdjustment,
		}).
		Order("line_items.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	seen := map[uint]bool{}
	var alerts []models.FraudAlert
	for _, r := range rows {
		if seen[r.FolioID] {
			continue
		}
		seen[r.FolioID] = true
		severity := models.SeverityMedium
		if r.Amount >= cfg.FraudHighChargeAmount*2 {
			severity = models.SeverityCritical
		}
		folioID, resID := r.FolioID, r.ReservationID
		alerts = append(alerts, models.FraudAlert{
			FolioID:       &folioID,
			ReservationID: &resID,
			AlertType:     models.FraudHighValueCharge,
			Severity:      severity,
			Description:   fmt.Sprintf("%s of %s posted on folio #%d (item #%d)", r.Type, r.Amount, r.FolioID, r.ItemID),
		})
	}
	return alerts, nil
}

func derefUint(p *uint) uint {
	if p == nil {
		return 0
	}
	return *p
}
