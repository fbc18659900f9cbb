package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"hotel-pms/models"
	"hotel-pms/utils"

	"github.com/go-pdf/fpdf"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LineItemInput struct {
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Amount      models.Money `json:"amount"`
	RoomID      *uint        `json:"roomId"`
}

type FolioService struct {
	DB *gorm.DB
}

func NewFolioService(db *gorm.DB) *FolioService {
	return &FolioService{DB: db}
}

func (s *FolioService) Get(ctx context.Context, id uint) (*models.Folio, error) {
	return loadFolio(s.DB.WithContext(ctx), "id = ?", id)
}

func (s *FolioService) ByReservation(ctx context.Context, reservationID uint) (*models.Folio, error) {
	return loadFolio(s.DB.WithContext(ctx), "reservation_id = ?", reservationID)
}

func loadFolio(db *gorm.DB, query string, arg uint) (*models.Folio, error) {
	var folio models.Folio
	err := db.Preload("LineItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("posted_at ASC, id ASC")
	}).Where(query, arg).First(&folio).Error
	if err != nil {
		return nil, notFound(err)
	}
	if folio.LineItems == nil {
		folio.LineItems = []models.LineItem{}
	}
	return &folio, nil
}

// PostLineItem adds a charge or payment to an open folio.
func (s *FolioService) PostLineItem(ctx context.Context, folioID uint, in LineItemInput, actor string) (*models.Folio, error) {
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	in.Description = strings.TrimSpace(in.Description)
	if !models.IsLineItemType(in.Type) {
		return nil, fmt.Errorf("%w: unknown line item type %q", ErrValidation, in.Type)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		folio, err := lockFolio(tx, folioID)
		if err != nil {
			return err
		}
		item := models.LineItem{
			Type:        in.Type,
			Description: in.Description,
			Amount:      in.Amount,
			RoomID:      in.RoomID,
			PostedBy:    actor,
		}
		return postLineItem(tx, folio, &item)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, folioID)
}

// VoidLineItem excludes an item from the totals. The reason is mandatory
// and an item can only be voided once.
func (s *FolioService) VoidLineItem(ctx context.Context, folioID, itemID uint, reason, actor string) (*models.Folio, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: void reason is required", ErrValidation)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		folio, err := lockFolio(tx, folioID)
		if err != nil {
			return err
		}
		if folio.Status != models.FolioOpen {
			return fmt.Errorf("%w: folio is %s", ErrFolioNotOpen, folio.Status)
		}

		var item models.LineItem
		if err := tx.Where("id = ? AND folio_id = ?", itemID, folioID).First(&item).Error; err != nil {
			return notFound(err)
		}
		if item.Voided {
			return fmt.Errorf("%w: line item %d is already voided", ErrConflict, itemID)
		}

		now := time.Now().UTC()
		if err := tx.Model(&item).Updates(map[string]interface{}{
			"voided":      true,
			"voided_at":   now,
			"voided_by":   actor,
			"void_reason": reason,
		}).Error; err != nil {
			return err
		}
		return recomputeTotals(tx, folio)
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"folio_id": folioID, "item_id": itemID, "by": actor}).Info("line item voided")
	return s.Get(ctx, folioID)
}

// Settle is only allowed once nothing is owed.
func (s *FolioService) Settle(ctx context.Context, id uint) (*models.Folio, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		folio, err := lockFolio(tx, id)
		if err != nil {
			return err
		}
		if folio.Status != models.FolioOpen {
			return fmt.Errorf("%w: folio is %s", ErrFolioNotOpen, folio.Status)
		}
		if folio.Balance > 0 {
			return fmt.Errorf("%w: %s still due", ErrBalanceOutstanding, folio.Balance)
		}
		return tx.Model(folio).Updates(map[string]interface{}{
			"status":     models.FolioSettled,
			"settled_at": time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *FolioService) Close(ctx context.Context, id uint) (*models.Folio, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		folio, err := lockFolio(tx, id)
		if err != nil {
			return err
		}
		if folio.Status != models.FolioSettled {
			return fmt.Errorf("%w: only settled folios can be closed", ErrInvalidTransition)
		}
		return tx.Model(folio).Updates(map[string]interface{}{
			"status":    models.FolioClosed,
			"closed_at": time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Invoice renders the folio as a PDF.
func (s *FolioService) Invoice(ctx context.Context, id uint) ([]byte, error) {
	folio, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	var res models.Reservation
	if err := db.Preload("Guest").Preload("Rooms").First(&res, folio.ReservationID).Error; err != nil {
		return nil, notFound(err)
	}
	var hotel models.Hotel
	if err := db.Unscoped().First(&hotel, res.HotelID).Error; err != nil {
		hotel.Name = "Hotel"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice folio #%d", folio.ID), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, hotel.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range []string{hotel.Address, hotel.Phone, hotel.Email} {
		if line != "" {
			pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, fmt.Sprintf("Invoice - Folio #%d (%s)", folio.ID, folio.Status), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	rooms := make([]string, 0, len(res.Rooms))
	for _, rm := range res.Rooms {
		rooms = append(rooms, rm.Number)
	}
	pdf.CellFormat(0, 6, "Guest: "+res.Guest.FullName(), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Reservation #%d  Rooms: %s", res.ID, strings.Join(rooms, ", ")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Stay: %s to %s (%d nights)",
		utils.FormatDate(res.CheckIn), utils.FormatDate(res.CheckOut), res.Nights()), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 240, 248)
	pdf.CellFormat(30, 7, "Date", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 7, "Type", "1", 0, "L", true, 0, "")
	pdf.CellFormat(90, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(35, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, li := range folio.LineItems {
		if li.Voided {
			continue
		}
		amount := invoiceAmount(li)
		pdf.CellFormat(30, 6, li.PostedAt.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, li.Type, "1", 0, "L", false, 0, "")
		pdf.CellFormat(90, 6, li.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, amount, "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 10)
	for _, row := range [][2]string{
		{"Total charges", folio.TotalCharges.String()},
		{"Total payments", folio.TotalPayments.String()},
		{"Balance", folio.Balance.String()},
	} {
		pdf.CellFormat(155, 6, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, row[1], "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

func lockFolio(tx *gorm.DB, id uint) (*models.Folio, error) {
	var folio models.Folio
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&folio, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &folio, nil
}

// ensureFolio returns the reservation's folio, opening one if needed.
func ensureFolio(tx *gorm.DB, reservationID uint) (*models.Folio, error) {
	var folio models.Folio
	err := tx.Where("reservation_id = ?", reservationID).First(&folio).Error
	if err == nil {
		return &folio, nil
	}
	if notFound(err) != ErrNotFound {
		return nil, err
	}
	folio = models.Folio{ReservationID: reservationID, Status: models.FolioOpen}
	if err := tx.Omit("Reservation").Create(&folio).Error; err != nil {
		return nil, fmt.Errorf("failed to open folio: %w", err)
	}
	return &folio, nil
}

// postLineItem inserts item on an open folio and refreshes its totals.
// invoiceAmount prints items that reduce what the guest owes or was paid
// (discounts, payments, refunds) as negative.
func invoiceAmount(li models.LineItem) string {
	switch li.Type {
	case models.LineDiscount, models.LinePayment, models.LineRefund:
		return "-" + li.Amount.String()
	}
	return li.Amount.String()
}

func postLineItem(tx *gorm.DB, folio *models.Folio, item *models.LineItem) error {
	if folio.Status != models.FolioOpen {
		return fmt.Errorf("%w: folio is %s", ErrFolioNotOpen, folio.Status)
	}
	if item.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	if item.Description == "" {
		item.Description = strings.ReplaceAll(strings.ToLower(item.Type), "_", " ")
	}
	item.FolioID = folio.ID
	if item.PostedAt.IsZero() {
		item.PostedAt = time.Now().UTC()
	}
	if err := tx.Create(item).Error; err != nil {
		return fmt.Errorf("failed to post line item: %w", err)
	}
	return recomputeTotals(tx, folio)
}

// recomputeTotals derives the totals from the non-voided items and
// persists them on folio.
func recomputeTotals(tx *gorm.DB, folio *models.Folio) error {
	var items []models.LineItem
	if err := tx.Where("folio_id = ? AND voided = ?", folio.ID, false).Find(&items).Error; err != nil {
		return err
	}
	var charges, payments models.Money
	for _, li := range items {
		c, p := li.Signed()
		charges += c
		payments += p
	}
	folio.TotalCharges = charges
	folio.TotalPayments = payments
	folio.Balance = charges - payments
	return tx.Model(folio).Updates(map[string]interface{}{
		"total_charges":  folio.TotalCharges,
		"total_payments": folio.TotalPayments,
		"balance":        folio.Balance,
	}).Error
}
