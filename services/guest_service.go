package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"hotel-pms/models"
	"hotel-pms/utils"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// GuestInput is the editable part of a guest.
type GuestInput struct {
	FirstName      string `json:"firstName" form:"firstName"`
	LastName       string `json:"lastName" form:"lastName"`
	Email          string `json:"email" form:"email"`
	Phone          string `json:"phone" form:"phone"`
	Nationality    string `json:"nationality" form:"nationality"`
	IdentityType   string `json:"identityType" form:"identityType"`
	IdentityNumber string `json:"identityNumber" form:"identityNumber"`
}

func (in *GuestInput) normalize() error {
	utils.TrimStrings(in)
	in.IdentityType = strings.ToUpper(in.IdentityType)
	if in.FirstName == "" {
		return fmt.Errorf("%w: firstName is required", ErrValidation)
	}
	if in.Email != "" && !utils.IsValidEmail(in.Email) {
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	switch in.IdentityType {
	case "", models.IdentityPassport, models.IdentityNationalID, models.IdentityDrivingLicense:
	default:
		return fmt.Errorf("%w: unknown identityType %q", ErrValidation, in.IdentityType)
	}
	return nil
}

// IdentityImage is an optional upload attached to guest creation.
type IdentityImage struct {
	Filename string
	Content  io.Reader
}

type GuestService struct {
	DB         *gorm.DB
	UploadsDir string
}

func NewGuestService(db *gorm.DB, uploadsDir string) *GuestService {
	return &GuestService{DB: db, UploadsDir: uploadsDir}
}

// Create stores the guest with a fresh QR token and, when given, the
// identity document image.
func (s *GuestService) Create(ctx context.Context, in GuestInput, image *IdentityImage) (*models.Guest, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	guest := models.Guest{
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Phone:          in.Phone,
		Nationality:    in.Nationality,
		IdentityType:   in.IdentityType,
		IdentityNumber: in.IdentityNumber,
		QRToken:        uuid.NewString(),
	}

	if image != nil && image.Content != nil {
		path, err := utils.SaveUpload(image.Content, s.UploadsDir, "identity", image.Filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		guest.IdentityImagePath = path
	}

	if err := s.DB.WithContext(ctx).Create(&guest).Error; err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}
	log.WithField("guest_id", guest.ID).Info("guest created")
	return &guest, nil
}

// List returns guests newest first; q matches name, email, phone or identity number.
func (s *GuestService) List(ctx context.Context, q string) ([]models.Guest, error) {
	guests := []models.Guest{}
	db := s.DB.WithContext(ctx).Order("id DESC")
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ? OR identity_number LIKE ?",
			like, like, like, like, like,
		)
	}
	if err := db.Find(&guests).Error; err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	return guests, nil
}

func (s *GuestService) Get(ctx context.Context, id uint) (*models.Guest, error) {
	var guest models.Guest
	if err := s.DB.WithContext(ctx).First(&guest, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &guest, nil
}

// GetByQRToken resolves a scanned guest QR code.
func (s *GuestService) GetByQRToken(ctx context.Context, token string) (*models.Guest, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNotFound
	}
	var guest models.Guest
	if err := s.DB.WithContext(ctx).Where("qr_token = ?", token).First(&guest).Error; err != nil {
		return nil, notFound(err)
	}
	return &guest, nil
}

func (s *GuestService) Update(ctx context.Context, id uint, in GuestInput) (*models.Guest, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	guest, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	guest.FirstName = in.FirstName
	guest.LastName = in.LastName
	guest.Email = in.Email
	guest.Phone = in.Phone
	guest.Nationality = in.Nationality
	guest.IdentityType = in.IdentityType
	guest.IdentityNumber = in.IdentityNumber
	if err := s.DB.WithContext(ctx).Save(guest).Error; err != nil {
		return nil, fmt.Errorf("failed to update guest: %w", err)
	}
	return guest, nil
}

// QRCode renders the guest's QR token as a PNG.
func (s *GuestService) QRCode(ctx context.Context, id uint) ([]byte, *models.Guest, error) {
	guest, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if guest.QRToken == "" {
		guest.QRToken = uuid.NewString()
		if err := s.DB.WithContext(ctx).Model(guest).Update("qr_token", guest.QRToken).Error; err != nil {
			return nil, nil, err
		}
	}
	png, err := utils.QRCodePNG(guest.QRToken)
	if err != nil {
		return nil, nil, err
	}
	return png, guest, nil
}

var guestExportHeader = []string{
	"ID", "First Name", "Last Name", "Email", "Phone",
	"Nationality", "Identity Type", "Identity Number", "Created At",
}

// Export writes every guest matching q into an xlsx workbook.
func (s *GuestService) Export(ctx context.Context, q string) (*bytes.Buffer, error) {
	guests, err := s.List(ctx, q)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Guests"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &guestExportHeader); err != nil {
		return nil, err
	}
	for i, g := range guests {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			g.ID, g.FirstName, g.LastName, g.Email, g.Phone,
			g.Nationality, g.IdentityType, g.IdentityNumber, g.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write guest export: %w", err)
	}
	return buf, nil
}
