package services

import (
	"context"
	"fmt"

	"hotel-pms/models"
	"hotel-pms/utils"

	"gorm.io/gorm"
)

// HotelInput is the editable part of a hotel.
type HotelInput struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

func (in *HotelInput) normalize() error {
	utils.TrimStrings(in)
	switch {
	case in.Name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case in.Address == "":
		return fmt.Errorf("%w: address is required", ErrValidation)
	case in.Phone == "":
		return fmt.Errorf("%w: phone is required", ErrValidation)
	case in.Email == "":
		return fmt.Errorf("%w: email is required", ErrValidation)
	case !utils.IsValidEmail(in.Email):
		return fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	return nil
}

type HotelService struct {
	DB *gorm.DB
}

func NewHotelService(db *gorm.DB) *HotelService {
	return &HotelService{DB: db}
}

func (s *HotelService) List(ctx context.Context) ([]models.Hotel, error) {
	hotels := []models.Hotel{}
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&hotels).Error; err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return hotels, nil
}

func (s *HotelService) Get(ctx context.Context, id uint) (*models.Hotel, error) {
	var hotel models.Hotel
	if err := s.DB.WithContext(ctx).First(&hotel, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &hotel, nil
}

// Create persists exactly the trimmed values of in.
func (s *HotelService) Create(ctx context.Context, in HotelInput) (*models.Hotel, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	hotel := models.Hotel{
		Name:        in.Name,
		Address:     in.Address,
		Phone:       in.Phone,
		Email:       in.Email,
		Description: in.Description,
	}
	if err := s.DB.WithContext(ctx).Create(&hotel).Error; err != nil {
		return nil, fmt.Errorf("failed to create hotel: %w", err)
	}
	return &hotel, nil
}

func (s *HotelService) Update(ctx context.Context, id uint, in HotelInput) (*models.Hotel, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	hotel, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	hotel.Name = in.Name
	hotel.Address = in.Address
	hotel.Phone = in.Phone
	hotel.Email = in.Email
	hotel.Description = in.Description
	if err := s.DB.WithContext(ctx).Save(hotel).Error; err != nil {
		return nil, fmt.Errorf("failed to update hotel: %w", err)
	}
	return hotel, nil
}

// Delete refuses while the hotel still has reservations holding rooms.
func (s *HotelService) Delete(ctx context.Context, id uint) error {
	db := s.DB.WithContext(ctx)
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	var active int64
	if err := db.Model(&models.Reservation{}).
		Where("hotel_id = ? AND status IN ?", id, models.ActiveReservationStatuses).
		Count(&active).Error; err != nil {
		return err
	}
	if active > 0 {
		return fmt.Errorf("%w: hotel has %d active reservations", ErrConflict, active)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hotel_id = ?", id).Delete(&models.Room{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Hotel{}, id).Error
	})
}
