package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-pms/models"
	"hotel-pms/utils"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var requestTransitions = map[string][]string{
	models.RequestPending:    {models.RequestInProgress, models.RequestCompleted, models.RequestCancelled},
	models.RequestInProgress: {models.RequestCompleted, models.RequestCancelled},
}

var taskTransitions = map[string][]string{
	models.TaskPending:    {models.TaskInProgress, models.TaskCompleted},
	models.TaskInProgress: {models.TaskCompleted},
	models.TaskCompleted:  {models.TaskVerified},
}

func allowed(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

func normalizePriority(p string) (string, error) {
	p = strings.ToUpper(strings.TrimSpace(p))
	if p == "" {
		return models.PriorityMedium, nil
	}
	for _, known := range models.Priorities {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, p)
}

// ---------------------------
// Service requests
// ---------------------------

type ServiceRequestInput struct {
	ReservationID *uint        `json:"reservationId"`
	RoomID        *uint        `json:"roomId"`
	Type          string       `json:"type"`
	Description   string       `json:"description"`
	Priority      string       `json:"priority"`
	AssignedTo    string       `json:"assignedTo"`
	ChargeAmount  models.Money `json:"chargeAmount"`
}

type ServiceRequestService struct {
	DB *gorm.DB
}

func NewServiceRequestService(db *gorm.DB) *ServiceRequestService {
	return &ServiceRequestService{DB: db}
}

func (s *ServiceRequestService) List(ctx context.Context, status string) ([]models.ServiceRequest, error) {
	requests := []models.ServiceRequest{}
	q := s.DB.WithContext(ctx).Order("created_at DESC, id DESC")
	if status = strings.ToUpper(strings.TrimSpace(status)); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list service requests: %w", err)
	}
	return requests, nil
}

func (s *ServiceRequestService) Create(ctx context.Context, in ServiceRequestInput) (*models.ServiceRequest, error) {
	utils.TrimStrings(&in)
	if in.Type == "" {
		return nil, fmt.Errorf("%w: type is required", ErrValidation)
	}
	if in.ChargeAmount < 0 {
		return nil, fmt.Errorf("%w: chargeAmount cannot be negative", ErrValidation)
	}
	priority, err := normalizePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	if in.ReservationID != nil {
		var res models.Reservation
		if err := db.Preload("Rooms").First(&res, *in.ReservationID).Error; err != nil {
			if notFound(err) == ErrNotFound {
				return nil, fmt.Errorf("%w: reservation %d does not exist", ErrValidation, *in.ReservationID)
			}
			return nil, err
		}
		if in.RoomID == nil && len(res.Rooms) > 0 {
			in.RoomID = utils.PtrUint(res.Rooms[0].ID)
		}
	}

	req := models.ServiceRequest{
		ReservationID: in.ReservationID,
		RoomID:        in.RoomID,
		Type:          strings.ToUpper(in.Type),
		Description:   in.Description,
		Status:        models.RequestPending,
		Priority:      priority,
		AssignedTo:    in.AssignedTo,
		ChargeAmount:  in.ChargeAmount,
	}
	if err := db.Create(&req).Error; err != nil {
		return nil, fmt.Errorf("failed to create service request: %w", err)
	}
	return &req, nil
}

// UpdateStatus moves a request forward; completing a chargeable request
// posts a SERVICE line item to the reservation's folio.
func (s *ServiceRequestService) UpdateStatus(ctx context.Context, id uint, status, actor string) (*models.ServiceRequest, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	var req models.ServiceRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, id).Error; err != nil {
			return notFound(err)
		}
		if !allowed(requestTransitions, req.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, status)
		}
		updates := map[string]interface{}{"status": status}
		if status == models.RequestCompleted {
			now := time.Now().UTC()
			updates["completed_at"] = now
			if req.ChargeAmount > 0 && req.ReservationID != nil {
				err := s.chargeFolio(tx, req, actor)
				switch {
				case errors.Is(err, ErrFolioNotOpen):
					// the stay is already settled; the work is still done
					log.WithFields(log.Fields{
						"request_id":     req.ID,
						"reservation_id": *req.ReservationID,
						"amount":         req.ChargeAmount.String(),
					}).Warn("service charge skipped: folio not open")
				case err != nil:
					return err
				}
			}
		}
		if err := tx.Model(&req).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&req, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *ServiceRequestService) chargeFolio(tx *gorm.DB, req models.ServiceRequest, actor string) error {
	folio, err := ensureFolio(tx, *req.ReservationID)
	if err != nil {
		return err
	}
	locked, err := lockFolio(tx, folio.ID)
	if err != nil {
		return err
	}
	desc := req.Type
	if req.Description != "" {
		desc = req.Type + ": " + req.Description
	}
	item := models.LineItem{
		Type:        models.LineService,
		Description: desc,
		Amount:      req.ChargeAmount,
		RoomID:      req.RoomID,
		PostedBy:    actor,
	}
	return postLineItem(tx, locked, &item)
}

func (s *ServiceRequestService) Assign(ctx context.Context, id uint, assignee string) (*models.ServiceRequest, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, fmt.Errorf("%w: assignedTo is required", ErrValidation)
	}
	db := s.DB.WithContext(ctx)
	var req models.ServiceRequest
	if err := db.First(&req, id).Error; err != nil {
		return nil, notFound(err)
	}
	if req.Status == models.RequestCompleted || req.Status == models.RequestCancelled {
		return nil, fmt.Errorf("%w: request is %s", ErrInvalidTransition, req.Status)
	}
	if err := db.Model(&req).Update("assigned_to", assignee).Error; err != nil {
		return nil, err
	}
	if err := db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ---------------------------
// Housekeeping
// ---------------------------

type HousekeepingTaskInput struct {
	RoomID     uint   `json:"roomId"`
	TaskType   string `json:"taskType"`
	Priority   string `json:"priority"`
	AssignedTo string `json:"assignedTo"`
	Notes      string `json:"notes"`
}

type HousekeepingService struct {
	DB *gorm.DB
}

func NewHousekeepingService(db *gorm.DB) *HousekeepingService {
	return &HousekeepingService{DB: db}
}

func (s *HousekeepingService) List(ctx context.Context, status string, roomID uint) ([]models.HousekeepingTask, error) {
	tasks := []models.HousekeepingTask{}
	q := s.DB.WithContext(ctx).Preload("Room").Order("created_at DESC, id DESC")
	if status = strings.ToUpper(strings.TrimSpace(status)); status != "" {
		q = q.Where("status = ?", status)
	}
	if roomID != 0 {
		q = q.Where("room_id = ?", roomID)
	}
	if err := q.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list housekeeping tasks: %w", err)
	}
	return tasks, nil
}

// Create opens a task; a MAINTENANCE task takes the room out of service.
func (s *HousekeepingService) Create(ctx context.Context, in HousekeepingTaskInput) (*models.HousekeepingTask, error) {
	utils.TrimStrings(&in)
	in.TaskType = strings.ToUpper(in.TaskType)
	switch in.TaskType {
	case models.TaskCleaning, models.TaskInspection, models.TaskTurndown, models.TaskMaintenance:
	default:
		return nil, fmt.Errorf("%w: unknown task type %q", ErrValidation, in.TaskType)
	}
	priority, err := normalizePriority(in.Priority)
	if err != nil {
		return nil, err
	}

	task := models.HousekeepingTask{
		RoomID:     in.RoomID,
		TaskType:   in.TaskType,
		Status:     models.TaskPending,
		Priority:   priority,
		AssignedTo: in.AssignedTo,
		Notes:      in.Notes,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, in.RoomID).Error; err != nil {
			if notFound(err) == ErrNotFound {
				return fmt.Errorf("%w: room %d does not exist", ErrValidation, in.RoomID)
			}
			return err
		}
		if err := tx.Omit("Room").Create(&task).Error; err != nil {
			return err
		}
		if task.TaskType == models.TaskMaintenance &&
			(room.Status == models.RoomAvailable || room.Status == models.RoomDirty) {
			return setRoomStatus(tx, []uint{room.ID}, models.RoomMaintenance)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, task.ID)
}

// UpdateStatus advances a task. Finishing cleaning or maintenance puts
// the room back on sale.
func (s *HousekeepingService) UpdateStatus(ctx context.Context, id uint, status string) (*models.HousekeepingTask, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task models.HousekeepingTask
		if err := tx.First(&task, id).Error; err != nil {
			return notFound(err)
		}
		if !allowed(taskTransitions, task.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.Status, status)
		}
		updates := map[string]interface{}{"status": status}
		if status == models.TaskCompleted {
			updates["completed_at"] = time.Now().UTC()
		}
		if err := tx.Model(&models.HousekeepingTask{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		if status != models.TaskCompleted {
			return nil
		}
		var from string
		switch task.TaskType {
		case models.TaskCleaning:
			from = models.RoomDirty
		case models.TaskMaintenance:
			from = models.RoomMaintenance
		default:
			return nil
		}
		return tx.Model(&models.Room{}).
			Where("id = ? AND status = ?", task.RoomID, from).
			Update("status", models.RoomAvailable).Error
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"task_id": id, "status": status}).Info("housekeeping task updated")
	return s.get(ctx, id)
}

func (s *HousekeepingService) get(ctx context.Context, id uint) (*models.HousekeepingTask, error) {
	var task models.HousekeepingTask
	if err := s.DB.WithContext(ctx).Preload("Room").First(&task, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}
