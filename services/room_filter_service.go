package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel-pms/models"
	"hotel-pms/notify"
	"hotel-pms/store"
	"hotel-pms/utils"

	log "github.com/sirupsen/logrus"
)

// CriteriaView is what the guest tablet renders: the desk's criteria and
// the rooms that match them.
type CriteriaView struct {
	Criteria       *models.RoomFilterCriteria `json:"criteria"`
	AvailableRooms []models.Room              `json:"availableRooms"`
}

// SelectionView is the receptionist's poll result.
type SelectionView struct {
	Selection *models.GuestSelection `json:"selection"`
	Timestamp int64                  `json:"timestamp"`
}

type RoomFilterService struct {
	Store     store.SelectionStore
	Publisher notify.Publisher
	Rooms     *RoomService

	now func() time.Time
}

func NewRoomFilterService(st store.SelectionStore, pub notify.Publisher, rooms *RoomService) *RoomFilterService {
	if pub == nil {
		pub = notify.Noop{}
	}
	return &RoomFilterService{Store: st, Publisher: pub, Rooms: rooms, now: time.Now}
}

func (s *RoomFilterService) UpdateCriteria(ctx context.Context, c models.RoomFilterCriteria, actor string) (*models.RoomFilterCriteria, error) {
	utils.TrimStrings(&c)
	checkIn, err := utils.ParseDate(c.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid checkIn", ErrValidation)
	}
	checkOut, err := utils.ParseDate(c.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid checkOut", ErrValidation)
	}
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("%w: checkOut must be after checkIn", ErrValidation)
	}
	if c.Adults < 0 || c.Children < 0 {
		return nil, fmt.Errorf("%w: invalid guest count", ErrValidation)
	}
	c.CheckIn, c.CheckOut = utils.FormatDate(checkIn), utils.FormatDate(checkOut)
	c.RoomType = strings.ToUpper(c.RoomType)
	c.UpdatedBy = actor

	prev, err := s.Store.Criteria(ctx)
	if err != nil {
		return nil, err
	}
	var last int64
	if prev != nil {
		last = prev.Timestamp
	}
	c.Timestamp = s.stamp(last)

	if err := s.Store.SaveCriteria(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to store criteria: %w", err)
	}
	s.publish(notify.TopicRoomFilterCriteria, c)
	return &c, nil
}

// Criteria returns the current criteria with matching rooms; both are
// empty until the desk posts something.
func (s *RoomFilterService) Criteria(ctx context.Context) (*CriteriaView, error) {
	view := &CriteriaView{AvailableRooms: []models.Room{}}
	c, err := s.Store.Criteria(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return view, nil
	}
	view.Criteria = c

	checkIn, err1 := utils.ParseDate(c.CheckIn)
	checkOut, err2 := utils.ParseDate(c.CheckOut)
	if err1 != nil || err2 != nil {
		return view, nil
	}
	rooms, err := s.Rooms.Available(ctx, checkIn, checkOut, c.RoomType, c.HotelID)
	if err != nil {
		return nil, err
	}
	guests := c.Adults + c.Children
	for _, rm := range rooms {
		if guests > 0 && rm.MaxOccupancy > 0 && rm.MaxOccupancy < guests {
			continue
		}
		view.AvailableRooms = append(view.AvailableRooms, rm)
	}
	return view, nil
}

// Select records the guest's pick, stamped with a millisecond timestamp
// that is strictly greater than the previous selection's.
func (s *RoomFilterService) Select(ctx context.Context, sel models.GuestSelection) (*models.GuestSelection, error) {
	utils.TrimStrings(&sel)
	if sel.RoomID == 0 {
		return nil, fmt.Errorf("%w: roomId is required", ErrValidation)
	}
	room, err := s.Rooms.Get(ctx, sel.RoomID)
	if err != nil {
		if err == ErrNotFound {
			return nil, fmt.Errorf("%w: room %d does not exist", ErrValidation, sel.RoomID)
		}
		return nil, err
	}
	sel.RoomNumber = room.Number
	sel.RoomType = room.Type

	if sel.CheckIn == "" || sel.CheckOut == "" {
		if c, err := s.Store.Criteria(ctx); err == nil && c != nil {
			sel.CheckIn, sel.CheckOut = c.CheckIn, c.CheckOut
		}
	}

	sel.Timestamp = s.now().UnixMilli()
	saved, err := s.Store.SaveSelection(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("failed to store selection: %w", err)
	}
	s.publish(notify.TopicGuestSelection, *saved)
	log.WithFields(log.Fields{"room": saved.RoomNumber, "timestamp": saved.Timestamp}).Info("guest selected room")
	return saved, nil
}

func (s *RoomFilterService) Selection(ctx context.Context) (*SelectionView, error) {
	sel, err := s.Store.Selection(ctx)
	if err != nil {
		return nil, err
	}
	view := &SelectionView{Selection: sel}
	if sel != nil {
		view.Timestamp = sel.Timestamp
	}
	return view, nil
}

func (s *RoomFilterService) ClearSelection(ctx context.Context) error {
	return s.Store.ClearSelection(ctx)
}

func (s *RoomFilterService) stamp(last int64) int64 {
	ts := s.now().UnixMilli()
	if ts <= last {
		ts = last + 1
	}
	return ts
}

func (s *RoomFilterService) publish(topic string, payload any) {
	if err := s.Publisher.Publish(topic, payload); err != nil {
		log.WithError(err).WithField("topic", topic).Warn("room filter push failed; tablets will pick it up on poll")
	}
}
