package services

import (
	"context"
	"testing"

	"hotel-pms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFraudService_Rules(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	reservations := NewReservationService(db, nil, "")
	folios := NewFolioService(db)
	fraud := NewFraudService(db)

	hotel := seedHotel(t, db, "Dambulla")
	r1 := seedRoom(t, db, hotel.ID, "1", "DOUBLE", 100)
	r2 := seedRoom(t, db, hotel.ID, "2", "DOUBLE", 100)
	first := seedGuest(t, db, "Saman", "ID-42")
	second := seedGuest(t, db, "Sunil", "id-42")

	resA := book(t, reservations, first.ID, []uint{r1.ID}, "2025-08-01", "2025-08-05")
	book(t, reservations, second.ID, []uint{r2.ID}, "2025-08-03", "2025-08-06")
	_, err := reservations.CheckIn(ctx, resA.ID)
	require.NoError(t, err)
	folio, err := folios.ByReservation(ctx, resA.ID)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		f, err := folios.PostLineItem(ctx, folio.ID, LineItemInput{Type: models.LineService, Amount: models.NewMoney(10)}, "desk")
		require.NoError(t, err)
		last := f.LineItems[len(f.LineItems)-1]
		_, err = folios.VoidLineItem(ctx, folio.ID, last.ID, "mistake", "desk")
		require.NoError(t, err)
	}
	_, err = folios.PostLineItem(ctx, folio.ID, LineItemInput{Type: models.LineAdjustment, Amount: models.NewMoney(12000)}, "desk")
	require.NoError(t, err)

	cfg := models.DefaultAutomationConfig()
	raised, err := fraud.RunRules(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, raised)

	alerts, err := fraud.List(ctx, models.AlertOpen)
	require.NoError(t, err)
	byType := map[string]models.FraudAlert{}
	for _, a := range alerts {
		byType[a.AlertType] = a
	}
	require.Len(t, byType, 3)
	assert.Equal(t, models.SeverityMedium, byType[models.FraudExcessiveVoids].Severity)
	assert.Equal(t, models.SeverityCritical, byType[models.FraudHighValueCharge].Severity)
	require.NotNil(t, byType[models.FraudDuplicateIdentity].GuestID)
	assert.Equal(t, second.ID, *byType[models.FraudDuplicateIdentity].GuestID)

	// open alerts are not raised twice
	raised, err = fraud.RunRules(ctx, cfg)
	require.NoError(t, err)
	assert.Zero(t, raised)

	voids := byType[models.FraudExcessiveVoids]
	_, err = fraud.UpdateStatus(ctx, voids.ID, models.AlertInvestigating, "ops")
	require.NoError(t, err)
	resolved, err := fraud.UpdateStatus(ctx, voids.ID, models.AlertResolved, "ops")
	require.NoError(t, err)
	assert.Equal(t, models.AlertResolved, resolved.Status)

	_, err = fraud.UpdateStatus(ctx, voids.ID, models.AlertOpen, "ops")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// once resolved, the same subject can alert again
	raised, err = fraud.RunRules(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, raised)
}
